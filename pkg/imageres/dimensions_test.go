package imageres

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePNG builds a minimal PNG header with the given dimensions
func makePNG(width, height uint32) []byte {
	data := make([]byte, 0, 24)
	data = append(data, 0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n')
	data = append(data, 0x00, 0x00, 0x00, 0x0D) // IHDR length
	data = append(data, 'I', 'H', 'D', 'R')
	data = binary.BigEndian.AppendUint32(data, width)
	data = binary.BigEndian.AppendUint32(data, height)
	data = append(data, 0x08, 0x06, 0x00, 0x00, 0x00) // bit depth, color type, etc.
	return data
}

// makeJPEG builds a minimal JPEG with an APP0 segment followed by SOF0
func makeJPEG(width, height uint16) []byte {
	data := []byte{0xFF, 0xD8}
	// APP0 segment, skipped by its declared length
	data = append(data, 0xFF, 0xE0, 0x00, 0x06, 'J', 'F', 'I', 'F')
	// SOF0: marker, length, precision, height, width
	data = append(data, 0xFF, 0xC0, 0x00, 0x11, 0x08)
	data = binary.BigEndian.AppendUint16(data, height)
	data = binary.BigEndian.AppendUint16(data, width)
	return data
}

// makeGIF builds a minimal GIF header with the given dimensions
func makeGIF(width, height uint16) []byte {
	data := []byte("GIF89a")
	data = binary.LittleEndian.AppendUint16(data, width)
	data = binary.LittleEndian.AppendUint16(data, height)
	return data
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name           string
		data           []byte
		expectedWidth  int
		expectedHeight int
	}{
		{"PNG 10x20", makePNG(10, 20), 10, 20},
		{"PNG large", makePNG(1920, 1080), 1920, 1080},
		{"JPEG 640x480", makeJPEG(640, 480), 640, 480},
		{"GIF 320x240", makeGIF(320, 240), 320, 240},
		{"empty input", nil, 0, 0},
		{"garbage bytes", []byte("not an image at all"), 0, 0},
		{"truncated PNG", makePNG(10, 20)[:12], 0, 0},
		{"truncated GIF", []byte("GIF89a\x01"), 0, 0},
		{"JPEG without SOF", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x04, 0x00, 0x00}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width, height := Dimensions(tt.data)
			assert.Equal(t, tt.expectedWidth, width)
			assert.Equal(t, tt.expectedHeight, height)
		})
	}
}

func TestDimensions_ProgressiveJPEG(t *testing.T) {
	// SOF2 marks a progressive frame and carries the same layout as SOF0
	data := []byte{0xFF, 0xD8, 0xFF, 0xC2, 0x00, 0x11, 0x08}
	data = binary.BigEndian.AppendUint16(data, 480)
	data = binary.BigEndian.AppendUint16(data, 640)

	width, height := Dimensions(data)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
}

func TestSelectHighestResolution(t *testing.T) {
	small := makePNG(10, 10)
	medium := makePNG(100, 100)
	large := makePNG(500, 400)

	t.Run("picks largest", func(t *testing.T) {
		selection := SelectHighestResolution([]Candidate{
			{SourceID: "d1", Data: small},
			{SourceID: "d2", Data: large},
			{SourceID: "d3", Data: medium},
		})
		require.NotNil(t, selection)
		assert.Equal(t, "d2", selection.SourceID)
		assert.Equal(t, 500, selection.Width)
		assert.Equal(t, 400, selection.Height)
		assert.Equal(t, 200000, selection.Resolution)
	})

	t.Run("first seen wins ties", func(t *testing.T) {
		selection := SelectHighestResolution([]Candidate{
			{SourceID: "d1", Data: makePNG(20, 30)},
			{SourceID: "d2", Data: makePNG(30, 20)},
		})
		require.NotNil(t, selection)
		assert.Equal(t, "d1", selection.SourceID)
	})

	t.Run("skips undecodable candidates", func(t *testing.T) {
		selection := SelectHighestResolution([]Candidate{
			{SourceID: "d1", Data: []byte("garbage")},
			{SourceID: "d2", Data: nil},
			{SourceID: "d3", Data: small},
		})
		require.NotNil(t, selection)
		assert.Equal(t, "d3", selection.SourceID)
	})

	t.Run("nil when nothing decodes", func(t *testing.T) {
		assert.Nil(t, SelectHighestResolution([]Candidate{
			{SourceID: "d1", Data: []byte("garbage")},
		}))
		assert.Nil(t, SelectHighestResolution(nil))
	})
}
