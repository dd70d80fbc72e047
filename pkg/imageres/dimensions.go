// Package imageres selects the highest-resolution image among candidates
// believed to depict the same item. Dimension extraction reads format headers
// directly; it never decodes pixel data and never fails.
package imageres

import (
	"bytes"
	"encoding/binary"
)

var (
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegSOI      = []byte{0xFF, 0xD8}
	gif87a       = []byte("GIF87a")
	gif89a       = []byte("GIF89a")
)

// Dimensions returns the pixel width and height of a PNG, JPEG or GIF image.
// Returns (0, 0) for empty input, unrecognized formats and truncated data.
func Dimensions(data []byte) (int, int) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return pngDimensions(data)
	case bytes.HasPrefix(data, jpegSOI):
		return jpegDimensions(data)
	case bytes.HasPrefix(data, gif87a) || bytes.HasPrefix(data, gif89a):
		return gifDimensions(data)
	default:
		return 0, 0
	}
}

// Resolution returns the total pixel count for the given dimensions
func Resolution(width, height int) int {
	return width * height
}

// pngDimensions reads the big-endian width and height fields of the IHDR
// chunk, at fixed offsets 16 and 20 after the signature and chunk header.
func pngDimensions(data []byte) (int, int) {
	if len(data) < 24 {
		return 0, 0
	}
	width := binary.BigEndian.Uint32(data[16:20])
	height := binary.BigEndian.Uint32(data[20:24])
	return int(width), int(height)
}

// jpegDimensions scans marker-by-marker for a baseline or progressive
// Start-Of-Frame (0xC0, 0xC1, 0xC2) and reads the height/width fields that
// follow it. Other segments are skipped by their declared length.
func jpegDimensions(data []byte) (int, int) {
	offset := 2
	for offset+1 < len(data) {
		if data[offset] != 0xFF {
			offset++
			continue
		}

		marker := data[offset+1]
		switch {
		case marker == 0xC0 || marker == 0xC1 || marker == 0xC2:
			if offset+9 > len(data) {
				return 0, 0
			}
			height := binary.BigEndian.Uint16(data[offset+5 : offset+7])
			width := binary.BigEndian.Uint16(data[offset+7 : offset+9])
			return int(width), int(height)
		case marker == 0xD8 || marker == 0xD9:
			offset += 2
		case marker == 0xFF:
			offset++
		default:
			if offset+4 > len(data) {
				return 0, 0
			}
			segmentLength := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
			offset += 2 + segmentLength
		}
	}
	return 0, 0
}

// gifDimensions reads the little-endian logical screen width and height at
// fixed offsets 6 and 8 after the signature.
func gifDimensions(data []byte) (int, int) {
	if len(data) < 10 {
		return 0, 0
	}
	width := binary.LittleEndian.Uint16(data[6:8])
	height := binary.LittleEndian.Uint16(data[8:10])
	return int(width), int(height)
}
