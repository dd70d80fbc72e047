package integration

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/processor"
	"github.com/Ramsey-B/fern/pkg/skill"
)

const vendorSkill = `
vendor: acme
image_match:
  min_area_px: 10000
  page_offset_default: 1
field_merge_strategies:
  location:
    mode: concatenate
    separator: ", "
`

type captureEmitter struct {
	items  []models.LineItem
	report *models.MergeReport
	failed []error
}

func (c *captureEmitter) EmitMergeCompleted(_ context.Context, _, _ string, items []models.LineItem, report *models.MergeReport) error {
	c.items = items
	c.report = report
	return nil
}

func (c *captureEmitter) EmitMergeFailed(_ context.Context, _, _ string, cause error) error {
	c.failed = append(c.failed, cause)
	return nil
}

func pngBytes(width, height int) []byte {
	data := make([]byte, 24)
	copy(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	copy(data[12:16], []byte("IHDR"))
	binary.BigEndian.PutUint32(data[16:20], uint32(width))
	binary.BigEndian.PutUint32(data[20:24], uint32(height))
	return data
}

// Full pipeline over an in-memory session: image matching, photo
// assignment, cross-document field merge, quantity reconciliation and
// fabric-follows-furniture ordering.
func TestMergePipeline_EndToEnd(t *testing.T) {
	skillDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "acme.yaml"), []byte(vendorSkill), 0o644))

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	skills := skill.NewStore(logger, skillDir)
	emitter := &captureEmitter{}
	proc := processor.NewProcessor(logger, skills, emitter, 2)

	armchairPhoto := pngBytes(400, 300)
	sofaPhoto := pngBytes(500, 400)

	session := &kafka.ParsedSessionMessage{
		Type:        kafka.TypeSessionParsed,
		QuotationID: "quote-42",
		VendorID:    "acme",
		Documents: []models.SourceDocument{
			{ID: "qty-doc", Filename: "boq.pdf", Role: models.RoleQuantitySummary},
			{ID: "doc-1", Filename: "casegoods.pdf", Role: models.RoleDetailSpec, UploadOrder: 1},
			{ID: "doc-2", Filename: "casegoods_rev2.pdf", Role: models.RoleDetailSpec, UploadOrder: 2},
			{ID: "fab-doc", Filename: "fabrics.pdf", Role: models.RoleFabricSpec, UploadOrder: 3},
		},
		QuantityRecords: []models.QuantityRecord{
			models.NewQuantityRecord("DLX-100", 12, "pcs", "qty-doc"),
			models.NewQuantityRecord("SOF-200", 3, "pcs", "qty-doc"),
			models.NewQuantityRecord("GONE-9", 1, "pcs", "qty-doc"),
		},
		Items: map[string][]models.LineItem{
			"doc-1": {
				{ID: "li-1", ItemNo: "dlx.100", Dimension: "600x600x450", Location: "Room 101", SourcePage: 1, SourceDocumentID: "doc-1"},
				{ID: "li-2", ItemNo: "SOF-200", Description: "Three seat sofa", SourcePage: 2, SourceDocumentID: "doc-1"},
			},
			"doc-2": {
				{ID: "li-3", ItemNo: "DLX-100", Description: "Lounge armchair", Location: "Room 102", SourcePage: 1, SourceDocumentID: "doc-2"},
			},
			"fab-doc": {
				{ID: "li-4", ItemNo: "FAB-1", Description: "Wool fabric to DLX-100", Category: models.CategoryFabric, SourceDocumentID: "fab-doc"},
			},
		},
		Images: map[string][]models.ImageDescriptor{
			"doc-1": {
				{Index: 0, Page: 2, Width: 400, Height: 300, Data: armchairPhoto},
				{Index: 1, Page: 2, Width: 50, Height: 50, Data: pngBytes(50, 50)},
				{Index: 2, Page: 3, Width: 500, Height: 400, Data: sofaPhoto},
			},
		},
	}

	require.NoError(t, proc.ProcessSession(context.Background(), session))
	require.Empty(t, emitter.failed)
	require.NotNil(t, emitter.report)

	report := emitter.report
	assert.Equal(t, "quote-42", report.QuotationID)
	assert.Equal(t, 4, report.TotalItems)
	assert.Equal(t, 2, report.MatchedItems)
	assert.Equal(t, 1, report.UnmatchedItems)
	assert.Equal(t, 1, report.QuantityOnlyItems)
	assert.InDelta(t, 50.0, report.MatchRate(), 0.01)

	// dlx.100 normalizes differently than written
	require.NotEmpty(t, report.FormatWarnings)
	assert.Equal(t, "dlx.100", report.FormatWarnings[0].Original)
	assert.Equal(t, "DLX-100", report.FormatWarnings[0].Normalized)

	// Fabric follows its furniture item in the output ordering. The merged
	// armchair keeps the raw item number of its first occurrence, which
	// sorts after SOF-200 in byte order.
	require.Len(t, emitter.items, 3)
	nos := []string{emitter.items[0].ItemNo, emitter.items[1].ItemNo, emitter.items[2].ItemNo}
	assert.Equal(t, []string{"SOF-200", "dlx.100", "FAB-1"}, nos)
	assert.Equal(t, []int{1, 2, 3}, []int{emitter.items[0].No, emitter.items[1].No, emitter.items[2].No})

	armchair := emitter.items[1]
	assert.Equal(t, models.MergeStatusMatched, armchair.MergeStatus)
	require.NotNil(t, armchair.Qty)
	assert.Equal(t, 12.0, *armchair.Qty)
	assert.True(t, armchair.QtyFromSummary)
	assert.Equal(t, "Lounge armchair", armchair.Description)
	assert.Equal(t, "600x600x450", armchair.Dimension)
	assert.Equal(t, "Room 101, Room 102", armchair.Location)
	// Page-1 item gets the big page-2 image; the 50x50 icon is excluded
	assert.Equal(t, armchairPhoto, armchair.Photo)

	sofa := emitter.items[0]
	assert.Equal(t, models.MergeStatusMatched, sofa.MergeStatus)
	assert.Equal(t, sofaPhoto, sofa.Photo)

	fabric := emitter.items[2]
	assert.Equal(t, models.MergeStatusUnmatched, fabric.MergeStatus)
}

// A second session with the same store reuses the cached skill and a
// missing vendor falls back to defaults without failing the merge.
func TestMergePipeline_UnknownVendorUsesDefaults(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	skills := skill.NewStore(logger, t.TempDir())
	emitter := &captureEmitter{}
	proc := processor.NewProcessor(logger, skills, emitter, 1)

	session := &kafka.ParsedSessionMessage{
		Type:        kafka.TypeSessionParsed,
		QuotationID: "quote-43",
		VendorID:    "nobody",
		Documents: []models.SourceDocument{
			{ID: "doc-1", Filename: "casegoods.pdf", Role: models.RoleDetailSpec, UploadOrder: 1},
		},
		Items: map[string][]models.LineItem{
			"doc-1": {
				{ID: "li-1", ItemNo: "A-001", Description: "Armchair", SourcePage: 1, SourceDocumentID: "doc-1"},
			},
		},
	}

	require.NoError(t, proc.ProcessSession(context.Background(), session))
	require.Empty(t, emitter.failed)
	require.Len(t, emitter.items, 1)
	assert.Equal(t, models.MergeStatusUnmatched, emitter.items[0].MergeStatus)
	assert.Equal(t, 1, emitter.report.TotalItems)
}
