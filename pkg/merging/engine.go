// Package merging implements cross-document line item reconciliation:
// grouping same-item observations, field-level merging, match status
// classification and the fabric-follows-furniture output ordering.
package merging

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/tracing"
	"github.com/Ramsey-B/fern/pkg/imageres"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// mergeableStringFields lists the string fields the field merger combines
// across occurrences, with their accessors. Structural fields (id,
// provenance) always come from the first occurrence.
var mergeableStringFields = []struct {
	name string
	get  func(*models.LineItem) string
	set  func(*models.LineItem, string)
}{
	{"description", func(i *models.LineItem) string { return i.Description }, func(i *models.LineItem, v string) { i.Description = v }},
	{"dimension", func(i *models.LineItem) string { return i.Dimension }, func(i *models.LineItem, v string) { i.Dimension = v }},
	{"uom", func(i *models.LineItem) string { return i.UOM }, func(i *models.LineItem, v string) { i.UOM = v }},
	{"note", func(i *models.LineItem) string { return i.Note }, func(i *models.LineItem, v string) { i.Note = v }},
	{"location", func(i *models.LineItem) string { return i.Location }, func(i *models.LineItem, v string) { i.Location = v }},
	{"materials_specs", func(i *models.LineItem) string { return i.MaterialsSpecs }, func(i *models.LineItem, v string) { i.MaterialsSpecs = v }},
	{"brand", func(i *models.LineItem) string { return i.Brand }, func(i *models.LineItem, v string) { i.Brand = v }},
}

// occurrence is one observation of a logical item in one detail document.
type occurrence struct {
	item *models.LineItem
	doc  *models.SourceDocument
}

func (o occurrence) documentID() string {
	if o.doc != nil {
		return o.doc.ID
	}
	return o.item.SourceDocumentID
}

func (o occurrence) filename() string {
	if o.doc != nil && o.doc.Filename != "" {
		return o.doc.Filename
	}
	return o.item.SourceDocumentID
}

func (o occurrence) uploadOrder() int {
	if o.doc != nil {
		return o.doc.UploadOrder
	}
	return 0
}

// Engine reconciles parsed line items across a quantity summary and any
// number of detail documents.
type Engine struct {
	logger        ectologger.Logger
	fieldMerger   *FieldMerger
	fabricPattern *regexp.Regexp
}

// NewEngine creates a merge engine. A nil strategy set and a nil fabric
// pattern fall back to the documented defaults.
func NewEngine(logger ectologger.Logger, strategies StrategySet, fabricPattern *regexp.Regexp) *Engine {
	return &Engine{
		logger:        logger,
		fieldMerger:   NewFieldMerger(strategies),
		fabricPattern: fabricPattern,
	}
}

// ValidateMergeRequest checks that the uploaded document set can be merged:
// at most one quantity summary and at least one detail document. Returns the
// quantity summary (nil when absent) and the detail documents sorted by
// upload order.
func ValidateMergeRequest(documents []models.SourceDocument) (*models.SourceDocument, []models.SourceDocument, error) {
	var qtyDoc *models.SourceDocument
	detailDocs := make([]models.SourceDocument, 0, len(documents))

	for i := range documents {
		doc := documents[i]
		switch doc.Role {
		case models.RoleQuantitySummary:
			if qtyDoc != nil {
				return nil, nil, fmt.Errorf("multiple quantity summary documents: %q and %q", qtyDoc.Filename, doc.Filename)
			}
			qtyDoc = &doc
		case models.RoleDetailSpec, models.RoleFabricSpec:
			detailDocs = append(detailDocs, doc)
		}
	}

	if len(detailDocs) == 0 {
		return nil, nil, fmt.Errorf("no detail documents to merge")
	}

	sort.SliceStable(detailDocs, func(i, j int) bool {
		return detailDocs[i].UploadOrder < detailDocs[j].UploadOrder
	})

	return qtyDoc, detailDocs, nil
}

// MergeDocuments reconciles the quantity summary records against the detail
// documents' item lists. detailItemLists[i] holds the items parsed from
// detailDocs[i]. Returns the merged items in fabric-follows-furniture order
// plus the populated merge report.
func (e *Engine) MergeDocuments(
	ctx context.Context,
	qtyRecords []models.QuantityRecord,
	detailItemLists [][]models.LineItem,
	qtyDoc *models.SourceDocument,
	detailDocs []models.SourceDocument,
	quotationID string,
) ([]models.LineItem, *models.MergeReport) {
	ctx, span := tracing.StartSpan(ctx, "merging.Engine.MergeDocuments")
	defer span.End()

	start := time.Now()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"quotation_id":     quotationID,
		"quantity_records": len(qtyRecords),
		"detail_documents": len(detailDocs),
	})
	log.Info("starting document merge")

	report := models.NewMergeReport(quotationID)
	if qtyDoc != nil {
		report.QuantitySummaryDocID = qtyDoc.ID
		report.QuantitySummaryFilename = qtyDoc.Filename
	}
	report.DetailSpecDocIDs = ectolinq.Map(detailDocs, func(doc models.SourceDocument) string { return doc.ID })
	report.DetailSpecFilenames = ectolinq.Map(detailDocs, func(doc models.SourceDocument) string { return doc.Filename })

	qtyIndex := e.indexQuantityRecords(qtyRecords, qtyDoc, report)
	groups, groupOrder := e.indexDetailItems(detailItemLists, detailDocs, report)

	merged := make([]models.LineItem, 0, len(groupOrder))
	processed := make(map[string]bool, len(groupOrder))

	for _, key := range groupOrder {
		occurrences := groups[key]
		item, outcome := e.mergeGroup(key, occurrences)

		if record, ok := qtyIndex[key]; ok {
			item.MergeStatus = models.MergeStatusMatched
			outcome.Status = models.MergeStatusMatched
			outcome.QuantitySource = record.SourceDocumentID
			outcome.OriginalItemNos = append([]string{record.ItemNoRaw}, outcome.OriginalItemNos...)
			if item.Qty == nil {
				qty := record.TotalQty
				item.Qty = &qty
				item.QtyFromSummary = true
				outcome.FieldSources["qty"] = record.SourceDocumentID
			}
			if item.UOM == "" && record.UOM != "" {
				item.UOM = record.UOM
				outcome.FieldSources["uom"] = record.SourceDocumentID
			}
		} else {
			item.MergeStatus = models.MergeStatusUnmatched
			outcome.Status = models.MergeStatusUnmatched
		}

		processed[key] = true
		merged = append(merged, *item)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	for _, record := range qtyRecords {
		key := record.Normalized()
		if key == "" || processed[key] {
			continue
		}
		processed[key] = true
		report.Outcomes = append(report.Outcomes, models.MergeOutcome{
			ItemNoNormalized: key,
			OriginalItemNos:  []string{record.ItemNoRaw},
			Status:           models.MergeStatusQuantityOnly,
			QuantitySource:   record.SourceDocumentID,
		})
		report.AddWarning(fmt.Sprintf("item %q appears only in the quantity summary, no detail specification found", record.ItemNoRaw))
	}

	merged = SortItemsFabricFollowsFurniture(merged, e.fabricPattern)
	for i := range merged {
		merged[i].No = i + 1
	}

	report.UpdateStatistics()
	report.ProcessingTimeMS = time.Since(start).Milliseconds()

	log.WithFields(map[string]any{
		"total_items":        report.TotalItems,
		"matched_items":      report.MatchedItems,
		"unmatched_items":    report.UnmatchedItems,
		"quantity_only":      report.QuantityOnlyItems,
		"format_warnings":    len(report.FormatWarnings),
		"processing_time_ms": report.ProcessingTimeMS,
	}).Info("document merge complete")

	return merged, report
}

// indexQuantityRecords builds the normalized item number index over the
// quantity summary, recording a format warning for every raw spelling that
// differs literally from an equivalent form.
func (e *Engine) indexQuantityRecords(
	records []models.QuantityRecord,
	qtyDoc *models.SourceDocument,
	report *models.MergeReport,
) map[string]models.QuantityRecord {
	sourceFile := "quantity summary"
	if qtyDoc != nil && qtyDoc.Filename != "" {
		sourceFile = qtyDoc.Filename
	}

	index := make(map[string]models.QuantityRecord, len(records))
	for _, record := range records {
		key := record.Normalized()
		if key == "" {
			continue
		}
		if normalizers.IsFormatDifferent(record.ItemNoRaw, key) {
			report.AddFormatWarning(record.ItemNoRaw, key, sourceFile)
		}
		if _, exists := index[key]; !exists {
			index[key] = record
		}
	}
	return index
}

// indexDetailItems groups every detail item across all documents by
// normalized item number, preserving first-encounter order of the groups.
func (e *Engine) indexDetailItems(
	detailItemLists [][]models.LineItem,
	detailDocs []models.SourceDocument,
	report *models.MergeReport,
) (map[string][]occurrence, []string) {
	groups := make(map[string][]occurrence)
	order := make([]string, 0)

	for listIdx := range detailItemLists {
		var doc *models.SourceDocument
		if listIdx < len(detailDocs) {
			doc = &detailDocs[listIdx]
		}
		for itemIdx := range detailItemLists[listIdx] {
			item := &detailItemLists[listIdx][itemIdx]
			key := normalizers.Normalize(item.ItemNo)
			if key == "" {
				continue
			}
			item.ItemNoNormalized = key
			if normalizers.IsFormatDifferent(item.ItemNo, key) {
				filename := item.SourceDocumentID
				if doc != nil && doc.Filename != "" {
					filename = doc.Filename
				}
				report.AddFormatWarning(item.ItemNo, key, filename)
			}
			if _, exists := groups[key]; !exists {
				order = append(order, key)
			}
			groups[key] = append(groups[key], occurrence{item: item, doc: doc})
		}
	}

	return groups, order
}

// mergeGroup merges all occurrences of one logical item into a single line
// item and its per-item outcome. Occurrences are merged in ascending
// document upload order; structural fields come from the first occurrence.
func (e *Engine) mergeGroup(key string, occurrences []occurrence) (*models.LineItem, models.MergeOutcome) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].uploadOrder() < occurrences[j].uploadOrder()
	})

	merged := occurrences[0].item.Clone()
	merged.ItemNoNormalized = key

	outcome := models.MergeOutcome{
		ItemNoNormalized: key,
		FieldSources:     make(map[string]string),
	}

	seenFiles := make(map[string]bool, len(occurrences))
	merged.SourceFiles = nil
	for _, occ := range occurrences {
		outcome.OriginalItemNos = append(outcome.OriginalItemNos, occ.item.ItemNo)
		outcome.DetailSources = append(outcome.DetailSources, occ.documentID())
		if file := occ.filename(); !seenFiles[file] {
			seenFiles[file] = true
			merged.SourceFiles = append(merged.SourceFiles, file)
		}
	}

	for _, field := range mergeableStringFields {
		values := make([]fieldValue, 0, len(occurrences))
		for _, occ := range occurrences {
			values = append(values, fieldValue{Value: field.get(occ.item), SourceID: occ.documentID()})
		}
		value, sourceID := e.fieldMerger.MergeField(field.name, values)
		field.set(merged, value)
		if sourceID != "" {
			outcome.FieldSources[field.name] = sourceID
		}
	}

	merged.Qty = nil
	merged.UnitCBM = nil
	for _, occ := range occurrences {
		if merged.Qty == nil && occ.item.Qty != nil {
			qty := *occ.item.Qty
			merged.Qty = &qty
			outcome.FieldSources["qty"] = occ.documentID()
		}
		if merged.UnitCBM == nil && occ.item.UnitCBM != nil {
			cbm := *occ.item.UnitCBM
			merged.UnitCBM = &cbm
			outcome.FieldSources["unit_cbm"] = occ.documentID()
		}
	}

	withPhotos := ectolinq.Filter(occurrences, func(occ occurrence) bool { return len(occ.item.Photo) > 0 })
	candidates := ectolinq.Map(withPhotos, func(occ occurrence) imageres.Candidate {
		return imageres.Candidate{SourceID: occ.documentID(), Data: occ.item.Photo}
	})
	if selection := imageres.SelectHighestResolution(candidates); selection != nil {
		merged.Photo = selection.Data
		merged.ImageSelectedFrom = selection.SourceID
		outcome.SelectedImageSource = selection.SourceID
		outcome.ImageResolution = selection.Resolution
	} else {
		merged.Photo = nil
		merged.ImageSelectedFrom = ""
	}

	merged.UpdatedAt = time.Now().UTC()

	return merged, outcome
}
