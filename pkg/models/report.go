package models

import (
	"time"

	"github.com/google/uuid"
)

// MergeStatus classifies a logical item's membership across documents
type MergeStatus string

const (
	// MergeStatusMatched means the item appears in both a detail document and the quantity summary
	MergeStatusMatched MergeStatus = "matched"
	// MergeStatusUnmatched means the item appears only in detail documents
	MergeStatusUnmatched MergeStatus = "unmatched"
	// MergeStatusQuantityOnly means the item appears only in the quantity summary
	MergeStatusQuantityOnly MergeStatus = "quantity_only"
)

// FormatWarning flags two item number spellings that normalize identically
// but differ literally, signalling upstream data-entry inconsistency.
type FormatWarning struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	SourceFile string `json:"source_file"`
}

// MergeOutcome records how one logical item was reconciled. Created once per
// merge run and never mutated afterwards.
type MergeOutcome struct {
	ItemNoNormalized string      `json:"item_no_normalized"`
	OriginalItemNos  []string    `json:"original_item_nos"`
	Status           MergeStatus `json:"status"`

	// Provenance
	QuantitySource string   `json:"quantity_source,omitempty"`
	DetailSources  []string `json:"detail_sources,omitempty"`

	// Field name -> source document ID for every merged field
	FieldSources map[string]string `json:"field_sources,omitempty"`

	// Image selection
	SelectedImageSource string `json:"selected_image_source,omitempty"`
	ImageResolution     int    `json:"image_resolution,omitempty"`
}

// MergeReport aggregates one merge run: sources, per-item outcomes, counts
// and warnings. Built incrementally during the merge call, then frozen.
type MergeReport struct {
	ID          string `json:"id"`
	QuotationID string `json:"quotation_id"`

	QuantitySummaryDocID    string   `json:"quantity_summary_doc_id,omitempty"`
	QuantitySummaryFilename string   `json:"quantity_summary_filename,omitempty"`
	DetailSpecDocIDs        []string `json:"detail_spec_doc_ids"`
	DetailSpecFilenames     []string `json:"detail_spec_filenames"`

	TotalItems        int `json:"total_items"`
	MatchedItems      int `json:"matched_items"`
	UnmatchedItems    int `json:"unmatched_items"`
	QuantityOnlyItems int `json:"quantity_only_items"`

	Outcomes []MergeOutcome `json:"outcomes"`

	FormatWarnings []FormatWarning `json:"format_warnings,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`

	CreatedAt        time.Time `json:"created_at"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
}

// NewMergeReport creates an empty report for one merge run
func NewMergeReport(quotationID string) *MergeReport {
	return &MergeReport{
		ID:          uuid.New().String(),
		QuotationID: quotationID,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddWarning appends a free-text warning
func (r *MergeReport) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// AddFormatWarning appends an item number format warning
func (r *MergeReport) AddFormatWarning(original, normalized, sourceFile string) {
	r.FormatWarnings = append(r.FormatWarnings, FormatWarning{
		Original:   original,
		Normalized: normalized,
		SourceFile: sourceFile,
	})
}

// MatchRate returns the matched percentage, 0 when the report is empty
func (r *MergeReport) MatchRate() float64 {
	if r.TotalItems == 0 {
		return 0
	}
	return float64(r.MatchedItems) / float64(r.TotalItems) * 100
}

// UpdateStatistics recomputes the aggregate counts from the outcomes
func (r *MergeReport) UpdateStatistics() {
	r.TotalItems = len(r.Outcomes)
	r.MatchedItems = 0
	r.UnmatchedItems = 0
	r.QuantityOnlyItems = 0
	for _, outcome := range r.Outcomes {
		switch outcome.Status {
		case MergeStatusMatched:
			r.MatchedItems++
		case MergeStatusUnmatched:
			r.UnmatchedItems++
		case MergeStatusQuantityOnly:
			r.QuantityOnlyItems++
		}
	}
}
