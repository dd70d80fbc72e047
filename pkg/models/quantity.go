package models

import "github.com/Ramsey-B/fern/pkg/normalizers"

// QuantityRecord is one row of a quantity summary document: an item number
// and its authoritative total quantity. Immutable after construction.
type QuantityRecord struct {
	ItemNoRaw        string   `json:"item_no_raw"`
	ItemNoNormalized string   `json:"item_no_normalized"`
	TotalQty         float64  `json:"total_qty"`
	UOM              string   `json:"uom,omitempty"`
	SourceDocumentID string   `json:"source_document_id"`
	SourcePage       int      `json:"source_page,omitempty"`
}

// NewQuantityRecord creates a quantity record, computing the normalized item
// number at construction time.
func NewQuantityRecord(itemNoRaw string, totalQty float64, uom, sourceDocumentID string) QuantityRecord {
	return QuantityRecord{
		ItemNoRaw:        itemNoRaw,
		ItemNoNormalized: normalizers.Normalize(itemNoRaw),
		TotalQty:         totalQty,
		UOM:              uom,
		SourceDocumentID: sourceDocumentID,
	}
}

// Normalized returns the normalized item number, computing it lazily when the
// record was built without one.
func (r QuantityRecord) Normalized() string {
	if r.ItemNoNormalized != "" {
		return r.ItemNoNormalized
	}
	return normalizers.Normalize(r.ItemNoRaw)
}
