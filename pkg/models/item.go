// Package models defines the data model for cross-document BOQ reconciliation
package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemCategory classifies a line item as a primary furniture piece or an accessory
type ItemCategory string

const (
	// CategoryFurniture is a primary furniture piece (casegoods, seating, lighting...)
	CategoryFurniture ItemCategory = "furniture"
	// CategoryFabric is an accessory item (fabric/leather/vinyl) tied to furniture pieces
	CategoryFabric ItemCategory = "fabric"
	// CategoryUnknown is used when the upstream parser supplied no category
	CategoryUnknown ItemCategory = ""
)

// CategoryFromCode maps the upstream parser's numeric category codes to an
// ItemCategory. Codes 1-4 are furniture classes, 5 is fabric.
func CategoryFromCode(code int) ItemCategory {
	switch {
	case code == 5:
		return CategoryFabric
	case code >= 1 && code <= 4:
		return CategoryFurniture
	default:
		return CategoryUnknown
	}
}

// LineItem is one row of a bill-of-quantities as parsed from a source document.
// Fields are mutated only by the merge engine; upstream parsing produces the
// item and leaves ItemNoNormalized empty.
type LineItem struct {
	ID string `json:"id"`

	No               int          `json:"no"`
	ItemNo           string       `json:"item_no"`
	ItemNoNormalized string       `json:"item_no_normalized,omitempty"`
	Description      string       `json:"description"`
	Photo            []byte       `json:"photo,omitempty"`
	Dimension        string       `json:"dimension,omitempty"`
	Qty              *float64     `json:"qty,omitempty"`
	UOM              string       `json:"uom,omitempty"`
	UnitCBM          *float64     `json:"unit_cbm,omitempty"`
	Note             string       `json:"note,omitempty"`
	Location         string       `json:"location,omitempty"`
	MaterialsSpecs   string       `json:"materials_specs,omitempty"`
	Brand            string       `json:"brand,omitempty"`
	Category         ItemCategory `json:"category,omitempty"`

	SourceDocumentID string `json:"source_document_id"`
	SourcePage       int    `json:"source_page,omitempty"`

	// Populated by the merge engine
	SourceFiles       []string    `json:"source_files,omitempty"`
	MergeStatus       MergeStatus `json:"merge_status,omitempty"`
	QtyFromSummary    bool        `json:"qty_from_summary,omitempty"`
	ImageSelectedFrom string      `json:"image_selected_from,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLineItem creates a line item with a generated ID and timestamps
func NewLineItem(itemNo, description, sourceDocumentID string) *LineItem {
	now := time.Now().UTC()
	return &LineItem{
		ID:               uuid.New().String(),
		ItemNo:           itemNo,
		Description:      description,
		SourceDocumentID: sourceDocumentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy of the item
func (i *LineItem) Clone() *LineItem {
	c := *i
	if i.Photo != nil {
		c.Photo = make([]byte, len(i.Photo))
		copy(c.Photo, i.Photo)
	}
	if i.Qty != nil {
		qty := *i.Qty
		c.Qty = &qty
	}
	if i.UnitCBM != nil {
		cbm := *i.UnitCBM
		c.UnitCBM = &cbm
	}
	if i.SourceFiles != nil {
		c.SourceFiles = append([]string(nil), i.SourceFiles...)
	}
	return &c
}
