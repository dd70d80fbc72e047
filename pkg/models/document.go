package models

import "time"

// DocumentRole identifies what a source document contributes to a merge
type DocumentRole string

const (
	// RoleQuantitySummary is a document listing only item numbers and total quantities
	RoleQuantitySummary DocumentRole = "quantity_summary"
	// RoleDetailSpec is a furniture detail specification document
	RoleDetailSpec DocumentRole = "detail_spec"
	// RoleFabricSpec is a fabric/leather/vinyl specification document
	RoleFabricSpec DocumentRole = "fabric_spec"
	// RoleUnknown is used before role detection has run
	RoleUnknown DocumentRole = "unknown"
)

// SourceDocument describes one uploaded document that contributed parsed data
type SourceDocument struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Role     DocumentRole `json:"role"`

	// DocumentType is a vendor-specific layout tag used to resolve the image
	// matcher's page offset (e.g. "casegoods", "seating").
	DocumentType string `json:"document_type,omitempty"`

	// UploadOrder decides field precedence when multiple detail documents
	// describe the same item: earlier uploads win.
	UploadOrder int `json:"upload_order"`

	VendorID   string    `json:"vendor_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// ImageDescriptor is the spatial metadata of one image extracted from a
// document page, as supplied by the upstream parser.
type ImageDescriptor struct {
	Data   []byte `json:"data,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Page   int    `json:"page"`
	Index  int    `json:"index"`
}

// Area returns the pixel area of the image
func (d ImageDescriptor) Area() int {
	return d.Width * d.Height
}
