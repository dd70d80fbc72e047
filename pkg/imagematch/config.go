// Package imagematch assigns extracted page images to line items using page
// proximity and pixel size only. No content understanding is involved; the
// same inputs always produce the same assignment.
package imagematch

// DefaultMinAreaPx is the area threshold separating product photos from
// logos and icons when no vendor configuration is supplied.
const DefaultMinAreaPx = 10000

// DefaultPageOffset is how many pages ahead of an item's source page its
// product image is expected, absent vendor configuration.
const DefaultPageOffset = 1

// ExclusionRule filters out images that are never product photos (logos,
// material swatches, hardware details). A rule matches when any of its
// configured bounds is satisfied; unset bounds are ignored.
type ExclusionRule struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`

	// Matches when the image area is at most this many pixels
	MaxAreaPx *int `json:"max_area_px,omitempty" yaml:"max_area_px"`

	// Matches when both dimensions are within these bounds; both must be set
	MaxWidthPx  *int `json:"max_width_px,omitempty" yaml:"max_width_px"`
	MaxHeightPx *int `json:"max_height_px,omitempty" yaml:"max_height_px"`

	// Matches when imageArea/pageArea is at most this ratio; requires a page area
	MaxAreaRatio *float64 `json:"max_area_ratio,omitempty" yaml:"max_area_ratio"`
}

// Config is the read-only matcher configuration, typically derived from a
// vendor skill file. The zero value is not useful; use DefaultConfig.
type Config struct {
	MinAreaPx         int
	Exclusions        []ExclusionRule
	PageOffsetDefault int

	// Per document-type page offsets (e.g. seating layouts keep the photo on
	// the item's own page).
	PageOffsetByDocType map[string]int
}

// DefaultConfig returns the configuration used when no vendor skill applies:
// a single logo exclusion and the standard one-page-ahead offset.
func DefaultConfig() Config {
	maxArea := DefaultMinAreaPx
	return Config{
		MinAreaPx: DefaultMinAreaPx,
		Exclusions: []ExclusionRule{
			{
				Type:        "logo",
				Description: "Small images (logos/icons)",
				MaxAreaPx:   &maxArea,
			},
		},
		PageOffsetDefault: DefaultPageOffset,
	}
}

// OffsetFor resolves the target page offset for a document type tag
func (c Config) OffsetFor(documentType string) int {
	if offset, ok := c.PageOffsetByDocType[documentType]; ok {
		return offset
	}
	return c.PageOffsetDefault
}
