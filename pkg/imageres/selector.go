package imageres

// Candidate is one image proposed for a logical item
type Candidate struct {
	SourceID string
	Data     []byte
}

// Selection is the chosen image with its decoded dimensions
type Selection struct {
	SourceID   string
	Data       []byte
	Width      int
	Height     int
	Resolution int
}

// SelectHighestResolution picks the candidate with the greatest pixel count.
// Candidates with empty or undecodable data are skipped; the first candidate
// seen wins ties. Returns nil when no candidate decodes.
func SelectHighestResolution(candidates []Candidate) *Selection {
	var best *Selection
	bestResolution := 0

	for _, c := range candidates {
		if len(c.Data) == 0 {
			continue
		}

		width, height := Dimensions(c.Data)
		resolution := Resolution(width, height)
		if resolution > bestResolution {
			bestResolution = resolution
			best = &Selection{
				SourceID:   c.SourceID,
				Data:       c.Data,
				Width:      width,
				Height:     height,
				Resolution: resolution,
			}
		}
	}

	return best
}
