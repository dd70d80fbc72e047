package merging

import "strings"

// FieldMergeMode determines how values for a single field are combined
// when the same item appears in multiple detail documents.
type FieldMergeMode string

const (
	// ModeFillEmpty keeps the first non-empty value in upload order.
	ModeFillEmpty FieldMergeMode = "fill_empty"
	// ModeConcatenate joins distinct non-empty values in upload order.
	ModeConcatenate FieldMergeMode = "concatenate"
)

// FieldStrategy configures the merge behavior for one field.
type FieldStrategy struct {
	Mode      FieldMergeMode `json:"mode" yaml:"mode"`
	Separator string         `json:"separator,omitempty" yaml:"separator,omitempty"`
}

// StrategySet maps field names to their merge strategies. Fields without
// an entry fall back to fill_empty.
type StrategySet map[string]FieldStrategy

// DefaultStrategySet returns the baseline strategies: every field merges
// fill_empty. Vendor configuration overrides individual fields.
func DefaultStrategySet() StrategySet {
	return StrategySet{}
}

// Strategy returns the configured strategy for a field, defaulting to
// fill_empty when none is configured.
func (s StrategySet) Strategy(field string) FieldStrategy {
	if s != nil {
		if strategy, ok := s[field]; ok {
			return strategy
		}
	}
	return FieldStrategy{Mode: ModeFillEmpty}
}

// fieldValue is one candidate value for a field, tagged with the source
// document that contributed it.
type fieldValue struct {
	Value    string
	SourceID string
}

// FieldMerger combines per-field values from multiple detail documents
// according to a StrategySet.
type FieldMerger struct {
	strategies StrategySet
}

// NewFieldMerger creates a field merger. A nil strategy set uses the defaults.
func NewFieldMerger(strategies StrategySet) *FieldMerger {
	if strategies == nil {
		strategies = DefaultStrategySet()
	}
	return &FieldMerger{strategies: strategies}
}

// MergeField combines the candidate values for a field. Values must be in
// upload order. Returns the merged value and the document ID of the first
// contributing source; both are empty when no candidate is non-empty.
func (m *FieldMerger) MergeField(field string, values []fieldValue) (string, string) {
	strategy := m.strategies.Strategy(field)

	switch strategy.Mode {
	case ModeConcatenate:
		return concatenateDistinct(values, strategy.Separator)
	default:
		return firstNonEmpty(values)
	}
}

func firstNonEmpty(values []fieldValue) (string, string) {
	for _, v := range values {
		if strings.TrimSpace(v.Value) != "" {
			return v.Value, v.SourceID
		}
	}
	return "", ""
}

func concatenateDistinct(values []fieldValue, separator string) (string, string) {
	if separator == "" {
		separator = ", "
	}

	seen := make(map[string]bool, len(values))
	parts := make([]string, 0, len(values))
	sourceID := ""
	for _, v := range values {
		trimmed := strings.TrimSpace(v.Value)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		parts = append(parts, trimmed)
		if sourceID == "" {
			sourceID = v.SourceID
		}
	}

	return strings.Join(parts, separator), sourceID
}
