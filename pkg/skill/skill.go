// Package skill loads per-vendor reconciliation configuration ("skill"
// files): image exclusion rules, page offsets, field merge strategies and
// the fabric target pattern. Missing or malformed skills are never fatal;
// every lookup falls back to documented defaults.
package skill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/Gobusters/ectologger"
	"github.com/goccy/go-yaml"

	"github.com/Ramsey-B/fern/pkg/imagematch"
	"github.com/Ramsey-B/fern/pkg/merging"
)

// Definition is one vendor's parsed skill file.
type Definition struct {
	Vendor               string              `yaml:"vendor"`
	ImageMatch           *imageMatchSection  `yaml:"image_match"`
	FieldMergeStrategies merging.StrategySet `yaml:"field_merge_strategies"`
	FabricTargetPattern  string              `yaml:"fabric_target_pattern"`
}

type imageMatchSection struct {
	MinAreaPx                int                        `yaml:"min_area_px"`
	Exclusions               []imagematch.ExclusionRule `yaml:"exclusions"`
	PageOffsetDefault        *int                       `yaml:"page_offset_default"`
	PageOffsetByDocumentType map[string]int             `yaml:"page_offset_by_document_type"`
}

// Store loads and caches vendor skills from a directory of
// <vendorID>.yaml files.
type Store struct {
	logger ectologger.Logger
	dir    string

	mu    sync.RWMutex
	cache map[string]*Definition
}

// NewStore creates a skill store reading from dir
func NewStore(logger ectologger.Logger, dir string) *Store {
	return &Store{
		logger: logger,
		dir:    dir,
		cache:  make(map[string]*Definition),
	}
}

// ImageMatchConfig returns the image matcher configuration for a vendor,
// overlaying the vendor's skill on the defaults.
func (s *Store) ImageMatchConfig(ctx context.Context, vendorID string) imagematch.Config {
	config := imagematch.DefaultConfig()

	def := s.definition(ctx, vendorID)
	if def == nil || def.ImageMatch == nil {
		return config
	}

	section := def.ImageMatch
	if section.MinAreaPx > 0 {
		config.MinAreaPx = section.MinAreaPx
	}
	if len(section.Exclusions) > 0 {
		config.Exclusions = section.Exclusions
	}
	if section.PageOffsetDefault != nil {
		config.PageOffsetDefault = *section.PageOffsetDefault
	}
	if len(section.PageOffsetByDocumentType) > 0 {
		config.PageOffsetByDocType = section.PageOffsetByDocumentType
	}

	return config
}

// MergeStrategies returns the vendor's field merge strategies, or the
// defaults when the vendor has none configured.
func (s *Store) MergeStrategies(ctx context.Context, vendorID string) merging.StrategySet {
	def := s.definition(ctx, vendorID)
	if def == nil || len(def.FieldMergeStrategies) == 0 {
		return merging.DefaultStrategySet()
	}
	return def.FieldMergeStrategies
}

// FabricTargetPattern returns the vendor's compiled fabric token pattern.
// Returns nil (caller falls back to the built-in pattern) when the vendor
// has none or it does not compile.
func (s *Store) FabricTargetPattern(ctx context.Context, vendorID string) *regexp.Regexp {
	def := s.definition(ctx, vendorID)
	if def == nil || def.FabricTargetPattern == "" {
		return nil
	}

	pattern, err := regexp.Compile(def.FabricTargetPattern)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
			"pattern":   def.FabricTargetPattern,
		}).Warn("invalid fabric target pattern in skill, using default")
		return nil
	}

	return pattern
}

// definition returns the cached skill for a vendor, loading it on first
// use. Returns nil when the vendor has no usable skill file.
func (s *Store) definition(ctx context.Context, vendorID string) *Definition {
	if vendorID == "" || strings.ContainsAny(vendorID, `/\`) {
		return nil
	}

	s.mu.RLock()
	def, cached := s.cache[vendorID]
	s.mu.RUnlock()
	if cached {
		return def
	}

	def, err := s.load(vendorID)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
		}).Warn("vendor skill unavailable, using defaults")
		def = nil
	}

	s.mu.Lock()
	s.cache[vendorID] = def
	s.mu.Unlock()

	return def
}

func (s *Store) load(vendorID string) (*Definition, error) {
	path := filepath.Join(s.dir, vendorID+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill file %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse skill file %s: %w", path, err)
	}

	return &def, nil
}
