package skill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/imagematch"
	"github.com/Ramsey-B/fern/pkg/merging"
)

func newTestStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewStore(logger, dir)
}

const acmeSkill = `
vendor: acme
image_match:
  min_area_px: 20000
  page_offset_default: 0
  page_offset_by_document_type:
    seating: 2
  exclusions:
    - type: banner
      description: Footer banners
      max_area_px: 5000
field_merge_strategies:
  location:
    mode: concatenate
    separator: ", "
fabric_target_pattern: '(?i)ITEM\d+'
`

func TestStore_ImageMatchConfig(t *testing.T) {
	store := newTestStore(t, map[string]string{"acme.yaml": acmeSkill})

	config := store.ImageMatchConfig(context.Background(), "acme")

	assert.Equal(t, 20000, config.MinAreaPx)
	assert.Equal(t, 0, config.PageOffsetDefault)
	assert.Equal(t, 2, config.OffsetFor("seating"))
	require.Len(t, config.Exclusions, 1)
	assert.Equal(t, "banner", config.Exclusions[0].Type)
	require.NotNil(t, config.Exclusions[0].MaxAreaPx)
	assert.Equal(t, 5000, *config.Exclusions[0].MaxAreaPx)
}

func TestStore_ImageMatchConfig_PartialSkillKeepsDefaults(t *testing.T) {
	store := newTestStore(t, map[string]string{"acme.yaml": "vendor: acme\nimage_match:\n  min_area_px: 15000\n"})

	config := store.ImageMatchConfig(context.Background(), "acme")

	assert.Equal(t, 15000, config.MinAreaPx)
	assert.Equal(t, imagematch.DefaultPageOffset, config.PageOffsetDefault)
	require.Len(t, config.Exclusions, 1)
	assert.Equal(t, "logo", config.Exclusions[0].Type)
}

func TestStore_MissingSkillUsesDefaults(t *testing.T) {
	store := newTestStore(t, nil)

	config := store.ImageMatchConfig(context.Background(), "nobody")
	assert.Equal(t, imagematch.DefaultConfig(), config)

	assert.Equal(t, merging.DefaultStrategySet(), store.MergeStrategies(context.Background(), "nobody"))
	assert.Nil(t, store.FabricTargetPattern(context.Background(), "nobody"))
}

func TestStore_MalformedSkillUsesDefaults(t *testing.T) {
	store := newTestStore(t, map[string]string{"acme.yaml": "vendor: [unclosed"})

	config := store.ImageMatchConfig(context.Background(), "acme")
	assert.Equal(t, imagematch.DefaultConfig(), config)
}

func TestStore_MergeStrategies(t *testing.T) {
	store := newTestStore(t, map[string]string{"acme.yaml": acmeSkill})

	strategies := store.MergeStrategies(context.Background(), "acme")
	assert.Equal(t, merging.ModeConcatenate, strategies.Strategy("location").Mode)
	assert.Equal(t, ", ", strategies.Strategy("location").Separator)
	assert.Equal(t, merging.ModeFillEmpty, strategies.Strategy("description").Mode)
}

func TestStore_FabricTargetPattern(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"acme.yaml": acmeSkill,
		"bad.yaml":  "vendor: bad\nfabric_target_pattern: '(unclosed'\n",
	})

	pattern := store.FabricTargetPattern(context.Background(), "acme")
	require.NotNil(t, pattern)
	assert.True(t, pattern.MatchString("item42"))

	assert.Nil(t, store.FabricTargetPattern(context.Background(), "bad"))
}

func TestStore_CachesFirstLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vendor: acme\nimage_match:\n  min_area_px: 15000\n"), 0o644))

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store := NewStore(logger, dir)

	first := store.ImageMatchConfig(context.Background(), "acme")
	assert.Equal(t, 15000, first.MinAreaPx)

	// Rewriting the file does not affect the cached skill
	require.NoError(t, os.WriteFile(path, []byte("vendor: acme\nimage_match:\n  min_area_px: 99\n"), 0o644))
	second := store.ImageMatchConfig(context.Background(), "acme")
	assert.Equal(t, 15000, second.MinAreaPx)
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	store := newTestStore(t, nil)

	assert.Equal(t, imagematch.DefaultConfig(), store.ImageMatchConfig(context.Background(), "../acme"))
	assert.Equal(t, imagematch.DefaultConfig(), store.ImageMatchConfig(context.Background(), ""))
}
