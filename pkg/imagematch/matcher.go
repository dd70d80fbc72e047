package imagematch

import (
	"context"
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/tracing"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Matcher assigns images to line items by page and size. Safe for concurrent
// use across documents: configuration is immutable and each Match call keeps
// its own state.
type Matcher struct {
	logger ectologger.Logger
	config Config
}

// NewMatcher creates a matcher with the given configuration
func NewMatcher(logger ectologger.Logger, config Config) *Matcher {
	return &Matcher{
		logger: logger,
		config: config,
	}
}

// MatchForDocument matches with the page offset resolved from the document's
// type tag.
func (m *Matcher) MatchForDocument(ctx context.Context, images []models.ImageDescriptor, items []models.LineItem, doc models.SourceDocument) map[int]string {
	return m.Match(ctx, images, items, m.config.OffsetFor(doc.DocumentType))
}

// Match assigns each image to at most one item using the deterministic
// page+size algorithm: items on page N are paired with the largest qualifying
// unused image on page N+targetPageOffset. The returned map is image index to
// item ID. Items with no qualifying image are skipped with a log only; Match
// never fails.
func (m *Matcher) Match(ctx context.Context, images []models.ImageDescriptor, items []models.LineItem, targetPageOffset int) map[int]string {
	ctx, span := tracing.StartSpan(ctx, "imagematch.Matcher.Match")
	defer span.End()

	mapping := make(map[int]string)
	if len(images) == 0 || len(items) == 0 {
		return mapping
	}

	log := m.logger.WithContext(ctx).WithFields(map[string]any{
		"item_count":  len(items),
		"image_count": len(images),
		"page_offset": targetPageOffset,
	})
	log.Debug("Starting deterministic image matching")

	// Index candidate images by page, dropping excluded and undersized ones
	imagesByPage := make(map[int][]models.ImageDescriptor)
	excludedCount := 0
	for _, img := range images {
		if excluded, reason := m.shouldExclude(img, nil); excluded {
			log.WithFields(map[string]any{"image_index": img.Index, "reason": reason}).Debug("Excluded image")
			excludedCount++
			continue
		}
		if img.Area() < m.config.MinAreaPx {
			log.WithFields(map[string]any{"image_index": img.Index, "area": img.Area()}).Debug("Image below minimum product area")
			excludedCount++
			continue
		}
		imagesByPage[img.Page] = append(imagesByPage[img.Page], img)
	}
	if excludedCount > 0 {
		log.WithFields(map[string]any{"excluded": excludedCount}).Debug("Filtered images before matching")
	}

	// Largest candidates first within each page
	for page := range imagesByPage {
		candidates := imagesByPage[page]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Area() > candidates[j].Area()
		})
	}

	// Index items by source page, keeping first-encounter page order so the
	// assignment is deterministic
	itemsByPage := make(map[int][]models.LineItem)
	pageOrder := make([]int, 0)
	for _, item := range items {
		page := item.SourcePage
		if page == 0 {
			page = 1
		}
		if _, seen := itemsByPage[page]; !seen {
			pageOrder = append(pageOrder, page)
		}
		itemsByPage[page] = append(itemsByPage[page], item)
	}

	used := make(map[int]bool)
	for _, sourcePage := range pageOrder {
		targetPage := sourcePage + targetPageOffset
		candidates := imagesByPage[targetPage]
		if len(candidates) == 0 {
			log.WithFields(map[string]any{
				"source_page": sourcePage,
				"target_page": targetPage,
				"items":       len(itemsByPage[sourcePage]),
			}).Warn("No candidate images on target page")
			continue
		}

		for _, item := range itemsByPage[sourcePage] {
			assigned := false
			for _, img := range candidates {
				if used[img.Index] {
					continue
				}
				mapping[img.Index] = item.ID
				used[img.Index] = true
				assigned = true
				log.WithFields(map[string]any{
					"item_no":     item.ItemNo,
					"image_index": img.Index,
					"area":        img.Area(),
				}).Debug("Assigned image to item")
				break
			}
			if !assigned {
				log.WithFields(map[string]any{"item_no": item.ItemNo, "target_page": targetPage}).Warn("No available image for item")
			}
		}
	}

	log.WithFields(map[string]any{"assigned": len(mapping)}).Info("Deterministic image matching complete")
	return mapping
}

// shouldExclude evaluates the exclusion rules in order; the first matching
// rule wins and its reason is returned. Ratio rules only apply when a page
// area is supplied.
func (m *Matcher) shouldExclude(img models.ImageDescriptor, pageArea *int) (bool, string) {
	area := img.Area()

	for _, rule := range m.config.Exclusions {
		if rule.MaxAreaPx != nil && area <= *rule.MaxAreaPx {
			return true, fmt.Sprintf("%s: area %dpx <= %dpx", rule.Type, area, *rule.MaxAreaPx)
		}
		if rule.MaxWidthPx != nil && rule.MaxHeightPx != nil &&
			img.Width <= *rule.MaxWidthPx && img.Height <= *rule.MaxHeightPx {
			return true, fmt.Sprintf("%s: size %dx%d within %dx%d", rule.Type, img.Width, img.Height, *rule.MaxWidthPx, *rule.MaxHeightPx)
		}
		if rule.MaxAreaRatio != nil && pageArea != nil && *pageArea > 0 {
			ratio := float64(area) / float64(*pageArea)
			if ratio <= *rule.MaxAreaRatio {
				return true, fmt.Sprintf("%s: ratio %.3f <= %.3f", rule.Type, ratio, *rule.MaxAreaRatio)
			}
		}
	}

	return false, ""
}
