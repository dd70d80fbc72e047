// Package processor consumes parsed quotation sessions and runs the
// reconciliation pipeline: per-document image matching, photo assignment,
// cross-document merge, and merge event emission.
package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/tracing"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/imagematch"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/merging"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/skill"
)

// defaultWorkerCount bounds concurrent per-document image matching
const defaultWorkerCount = 4

// Emitter publishes merge run outcomes
type Emitter interface {
	EmitMergeCompleted(ctx context.Context, quotationID, vendorID string, items []models.LineItem, report *models.MergeReport) error
	EmitMergeFailed(ctx context.Context, quotationID, vendorID string, cause error) error
}

var _ Emitter = (*events.Emitter)(nil)

// Processor orchestrates one merge run per parsed session message
type Processor struct {
	logger      ectologger.Logger
	skills      *skill.Store
	emitter     Emitter
	workerCount int
}

// NewProcessor creates a session processor
func NewProcessor(logger ectologger.Logger, skills *skill.Store, emitter Emitter, workerCount int) *Processor {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &Processor{
		logger:      logger,
		skills:      skills,
		emitter:     emitter,
		workerCount: workerCount,
	}
}

// HandleMessage is the kafka.MessageHandler entry point
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	if msg.Session == nil {
		return fmt.Errorf("message has no parsed session payload")
	}
	return p.ProcessSession(ctx, msg.Session)
}

// ProcessSession runs the full reconciliation pipeline for one session.
// Validation failures are terminal: a merge.failed event is emitted and no
// error is returned so the message is not retried.
func (p *Processor) ProcessSession(ctx context.Context, session *kafka.ParsedSessionMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessSession")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"quotation_id": session.QuotationID,
		"vendor_id":    session.VendorID,
		"documents":    len(session.Documents),
	})

	qtyDoc, detailDocs, err := merging.ValidateMergeRequest(session.Documents)
	if err != nil {
		log.WithError(err).Warn("Session rejected")
		return p.emitter.EmitMergeFailed(ctx, session.QuotationID, session.VendorID, err)
	}

	detailItemLists := p.matchSessionImages(ctx, session, detailDocs)

	engine := merging.NewEngine(
		p.logger,
		p.skills.MergeStrategies(ctx, session.VendorID),
		p.skills.FabricTargetPattern(ctx, session.VendorID),
	)

	items, report := engine.MergeDocuments(ctx, session.QuantityRecords, detailItemLists, qtyDoc, detailDocs, session.QuotationID)

	log.WithFields(map[string]any{
		"total_items":   report.TotalItems,
		"matched_items": report.MatchedItems,
	}).Info("Session processed")

	return p.emitter.EmitMergeCompleted(ctx, session.QuotationID, session.VendorID, items, report)
}

// matchSessionImages runs the image matcher for every detail document and
// applies the resulting photo assignments. Documents are independent, so
// matching runs on a bounded worker pool; each worker only touches its own
// document's item slice.
func (p *Processor) matchSessionImages(
	ctx context.Context,
	session *kafka.ParsedSessionMessage,
	detailDocs []models.SourceDocument,
) [][]models.LineItem {
	matcher := imagematch.NewMatcher(p.logger, p.skills.ImageMatchConfig(ctx, session.VendorID))

	detailItemLists := make([][]models.LineItem, len(detailDocs))
	for i, doc := range detailDocs {
		items := session.Items[doc.ID]
		detailItemLists[i] = make([]models.LineItem, len(items))
		copy(detailItemLists[i], items)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workerCount)

	for i := range detailDocs {
		images := session.Images[detailDocs[i].ID]
		if len(images) == 0 || len(detailItemLists[i]) == 0 {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(doc models.SourceDocument, items []models.LineItem, images []models.ImageDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()

			assignments := matcher.MatchForDocument(ctx, images, items, doc)
			applyPhotoAssignments(items, images, assignments)
		}(detailDocs[i], detailItemLists[i], images)
	}

	wg.Wait()

	return detailItemLists
}

// applyPhotoAssignments copies each assigned image's bytes onto its item
func applyPhotoAssignments(items []models.LineItem, images []models.ImageDescriptor, assignments map[int]string) {
	if len(assignments) == 0 {
		return
	}

	imagesByIndex := make(map[int]models.ImageDescriptor, len(images))
	for _, img := range images {
		imagesByIndex[img.Index] = img
	}

	for imageIndex, itemID := range assignments {
		img, ok := imagesByIndex[imageIndex]
		if !ok || len(img.Data) == 0 {
			continue
		}
		for i := range items {
			if items[i].ID == itemID {
				items[i].Photo = img.Data
				break
			}
		}
	}
}
