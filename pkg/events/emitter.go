// Package events handles event emission for merge run outcomes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/tracing"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Emitter publishes merge lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMergeCompleted emits a merge.completed event carrying the merged items
// and the full merge report.
func (e *Emitter) EmitMergeCompleted(ctx context.Context, quotationID, vendorID string, items []models.LineItem, report *models.MergeReport) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMergeCompleted")
	defer span.End()

	event := MergeCompletedEvent{
		BaseEvent: NewBaseEvent(EventTypeMergeCompleted, quotationID, vendorID),
		Items:     items,
		Report:    report,
	}

	if err := e.producer.PublishEvent(ctx, string(event.EventType), quotationID, vendorID, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit merge.completed event")
		return err
	}

	return nil
}

// EmitMergeFailed emits a merge.failed event
func (e *Emitter) EmitMergeFailed(ctx context.Context, quotationID, vendorID string, cause error) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMergeFailed")
	defer span.End()

	event := MergeFailedEvent{
		BaseEvent: NewBaseEvent(EventTypeMergeFailed, quotationID, vendorID),
		Error:     cause.Error(),
	}

	if err := e.producer.PublishEvent(ctx, string(event.EventType), quotationID, vendorID, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit merge.failed event")
		return err
	}

	return nil
}
