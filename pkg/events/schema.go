package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/models"
)

// EventType defines the type of event
type EventType string

const (
	// EventTypeMergeCompleted is emitted when a merge run finishes
	EventTypeMergeCompleted EventType = "merge.completed"
	// EventTypeMergeFailed is emitted when a session cannot be merged
	EventTypeMergeFailed EventType = "merge.failed"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	QuotationID   string    `json:"quotation_id"`
	VendorID      string    `json:"vendor_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// MergeCompletedEvent is emitted with the merged items and the full report
type MergeCompletedEvent struct {
	BaseEvent
	Items  []models.LineItem   `json:"items"`
	Report *models.MergeReport `json:"report"`
}

// MergeFailedEvent is emitted when a session is rejected or merging fails
type MergeFailedEvent struct {
	BaseEvent
	Error string `json:"error"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType, quotationID, vendorID string) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		QuotationID:   quotationID,
		VendorID:      vendorID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
