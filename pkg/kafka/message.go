package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// TypeSessionParsed is the message type the upstream document parser emits
// once every document in a quotation session has been parsed.
const TypeSessionParsed = "session.parsed"

// ParsedSessionMessage is the input payload for one merge run: the parsed
// documents of a quotation session with their line items, quantity records
// and extracted page images.
type ParsedSessionMessage struct {
	Type        string    `json:"type"`
	QuotationID string    `json:"quotation_id"`
	VendorID    string    `json:"vendor_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`

	Documents       []models.SourceDocument `json:"documents"`
	QuantityRecords []models.QuantityRecord `json:"quantity_records,omitempty"`

	// Line items and page images keyed by source document ID
	Items  map[string][]models.LineItem        `json:"items"`
	Images map[string][]models.ImageDescriptor `json:"images,omitempty"`
}

// Validate checks the structural requirements of a parsed session
func (m *ParsedSessionMessage) Validate() error {
	if m.QuotationID == "" {
		return fmt.Errorf("parsed session message missing quotation_id")
	}
	if len(m.Documents) == 0 {
		return fmt.Errorf("parsed session message has no documents")
	}
	return nil
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Session *ParsedSessionMessage
}

// ParseSession parses the message value as a parsed session payload
func (m *IncomingMessage) ParseSession() error {
	var session ParsedSessionMessage
	if err := json.Unmarshal(m.Value, &session); err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return err
	}
	m.Session = &session
	return nil
}

// IsSessionParsed checks whether the message carries a parsed session,
// preferring the type header over payload inspection.
func (m *IncomingMessage) IsSessionParsed() bool {
	if msgType := m.Headers["type"]; msgType != "" {
		return msgType == TypeSessionParsed
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(m.Value, &probe); err != nil {
		return false
	}
	return probe.Type == TypeSessionParsed
}

// GetQuotationID returns the quotation ID from the parsed payload, falling
// back to the header, then the message key.
func (m *IncomingMessage) GetQuotationID() string {
	if m.Session != nil && m.Session.QuotationID != "" {
		return m.Session.QuotationID
	}
	if id := m.Headers["quotation_id"]; id != "" {
		return id
	}
	return m.Key
}

// GetVendorID returns the vendor ID from the parsed payload or the header
func (m *IncomingMessage) GetVendorID() string {
	if m.Session != nil && m.Session.VendorID != "" {
		return m.Session.VendorID
	}
	return m.Headers["vendor_id"]
}
