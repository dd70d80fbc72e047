package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func sessionJSON(t *testing.T, session ParsedSessionMessage) []byte {
	t.Helper()
	data, err := json.Marshal(session)
	require.NoError(t, err)
	return data
}

func TestIncomingMessage_ParseSession(t *testing.T) {
	session := ParsedSessionMessage{
		Type:        TypeSessionParsed,
		QuotationID: "quote-1",
		VendorID:    "acme",
		Documents: []models.SourceDocument{
			{ID: "doc-1", Filename: "casegoods.pdf", Role: models.RoleDetailSpec},
		},
		Items: map[string][]models.LineItem{
			"doc-1": {{ID: "li-1", ItemNo: "A-001", SourceDocumentID: "doc-1"}},
		},
	}

	msg := &IncomingMessage{Value: sessionJSON(t, session)}

	require.NoError(t, msg.ParseSession())
	require.NotNil(t, msg.Session)
	assert.Equal(t, "quote-1", msg.Session.QuotationID)
	assert.Len(t, msg.Session.Items["doc-1"], 1)
}

func TestIncomingMessage_ParseSession_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
	}{
		{"not json", []byte("not json")},
		{"missing quotation id", []byte(`{"type":"session.parsed","documents":[{"id":"d1"}]}`)},
		{"no documents", []byte(`{"type":"session.parsed","quotation_id":"q1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &IncomingMessage{Value: tt.value}
			assert.Error(t, msg.ParseSession())
			assert.Nil(t, msg.Session)
		})
	}
}

func TestIncomingMessage_IsSessionParsed(t *testing.T) {
	byHeader := &IncomingMessage{Headers: map[string]string{"type": TypeSessionParsed}}
	assert.True(t, byHeader.IsSessionParsed())

	wrongHeader := &IncomingMessage{Headers: map[string]string{"type": "other"}, Value: []byte(`{"type":"session.parsed"}`)}
	assert.False(t, wrongHeader.IsSessionParsed())

	byPayload := &IncomingMessage{Headers: map[string]string{}, Value: []byte(`{"type":"session.parsed"}`)}
	assert.True(t, byPayload.IsSessionParsed())

	garbage := &IncomingMessage{Headers: map[string]string{}, Value: []byte("nope")}
	assert.False(t, garbage.IsSessionParsed())
}

func TestIncomingMessage_Identifiers(t *testing.T) {
	msg := &IncomingMessage{
		Key:     "key-1",
		Headers: map[string]string{"quotation_id": "q-header", "vendor_id": "v-header"},
	}
	assert.Equal(t, "q-header", msg.GetQuotationID())
	assert.Equal(t, "v-header", msg.GetVendorID())

	msg.Session = &ParsedSessionMessage{QuotationID: "q-payload", VendorID: "v-payload"}
	assert.Equal(t, "q-payload", msg.GetQuotationID())
	assert.Equal(t, "v-payload", msg.GetVendorID())

	bare := &IncomingMessage{Key: "key-2", Headers: map[string]string{}}
	assert.Equal(t, "key-2", bare.GetQuotationID())
}
