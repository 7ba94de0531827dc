package amqp

import (
	"testing"
	"time"
)

func TestNewTablePublishedMessage(t *testing.T) {
	msg := NewTablePublishedMessage("asoc-1", "ianuarie 2025")

	if msg.AssociationID != "asoc-1" {
		t.Errorf("NewTablePublishedMessage() AssociationID = %v, want asoc-1", msg.AssociationID)
	}
	if msg.Month != "ianuarie 2025" {
		t.Errorf("NewTablePublishedMessage() Month = %v, want ianuarie 2025", msg.Month)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewTablePublishedMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewTablePublishedMessage() Timestamp should be recent")
	}
}

func TestTablePublishedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &TablePublishedMessage{
		AssociationID: "asoc-1",
		Month:         "februarie 2025",
		Timestamp:     timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := TablePublishedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("TablePublishedMessageFromJSON() error = %v", err)
	}

	if parsedMsg.AssociationID != msg.AssociationID {
		t.Errorf("Parsed AssociationID = %v, want %v", parsedMsg.AssociationID, msg.AssociationID)
	}
	if parsedMsg.Month != msg.Month {
		t.Errorf("Parsed Month = %v, want %v", parsedMsg.Month, msg.Month)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestTablePublishedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"association_id": 42, "month": 1}`)

	if _, err := TablePublishedMessageFromJSON(invalidJSON); err == nil {
		t.Error("TablePublishedMessageFromJSON() should fail with invalid JSON")
	}
}
