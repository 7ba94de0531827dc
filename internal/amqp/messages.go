package amqp

import (
	"encoding/json"
	"time"
)

// TablePublishedMessage announces that a maintenance table snapshot exists
// for an association month. It carries only the coordinates, the worker
// fetches the rows from the database.
type TablePublishedMessage struct {
	AssociationID string    `json:"association_id"`
	Month         string    `json:"month"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTablePublishedMessage(associationID, month string) *TablePublishedMessage {
	return &TablePublishedMessage{
		AssociationID: associationID,
		Month:         month,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TablePublishedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TablePublishedMessageFromJSON(data []byte) (*TablePublishedMessage, error) {
	var msg TablePublishedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
