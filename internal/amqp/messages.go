package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds routed through the export queue.
const (
	KindExport = "export"
	KindDelete = "delete"
)

// ExpenseMessage is a lightweight change notification for the export worker.
// It carries only the ID and number; the worker fetches the full record from
// the database.
type ExpenseMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportMessage creates a message asking the worker to export a record.
func NewExportMessage(id int64, number string) *ExpenseMessage {
	return &ExpenseMessage{
		Kind:      KindExport,
		ID:        id,
		Number:    number,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a message asking the worker to remove an exported
// row. The number identifies the row on the ledger side since the database
// record is already gone.
func NewDeleteMessage(id int64, number string) *ExpenseMessage {
	return &ExpenseMessage{
		Kind:      KindDelete,
		ID:        id,
		Number:    number,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func FromJSON(data []byte) (*ExpenseMessage, error) {
	var msg ExpenseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
