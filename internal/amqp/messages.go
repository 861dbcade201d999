package amqp

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// TransactionSnapshot carries the fields needed to export a row when the
// transaction can no longer be read back, e.g. after a delete.
type TransactionSnapshot struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date"`
}

// TransactionEvent announces a write to a transaction. The worker reloads the
// current row by id and only falls back to the snapshot when it is gone.
type TransactionEvent struct {
	Type          EventType           `json:"type"`
	TransactionID int64               `json:"transaction_id"`
	UserID        string              `json:"user_id"`
	Snapshot      TransactionSnapshot `json:"snapshot"`
	Timestamp     time.Time           `json:"timestamp"`
}

func NewTransactionEvent(t EventType, id int64, userID string, snap TransactionSnapshot) *TransactionEvent {
	return &TransactionEvent{
		Type:          t,
		TransactionID: id,
		UserID:        userID,
		Snapshot:      snap,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
