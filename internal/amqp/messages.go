package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Op is the kind of change carried by a TransactionChanged message.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// TransactionChanged is a lightweight change notification. It carries only
// identifiers; the worker loads the current transaction from the store.
type TransactionChanged struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Op        Op        `json:"op"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionChanged stamps the message with the current time. The version
// is the change time in milliseconds so later changes compare greater.
func NewTransactionChanged(id, userID string, op Op) *TransactionChanged {
	now := time.Now().UTC()
	return &TransactionChanged{
		ID:        id,
		UserID:    userID,
		Op:        op,
		Version:   now.UnixMilli(),
		Timestamp: now,
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedFromJSON decodes and validates a message.
func TransactionChangedFromJSON(data []byte) (*TransactionChanged, error) {
	var msg TransactionChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.UserID == "" {
		return nil, fmt.Errorf("message missing id or user_id")
	}
	if msg.Op != OpUpsert && msg.Op != OpDelete {
		return nil, fmt.Errorf("unknown op %q", msg.Op)
	}
	return &msg, nil
}
