package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"budgetbuddy/internal/core"
)

const messageVersion = 1

var errMissingOwner = errors.New("balance changed message without userEmail")

// BalanceChangedMessage is the wire form of core.BalanceChanged. It only
// names the owner; the worker recomputes the balance from the store.
type BalanceChangedMessage struct {
	Version       int       `json:"version"`
	UserEmail     string    `json:"userEmail"`
	TransactionID string    `json:"transactionId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewBalanceChangedMessage(evt core.BalanceChanged) *BalanceChangedMessage {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &BalanceChangedMessage{
		Version:       messageVersion,
		UserEmail:     evt.OwnerEmail,
		TransactionID: evt.TransactionID,
		Timestamp:     ts,
	}
}

func (m *BalanceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Event converts the message back to the domain event.
func (m *BalanceChangedMessage) Event() core.BalanceChanged {
	return core.BalanceChanged{
		OwnerEmail:    m.UserEmail,
		TransactionID: m.TransactionID,
		Timestamp:     m.Timestamp,
	}
}

// BalanceChangedMessageFromJSON decodes and validates a delivery body.
func BalanceChangedMessageFromJSON(data []byte) (*BalanceChangedMessage, error) {
	var msg BalanceChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.UserEmail) == "" {
		return nil, errMissingOwner
	}
	return &msg, nil
}
