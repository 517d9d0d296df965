package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEventMessage announces a ledger mutation. It carries ids only;
// consumers that need the full record load it from the store.
type TransactionEventMessage struct {
	AccountID     string    `json:"account_id"`
	TransactionID string    `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(accountID, transactionID, action string) *TransactionEventMessage {
	return &TransactionEventMessage{
		AccountID:     accountID,
		TransactionID: transactionID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes.
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
