package amqp

import (
	"encoding/json"
	"time"

	"fishmarket/internal/core"
)

// Event kinds published on the ledger stream.
const (
	EventSaleRecorded     = "sale_recorded"
	EventSaleUpdated      = "sale_updated"
	EventSaleVoided       = "sale_voided"
	EventPurchaseRecorded = "purchase_recorded"
	EventPurchaseUpdated  = "purchase_updated"
	EventPurchaseVoided   = "purchase_voided"
)

// LedgerEventMessage is a lightweight notification that a transaction
// touched an entity's balance. Consumers fetch current state from the
// database; the message carries only identifiers.
type LedgerEventMessage struct {
	Kind          string          `json:"kind"`
	Entity        core.EntityKind `json:"entity"`
	EntityID      int64           `json:"entity_id"`
	TransactionID int64           `json:"transaction_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewLedgerEventMessage creates an event stamped with the current time.
func NewLedgerEventMessage(kind string, entity core.EntityKind, entityID, transactionID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:          kind,
		Entity:        entity,
		EntityID:      entityID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
