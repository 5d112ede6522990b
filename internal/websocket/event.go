package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeStarted   EventType = "started"
	EventTypeCancelled EventType = "cancelled"
	EventTypeExported  EventType = "exported"
	EventTypeSnapshot  EventType = "snapshot"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeSession     EntityType = "session"
	EntityTypeStatement   EntityType = "statement"
	EntityTypeLedger      EntityType = "ledger"
)

// Event is one message of a user's ledger feed.
// Seq is stamped by the hub: it grows by one per event published to the user,
// and a snapshot carries the seq of the last event it already reflects.
type Event struct {
	Type      string      `json:"type"`
	Entity    EntityType  `json:"entity"`
	Seq       uint64      `json:"seq"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// LedgerSnapshotPayload is the first message a subscriber receives
type LedgerSnapshotPayload struct {
	Transactions []*domain.Transaction `json:"transactions"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(transaction *domain.Transaction) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, transaction)
}

// SessionStarted creates a session.started event
func SessionStarted(kind domain.TransactionKind) Event {
	return NewEvent(EventTypeStarted, EntityTypeSession, map[string]string{"kind": string(kind)})
}

// SessionCancelled creates a session.cancelled event
func SessionCancelled(stage domain.EntryStage) Event {
	return NewEvent(EventTypeCancelled, EntityTypeSession, map[string]string{"stage": string(stage)})
}

// StatementExported creates a statement.exported event
func StatementExported(statement interface{}) Event {
	return NewEvent(EventTypeExported, EntityTypeStatement, statement)
}

// LedgerSnapshot creates a ledger.snapshot event with the user's recent history
func LedgerSnapshot(transactions []*domain.Transaction) Event {
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	return NewEvent(EventTypeSnapshot, EntityTypeLedger, LedgerSnapshotPayload{Transactions: transactions})
}
