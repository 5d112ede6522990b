package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryStage string

const (
	// EntryStageIdle is reported when the user has no session; it is never stored
	EntryStageIdle                EntryStage = "idle"
	EntryStageAwaitingCategory    EntryStage = "awaiting_category"
	EntryStageAwaitingAmount      EntryStage = "awaiting_amount"
	EntryStageAwaitingDescription EntryStage = "awaiting_description"
)

// EntrySession holds the partially built transaction for one user's entry dialogue
type EntrySession struct {
	UserID      string
	Stage       EntryStage
	Kind        TransactionKind
	Category    string
	Amount      decimal.Decimal
	Description string
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// SessionRepository stores at most one entry session per user
type SessionRepository interface {
	Get(userID string) (*EntrySession, bool)
	Put(session *EntrySession)
	Delete(userID string)
}
