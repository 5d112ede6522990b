package service

import (
	"strings"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultHistorySize is how many entries the history view shows
const DefaultHistorySize = 5

// LedgerService is the only writer of the ledger store
type LedgerService struct {
	ledgerRepo  domain.LedgerRepository
	publisher   websocket.EventPublisher
	historySize int
	now         func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo domain.LedgerRepository, publisher websocket.EventPublisher, historySize int) *LedgerService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &LedgerService{
		ledgerRepo:  ledgerRepo,
		publisher:   publisher,
		historySize: historySize,
		now:         time.Now,
	}
}

// Record commits a transaction stamped with the current time
func (s *LedgerService) Record(userID string, kind domain.TransactionKind, category string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserRequired
	}

	transaction := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Timestamp:   s.now(),
		Kind:        kind,
		Category:    category,
		Amount:      amount,
		Description: description,
	}

	if err := s.ledgerRepo.Append(userID, transaction); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("transaction_id", transaction.ID.String()).
		Str("kind", string(kind)).
		Str("amount", amount.String()).
		Msg("Transaction recorded")

	s.publisher.Publish(userID, websocket.TransactionCreated(transaction))
	return transaction, nil
}

// History returns the last n transactions, oldest first. n <= 0 uses the
// configured history size.
func (s *LedgerService) History(userID string, n int) []*domain.Transaction {
	if n <= 0 {
		n = s.historySize
	}
	return s.ledgerRepo.Recent(userID, n)
}

// HistorySize returns the configured default history length
func (s *LedgerService) HistorySize() int {
	return s.historySize
}
