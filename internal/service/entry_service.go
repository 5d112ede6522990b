package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultSkipToken leaves the description empty when sent at the description step
const DefaultSkipToken = "пропустить"

// EntryOutcomeKind tells the caller what to render after a transition
type EntryOutcomeKind string

const (
	EntryOutcomeCategoryPrompt    EntryOutcomeKind = "category_prompt"
	EntryOutcomeAmountPrompt      EntryOutcomeKind = "amount_prompt"
	EntryOutcomeAmountInvalid     EntryOutcomeKind = "amount_invalid"
	EntryOutcomeDescriptionPrompt EntryOutcomeKind = "description_prompt"
	EntryOutcomeCommitted         EntryOutcomeKind = "committed"
	EntryOutcomeNoSession         EntryOutcomeKind = "no_session"
)

// EntryOutcome is the result of one state machine step
type EntryOutcome struct {
	Kind        EntryOutcomeKind
	Stage       domain.EntryStage
	EntryKind   domain.TransactionKind
	Categories  []string
	Transaction *domain.Transaction
	Err         error
}

// EntryConfig holds the entry dialogue settings
type EntryConfig struct {
	SkipToken string
	// TTL discards sessions idle for longer than this on next access; 0 keeps them forever
	TTL time.Duration
}

// EntryService walks a user through kind -> category -> amount -> description
// and commits the result to the ledger. It does not lock: callers serialize
// calls per user (see ChatService).
type EntryService struct {
	sessions  domain.SessionRepository
	ledger    *LedgerService
	publisher websocket.EventPublisher
	skipToken string
	ttl       time.Duration
	now       func() time.Time
}

// NewEntryService creates a new EntryService
func NewEntryService(sessions domain.SessionRepository, ledger *LedgerService, publisher websocket.EventPublisher, config EntryConfig) *EntryService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	if strings.TrimSpace(config.SkipToken) == "" {
		config.SkipToken = DefaultSkipToken
	}
	return &EntryService{
		sessions:  sessions,
		ledger:    ledger,
		publisher: publisher,
		skipToken: strings.TrimSpace(config.SkipToken),
		ttl:       config.TTL,
		now:       time.Now,
	}
}

// SkipToken returns the configured skip keyword
func (s *EntryService) SkipToken() string {
	return s.skipToken
}

// Begin starts a new session for kind, replacing any session in progress
func (s *EntryService) Begin(userID string, kind domain.TransactionKind) (EntryOutcome, error) {
	if strings.TrimSpace(userID) == "" {
		return EntryOutcome{}, domain.ErrUserRequired
	}
	if !kind.IsValid() {
		return EntryOutcome{}, domain.ErrInvalidKind
	}

	now := s.now()
	session := &domain.EntrySession{
		UserID:    userID,
		Stage:     domain.EntryStageAwaitingCategory,
		Kind:      kind,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.sessions.Put(session)

	s.publisher.Publish(userID, websocket.SessionStarted(kind))

	return EntryOutcome{
		Kind:       EntryOutcomeCategoryPrompt,
		Stage:      session.Stage,
		EntryKind:  kind,
		Categories: domain.CategoriesFor(kind),
	}, nil
}

// Current returns the user's live session, dropping it if it has expired
func (s *EntryService) Current(userID string) (*domain.EntrySession, bool) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl {
		s.sessions.Delete(userID)
		log.Debug().Str("user_id", userID).Str("stage", string(session.Stage)).Msg("Entry session expired")
		return nil, false
	}
	return session, true
}

// Stage returns the user's current stage, EntryStageIdle when no session exists
func (s *EntryService) Stage(userID string) domain.EntryStage {
	if session, ok := s.Current(userID); ok {
		return session.Stage
	}
	return domain.EntryStageIdle
}

// Cancel discards the user's session and reports whether one existed
func (s *EntryService) Cancel(userID string) bool {
	session, ok := s.Current(userID)
	if !ok {
		return false
	}
	s.sessions.Delete(userID)
	s.publisher.Publish(userID, websocket.SessionCancelled(session.Stage))
	return true
}

// Handle feeds one text message into the user's session
func (s *EntryService) Handle(userID string, text string) (EntryOutcome, error) {
	session, ok := s.Current(userID)
	if !ok {
		return EntryOutcome{Kind: EntryOutcomeNoSession, Stage: domain.EntryStageIdle, Err: domain.ErrNoActiveSession}, nil
	}

	switch session.Stage {
	case domain.EntryStageAwaitingCategory:
		// Any text is accepted as the category, including labels outside the offered set
		session.Category = text
		session.Stage = domain.EntryStageAwaitingAmount
		s.touch(session)
		return EntryOutcome{Kind: EntryOutcomeAmountPrompt, Stage: session.Stage, EntryKind: session.Kind}, nil

	case domain.EntryStageAwaitingAmount:
		amount, err := ParseAmount(text)
		if err != nil {
			s.touch(session)
			return EntryOutcome{Kind: EntryOutcomeAmountInvalid, Stage: session.Stage, EntryKind: session.Kind, Err: err}, nil
		}
		session.Amount = amount
		session.Stage = domain.EntryStageAwaitingDescription
		s.touch(session)
		return EntryOutcome{Kind: EntryOutcomeDescriptionPrompt, Stage: session.Stage, EntryKind: session.Kind}, nil

	case domain.EntryStageAwaitingDescription:
		if !strings.EqualFold(strings.TrimSpace(text), s.skipToken) {
			session.Description = text
		}
		transaction, err := s.ledger.Record(userID, session.Kind, session.Category, session.Amount, session.Description)
		if err != nil {
			return EntryOutcome{}, fmt.Errorf("commit entry: %w", err)
		}
		s.sessions.Delete(userID)
		return EntryOutcome{
			Kind:        EntryOutcomeCommitted,
			Stage:       domain.EntryStageIdle,
			EntryKind:   transaction.Kind,
			Transaction: transaction,
		}, nil

	default:
		s.sessions.Delete(userID)
		return EntryOutcome{}, fmt.Errorf("unknown entry stage %q", session.Stage)
	}
}

func (s *EntryService) touch(session *domain.EntrySession) {
	session.UpdatedAt = s.now()
	s.sessions.Put(session)
}

// MaxAmount is the largest amount a single entry may carry
var MaxAmount = decimal.New(1, 12)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseAmount parses a user-typed amount. A comma is accepted as the decimal
// separator, at most two fractional digits are allowed and the result must be
// strictly positive and no larger than MaxAmount.
func ParseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", domain.ErrInvalidAmount)
	}
	if !amountPattern.MatchString(normalized) {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, text)
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, text)
	}
	if !amount.IsPositive() || amount.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, text)
	}
	return amount, nil
}
