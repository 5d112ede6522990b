package memory

import (
	"sync"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
)

// LedgerRepository implements domain.LedgerRepository in process memory.
// The outer lock only guards the user map; each ledger has its own lock so
// appends for different users never contend.
type LedgerRepository struct {
	ledgers map[string]*userLedger
	mu      sync.RWMutex
}

type userLedger struct {
	entries []*domain.Transaction
	mu      sync.RWMutex
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		ledgers: make(map[string]*userLedger),
	}
}

// ledger returns the user's ledger, creating it on first touch when create is set
func (r *LedgerRepository) ledger(userID string, create bool) *userLedger {
	r.mu.RLock()
	l, ok := r.ledgers[userID]
	r.mu.RUnlock()
	if ok || !create {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have created it between the two locks
	if l, ok = r.ledgers[userID]; ok {
		return l
	}
	l = &userLedger{}
	r.ledgers[userID] = l
	return l
}

// Append adds a transaction to the end of the user's ledger
func (r *LedgerRepository) Append(userID string, transaction *domain.Transaction) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if transaction == nil {
		return domain.ErrInvalidInput
	}
	if err := transaction.Validate(); err != nil {
		return err
	}

	stored := *transaction
	l := r.ledger(userID, true)
	l.mu.Lock()
	l.entries = append(l.entries, &stored)
	l.mu.Unlock()
	return nil
}

// Recent returns the last n transactions, oldest first
func (r *LedgerRepository) Recent(userID string, n int) []*domain.Transaction {
	l := r.ledger(userID, false)
	if l == nil || n <= 0 {
		return []*domain.Transaction{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	return copyEntries(l.entries[start:])
}

// All returns the full ledger in insertion order
func (r *LedgerRepository) All(userID string) []*domain.Transaction {
	l := r.ledger(userID, false)
	if l == nil {
		return []*domain.Transaction{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyEntries(l.entries)
}

// Count returns the number of committed transactions for the user
func (r *LedgerRepository) Count(userID string) int {
	l := r.ledger(userID, false)
	if l == nil {
		return 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Users returns how many users have a ledger
func (r *LedgerRepository) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}

// copyEntries copies both the slice and the values so callers cannot mutate the ledger
func copyEntries(entries []*domain.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out
}
