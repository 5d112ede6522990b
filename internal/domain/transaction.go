package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// IsValid reports whether k is one of the known kinds
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindIncome || k == TransactionKindExpense
}

// Income categories offered by the entry dialogue
var IncomeCategories = []string{
	"💰 Зарплата",
	"💻 Фриланс",
	"📈 Инвестиции",
	"🎁 Прочее",
}

// Expense categories offered by the entry dialogue
var ExpenseCategories = []string{
	"🍕 Еда",
	"🚗 Транспорт",
	"🏠 Жилье",
	"🎮 Развлечения",
	"🏥 Здоровье",
	"👕 Одежда",
	"📱 Прочее",
}

// CategoriesFor returns a copy of the category set offered for kind
func CategoriesFor(kind TransactionKind) []string {
	var src []string
	switch kind {
	case TransactionKindIncome:
		src = IncomeCategories
	case TransactionKindExpense:
		src = ExpenseCategories
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Transaction is a single committed ledger entry. Entries are never mutated
// once appended.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"userId"`
	Timestamp   time.Time       `json:"timestamp"`
	Kind        TransactionKind `json:"kind"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the invariants every committed transaction must hold
func (t *Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// LedgerRepository is the per-user append-only transaction store
type LedgerRepository interface {
	Append(userID string, transaction *Transaction) error
	Recent(userID string, n int) []*Transaction
	All(userID string) []*Transaction
	Count(userID string) int
}
