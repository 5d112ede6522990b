package service

import (
	"testing"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTx(t *testing.T, repo *memory.LedgerRepository, userID string, at time.Time, kind domain.TransactionKind, category string, amount int64) {
	t.Helper()
	err := repo.Append(userID, &domain.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Timestamp: at,
		Kind:      kind,
		Category:  category,
		Amount:    decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
}

func TestAnalysisService_MonthlyAnalysis(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewAnalysisService(repo)
	june := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	appendTx(t, repo, "u", june, domain.TransactionKindIncome, "💰 Зарплата", 50000)
	appendTx(t, repo, "u", june.AddDate(0, 0, 5), domain.TransactionKindExpense, "🏠 Жилье", 20000)
	// Previous month is excluded
	appendTx(t, repo, "u", june.AddDate(0, -1, 0), domain.TransactionKindExpense, "🍕 Еда", 999)

	agg := svc.MonthlyAnalysis("u", june)

	assert.Equal(t, time.June, agg.Month)
	assert.Equal(t, "50000", agg.TotalIncome.String())
	assert.Equal(t, "20000", agg.TotalExpenses.String())
	assert.Equal(t, "30000", agg.FreeCash.String())
}

func TestAnalysisService_MonthlyAnalysis_Empty(t *testing.T) {
	svc := NewAnalysisService(memory.NewLedgerRepository())

	agg := svc.MonthlyAnalysis("nobody", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, agg.TotalIncome.IsZero())
	assert.True(t, agg.TotalExpenses.IsZero())
	assert.True(t, agg.FreeCash.IsZero())
}

func TestAnalysisService_MonthlyAnalysis_NegativeFreeCash(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewAnalysisService(repo)
	now := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	appendTx(t, repo, "u", now, domain.TransactionKindIncome, "💻 Фриланс", 1000)
	appendTx(t, repo, "u", now, domain.TransactionKindExpense, "🚗 Транспорт", 4000)

	agg := svc.MonthlyAnalysis("u", now)

	assert.Equal(t, "-3000", agg.FreeCash.String())
}

func TestAnalysisService_MonthIgnoresYear(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewAnalysisService(repo)
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	appendTx(t, repo, "u", asOf, domain.TransactionKindIncome, "💰 Зарплата", 100)
	appendTx(t, repo, "u", asOf.AddDate(-1, 0, 0), domain.TransactionKindIncome, "💰 Зарплата", 200)

	agg := svc.MonthlyAnalysis("u", asOf)

	assert.Equal(t, "300", agg.TotalIncome.String())
	assert.Len(t, svc.MonthTransactions("u", asOf), 2)
}

func TestAnalysisService_UsersAreIsolated(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewAnalysisService(repo)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	appendTx(t, repo, "alice", now, domain.TransactionKindIncome, "💰 Зарплата", 100)
	appendTx(t, repo, "bob", now, domain.TransactionKindIncome, "💰 Зарплата", 7)

	assert.Equal(t, "100", svc.MonthlyAnalysis("alice", now).TotalIncome.String())
	assert.Equal(t, "7", svc.MonthlyAnalysis("bob", now).TotalIncome.String())
}

func TestAnalysisService_CategoryBreakdown(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewAnalysisService(repo)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	appendTx(t, repo, "u", now, domain.TransactionKindExpense, "🍕 Еда", 300)
	appendTx(t, repo, "u", now, domain.TransactionKindExpense, "🚗 Транспорт", 500)
	appendTx(t, repo, "u", now, domain.TransactionKindExpense, "🍕 Еда", 400)
	appendTx(t, repo, "u", now, domain.TransactionKindExpense, "🏥 Здоровье", 500)
	appendTx(t, repo, "u", now, domain.TransactionKindIncome, "💰 Зарплата", 10000)

	breakdown := svc.CategoryBreakdown("u", now, domain.TransactionKindExpense)

	require.Len(t, breakdown, 3)
	assert.Equal(t, "🍕 Еда", breakdown[0].Category)
	assert.Equal(t, "700", breakdown[0].Amount.String())
	assert.Equal(t, 2, breakdown[0].Count)
	// Equal totals are ordered by name
	assert.Equal(t, "🏥 Здоровье", breakdown[1].Category)
	assert.Equal(t, "🚗 Транспорт", breakdown[2].Category)
}
