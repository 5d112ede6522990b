package service

import (
	"sort"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/util"
	"github.com/shopspring/decimal"
)

// AnalysisService derives monthly aggregates from the ledger. Nothing is cached:
// every call reads the ledger again.
type AnalysisService struct {
	ledgerRepo domain.LedgerRepository
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(ledgerRepo domain.LedgerRepository) *AnalysisService {
	return &AnalysisService{
		ledgerRepo: ledgerRepo,
	}
}

// MonthTransactions returns the user's transactions in asOf's calendar month.
// The year is not compared, so entries from the same month of earlier years
// are included.
func (s *AnalysisService) MonthTransactions(userID string, asOf time.Time) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range s.ledgerRepo.All(userID) {
		if util.SameMonthAnyYear(t.Timestamp, asOf) {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyAnalysis sums income and expenses for asOf's month
func (s *AnalysisService) MonthlyAnalysis(userID string, asOf time.Time) domain.MonthlyAggregate {
	return aggregate(s.MonthTransactions(userID, asOf), asOf.Month())
}

func aggregate(transactions []*domain.Transaction, month time.Month) domain.MonthlyAggregate {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		switch t.Kind {
		case domain.TransactionKindIncome:
			income = income.Add(t.Amount)
		case domain.TransactionKindExpense:
			expenses = expenses.Add(t.Amount)
		}
	}

	return domain.MonthlyAggregate{
		Month:         month,
		TotalIncome:   income,
		TotalExpenses: expenses,
		FreeCash:      income.Sub(expenses),
	}
}

// CategoryBreakdown totals one kind per category for asOf's month, largest first
func (s *AnalysisService) CategoryBreakdown(userID string, asOf time.Time, kind domain.TransactionKind) []domain.CategoryTotal {
	totals := make(map[string]*domain.CategoryTotal)
	for _, t := range s.MonthTransactions(userID, asOf) {
		if t.Kind != kind {
			continue
		}
		ct, ok := totals[t.Category]
		if !ok {
			ct = &domain.CategoryTotal{Category: t.Category, Amount: decimal.Zero}
			totals[t.Category] = ct
		}
		ct.Amount = ct.Amount.Add(t.Amount)
		ct.Count++
	}

	out := make([]domain.CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
