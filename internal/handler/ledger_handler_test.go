package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerTestContext(method, target, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetUserID(c, userID)
	return c, rec
}

func seedLedger(t *testing.T, s *testServices, userID string) {
	t.Helper()
	entries := []struct {
		kind     domain.TransactionKind
		category string
		amount   int64
	}{
		{domain.TransactionKindIncome, domain.IncomeCategories[0], 50000},
		{domain.TransactionKindExpense, domain.ExpenseCategories[0], 12000},
		{domain.TransactionKindExpense, domain.ExpenseCategories[1], 8000},
	}
	for _, entry := range entries {
		_, err := s.ledger.Record(userID, entry.kind, entry.category, decimal.NewFromInt(entry.amount), "")
		require.NoError(t, err)
	}
}

func TestLedgerHandler_GetTransactions(t *testing.T) {
	s := newTestServices(false)
	seedLedger(t, s, "tg-1")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/transactions?limit=2", "tg-1")
	err := h.GetTransactions(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	// Oldest first among the two most recent
	assert.Equal(t, "12000.00", resp[0].Amount)
	assert.Equal(t, "8000.00", resp[1].Amount)
	assert.Equal(t, string(domain.TransactionKindExpense), resp[1].Kind)
	_, err = time.Parse(time.RFC3339, resp[0].Timestamp)
	assert.NoError(t, err)
}

func TestLedgerHandler_GetTransactions_Empty(t *testing.T) {
	s := newTestServices(false)
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/nobody/transactions", "nobody")
	require.NoError(t, h.GetTransactions(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestLedgerHandler_GetTransactions_InvalidLimit(t *testing.T) {
	s := newTestServices(false)
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	for _, limit := range []string{"0", "-1", "abc", "101"} {
		t.Run(limit, func(t *testing.T) {
			c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/transactions?limit="+limit, "tg-1")
			require.NoError(t, h.GetTransactions(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLedgerHandler_GetAnalysis(t *testing.T) {
	s := newTestServices(false)
	seedLedger(t, s, "tg-1")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/analysis", "tg-1")
	require.NoError(t, h.GetAnalysis(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int(time.Now().Month()), resp.Month)
	assert.Equal(t, "50000.00", resp.TotalIncome)
	assert.Equal(t, "20000.00", resp.TotalExpenses)
	assert.Equal(t, "30000.00", resp.FreeCash)
	assert.Len(t, resp.Income, 1)
	assert.Len(t, resp.Expenses, 2)
	assert.Equal(t, service.BasicAdvice(decimal.NewFromInt(30000)), resp.Advice)
}

func TestLedgerHandler_GetAnalysis_OtherMonth(t *testing.T) {
	s := newTestServices(false)
	seedLedger(t, s, "tg-1")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	other := time.Now().AddDate(0, 6, 0).Format("2006-01-02")
	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/analysis?date="+other, "tg-1")
	require.NoError(t, h.GetAnalysis(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0.00", resp.TotalIncome)
	assert.Equal(t, "0.00", resp.FreeCash)
	assert.Empty(t, resp.Expenses)
}

func TestLedgerHandler_ParseDate_UsesClockLocation(t *testing.T) {
	s := newTestServices(false)
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)
	msk := time.FixedZone("MSK", 3*60*60)
	h.now = func() time.Time { return time.Date(2026, 4, 10, 12, 0, 0, 0, msk) }

	c, _ := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/analysis?date=2026-04-01", "tg-1")
	date, ok := h.parseDate(c)

	require.True(t, ok)
	assert.True(t, date.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, msk)))
	assert.Equal(t, msk, date.Location())
}

func TestLedgerHandler_GetAnalysis_InvalidDate(t *testing.T) {
	s := newTestServices(false)
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/analysis?date=06-2025", "tg-1")
	require.NoError(t, h.GetAnalysis(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "date", problem.Errors[0].Field)
}

func TestLedgerHandler_GetAdvice(t *testing.T) {
	s := newTestServices(false)
	seedLedger(t, s, "tg-1")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodGet, "/api/v1/users/tg-1/advice", "tg-1")
	require.NoError(t, h.GetAdvice(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AdviceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "30000.00", resp.Aggregate.FreeCash)
	assert.Equal(t, string(domain.RiskTierMedium), resp.Tier)
	assert.Equal(t, service.AggressiveLarge, resp.Aggressive)
	assert.NotEmpty(t, resp.Opportunities)
	assert.Equal(t, string(domain.QuoteSourceLive), resp.CurrencySource)
	assert.Equal(t, 1, s.market.CallCount())
}

func TestLedgerHandler_ExportStatement_Disabled(t *testing.T) {
	s := newTestServices(false)
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodPost, "/api/v1/users/tg-1/statements", "tg-1")
	require.NoError(t, h.ExportStatement(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeUnavailable, problem.Type)
}

func TestLedgerHandler_ExportStatement(t *testing.T) {
	s := newTestServices(true)
	seedLedger(t, s, "tg-1")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodPost, "/api/v1/users/tg-1/statements", "tg-1")
	require.NoError(t, h.ExportStatement(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var statement service.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statement))
	assert.True(t, strings.HasPrefix(statement.Key, "statements/tg-1/"+time.Now().Format("2006-01")+"/"))
	assert.Equal(t, 3, statement.Rows)
	assert.Contains(t, statement.URL, "https://storage.test/")
	assert.Contains(t, s.statements.Objects, statement.Key)
}

func TestLedgerHandler_ExportStatement_UploadFails(t *testing.T) {
	s := newTestServices(true)
	s.statements.UploadErr = errors.New("bucket gone")
	h := NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report)

	c, rec := newLedgerTestContext(http.MethodPost, "/api/v1/users/tg-1/statements", "tg-1")
	require.NoError(t, h.ExportStatement(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
