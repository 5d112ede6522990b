package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxTransactionsLimit caps the transactions endpoint page size
const MaxTransactionsLimit = 100

// LedgerHandler exposes a user's ledger, analysis, advice and statements
type LedgerHandler struct {
	ledgerService   *service.LedgerService
	analysisService *service.AnalysisService
	adviceService   *service.AdviceService
	reportService   *service.ReportService
	now             func() time.Time
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(
	ledgerService *service.LedgerService,
	analysisService *service.AnalysisService,
	adviceService *service.AdviceService,
	reportService *service.ReportService,
) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:   ledgerService,
		analysisService: analysisService,
		adviceService:   adviceService,
		reportService:   reportService,
		now:             time.Now,
	}
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// AggregateResponse represents a month's totals in API responses
type AggregateResponse struct {
	Month         int    `json:"month"`
	TotalIncome   string `json:"totalIncome"`
	TotalExpenses string `json:"totalExpenses"`
	FreeCash      string `json:"freeCash"`
}

// CategoryTotalResponse represents one category's total
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Count    int    `json:"count"`
}

// AnalysisResponse represents the monthly analysis
type AnalysisResponse struct {
	AggregateResponse
	Income   []CategoryTotalResponse `json:"income"`
	Expenses []CategoryTotalResponse `json:"expenses"`
	Advice   string                  `json:"advice"`
}

// AdviceResponse represents the investment advice
type AdviceResponse struct {
	Aggregate      AggregateResponse     `json:"aggregate"`
	Basic          string                `json:"basic"`
	Tier           string                `json:"tier"`
	Opportunities  []string              `json:"opportunities"`
	Aggressive     string                `json:"aggressive"`
	Market         domain.MarketSnapshot `json:"market"`
	Trend          string                `json:"trend"`
	CurrencySource string                `json:"currencySource"`
	CryptoSource   string                `json:"cryptoSource"`
}

// GetTransactions handles GET /api/v1/users/:userId/transactions
func (h *LedgerHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	limit := h.ledgerService.HistorySize()
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > MaxTransactionsLimit {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Limit must be between 1 and 100"},
			})
		}
		limit = n
	}

	transactions := h.ledgerService.History(userID, limit)
	resp := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		resp[i] = toTransactionResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetAnalysis handles GET /api/v1/users/:userId/analysis
func (h *LedgerHandler) GetAnalysis(c echo.Context) error {
	userID := middleware.GetUserID(c)

	asOf, ok := h.parseDate(c)
	if !ok {
		return invalidDateError(c)
	}

	agg := h.analysisService.MonthlyAnalysis(userID, asOf)
	return c.JSON(http.StatusOK, AnalysisResponse{
		AggregateResponse: toAggregateResponse(agg),
		Income:            toCategoryTotals(h.analysisService.CategoryBreakdown(userID, asOf, domain.TransactionKindIncome)),
		Expenses:          toCategoryTotals(h.analysisService.CategoryBreakdown(userID, asOf, domain.TransactionKindExpense)),
		Advice:            service.BasicAdvice(agg.FreeCash),
	})
}

// GetAdvice handles GET /api/v1/users/:userId/advice
func (h *LedgerHandler) GetAdvice(c echo.Context) error {
	userID := middleware.GetUserID(c)

	advice := h.adviceService.Advise(c.Request().Context(), userID, h.now())
	return c.JSON(http.StatusOK, AdviceResponse{
		Aggregate:      toAggregateResponse(advice.Aggregate),
		Basic:          advice.Basic,
		Tier:           string(advice.Tier),
		Opportunities:  advice.Opportunities,
		Aggressive:     advice.Aggressive,
		Market:         advice.Market,
		Trend:          advice.Trend,
		CurrencySource: string(advice.CurrencySource),
		CryptoSource:   string(advice.CryptoSource),
	})
}

// ExportStatement handles POST /api/v1/users/:userId/statements
func (h *LedgerHandler) ExportStatement(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if !h.reportService.IsEnabled() {
		return NewServiceUnavailableError(c, "Statement export is not configured")
	}

	asOf, ok := h.parseDate(c)
	if !ok {
		return invalidDateError(c)
	}

	statement, err := h.reportService.Export(c.Request().Context(), userID, asOf)
	if err != nil {
		if errors.Is(err, domain.ErrExportDisabled) {
			return NewServiceUnavailableError(c, "Statement export is not configured")
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to export statement")
		return NewInternalError(c, "Failed to export statement")
	}

	return c.JSON(http.StatusCreated, statement)
}

// parseDate reads the optional ?date=YYYY-MM-DD parameter, defaulting to now.
// The date is taken in the clock's location.
func (h *LedgerHandler) parseDate(c echo.Context) (time.Time, bool) {
	now := h.now()
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return now, true
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func invalidDateError(c echo.Context) error {
	return NewValidationError(c, "Invalid date", []ValidationError{
		{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
	})
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		Timestamp:   t.Timestamp.Format(time.RFC3339),
		Kind:        string(t.Kind),
		Category:    t.Category,
		Amount:      t.Amount.StringFixed(2),
		Description: t.Description,
	}
}

func toAggregateResponse(agg domain.MonthlyAggregate) AggregateResponse {
	return AggregateResponse{
		Month:         int(agg.Month),
		TotalIncome:   agg.TotalIncome.StringFixed(2),
		TotalExpenses: agg.TotalExpenses.StringFixed(2),
		FreeCash:      agg.FreeCash.StringFixed(2),
	}
}

func toCategoryTotals(totals []domain.CategoryTotal) []CategoryTotalResponse {
	resp := make([]CategoryTotalResponse, len(totals))
	for i, ct := range totals {
		resp[i] = CategoryTotalResponse{
			Category: ct.Category,
			Amount:   ct.Amount.StringFixed(2),
			Count:    ct.Count,
		}
	}
	return resp
}
