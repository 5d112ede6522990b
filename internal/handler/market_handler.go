package handler

import (
	"net/http"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the shared market snapshot
type MarketHandler struct {
	market service.MarketProvider
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(marketProvider service.MarketProvider) *MarketHandler {
	return &MarketHandler{market: marketProvider}
}

// MarketResponse is the snapshot plus where each half came from
type MarketResponse struct {
	Snapshot       domain.MarketSnapshot `json:"snapshot"`
	CurrencySource domain.QuoteSource    `json:"currencySource"`
	CryptoSource   domain.QuoteSource    `json:"cryptoSource"`
	Trend          string                `json:"trend"`
}

// GetMarket handles GET /api/v1/market. It never fails: stale or fallback
// quotes are labelled by their source.
func (h *MarketHandler) GetMarket(c echo.Context) error {
	result := h.market.Snapshot(c.Request().Context())
	return c.JSON(http.StatusOK, MarketResponse{
		Snapshot:       result.Snapshot,
		CurrencySource: result.CurrencySource,
		CryptoSource:   result.CryptoSource,
		Trend:          market.TrendAdvice(result.Snapshot),
	})
}
