package market

import (
	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Trend advice messages
const (
	TrendBuyCurrency = "📈 Доллар и евро заметно растут: хорошее время для покупки валюты"
	TrendWait        = "📉 Доллар и евро заметно снижаются: лучше подождать с покупкой валюты"
	TrendDiversify   = "🔀 Доллар и евро движутся в разные стороны: диверсифицируйте валютную корзину"
	TrendStable      = "➖ Курсы стабильны: придерживайтесь текущей стратегии"
)

var trendThreshold = decimal.RequireFromString("0.5")

// TrendAdvice judges the day-over-day USD and EUR moves. The four bands are
// mutually exclusive and checked in order.
func TrendAdvice(snapshot domain.MarketSnapshot) string {
	usd := snapshot.Currency.USD.ChangeFromPrevious
	eur := snapshot.Currency.EUR.ChangeFromPrevious
	neg := trendThreshold.Neg()

	switch {
	case usd.GreaterThan(trendThreshold) && eur.GreaterThan(trendThreshold):
		return TrendBuyCurrency
	case usd.LessThan(neg) && eur.LessThan(neg):
		return TrendWait
	case usd.Sign()*eur.Sign() < 0:
		return TrendDiversify
	default:
		return TrendStable
	}
}
