package market

import (
	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FallbackCurrencyRates returns the static substitute served when no live or
// cached currency data exists. AsOf is zero and Stale is set.
func FallbackCurrencyRates() domain.CurrencyRates {
	return domain.CurrencyRates{
		USD:   domain.CurrencyQuote{Rate: decimal.NewFromInt(90), ChangeFromPrevious: decimal.Zero},
		EUR:   domain.CurrencyQuote{Rate: decimal.NewFromInt(98), ChangeFromPrevious: decimal.Zero},
		Stale: true,
	}
}

// FallbackCryptoRates returns the static substitute for crypto prices
func FallbackCryptoRates() domain.CryptoRates {
	return domain.CryptoRates{
		BTC:   domain.CryptoQuote{PriceUSD: decimal.NewFromInt(43000), Change24hPercent: decimal.Zero},
		ETH:   domain.CryptoQuote{PriceUSD: decimal.NewFromInt(2300), Change24hPercent: decimal.Zero},
		SOL:   domain.CryptoQuote{PriceUSD: decimal.NewFromInt(100), Change24hPercent: decimal.Zero},
		Stale: true,
	}
}
