package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyQuote is a fiat rate in the ledger currency
type CurrencyQuote struct {
	Rate               decimal.Decimal `json:"rate"`
	ChangeFromPrevious decimal.Decimal `json:"changeFromPrevious"`
}

// CryptoQuote is a coin price in USD
type CryptoQuote struct {
	PriceUSD         decimal.Decimal `json:"priceUsd"`
	Change24hPercent decimal.Decimal `json:"change24hPercent"`
}

// CurrencyRates is the currency half of a market snapshot
type CurrencyRates struct {
	USD   CurrencyQuote `json:"usd"`
	EUR   CurrencyQuote `json:"eur"`
	AsOf  time.Time     `json:"asOf"`
	Stale bool          `json:"stale"`
}

// CryptoRates is the crypto half of a market snapshot
type CryptoRates struct {
	BTC   CryptoQuote `json:"btc"`
	ETH   CryptoQuote `json:"eth"`
	SOL   CryptoQuote `json:"sol"`
	AsOf  time.Time   `json:"asOf"`
	Stale bool        `json:"stale"`
}

// MarketSnapshot is the process-wide view of external quotes. A zero AsOf
// together with Stale marks static fallback data.
type MarketSnapshot struct {
	Currency CurrencyRates `json:"currency"`
	Crypto   CryptoRates   `json:"crypto"`
}

// QuoteSource tells where a fetch result came from
type QuoteSource string

const (
	QuoteSourceLive     QuoteSource = "live"
	QuoteSourceCached   QuoteSource = "cached"
	QuoteSourceFallback QuoteSource = "fallback"
)
