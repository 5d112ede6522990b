package domain

type RiskTier string

const (
	RiskTierHigh         RiskTier = "high_risk"
	RiskTierMedium       RiskTier = "medium_risk"
	RiskTierConservative RiskTier = "conservative"
)

// InvestmentAdvice bundles everything the advice flow produces for one user
type InvestmentAdvice struct {
	Aggregate      MonthlyAggregate `json:"aggregate"`
	Basic          string           `json:"basic"`
	Tier           RiskTier         `json:"tier"`
	Opportunities  []string         `json:"opportunities"`
	Aggressive     string           `json:"aggressive"`
	Market         MarketSnapshot   `json:"market"`
	Trend          string           `json:"trend"`
	CurrencySource QuoteSource      `json:"currencySource"`
	CryptoSource   QuoteSource      `json:"cryptoSource"`
}
