package service

import (
	"context"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/shopspring/decimal"
)

// Basic advice messages
const (
	AdviceNoFunds      = "❌ Свободных средств нет. Попробуйте сократить расходы в следующем месяце."
	AdviceConservative = "💡 Небольшая сумма: разместите её на накопительном счёте или во вкладе."
	AdviceBalanced     = "💡 Сбалансированный вариант: 50% в облигации, 50% в ETF на широкий рынок."
	AdviceGrowth       = "💡 Активная стратегия: 60% в акции, 30% в облигации, 10% в валюту."
)

// Aggressive allocation messages
const (
	AggressiveSmall  = "🔥 70% криптовалюта, 30% акции роста"
	AggressiveMedium = "🔥 50% акции роста, 30% криптовалюта, 20% ETF"
	AggressiveLarge  = "🔥 40% акции, 30% ETF, 20% криптовалюта, 10% облигации"
	AggressiveHuge   = "🔥 40% акции, 25% ETF, 15% криптовалюта, 10% фонды недвижимости, 10% облигации"
)

var (
	basicBalancedFrom = decimal.NewFromInt(3000)
	basicGrowthFrom   = decimal.NewFromInt(10000)

	tierMediumFrom       = decimal.NewFromInt(10000)
	tierConservativeFrom = decimal.NewFromInt(50000)

	aggressiveMediumFrom = decimal.NewFromInt(5000)
	aggressiveLargeFrom  = decimal.NewFromInt(20000)
	aggressiveHugeFrom   = decimal.NewFromInt(50000)
)

var opportunities = map[domain.RiskTier][]string{
	domain.RiskTierHigh: {
		"🚀 Криптовалюта (BTC, ETH, SOL)",
		"📈 Акции роста технологических компаний",
		"🌱 IPO и молодые компании",
		"⚡ Опционы и фьючерсы (малая доля портфеля)",
	},
	domain.RiskTierMedium: {
		"📊 ETF на индекс S&P 500",
		"🏢 Дивидендные акции",
		"🏠 Фонды недвижимости (REIT)",
		"💵 Валютная диверсификация",
	},
	domain.RiskTierConservative: {
		"🏦 Банковские вклады",
		"📜 Государственные облигации (ОФЗ)",
		"🛡️ Корпоративные облигации высокого рейтинга",
		"🥇 Золото",
	},
}

// BasicAdvice picks a recommendation for the month's free cash
func BasicAdvice(freeCash decimal.Decimal) string {
	switch {
	case !freeCash.IsPositive():
		return AdviceNoFunds
	case freeCash.LessThan(basicBalancedFrom):
		return AdviceConservative
	case freeCash.LessThan(basicGrowthFrom):
		return AdviceBalanced
	default:
		return AdviceGrowth
	}
}

// RiskTierFor maps free cash to the risk the user is nudged toward: small
// sums can afford to gamble, large ones should be protected.
func RiskTierFor(freeCash decimal.Decimal) domain.RiskTier {
	switch {
	case freeCash.LessThan(tierMediumFrom):
		return domain.RiskTierHigh
	case freeCash.LessThan(tierConservativeFrom):
		return domain.RiskTierMedium
	default:
		return domain.RiskTierConservative
	}
}

// Opportunities returns the investment ideas for tier
func Opportunities(tier domain.RiskTier) []string {
	src := opportunities[tier]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// AggressiveAdvice suggests an allocation, bucketed at 5000, 20000 and 50000
func AggressiveAdvice(freeCash decimal.Decimal) string {
	switch {
	case freeCash.LessThan(aggressiveMediumFrom):
		return AggressiveSmall
	case freeCash.LessThan(aggressiveLargeFrom):
		return AggressiveMedium
	case freeCash.LessThan(aggressiveHugeFrom):
		return AggressiveLarge
	default:
		return AggressiveHuge
	}
}

// MarketProvider supplies market snapshots; *market.Gateway implements it
type MarketProvider interface {
	Snapshot(ctx context.Context) market.SnapshotResult
}

// AdviceService blends the user's free cash with market data
type AdviceService struct {
	analysis *AnalysisService
	market   MarketProvider
}

// NewAdviceService creates a new AdviceService
func NewAdviceService(analysis *AnalysisService, marketProvider MarketProvider) *AdviceService {
	return &AdviceService{
		analysis: analysis,
		market:   marketProvider,
	}
}

// Advise builds the full recommendation for userID as of asOf
func (s *AdviceService) Advise(ctx context.Context, userID string, asOf time.Time) *domain.InvestmentAdvice {
	agg := s.analysis.MonthlyAnalysis(userID, asOf)
	tier := RiskTierFor(agg.FreeCash)
	snap := s.market.Snapshot(ctx)

	return &domain.InvestmentAdvice{
		Aggregate:      agg,
		Basic:          BasicAdvice(agg.FreeCash),
		Tier:           tier,
		Opportunities:  Opportunities(tier),
		Aggressive:     AggressiveAdvice(agg.FreeCash),
		Market:         snap.Snapshot,
		Trend:          market.TrendAdvice(snap.Snapshot),
		CurrencySource: snap.CurrencySource,
		CryptoSource:   snap.CryptoSource,
	}
}
