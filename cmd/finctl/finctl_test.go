package main

import (
	"testing"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/dafibh/finbot/finbot-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendFor(t *testing.T) {
	tests := []struct {
		usd, eur string
		want     string
	}{
		{"0.6", "0.7", market.TrendBuyCurrency},
		{"-0.6", "-0.7", market.TrendWait},
		{"0.2", "-0.1", market.TrendDiversify},
		{"0", "0", market.TrendStable},
		{"0,6", "0,7", ""},
	}

	for _, tt := range tests {
		t.Run(tt.usd+"/"+tt.eur, func(t *testing.T) {
			got, err := trendFor(tt.usd, tt.eur)
			if tt.want == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdviceMarkdown(t *testing.T) {
	md, err := adviceMarkdown("30000", render.NewRenderer("USD"))
	require.NoError(t, err)

	assert.Contains(t, md, "$30,000.00")
	assert.Contains(t, md, service.AdviceGrowth)
	assert.Contains(t, md, string(domain.RiskTierMedium))
	assert.Contains(t, md, service.AggressiveLarge)
	for _, o := range service.Opportunities(domain.RiskTierMedium) {
		assert.Contains(t, md, o)
	}
}

func TestAdviceMarkdown_NegativeAndComma(t *testing.T) {
	md, err := adviceMarkdown("-1500,50", render.NewRenderer("USD"))
	require.NoError(t, err)
	assert.Contains(t, md, service.AdviceNoFunds)

	_, err = adviceMarkdown("lots", render.NewRenderer("USD"))
	assert.Error(t, err)
}

func TestQuotesMarkdown(t *testing.T) {
	result := testutil.NewMockMarketProvider(0.1, -0.1).Result

	md := quotesMarkdown(result)

	assert.Contains(t, md, "| USD | 91.50 | 0.10 |")
	assert.Contains(t, md, "| BTC | 65000 | 1.2 |")
	assert.Contains(t, md, "Currency (live, 2025-06-01 12:00)")
	assert.Contains(t, md, market.TrendDiversify)
}

func TestQuotesMarkdown_Fallback(t *testing.T) {
	result := market.SnapshotResult{
		Snapshot: domain.MarketSnapshot{
			Currency: market.FallbackCurrencyRates(),
			Crypto:   market.FallbackCryptoRates(),
		},
		CurrencySource: domain.QuoteSourceFallback,
		CryptoSource:   domain.QuoteSourceFallback,
	}

	md := quotesMarkdown(result)

	assert.Contains(t, md, "## Currency (fallback)")
	assert.Contains(t, md, "## Crypto (fallback)")
	assert.Contains(t, md, market.TrendStable)
}
