package render

import (
	"strings"
	"testing"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/dafibh/finbot/finbot-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_Currency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"upper case", "USD", "USD"},
		{"lower case", "eur", "EUR"},
		{"unknown code", "XXQ", DefaultCurrency},
		{"empty", "", DefaultCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRenderer(tt.input).Currency(); got != tt.expected {
				t.Errorf("Expected currency %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRenderer_Money(t *testing.T) {
	r := NewRenderer("USD")

	assert.Equal(t, "$1,500.00", r.Money(decimal.NewFromInt(1500)))
	assert.Equal(t, "$0.01", r.Money(decimal.RequireFromString("0.01")))
	assert.Equal(t, "$10.00", r.Money(decimal.RequireFromString("9.999")))
}

func TestRenderer_Money_BeyondMinorUnitRange(t *testing.T) {
	r := NewRenderer("USD")

	huge := decimal.RequireFromString("100000000000000000000")
	assert.Equal(t, "100000000000000000000.00 USD", r.Money(huge))

	assert.Equal(t, "$1,000,000,000,000.00", r.Money(decimal.New(1, 12)))
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Обед в кафе", "Обед в кафе"},
		{"strips tags", "<b>Обед</b>", "Обед"},
		{"drops script", "<script>alert(1)</script>Кофе", "Кофе"},
		{"keeps ampersand", "Кофе & чай", "Кофе & чай"},
		{"escapes markdown", "*жирный* _курсив_", `\*жирный\* \_курсив\_`},
		{"trims", "  такси  ", "такси"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestToHTML(t *testing.T) {
	out, err := ToHTML("📊 *Анализ*\n\n- пункт")

	require.NoError(t, err)
	assert.Contains(t, out, "<em>Анализ</em>")
	assert.Contains(t, out, "<li>пункт</li>")
}

func TestToHTML_EscapedUserText(t *testing.T) {
	out, err := ToHTML("Описание: " + Clean("<img src=x onerror=alert(1)>a < b"))

	require.NoError(t, err)
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "a &lt; b")
}

func TestRenderer_Committed(t *testing.T) {
	r := NewRenderer("USD")
	tx := &domain.Transaction{
		Kind:     domain.TransactionKindIncome,
		Category: "💰 Зарплата",
		Amount:   decimal.NewFromInt(1500),
	}

	out := r.Committed(tx)

	assert.Contains(t, out, "✅ Доход $1,500.00 добавлен!")
	assert.Contains(t, out, "Категория: 💰 Зарплата")
	assert.NotContains(t, out, "Описание")

	tx.Description = "аванс"
	assert.Contains(t, r.Committed(tx), "Описание: аванс")
}

func TestRenderer_History(t *testing.T) {
	r := NewRenderer("USD")

	assert.Equal(t, EmptyHistory, r.History(nil))

	out := r.History([]*domain.Transaction{
		{Kind: domain.TransactionKindIncome, Category: "💰 Зарплата", Amount: decimal.NewFromInt(50000)},
		{Kind: domain.TransactionKindExpense, Category: "🍕 Еда", Amount: decimal.NewFromInt(700), Description: "обед"},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "💰 $50,000.00 - 💰 Зарплата", lines[2])
	assert.Equal(t, "💸 $700.00 - 🍕 Еда (обед)", lines[3])
}

func TestRenderer_Analysis(t *testing.T) {
	r := NewRenderer("USD")
	agg := domain.MonthlyAggregate{
		Month:         time.June,
		TotalIncome:   decimal.NewFromInt(50000),
		TotalExpenses: decimal.NewFromInt(20000),
		FreeCash:      decimal.NewFromInt(30000),
	}

	out := r.Analysis(agg, []domain.CategoryTotal{{Category: "🏠 Жилье", Amount: decimal.NewFromInt(20000), Count: 1}}, "совет")

	assert.Contains(t, out, "июнь")
	assert.Contains(t, out, "Доходы: $50,000.00")
	assert.Contains(t, out, "Расходы: $20,000.00")
	assert.Contains(t, out, "Свободно: $30,000.00")
	assert.Contains(t, out, "- 🏠 Жилье: $20,000.00")
	assert.True(t, strings.HasSuffix(out, "совет"))
}

func TestRenderer_Advice_StaleNote(t *testing.T) {
	r := NewRenderer("USD")
	advice := &domain.InvestmentAdvice{
		Basic:          "basic",
		Tier:           domain.RiskTierMedium,
		Opportunities:  []string{"a", "b"},
		Aggressive:     "aggressive",
		Trend:          "trend",
		CurrencySource: domain.QuoteSourceLive,
		CryptoSource:   domain.QuoteSourceLive,
	}

	out := r.Advice(advice)
	assert.Contains(t, out, "умеренный риск")
	assert.Contains(t, out, "- a\n- b\n")
	assert.NotContains(t, out, staleNote)

	advice.CryptoSource = domain.QuoteSourceFallback
	assert.Contains(t, r.Advice(advice), staleNote)
}

func TestRenderer_Market(t *testing.T) {
	r := NewRenderer("USD")
	provider := testutil.NewMockMarketProvider(0.7, 0.9)

	out := r.Market(provider.Result)

	assert.Contains(t, out, "USD: $91.50 (+0.70)")
	assert.Contains(t, out, "BTC: $65,000.00 (+1.20%)")
	assert.Contains(t, out, "ETH: $3,400.00 (-0.80%)")
	assert.Contains(t, out, "актуально")
	assert.True(t, strings.HasSuffix(out, market.TrendBuyCurrency))
}

func TestRenderer_Market_Fallback(t *testing.T) {
	r := NewRenderer("USD")
	result := market.SnapshotResult{
		Snapshot: domain.MarketSnapshot{
			Currency: market.FallbackCurrencyRates(),
			Crypto:   market.FallbackCryptoRates(),
		},
		CurrencySource: domain.QuoteSourceFallback,
		CryptoSource:   domain.QuoteSourceCached,
	}

	out := r.Market(result)

	assert.Contains(t, out, "USD: $90.00 (0.00)")
	assert.Contains(t, out, "резервные значения")
	assert.Contains(t, out, "сохранённые данные")
	assert.True(t, strings.HasSuffix(out, market.TrendStable))
}
