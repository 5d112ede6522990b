package render

import (
	"fmt"
	"strings"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
)

const (
	Welcome         = "👋 Привет! Я помогу вести учёт доходов и расходов и подскажу, куда вложить свободные деньги.\n\nВыберите действие в меню."
	Help            = "ℹ️ Просто добавляйте доходы и расходы через меню и получайте инвестиционные советы!\n\n💰 Доход и 💸 Расход добавляют операцию, 📊 Анализ показывает итоги месяца, 📋 История последние операции, 💡 Совет рекомендации, 📈 Рынок курсы валют и криптовалют."
	AmountInvalid   = "❌ Введите положительное число, например 1500 или 99,90:"
	Cancelled       = "🚫 Ввод отменён."
	NothingToCancel = "Нечего отменять."
	EmptyHistory    = "📭 Операций пока нет"
	InternalError   = "⚠️ Что-то пошло не так, попробуйте ещё раз."
)

func kindLabel(kind domain.TransactionKind) string {
	if kind == domain.TransactionKindIncome {
		return "Доход"
	}
	return "Расход"
}

func kindIcon(kind domain.TransactionKind) string {
	if kind == domain.TransactionKindIncome {
		return "💰"
	}
	return "💸"
}

func kindGenitive(kind domain.TransactionKind) string {
	if kind == domain.TransactionKindIncome {
		return "дохода"
	}
	return "расхода"
}

// CategoryPrompt asks for the category of a new entry
func CategoryPrompt(kind domain.TransactionKind) string {
	return fmt.Sprintf("Выберите категорию %s:", kindGenitive(kind))
}

// AmountPrompt asks for the amount of a new entry
func AmountPrompt(kind domain.TransactionKind) string {
	return fmt.Sprintf("Введите сумму %s:", kindGenitive(kind))
}

// DescriptionPrompt asks for an optional description
func DescriptionPrompt(skipToken string) string {
	return fmt.Sprintf("Добавьте описание или отправьте «%s»:", skipToken)
}

// Committed confirms a recorded transaction
func (r *Renderer) Committed(t *domain.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s %s добавлен!\n", kindLabel(t.Kind), r.Money(t.Amount))
	fmt.Fprintf(&b, "Категория: %s", Clean(t.Category))
	if t.Description != "" {
		fmt.Fprintf(&b, "\nОписание: %s", Clean(t.Description))
	}
	return b.String()
}

// Analysis summarizes a month
func (r *Renderer) Analysis(agg domain.MonthlyAggregate, expenses []domain.CategoryTotal, basicAdvice string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Анализ за %s*\n\n", monthName(agg))
	fmt.Fprintf(&b, "Доходы: %s\n", r.Money(agg.TotalIncome))
	fmt.Fprintf(&b, "Расходы: %s\n", r.Money(agg.TotalExpenses))
	fmt.Fprintf(&b, "Свободно: %s\n", r.Money(agg.FreeCash))

	if len(expenses) > 0 {
		b.WriteString("\n*Расходы по категориям:*\n")
		for _, ct := range expenses {
			fmt.Fprintf(&b, "- %s: %s\n", Clean(ct.Category), r.Money(ct.Amount))
		}
	}

	b.WriteString("\n")
	b.WriteString(basicAdvice)
	return b.String()
}

// History lists recent transactions, oldest first
func (r *Renderer) History(transactions []*domain.Transaction) string {
	if len(transactions) == 0 {
		return EmptyHistory
	}

	lines := make([]string, 0, len(transactions)+1)
	lines = append(lines, "📋 *Последние операции:*", "")
	for _, t := range transactions {
		line := fmt.Sprintf("%s %s - %s", kindIcon(t.Kind), r.Money(t.Amount), Clean(t.Category))
		if t.Description != "" {
			line += " (" + Clean(t.Description) + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Advice renders the full investment recommendation
func (r *Renderer) Advice(advice *domain.InvestmentAdvice) string {
	var b strings.Builder
	b.WriteString("💡 *Инвестиционный совет*\n\n")
	fmt.Fprintf(&b, "Свободные средства: %s\n\n", r.Money(advice.Aggregate.FreeCash))
	b.WriteString(advice.Basic)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "*Возможности (%s):*\n", tierLabel(advice.Tier))
	for _, o := range advice.Opportunities {
		fmt.Fprintf(&b, "- %s\n", o)
	}

	b.WriteString("\n*Агрессивная стратегия:*\n")
	b.WriteString(advice.Aggressive)
	b.WriteString("\n\n")
	b.WriteString(advice.Trend)
	if advice.CurrencySource != domain.QuoteSourceLive || advice.CryptoSource != domain.QuoteSourceLive {
		b.WriteString("\n\n")
		b.WriteString(staleNote)
	}
	return b.String()
}

const staleNote = "⚠️ Рыночные данные недоступны, использованы сохранённые или резервные значения."

// Market renders currency and crypto quotes with the trend hint
func (r *Renderer) Market(result market.SnapshotResult) string {
	snap := result.Snapshot
	var b strings.Builder

	fmt.Fprintf(&b, "📈 *Курсы валют* (%s)\n", sourceLabel(result.CurrencySource))
	fmt.Fprintf(&b, "USD: %s (%s)\n", r.Money(snap.Currency.USD.Rate), signed(snap.Currency.USD.ChangeFromPrevious, 2))
	fmt.Fprintf(&b, "EUR: %s (%s)\n\n", r.Money(snap.Currency.EUR.Rate), signed(snap.Currency.EUR.ChangeFromPrevious, 2))

	fmt.Fprintf(&b, "🪙 *Криптовалюты* (%s)\n", sourceLabel(result.CryptoSource))
	writeCoin(&b, "BTC", snap.Crypto.BTC)
	writeCoin(&b, "ETH", snap.Crypto.ETH)
	writeCoin(&b, "SOL", snap.Crypto.SOL)

	b.WriteString("\n")
	b.WriteString(market.TrendAdvice(snap))
	return b.String()
}

func writeCoin(b *strings.Builder, symbol string, q domain.CryptoQuote) {
	fmt.Fprintf(b, "%s: %s (%s%%)\n", symbol, formatMoney(q.PriceUSD, "USD"), signed(q.Change24hPercent, 2))
}

func sourceLabel(source domain.QuoteSource) string {
	switch source {
	case domain.QuoteSourceLive:
		return "актуально"
	case domain.QuoteSourceCached:
		return "сохранённые данные"
	default:
		return "резервные значения"
	}
}

func tierLabel(tier domain.RiskTier) string {
	switch tier {
	case domain.RiskTierHigh:
		return "высокий риск"
	case domain.RiskTierMedium:
		return "умеренный риск"
	default:
		return "консервативно"
	}
}

var monthNames = [...]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

func monthName(agg domain.MonthlyAggregate) string {
	if agg.Month < 1 || agg.Month > 12 {
		return "месяц"
	}
	return monthNames[agg.Month-1]
}
