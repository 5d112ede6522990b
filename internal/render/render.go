// Package render turns ledger, analysis, advice and market results into
// chat replies. Replies are markdown; ToHTML converts them for adapters
// that send HTML.
package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
)

// DefaultCurrency is used when the configured code is unknown
const DefaultCurrency = "RUB"

var (
	strictPolicy = bluemonday.StrictPolicy()
	markdown     = goldmark.New()

	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
		`[`, `\[`,
		`]`, `\]`,
		`<`, `\<`,
		`>`, `\>`,
		`#`, `\#`,
		`|`, `\|`,
	)
)

// Renderer formats replies for one ledger currency
type Renderer struct {
	currency string
}

// NewRenderer creates a Renderer for an ISO 4217 currency code
func NewRenderer(currency string) *Renderer {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	return &Renderer{currency: code}
}

// Currency returns the ISO code amounts are displayed in
func (r *Renderer) Currency() string {
	return r.currency
}

// Money formats amount in the renderer's currency
func (r *Renderer) Money(amount decimal.Decimal) string {
	return formatMoney(amount, r.currency)
}

func formatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		return amount.StringFixed(2) + " " + code
	}
	return money.New(minor.IntPart(), code).Display()
}

// Clean strips markup from user-typed text and escapes what markdown would
// otherwise interpret
func Clean(s string) string {
	stripped := html.UnescapeString(strictPolicy.Sanitize(s))
	return markdownEscaper.Replace(strings.TrimSpace(stripped))
}

// ToHTML converts a markdown reply to HTML
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func signed(d decimal.Decimal, places int32) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(places)
	}
	return d.StringFixed(places)
}
