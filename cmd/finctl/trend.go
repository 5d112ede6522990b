package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type trendCmd struct {
	usd string
	eur string
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "evaluate the currency trend rule" }
func (*trendCmd) Usage() string {
	return `finctl trend -usd <change> -eur <change>

  Prints the trend advice for the given day-over-day USD and EUR changes.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.usd, "usd", "0", "USD change from the previous rate")
	f.StringVar(&c.eur, "eur", "0", "EUR change from the previous rate")
}

func (c *trendCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	advice, err := trendFor(c.usd, c.eur)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Println(advice)
	return subcommands.ExitSuccess
}

func trendFor(usd, eur string) (string, error) {
	usdChange, err := decimal.NewFromString(usd)
	if err != nil {
		return "", fmt.Errorf("invalid -usd %q: %w", usd, err)
	}
	eurChange, err := decimal.NewFromString(eur)
	if err != nil {
		return "", fmt.Errorf("invalid -eur %q: %w", eur, err)
	}
	return market.TrendAdvice(domain.MarketSnapshot{
		Currency: domain.CurrencyRates{
			USD: domain.CurrencyQuote{ChangeFromPrevious: usdChange},
			EUR: domain.CurrencyQuote{ChangeFromPrevious: eurChange},
		},
	}), nil
}
