package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type quotesCmd struct {
	currencyURL string
	cryptoURL   string
	timeout     time.Duration
	verbose     bool
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "fetch currency and crypto quotes" }
func (*quotesCmd) Usage() string {
	return `finctl quotes [-currency-url <url>] [-crypto-url <url>] [-timeout <d>] [-v]

  Fetches USD/EUR rates and BTC/ETH/SOL prices through the market gateway and
  prints them with the source of each feed (live, cached or fallback).
`
}

func (c *quotesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currencyURL, "currency-url", "", "Currency rates endpoint (defaults to the CBR daily JSON)")
	f.StringVar(&c.cryptoURL, "crypto-url", "", "Crypto prices endpoint (defaults to CoinGecko simple price)")
	f.DurationVar(&c.timeout, "timeout", market.DefaultTimeout, "Per request timeout")
	f.BoolVar(&c.verbose, "v", false, "Log gateway fallbacks to stderr")
}

func (c *quotesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	level := zerolog.Disabled
	if c.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	client := &http.Client{Timeout: c.timeout}
	gateway := market.NewGateway(
		market.NewCurrencySource(c.currencyURL, client),
		market.NewCryptoSource(c.cryptoURL, client),
		logger,
		market.GatewayConfig{Timeout: c.timeout},
	)

	printMarkdown(quotesMarkdown(gateway.Snapshot(ctx)))
	return subcommands.ExitSuccess
}

// quotesMarkdown lays a snapshot out as two markdown tables
func quotesMarkdown(result market.SnapshotResult) string {
	var b strings.Builder
	s := result.Snapshot

	fmt.Fprintf(&b, "# Market\n\n")
	fmt.Fprintf(&b, "## Currency (%s%s)\n\n", result.CurrencySource, asOfSuffix(s.Currency.AsOf))
	b.WriteString("| Pair | Rate | Change |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| USD | %s | %s |\n", s.Currency.USD.Rate.StringFixed(2), s.Currency.USD.ChangeFromPrevious.StringFixed(2))
	fmt.Fprintf(&b, "| EUR | %s | %s |\n\n", s.Currency.EUR.Rate.StringFixed(2), s.Currency.EUR.ChangeFromPrevious.StringFixed(2))

	fmt.Fprintf(&b, "## Crypto (%s%s)\n\n", result.CryptoSource, asOfSuffix(s.Crypto.AsOf))
	b.WriteString("| Coin | USD | 24h % |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| BTC | %s | %s |\n", s.Crypto.BTC.PriceUSD.StringFixed(0), s.Crypto.BTC.Change24hPercent.StringFixed(1))
	fmt.Fprintf(&b, "| ETH | %s | %s |\n", s.Crypto.ETH.PriceUSD.StringFixed(0), s.Crypto.ETH.Change24hPercent.StringFixed(1))
	fmt.Fprintf(&b, "| SOL | %s | %s |\n\n", s.Crypto.SOL.PriceUSD.StringFixed(2), s.Crypto.SOL.Change24hPercent.StringFixed(1))

	fmt.Fprintf(&b, "**Trend:** %s\n", market.TrendAdvice(s))
	return b.String()
}

func asOfSuffix(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ", " + t.Format("2006-01-02 15:04")
}
