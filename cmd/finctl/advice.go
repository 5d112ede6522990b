package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/google/subcommands"
)

type adviceCmd struct {
	free     string
	currency string
}

func (*adviceCmd) Name() string     { return "advice" }
func (*adviceCmd) Synopsis() string { return "evaluate the advice rules for an amount of free cash" }
func (*adviceCmd) Usage() string {
	return `finctl advice -free <amount> [-currency <code>]

  Prints the basic advice, risk tier, opportunities and aggressive allocation
  the bot would give for the given monthly free cash.
`
}

func (c *adviceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.free, "free", "", "Monthly free cash (income minus expenses), may be negative")
	f.StringVar(&c.currency, "currency", render.DefaultCurrency, "ISO 4217 code used to format amounts")
}

func (c *adviceCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.free == "" {
		fmt.Fprintln(os.Stderr, "Error: -free is required")
		return subcommands.ExitUsageError
	}
	md, err := adviceMarkdown(c.free, render.NewRenderer(c.currency))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func adviceMarkdown(free string, r *render.Renderer) (string, error) {
	// Negative free cash is valid here, so ParseAmount does not apply
	amount, err := parseSigned(free)
	if err != nil {
		return "", err
	}

	tier := service.RiskTierFor(amount)

	var b strings.Builder
	fmt.Fprintf(&b, "# Advice for %s\n\n", r.Money(amount))
	fmt.Fprintf(&b, "%s\n\n", service.BasicAdvice(amount))
	fmt.Fprintf(&b, "**Risk tier:** %s\n\n", tier)
	for _, o := range service.Opportunities(tier) {
		fmt.Fprintf(&b, "- %s\n", o)
	}
	fmt.Fprintf(&b, "\n**Aggressive:** %s\n", service.AggressiveAdvice(amount))
	return b.String(), nil
}
