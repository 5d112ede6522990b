package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseSigned accepts a decimal with either separator
func parseSigned(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
