package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAggregate is recomputed from the ledger on every request and never stored
type MonthlyAggregate struct {
	Month         time.Month      `json:"month"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	FreeCash      decimal.Decimal `json:"freeCash"`
}

// CategoryTotal is an amount aggregated by category label
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}
