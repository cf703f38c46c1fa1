package db

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finax-server/src/models"
)

func BalanceOf(income, outcome decimal.Decimal) models.Balance {
	return models.Balance{
		Balance: income.Sub(outcome),
		Income:  income,
		Outcome: outcome,
	}
}

// NewBalance builds a balance from decimal strings as returned by SUM queries.
func NewBalance(income, outcome string) (models.Balance, error) {
	in, err := decimal.NewFromString(income)
	if err != nil {
		return models.Balance{}, fmt.Errorf("parse income %q: %w", income, err)
	}
	out, err := decimal.NewFromString(outcome)
	if err != nil {
		return models.Balance{}, fmt.Errorf("parse outcome %q: %w", outcome, err)
	}
	return BalanceOf(in, out), nil
}
