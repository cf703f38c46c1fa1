package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The mobile client expects amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        TransactionType  `json:"type"`
	Date        time.Time        `json:"date"`
	CategoryID  string           `json:"categoryId"`
	Category    *CategorySummary `json:"category,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type CreateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  string          `json:"categoryId"`
	Date        *time.Time      `json:"date,omitempty"`
}

type Balance struct {
	Balance decimal.Decimal `json:"balance"`
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
}
