package models

import "time"

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeOutcome TransactionType = "outcome"
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeOutcome
}

type Category struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Color     string          `json:"color"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CategorySummary is the category snapshot embedded in transactions.
type CategorySummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Icon  string          `json:"icon"`
	Color string          `json:"color"`
	Type  TransactionType `json:"type"`
}

func (c Category) Summary() *CategorySummary {
	return &CategorySummary{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color, Type: c.Type}
}
