package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finax-server/src/db"
	"finax-server/src/models"
)

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	// The SELECT guards ownership and type in the same statement as the insert.
	query := `
		INSERT INTO transactions (id, user_id, description, amount, type, date, category_id, created_at, updated_at)
		SELECT $1, c.user_id, $2, $3::text::numeric, c.type, $4, c.id, $5, $5
		FROM categories c
		WHERE c.id = $6 AND c.user_id = $7 AND c.type = $8
		RETURNING id, user_id, description, amount::text, type, date, category_id, created_at, updated_at
	`
	var (
		t      models.Transaction
		amount string
	)
	err := s.pool.QueryRow(ctx, query,
		txn.ID, txn.Description, txn.Amount.String(), txn.Date, txn.CreatedAt,
		txn.CategoryID, txn.UserID, string(txn.Type),
	).Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.Type, &t.Date, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.description, t.amount::text, t.type, t.date, t.category_id, t.created_at, t.updated_at,
			c.name, c.icon, c.color, c.type
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1
		ORDER BY t.date DESC, t.created_at DESC, t.id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var (
			t      models.Transaction
			c      models.CategorySummary
			amount string
		)
		err := rows.Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.Type, &t.Date, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt,
			&c.Name, &c.Icon, &c.Color, &c.Type)
		if err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		c.ID = t.CategoryID
		t.Category = &c
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *Store) SumTransactions(ctx context.Context, userID string) (models.Balance, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE type = 'outcome'), 0)::text
		FROM transactions
		WHERE user_id = $1
	`
	var income, outcome string
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&income, &outcome); err != nil {
		return models.Balance{}, translate(err)
	}
	return db.NewBalance(income, outcome)
}
