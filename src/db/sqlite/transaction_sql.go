package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finax-server/src/db"
	"finax-server/src/models"
)

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	// The SELECT guards ownership and type in the same statement as the insert.
	err := execAffecting(ctx, s.conn, `
		INSERT INTO transactions (id, user_id, description, amount, type, date, category_id, created_at, updated_at)
		SELECT ?, c.user_id, ?, ?, c.type, ?, c.id, ?, ?
		FROM categories c
		WHERE c.id = ? AND c.user_id = ? AND c.type = ?
	`, txn.ID, txn.Description, txn.Amount.String(), toMillis(txn.Date), toMillis(txn.CreatedAt), toMillis(txn.CreatedAt),
		txn.CategoryID, txn.UserID, string(txn.Type))
	if err != nil {
		return nil, err
	}

	created := *txn
	created.Date = fromMillis(toMillis(txn.Date))
	created.CreatedAt = fromMillis(toMillis(txn.CreatedAt))
	created.UpdatedAt = created.CreatedAt
	return &created, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.description, t.amount, t.type, t.date, t.category_id, t.created_at, t.updated_at,
			c.name, c.icon, c.color, c.type
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC, t.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var (
			t                          models.Transaction
			c                          models.CategorySummary
			amount                     string
			date, createdAt, updatedAt int64
		)
		err := rows.Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.Type, &date, &t.CategoryID, &createdAt, &updatedAt,
			&c.Name, &c.Icon, &c.Color, &c.Type)
		if err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		t.Date = fromMillis(date)
		t.CreatedAt = fromMillis(createdAt)
		t.UpdatedAt = fromMillis(updatedAt)
		c.ID = t.CategoryID
		t.Category = &c
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumTransactions adds amounts in Go; SQLite's SUM would go through floating point.
func (s *Store) SumTransactions(ctx context.Context, userID string) (models.Balance, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT type, amount FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return models.Balance{}, err
	}
	defer rows.Close()

	income, outcome := decimal.Zero, decimal.Zero
	for rows.Next() {
		var (
			typ    models.TransactionType
			amount string
		)
		if err := rows.Scan(&typ, &amount); err != nil {
			return models.Balance{}, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return models.Balance{}, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		switch typ {
		case models.TypeIncome:
			income = income.Add(value)
		case models.TypeOutcome:
			outcome = outcome.Add(value)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Balance{}, err
	}
	return db.BalanceOf(income, outcome), nil
}
