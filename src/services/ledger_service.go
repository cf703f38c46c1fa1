package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finax-server/src/apperr"
	"finax-server/src/db"
	"finax-server/src/models"
	"finax-server/src/util"
)

// maxAmount keeps amounts inside NUMERIC(14, 2).
var maxAmount = decimal.New(1, 12)

// LedgerService owns categories, transactions and the derived balance. Every call is scoped to
// the user id taken from the caller's session.
type LedgerService struct {
	categories   db.CategoryStore
	transactions db.TransactionStore
	now          func() time.Time
	newID        func() string
}

func NewLedgerService(categories db.CategoryStore, transactions db.TransactionStore) *LedgerService {
	return &LedgerService{
		categories:   categories,
		transactions: transactions,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// WithClock is used by tests to move time.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

func (s *LedgerService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategory reports a category owned by someone else exactly like a missing one.
func (s *LedgerService) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	category, err := s.categories.GetCategory(ctx, userID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func validateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return apperr.Validation("amount must be greater than zero")
	case !amount.Equal(amount.Round(2)):
		return apperr.Validation("amount must have at most 2 decimal places")
	case amount.GreaterThanOrEqual(maxAmount):
		return apperr.Validation("amount is too large")
	}
	return nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	description := strings.TrimSpace(req.Description)
	if !util.ValidateDescription(description) {
		return nil, apperr.Validation("description is required")
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, apperr.Validation("type must be income or outcome")
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return nil, apperr.Validation("categoryId is required")
	}

	category, err := s.GetCategory(ctx, userID, req.CategoryID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("category not found")
		}
		return nil, err
	}
	if category.Type != req.Type {
		return nil, apperr.Validation("category type does not match transaction type")
	}

	now := s.now().UTC()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}

	created, err := s.transactions.CreateTransaction(ctx, &models.Transaction{
		ID:          s.newID(),
		UserID:      userID,
		Description: description,
		Amount:      req.Amount.Round(2),
		Type:        req.Type,
		Date:        date,
		CategoryID:  category.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Validation("category not found")
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	created.Category = category.Summary()

	log.Printf("INFO: Created transaction %s for user %s, type %s, category %s", created.ID, userID, created.Type, category.ID)
	return created, nil
}

// ListTransactions returns the user's transactions, most recent date first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	transactions, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// Balance is recomputed from the store on every call.
func (s *LedgerService) Balance(ctx context.Context, userID string) (models.Balance, error) {
	balance, err := s.transactions.SumTransactions(ctx, userID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("sum transactions: %w", err)
	}
	return balance, nil
}
