package db

import (
	"context"
	"errors"
	"time"

	"finax-server/src/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	// CreateUser inserts the user and its starting categories atomically.
	CreateUser(ctx context.Context, user *models.User, categories []models.Category) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id, name, email string, now time.Time) (*models.User, error)
	UpdateUserAvatar(ctx context.Context, id, avatarURL string, now time.Time) (*models.User, error)
	// UpdateUserPassword only applies when the stored hash still equals currentHash.
	UpdateUserPassword(ctx context.Context, id, currentHash, newHash string, now time.Time) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error
	// ConsumeResetToken sets the new hash, clears the token and bumps the session version in one
	// conditional update. It returns the user id, or ErrNotFound when no live token matches.
	ConsumeResetToken(ctx context.Context, tokenHash, newHash string, now time.Time) (string, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategory(ctx context.Context, userID, id string) (*models.Category, error)
}

type TransactionStore interface {
	// CreateTransaction returns ErrNotFound when the category is not owned by the user with the same type.
	CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	SumTransactions(ctx context.Context, userID string) (models.Balance, error)
}

type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}
