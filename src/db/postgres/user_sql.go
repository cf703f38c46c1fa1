package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"finax-server/src/db"
	"finax-server/src/models"
)

const userColumns = `id, name, email, password_hash, avatar_url, reset_token_hash, reset_token_expires_at,
	session_version, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.ResetTokenHash,
		&u.ResetTokenExpiresAt,
		&u.SessionVersion,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User, categories []models.Category) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (id, name, email, password_hash, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + userColumns
	created, err := scanUser(tx.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.AvatarURL, user.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(`
			INSERT INTO categories (id, user_id, name, icon, color, type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, c.ID, created.ID, c.Name, c.Icon, c.Color, string(c.Type), c.CreatedAt)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to seed categories: %w", translate(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, name, email string, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $1, email = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, name, email, now, id))
}

func (s *Store) UpdateUserAvatar(ctx context.Context, id, avatarURL string, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET avatar_url = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, avatarURL, now, id))
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, currentHash, newHash string, now time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3 AND password_hash = $4
	`
	cmd, err := s.pool.Exec(ctx, query, newHash, now, id, currentHash)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = $3
		WHERE id = $4
	`
	cmd, err := s.pool.Exec(ctx, query, tokenHash, expiresAt, now, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newHash string, now time.Time) (string, error) {
	query := `
		UPDATE users
		SET password_hash = $1,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			session_version = session_version + 1,
			updated_at = $2
		WHERE reset_token_hash = $3 AND reset_token_expires_at > $2
		RETURNING id
	`
	var userID string
	if err := s.pool.QueryRow(ctx, query, newHash, now, tokenHash).Scan(&userID); err != nil {
		return "", translate(err)
	}
	return userID, nil
}
