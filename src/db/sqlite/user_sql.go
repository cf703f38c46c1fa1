package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finax-server/src/models"
)

const userColumns = `id, name, email, password_hash, avatar_url, reset_token_hash, reset_token_expires_at,
	session_version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                    models.User
		avatar, resetHash    sql.NullString
		resetExpires         sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &resetHash, &resetExpires,
		&u.SessionVersion, &createdAt, &updatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExpires.Valid {
		t := fromMillis(resetExpires.Int64)
		u.ResetTokenExpiresAt = &t
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User, categories []models.Category) (*models.User, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	created := toMillis(user.CreatedAt)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.AvatarURL, created, created)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translate(err))
	}

	for _, c := range categories {
		at := toMillis(c.CreatedAt)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, user_id, name, icon, color, type, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, user.ID, c.Name, c.Icon, c.Color, string(c.Type), at, at)
		if err != nil {
			return nil, fmt.Errorf("failed to seed categories: %w", translate(err))
		}
	}

	u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, user.ID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, name, email string, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET name = ?, email = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns
	return scanUser(s.conn.QueryRowContext(ctx, query, name, email, toMillis(now), id))
}

func (s *Store) UpdateUserAvatar(ctx context.Context, id, avatarURL string, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET avatar_url = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns
	return scanUser(s.conn.QueryRowContext(ctx, query, avatarURL, toMillis(now), id))
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, currentHash, newHash string, now time.Time) error {
	return execAffecting(ctx, s.conn, `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ? AND password_hash = ?
	`, newHash, toMillis(now), id, currentHash)
}

func (s *Store) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error {
	return execAffecting(ctx, s.conn, `
		UPDATE users
		SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`, tokenHash, nullableMillis(&expiresAt), toMillis(now), id)
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newHash string, now time.Time) (string, error) {
	query := `
		UPDATE users
		SET password_hash = ?,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			session_version = session_version + 1,
			updated_at = ?
		WHERE reset_token_hash = ? AND reset_token_expires_at > ?
		RETURNING id
	`
	var userID string
	ms := toMillis(now)
	if err := s.conn.QueryRowContext(ctx, query, newHash, ms, tokenHash, ms).Scan(&userID); err != nil {
		return "", translate(err)
	}
	return userID, nil
}
