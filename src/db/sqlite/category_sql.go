package sqlite

import (
	"context"

	"finax-server/src/models"
)

const categoryColumns = `id, user_id, name, icon, color, type, created_at, updated_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	var (
		c                    models.Category
		createdAt, updatedAt int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &c.Type, &createdAt, &updatedAt); err != nil {
		return nil, translate(err)
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = ?
		ORDER BY type, name, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	return scanCategory(s.conn.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ? AND user_id = ?
	`, id, userID))
}
