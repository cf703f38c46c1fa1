package postgres

import (
	"context"

	"finax-server/src/models"
)

func (s *Store) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, icon, color, type, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY type, name, id
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, icon, color, type, created_at, updated_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`
	var c models.Category
	err := s.pool.QueryRow(ctx, query, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
