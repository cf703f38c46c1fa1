package services

import (
	"time"

	"finax-server/src/models"
)

type categorySeed struct {
	name, icon, color string
	typ               models.TransactionType
}

var defaultCategories = []categorySeed{
	{"Salário", "💰", "#00A86B", models.TypeIncome},
	{"Freelance", "💻", "#26A69A", models.TypeIncome},
	{"Investimentos", "📈", "#5C6BC0", models.TypeIncome},
	{"Outras receitas", "➕", "#66BB6A", models.TypeIncome},
	{"Alimentação", "🍔", "#EF5350", models.TypeOutcome},
	{"Transporte", "🚌", "#42A5F5", models.TypeOutcome},
	{"Moradia", "🏠", "#8D6E63", models.TypeOutcome},
	{"Saúde", "💊", "#EC407A", models.TypeOutcome},
	{"Educação", "📚", "#7E57C2", models.TypeOutcome},
	{"Lazer", "🎮", "#FFA726", models.TypeOutcome},
	{"Compras", "🛍️", "#AB47BC", models.TypeOutcome},
	{"Outras despesas", "📦", "#78909C", models.TypeOutcome},
}

// DefaultCategories returns the starting categories for a new user.
func DefaultCategories(userID string, now time.Time, newID func() string) []models.Category {
	categories := make([]models.Category, 0, len(defaultCategories))
	for _, seed := range defaultCategories {
		categories = append(categories, models.Category{
			ID:        newID(),
			UserID:    userID,
			Name:      seed.name,
			Icon:      seed.icon,
			Color:     seed.color,
			Type:      seed.typ,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return categories
}
