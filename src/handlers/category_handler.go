package handlers

import (
	"net/http"

	"finax-server/src/middleware"
	"finax-server/src/models"
	"finax-server/src/services"
)

func GetCategories(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := ledger.ListCategories(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}

		writeJSON(w, http.StatusOK, categories)
	}
}
