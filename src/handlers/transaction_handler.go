package handlers

import (
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"finax-server/src/apperr"
	"finax-server/src/middleware"
	"finax-server/src/models"
	"finax-server/src/services"
	"finax-server/src/util"
)

// createTransactionBody accepts the date as a string so both RFC 3339 timestamps and bare days parse.
type createTransactionBody struct {
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	CategoryID  string                 `json:"categoryId"`
	Date        string                 `json:"date"`
}

func (b createTransactionBody) request() (models.CreateTransactionRequest, error) {
	req := models.CreateTransactionRequest{
		Description: b.Description,
		Amount:      b.Amount,
		Type:        b.Type,
		CategoryID:  b.CategoryID,
	}
	if b.Date != "" {
		date, err := util.ParseDate(b.Date)
		if err != nil {
			return req, apperr.Validation("date must be an ISO 8601 date or timestamp")
		}
		req.Date = &date
	}
	return req, nil
}

func GetTransactions(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactions, err := ledger.ListTransactions(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if transactions == nil {
			transactions = []models.Transaction{}
		}

		writeJSON(w, http.StatusOK, transactions)
	}
}

func CreateTransaction(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var body createTransactionBody
		if err := decodeJSON(w, r, &body); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body - User: %s: %v", userID, err)
			writeError(w, r, err)
			return
		}
		req, err := body.request()
		if err != nil {
			writeError(w, r, err)
			return
		}

		transaction, err := ledger.CreateTransaction(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, transaction)
	}
}

func GetBalance(ledger *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := ledger.Balance(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, balance)
	}
}
