package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"finax-server/src/models"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Finax API is running"})
	}
}

// Health answers ok once the store responds to a ping.
func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Printf("ERROR: Health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "database unavailable"})
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}
}
