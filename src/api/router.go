package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finax-server/src/handlers"
	"finax-server/src/middleware"
	"finax-server/src/services"
)

type Options struct {
	CORSOrigins []string
	ReadOnly    bool
}

func NewRouter(store handlers.Pinger, authService *services.AuthService, ledger *services.LedgerService, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.ReadOnly(opts.ReadOnly))

	r.Get("/", handlers.Index())
	r.Get("/health", handlers.Health(store))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlers.Register(authService))
		r.Post("/login", handlers.Login(authService))
		r.Post("/forgot-password", handlers.ForgotPassword(authService))
		r.Post("/reset-password", handlers.ResetPassword(authService))

		r.With(middleware.BearerAuth(authService)).Group(func(r chi.Router) {
			r.Put("/profile", handlers.UpdateProfile(authService))
			r.Patch("/avatar", handlers.UpdateAvatar(authService))
		})
	})

	// Protected routes
	r.With(middleware.BearerAuth(authService)).Group(func(r chi.Router) {
		r.Get("/categories", handlers.GetCategories(ledger))

		r.Get("/transactions", handlers.GetTransactions(ledger))
		r.Post("/transactions", handlers.CreateTransaction(ledger))
		r.Get("/transactions/balance", handlers.GetBalance(ledger))
	})

	r.NotFound(handlers.NotFound)

	return r
}
