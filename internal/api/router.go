package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casinoledger/internal/repos/accounts"
	"casinoledger/internal/services/auth"
	"casinoledger/internal/services/ledger"
	"casinoledger/internal/sessions"
)

// NewRouter constructs the HTTP router with all API endpoints registered.
func NewRouter(authSvc *auth.AuthService, ledgerSvc *ledger.LedgerService, sess *sessions.Store, repo accounts.Accounts) http.Handler {
	h := NewHandler(authSvc, ledgerSvc, sess, repo)
	r := chi.NewRouter()

	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)
	r.Post("/auth/logout", h.LogoutHandler)

	r.Get("/leaderboard", h.LeaderboardHandler)

	r.Route("/me", func(r chi.Router) {
		r.Use(h.requireSession)

		r.Get("/balance", h.GetBalanceHandler)
		r.Post("/bets/slot", h.SlotBetHandler)
		r.Post("/bets/roulette", h.RouletteBetHandler)
		r.Post("/transfers", h.TransferHandler)
	})

	return r
}
