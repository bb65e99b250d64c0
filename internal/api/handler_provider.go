package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"casinoledger/internal/games"
	"casinoledger/internal/repos/accounts"
	"casinoledger/internal/services/auth"
	"casinoledger/internal/services/ledger"
	"casinoledger/internal/sessions"
)

// HandlerProvider wires the gateway, the ledger engine, and the session
// store into HTTP handlers.
type HandlerProvider struct {
	auth     *auth.AuthService
	ledger   *ledger.LedgerService
	sessions *sessions.Store
	accounts accounts.Accounts
}

func NewHandler(authSvc *auth.AuthService, ledgerSvc *ledger.LedgerService, sess *sessions.Store, repo accounts.Accounts) *HandlerProvider {
	return &HandlerProvider{
		auth:     authSvc,
		ledger:   ledgerSvc,
		sessions: sess,
		accounts: repo,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}

	return true
}

// writeDomainError maps every typed failure of the gateway and ledger to
// a specific status. Anything unrecognized is treated as a transient
// storage failure: the only class a caller may retry.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrWeakCredential):
		writeError(w, http.StatusBadRequest, "name must be at least 3 and password at least 6 characters")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, accounts.ErrDuplicateName):
		writeError(w, http.StatusConflict, "name already taken")
	case errors.Is(err, accounts.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, accounts.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidStake):
		writeError(w, http.StatusBadRequest, "stake must be between 1 and your balance")
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrSameAccount):
		writeError(w, http.StatusBadRequest, "cannot transfer to yourself")
	case errors.Is(err, games.ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, "pick exactly 3 distinct numbers between 1 and 36")
	default:
		slog.Error("storage failure", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
	}
}

type accountView struct {
	ID       int64  `json:"accountId"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

func toAccountView(a *accounts.Account) accountView {
	return accountView{ID: a.ID, Username: a.Username, Balance: a.Balance}
}

// --- Session middleware ---

type ctxKey int

const ctxKeyAccountID ctxKey = iota

func accountIDFromCtx(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKeyAccountID).(int64)
	return id
}

func (h *HandlerProvider) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		accountID, err := h.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, sessions.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			writeDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyAccountID, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// --- Auth handlers ---

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// RegisterHandler handles POST /auth/register
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := h.auth.Register(r.Context(), req.Username, req.Password, auth.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), acc.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"account": toAccountView(acc),
		"token":   token,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler handles POST /auth/login
func (h *HandlerProvider) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), acc.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": toAccountView(acc),
		"token":   token,
	})
}

// LogoutHandler handles POST /auth/logout
func (h *HandlerProvider) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	err := h.sessions.Revoke(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Account handlers ---

// GetBalanceHandler handles GET /me/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromCtx(r.Context())

	balance, err := h.ledger.Balance(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   balance,
	})
}

type slotBetRequest struct {
	Stake int64 `json:"stake"`
}

// SlotBetHandler handles POST /me/bets/slot
func (h *HandlerProvider) SlotBetHandler(w http.ResponseWriter, r *http.Request) {
	var req slotBetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.settle(w, r, ledger.BetRequest{Kind: games.KindSlot, Stake: req.Stake})
}

type rouletteBetRequest struct {
	Stake   int64 `json:"stake"`
	Numbers []int `json:"numbers"`
}

// RouletteBetHandler handles POST /me/bets/roulette
func (h *HandlerProvider) RouletteBetHandler(w http.ResponseWriter, r *http.Request) {
	var req rouletteBetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.settle(w, r, ledger.BetRequest{Kind: games.KindRoulette, Stake: req.Stake, Picks: req.Numbers})
}

func (h *HandlerProvider) settle(w http.ResponseWriter, r *http.Request, bet ledger.BetRequest) {
	accountID := accountIDFromCtx(r.Context())

	res, err := h.ledger.SettleBet(r.Context(), accountID, bet)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":  res.Outcome.Descriptor,
		"win":     res.Outcome.Win,
		"delta":   res.Outcome.Delta,
		"balance": res.NewBalance,
	})
}

type transferRequest struct {
	ToUsername string `json:"toUsername"`
	Amount     int64  `json:"amount"`
}

// TransferHandler handles POST /me/transfers
func (h *HandlerProvider) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fromID := accountIDFromCtx(r.Context())

	recipient, err := h.accounts.FindByName(r.Context(), req.ToUsername)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	res, err := h.ledger.Transfer(r.Context(), fromID, recipient.ID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fromBalance": res.FromBalance,
		"toBalance":   res.ToBalance,
	})
}

// LeaderboardHandler handles GET /leaderboard?limit=n
func (h *HandlerProvider) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10

	raw := r.URL.Query().Get("limit")
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	top, err := h.ledger.Top(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows := make([]accountView, 0, len(top))
	for i := range top {
		rows = append(rows, toAccountView(&top[i]))
	}

	writeJSON(w, http.StatusOK, rows)
}
