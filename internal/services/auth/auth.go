package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"casinoledger/internal/infra/pgutils"
	"casinoledger/internal/repos/accounts"
	pgaccounts "casinoledger/internal/repos/accounts/postgres"
)

var (
	ErrWeakCredential     = errors.New("weak credential")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// AuthService maps callers to accounts and provisions accounts on first
// contact. It never mutates balances beyond the creation grant.
type AuthService struct {
	db       *sql.DB
	accounts accounts.Accounts
}

func New(db *sql.DB) *AuthService {
	return &AuthService{
		db:       db,
		accounts: pgaccounts.New(db),
	}
}

// Profile carries optional metadata; none of it participates in
// invariants.
type Profile struct {
	FirstName        string
	LastName         string
	ExternalUsername string
}

// Register provisions a password-based account with the starting grant.
func (s *AuthService) Register(ctx context.Context, username, password string, profile Profile) (*accounts.Account, error) {
	if len(username) < minUsernameLen || len(password) < minPasswordLen {
		return nil, ErrWeakCredential
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	acc, err := s.accounts.Create(ctx, accounts.CreateParams{
		Username:     username,
		PasswordHash: sql.NullString{String: hash, Valid: true},
		FirstName:    nullString(profile.FirstName),
		LastName:     nullString(profile.LastName),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return acc, nil
}

// Authenticate verifies a username/password pair. A missing account and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*accounts.Account, error) {
	acc, err := s.accounts.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("authenticate: %w", err)
	}

	// Federated accounts have no local credential.
	if !acc.PasswordHash.Valid || !CheckPassword(password, acc.PasswordHash.String) {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// GetOrCreateByExternalID resolves an external messaging identity to an
// account, creating one on first contact. Concurrent first contacts for
// the same identity resolve to exactly one account: the insert is
// ON CONFLICT DO NOTHING on the external_id unique index and the winner
// is re-read afterwards.
func (s *AuthService) GetOrCreateByExternalID(ctx context.Context, externalID int64, profile Profile) (*accounts.Account, error) {
	acc, err := s.accounts.FindByExternalID(ctx, externalID)
	if err == nil {
		return acc, nil
	}

	if !errors.Is(err, accounts.ErrAccountNotFound) {
		return nil, fmt.Errorf("resolve external id: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, cerr := s.accounts.CreateExternal(tx, externalID, accounts.CreateParams{
			// Internal display name is derived from the identity so it
			// cannot collide with another federated account.
			Username:         fmt.Sprintf("tg_%d", externalID),
			FirstName:        nullString(profile.FirstName),
			LastName:         nullString(profile.LastName),
			ExternalUsername: nullString(profile.ExternalUsername),
		})
		if cerr != nil {
			return cerr
		}

		acc, cerr = s.accounts.FindByExternalIDTx(tx, externalID)
		if cerr != nil {
			return fmt.Errorf("re-read external account: %w", cerr)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("provision external account: %w", err)
	}

	return acc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
