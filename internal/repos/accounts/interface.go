package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrDuplicateName = errors.New("duplicate account name")
var ErrInsufficientFunds = errors.New("insufficient funds")

// StartingBalance is granted to every account at creation, on both the
// password-registration and the external-identity provisioning path.
const StartingBalance int64 = 1000

type Account struct {
	ID               int64
	Username         string
	PasswordHash     sql.NullString
	ExternalID       sql.NullInt64
	Balance          int64
	FirstName        sql.NullString
	LastName         sql.NullString
	ExternalUsername sql.NullString
	CreatedAt        time.Time
}

// CreateParams describes a new account. Exactly one of PasswordHash or
// ExternalID is expected to be set, depending on the provisioning path.
type CreateParams struct {
	Username         string
	PasswordHash     sql.NullString
	ExternalID       sql.NullInt64
	FirstName        sql.NullString
	LastName         sql.NullString
	ExternalUsername sql.NullString
}

type Accounts interface {
	Create(ctx context.Context, params CreateParams) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByName(ctx context.Context, username string) (*Account, error)
	FindByExternalID(ctx context.Context, externalID int64) (*Account, error)

	// CreateExternal inserts a federated account if none exists for
	// externalID yet. It reports whether a row was inserted; callers
	// re-select either way, which makes first contact idempotent.
	CreateExternal(tx *sql.Tx, externalID int64, params CreateParams) (bool, error)
	FindByExternalIDTx(tx *sql.Tx, externalID int64) (*Account, error)

	// LockForUpdate reads the account row under FOR UPDATE, serializing
	// every balance-affecting operation on the same account.
	LockForUpdate(tx *sql.Tx, id int64) (*Account, error)

	// ApplyDelta atomically adds delta to the balance and returns the new
	// value. A result below zero is rejected with ErrInsufficientFunds
	// and leaves the row untouched.
	ApplyDelta(tx *sql.Tx, id int64, delta int64) (int64, error)

	// Top returns up to n accounts ordered by balance descending,
	// ties broken by ascending id.
	Top(ctx context.Context, n int) ([]Account, error)
}
