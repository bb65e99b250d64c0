package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"casinoledger/internal/repos/accounts"
)

// ApplyDelta is the single balance mutation primitive. The guard in the
// WHERE clause makes the read-compute-write indivisible: a result that
// would go negative updates nothing and the row keeps its old value.
func (r *accountsRepo) ApplyDelta(tx *sql.Tx, id int64, delta int64) (int64, error) {
	var newBalance int64

	err := tx.QueryRow(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
		  AND balance + $2 >= 0
		RETURNING balance
	`, id, delta).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("apply delta: %w", err)
	}

	// Zero rows: either the account is missing or the guard rejected the
	// delta. Tell them apart so callers can report a specific reason.
	var exists bool

	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("apply delta existence check: %w", err)
	}

	if !exists {
		return 0, accounts.ErrAccountNotFound
	}

	return 0, accounts.ErrInsufficientFunds
}
