package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"casinoledger/internal/repos/accounts"
)

func (r *accountsRepo) LockForUpdate(tx *sql.Tx, id int64) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock account: %w", err)
	}

	return a, nil
}
