package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"casinoledger/internal/repos/accounts"
)

func (r *accountsRepo) Create(ctx context.Context, params accounts.CreateParams) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (username, password_hash, external_id, balance,
		                      first_name, last_name, external_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+accountColumns,
		params.Username, params.PasswordHash, params.ExternalID, accounts.StartingBalance,
		params.FirstName, params.LastName, params.ExternalUsername,
	)

	a, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, accounts.ErrDuplicateName
		}

		return nil, fmt.Errorf("insert account: %w", err)
	}

	return a, nil
}

// CreateExternal races safely with itself: two concurrent first contacts
// from the same external identity produce exactly one row.
func (r *accountsRepo) CreateExternal(tx *sql.Tx, externalID int64, params accounts.CreateParams) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO accounts (username, external_id, balance,
		                      first_name, last_name, external_username)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (external_id) DO NOTHING
	`,
		params.Username, externalID, accounts.StartingBalance,
		params.FirstName, params.LastName, params.ExternalUsername,
	)
	if err != nil {
		// The username index can still fire when a registered account
		// already claimed the name.
		if isUniqueViolation(err) {
			return false, accounts.ErrDuplicateName
		}

		return false, fmt.Errorf("insert external account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
