package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"casinoledger/internal/repos/accounts"
)

func (r *accountsRepo) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find by id: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) FindByName(ctx context.Context, username string) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
	`, username)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find by name: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) FindByExternalID(ctx context.Context, externalID int64) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE external_id = $1
	`, externalID)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find by external id: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) FindByExternalIDTx(tx *sql.Tx, externalID int64) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE external_id = $1
	`, externalID)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find by external id (tx): %w", err)
	}

	return a, nil
}
