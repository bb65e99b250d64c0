package accounts

import (
	"database/sql"

	"casinoledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

const accountColumns = `
	id, username, password_hash, external_id, balance,
	first_name, last_name, external_username, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	var a accounts.Account

	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.ExternalID, &a.Balance,
		&a.FirstName, &a.LastName, &a.ExternalUsername, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}
