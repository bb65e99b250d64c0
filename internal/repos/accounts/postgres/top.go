package accounts

import (
	"context"
	"fmt"

	"casinoledger/internal/repos/accounts"
)

func (r *accountsRepo) Top(ctx context.Context, n int) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY balance DESC, id ASC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query top: %w", err)
	}
	defer rows.Close()

	var top []accounts.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top row: %w", err)
		}

		top = append(top, *a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate top rows: %w", err)
	}

	return top, nil
}
