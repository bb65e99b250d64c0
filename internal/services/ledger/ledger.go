package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"casinoledger/internal/games"
	"casinoledger/internal/infra/pgutils"
	"casinoledger/internal/repos/accounts"
	pgaccounts "casinoledger/internal/repos/accounts/postgres"
)

// LedgerService owns every balance mutation. Each operation runs in a
// single DB transaction; on any failure the transaction rolls back
// wholesale and no partial state is ever observable.
type LedgerService struct {
	db       *sql.DB
	accounts accounts.Accounts
	rng      games.Rand
}

func New(db *sql.DB) *LedgerService {
	return NewWithRand(db, sysRand{})
}

// NewWithRand injects the randomness source, which keeps settlements
// deterministic in tests.
func NewWithRand(db *sql.DB, rng games.Rand) *LedgerService {
	return &LedgerService{
		db:       db,
		accounts: pgaccounts.New(db),
		rng:      rng,
	}
}

// sysRand delegates to math/rand's goroutine-safe top-level source.
type sysRand struct{}

func (sysRand) IntN(n int) int { return rand.Intn(n) }

// SettleBet resolves a game outcome and applies its payout delta as one
// atomic unit:
//
//  1. Lock the account row (FOR UPDATE).
//  2. Validate 1 <= stake <= current balance against the locked value.
//  3. Resolve the game with the injected randomness source.
//  4. Apply the delta; the row lock ensures no concurrent debit raced in
//     between, and if one somehow did, the whole bet rolls back unchanged.
func (s *LedgerService) SettleBet(ctx context.Context, accountID int64, req BetRequest) (*SettlementResult, error) {
	var result *SettlementResult

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.LockForUpdate(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		if req.Stake < 1 || req.Stake > acc.Balance {
			return fmt.Errorf("stake %d against balance %d: %w", req.Stake, acc.Balance, ErrInvalidStake)
		}

		outcome, err := s.resolve(req)
		if err != nil {
			return fmt.Errorf("resolve game: %w", err)
		}

		newBalance, err := s.accounts.ApplyDelta(tx, accountID, outcome.Delta)
		if err != nil {
			return fmt.Errorf("apply payout delta: %w", err)
		}

		result = &SettlementResult{Outcome: outcome, NewBalance: newBalance}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle bet: %w", err)
	}

	return result, nil
}

func (s *LedgerService) resolve(req BetRequest) (games.Outcome, error) {
	switch req.Kind {
	case games.KindSlot:
		return games.SpinSlots(req.Stake, s.rng), nil
	case games.KindRoulette:
		return games.SpinRoulette(req.Stake, req.Picks, s.rng)
	default:
		return games.Outcome{}, fmt.Errorf("unknown game kind %q", req.Kind)
	}
}

// Transfer applies the paired debit/credit in one transaction. Rows are
// locked in ascending account-id order regardless of direction, so two
// opposing transfers over the same pair cannot deadlock.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	if fromID == toID {
		return nil, ErrSameAccount
	}

	if amount <= 0 {
		return nil, fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}

	var result *TransferResult

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		first, second := fromID, toID
		if first > second {
			first, second = second, first
		}

		_, err := s.accounts.LockForUpdate(tx, first)
		if err != nil {
			return fmt.Errorf("lock account %d: %w", first, err)
		}

		_, err = s.accounts.LockForUpdate(tx, second)
		if err != nil {
			return fmt.Errorf("lock account %d: %w", second, err)
		}

		fromBalance, err := s.accounts.ApplyDelta(tx, fromID, -amount)
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}

		toBalance, err := s.accounts.ApplyDelta(tx, toID, amount)
		if err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}

		result = &TransferResult{FromBalance: fromBalance, ToBalance: toBalance}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	return result, nil
}

// Balance returns the account's current balance (no locks).
func (s *LedgerService) Balance(ctx context.Context, accountID int64) (int64, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return acc.Balance, nil
}

// Top is the read-only leaderboard projection: balance descending, ties
// broken by ascending id.
func (s *LedgerService) Top(ctx context.Context, n int) ([]accounts.Account, error) {
	if n < 1 {
		n = 10
	}
	if n > 100 {
		n = 100
	}

	top, err := s.accounts.Top(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	return top, nil
}
