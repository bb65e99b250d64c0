package ledger

import (
	"errors"

	"casinoledger/internal/games"
)

var (
	ErrInvalidStake  = errors.New("invalid stake")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrSameAccount   = errors.New("transfer to same account")
)

// BetRequest describes one bet. Picks is only read for roulette.
type BetRequest struct {
	Kind  games.Kind
	Stake int64
	Picks []int
}

type SettlementResult struct {
	Outcome    games.Outcome
	NewBalance int64
}

type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}
