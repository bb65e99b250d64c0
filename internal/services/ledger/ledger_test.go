package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"casinoledger/internal/games"
	"casinoledger/internal/infra/pgtestutil"
	"casinoledger/internal/repos/accounts"
)

// scriptedRand replays fixed draws (reduced into range) for
// deterministic settlements.
type scriptedRand struct {
	mu    sync.Mutex
	draws []int
	pos   int
}

func (s *scriptedRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.draws[s.pos%len(s.draws)]
	s.pos++

	return v % n
}

func seedAccount(t *testing.T, db *sql.DB, id int64, username string, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, username, balance) VALUES ($1, $2, $3)
	`, id, username, balance)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}

func getBalance(t *testing.T, db *sql.DB, id int64) int64 {
	t.Helper()

	var balance int64

	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, id).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance(%d): %v", id, err)
	}

	return balance
}

func TestSettleBet_SlotMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		draws       []int
		stake       int64
		wantDelta   int64
		wantBalance int64
	}{
		{name: "three_of_a_kind", draws: []int{5, 5, 5}, stake: 10, wantDelta: 20, wantBalance: 1_020},
		{name: "two_match", draws: []int{5, 5, 9}, stake: 10, wantDelta: 10, wantBalance: 1_010},
		{name: "all_distinct", draws: []int{1, 5, 9}, stake: 10, wantDelta: -10, wantBalance: 990},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, 1, "slot_player", 1_000)

			svc := NewWithRand(db, &scriptedRand{draws: tt.draws})

			res, err := svc.SettleBet(context.Background(), 1, BetRequest{Kind: games.KindSlot, Stake: tt.stake})
			if err != nil {
				t.Fatalf("settle bet: %v", err)
			}

			if res.Outcome.Delta != tt.wantDelta {
				t.Fatalf("delta: want %d, got %d", tt.wantDelta, res.Outcome.Delta)
			}
			if res.NewBalance != tt.wantBalance {
				t.Fatalf("new balance: want %d, got %d", tt.wantBalance, res.NewBalance)
			}
			if got := getBalance(t, db, 1); got != tt.wantBalance {
				t.Fatalf("persisted balance: want %d, got %d", tt.wantBalance, got)
			}
		})
	}
}

func TestSettleBet_RouletteMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		draw        int // raw IntN(36) value; drawn number is draw+1
		wantDelta   int64
		wantBalance int64
	}{
		{name: "hit_pays_35x", draw: 6, wantDelta: 350, wantBalance: 1_350},
		{name: "miss_loses_stake", draw: 7, wantDelta: -10, wantBalance: 990},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, 1, "roulette_player", 1_000)

			svc := NewWithRand(db, &scriptedRand{draws: []int{tt.draw}})

			res, err := svc.SettleBet(context.Background(), 1, BetRequest{
				Kind:  games.KindRoulette,
				Stake: 10,
				Picks: []int{7, 14, 21},
			})
			if err != nil {
				t.Fatalf("settle bet: %v", err)
			}

			if res.Outcome.Delta != tt.wantDelta {
				t.Fatalf("delta: want %d, got %d", tt.wantDelta, res.Outcome.Delta)
			}
			if got := getBalance(t, db, 1); got != tt.wantBalance {
				t.Fatalf("persisted balance: want %d, got %d", tt.wantBalance, got)
			}
		})
	}
}

func TestSettleBet_RejectionLeavesBalanceUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		accountID int64
		bet       BetRequest
		wantErr   error
	}{
		{
			name:      "zero_stake",
			accountID: 1,
			bet:       BetRequest{Kind: games.KindSlot, Stake: 0},
			wantErr:   ErrInvalidStake,
		},
		{
			name:      "negative_stake",
			accountID: 1,
			bet:       BetRequest{Kind: games.KindSlot, Stake: -5},
			wantErr:   ErrInvalidStake,
		},
		{
			name:      "stake_above_balance",
			accountID: 1,
			bet:       BetRequest{Kind: games.KindSlot, Stake: 1_001},
			wantErr:   ErrInvalidStake,
		},
		{
			name:      "bad_roulette_selection",
			accountID: 1,
			bet:       BetRequest{Kind: games.KindRoulette, Stake: 10, Picks: []int{1, 2}},
			wantErr:   games.ErrInvalidSelection,
		},
		{
			name:      "missing_account",
			accountID: 404,
			bet:       BetRequest{Kind: games.KindSlot, Stake: 10},
			wantErr:   accounts.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, 1, "careful_player", 1_000)

			svc := NewWithRand(db, &scriptedRand{draws: []int{0, 1, 2}})

			_, err := svc.SettleBet(context.Background(), tt.accountID, tt.bet)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}

			if got := getBalance(t, db, 1); got != 1_000 {
				t.Fatalf("balance changed on rejected bet: %d", got)
			}
		})
	}
}

// Five concurrent all-in bets against one account: exactly the
// affordable subset (one) settles and the balance never goes negative.
func TestSettleBet_ConcurrentAffordableSubset(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "all_in", 100)

	// Draws cycle 0,1,2: always three distinct symbols, every bet loses.
	svc := NewWithRand(db, &scriptedRand{draws: []int{0, 1, 2}})

	const workers = 5

	var wg sync.WaitGroup
	var mu sync.Mutex
	settled, rejected := 0, 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			_, err := svc.SettleBet(context.Background(), 1, BetRequest{Kind: games.KindSlot, Stake: 100})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				settled++
			case errors.Is(err, ErrInvalidStake) || errors.Is(err, accounts.ErrInsufficientFunds):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if settled != 1 || rejected != workers-1 {
		t.Fatalf("want 1 settled and %d rejected, got settled=%d rejected=%d", workers-1, settled, rejected)
	}

	if got := getBalance(t, db, 1); got != 0 {
		t.Fatalf("final balance: want 0, got %d", got)
	}
}

func TestTransfer_Conservation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "sender", 1_000)
	seedAccount(t, db, 2, "recipient", 200)

	svc := New(db)

	res, err := svc.Transfer(context.Background(), 1, 2, 300)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if res.FromBalance != 700 || res.ToBalance != 500 {
		t.Fatalf("balances: want 700/500, got %d/%d", res.FromBalance, res.ToBalance)
	}

	total := getBalance(t, db, 1) + getBalance(t, db, 2)
	if total != 1_200 {
		t.Fatalf("coins not conserved: want 1200, got %d", total)
	}
}

func TestTransfer_RejectionLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fromID  int64
		toID    int64
		amount  int64
		wantErr error
	}{
		{name: "insufficient_funds", fromID: 1, toID: 2, amount: 5_000, wantErr: accounts.ErrInsufficientFunds},
		{name: "same_account", fromID: 1, toID: 1, amount: 100, wantErr: ErrSameAccount},
		{name: "zero_amount", fromID: 1, toID: 2, amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative_amount", fromID: 1, toID: 2, amount: -50, wantErr: ErrInvalidAmount},
		{name: "missing_recipient", fromID: 1, toID: 404, amount: 100, wantErr: accounts.ErrAccountNotFound},
		{name: "missing_sender", fromID: 404, toID: 2, amount: 100, wantErr: accounts.ErrAccountNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, 1, "sender", 1_000)
			seedAccount(t, db, 2, "recipient", 200)

			svc := New(db)

			_, err := svc.Transfer(context.Background(), tt.fromID, tt.toID, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}

			if got := getBalance(t, db, 1); got != 1_000 {
				t.Fatalf("sender balance changed: %d", got)
			}
			if got := getBalance(t, db, 2); got != 200 {
				t.Fatalf("recipient balance changed: %d", got)
			}
		})
	}
}

// Opposing transfers over the same pair must not deadlock: both
// directions lock rows in ascending-id order.
func TestTransfer_OpposingDirectionsNoDeadlock(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "left", 1_000)
	seedAccount(t, db, 2, "right", 1_000)

	svc := New(db)

	const rounds = 10

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := svc.Transfer(context.Background(), 1, 2, 10)
			if err != nil && !errors.Is(err, accounts.ErrInsufficientFunds) {
				t.Errorf("1->2: %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := svc.Transfer(context.Background(), 2, 1, 10)
			if err != nil && !errors.Is(err, accounts.ErrInsufficientFunds) {
				t.Errorf("2->1: %v", err)
			}
		}
	}()
	wg.Wait()

	total := getBalance(t, db, 1) + getBalance(t, db, 2)
	if total != 2_000 {
		t.Fatalf("coins not conserved: want 2000, got %d", total)
	}
}

// Concurrent partially-affordable transfers: with 1000 coins and ten
// 300-coin transfers, exactly three settle.
func TestTransfer_ConcurrentAffordableSubset(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "payer", 1_000)
	seedAccount(t, db, 2, "payee", 0)

	svc := New(db)

	const workers = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			_, err := svc.Transfer(context.Background(), 1, 2, 300)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				ok++
			case errors.Is(err, accounts.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 3 || insufficient != 7 {
		t.Fatalf("want 3 ok and 7 insufficient, got ok=%d insufficient=%d", ok, insufficient)
	}

	if got := getBalance(t, db, 1); got != 100 {
		t.Fatalf("payer balance: want 100, got %d", got)
	}
	if got := getBalance(t, db, 2); got != 900 {
		t.Fatalf("payee balance: want 900, got %d", got)
	}
}

func TestTop_DelegatesOrdering(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "p1", 300)
	seedAccount(t, db, 2, "p2", 500)
	seedAccount(t, db, 3, "p3", 500)
	seedAccount(t, db, 4, "p4", 100)

	svc := New(db)

	top, err := svc.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	wantIDs := []int64{2, 3, 1, 4}
	for i, want := range wantIDs {
		if top[i].ID != want {
			t.Fatalf("rank %d: want id %d, got %d", i+1, want, top[i].ID)
		}
	}
}
