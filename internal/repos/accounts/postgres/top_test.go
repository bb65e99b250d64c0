package accounts

import (
	"context"
	"testing"

	"casinoledger/internal/infra/pgtestutil"
)

func TestAccounts_Top_OrderingAndTieBreak(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	// Balances 300/500/500/100 on ids 1..4 must rank 2,3,1,4:
	// balance descending, ties broken by ascending id.
	seedAccount(t, db, 1, "p1", 300)
	seedAccount(t, db, 2, "p2", 500)
	seedAccount(t, db, 3, "p3", 500)
	seedAccount(t, db, 4, "p4", 100)

	top, err := repo.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	wantIDs := []int64{2, 3, 1, 4}
	if len(top) != len(wantIDs) {
		t.Fatalf("rows: want %d, got %d", len(wantIDs), len(top))
	}

	for i, want := range wantIDs {
		if top[i].ID != want {
			t.Fatalf("rank %d: want id %d, got %d", i+1, want, top[i].ID)
		}
	}
}

func TestAccounts_Top_LimitApplied(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 1, "p1", 300)
	seedAccount(t, db, 2, "p2", 500)
	seedAccount(t, db, 3, "p3", 100)

	top, err := repo.Top(context.Background(), 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("rows: want 2, got %d", len(top))
	}
	if top[0].ID != 2 || top[1].ID != 1 {
		t.Fatalf("want ids [2 1], got [%d %d]", top[0].ID, top[1].ID)
	}
}
