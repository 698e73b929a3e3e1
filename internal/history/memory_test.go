package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tablestakes/holdem/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		hand := CompletedHand{
			GameID:     "g1",
			HandID:     fmt.Sprintf("h%d", i),
			HandNumber: i,
			PlayedAt:   time.Now(),
			Result:     game.HandResult{HandNumber: i, Payouts: map[int]int{0: 30}},
			Actions: []ActionRecord{
				{DecisionID: fmt.Sprintf("d%d", i), Seat: 0, Street: "pre_flop", Action: "call"},
			},
		}
		if err := store.SaveHand(ctx, hand); err != nil {
			t.Fatal(err)
		}
	}

	hands, err := store.Hands(ctx, "g1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(hands))
	}
	if hands[0].HandID != "h3" || hands[1].HandID != "h2" {
		t.Errorf("hands = %s, %s, want newest first h3, h2", hands[0].HandID, hands[1].HandID)
	}
	if hands[0].Result.Payouts[0] != 30 {
		t.Errorf("payout = %d, want 30", hands[0].Result.Payouts[0])
	}

	if hands, _ := store.Hands(ctx, "missing", 10); len(hands) != 0 {
		t.Errorf("unknown game returned %d hands", len(hands))
	}
}

func TestMemoryStoreBounded(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(5)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		hand := CompletedHand{GameID: "g1", HandID: fmt.Sprintf("h%d", i), HandNumber: i}
		if err := store.SaveHand(ctx, hand); err != nil {
			t.Fatal(err)
		}
	}
	hands, err := store.Hands(ctx, "g1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 5 {
		t.Errorf("got %d hands, want cap of 5", len(hands))
	}
	if hands[0].HandID != "h19" {
		t.Errorf("newest hand = %s, want h19", hands[0].HandID)
	}
}
