package ai

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/poker"
)

func mustCards(t *testing.T, notations ...string) []poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(notations...)
	if err != nil {
		t.Fatal(err)
	}
	return cards
}

func TestPreFlopStrengthBuckets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hole []string
		want HandStrength
	}{
		{[]string{"As", "Ah"}, VeryStrong},
		{[]string{"Ts", "Th"}, VeryStrong},
		{[]string{"As", "Ks"}, VeryStrong},
		{[]string{"8c", "8d"}, Strong},
		{[]string{"2c", "2d"}, Medium},
		{[]string{"Jh", "Ts"}, Medium},
		{[]string{"7d", "2c"}, VeryWeak},
	}
	for _, tt := range tests {
		hole := mustCards(t, tt.hole...)
		got := EvaluateStrength(hole, nil, game.PreFlop)
		if got != tt.want {
			t.Errorf("EvaluateStrength(%v) = %v, want %v", tt.hole, got, tt.want)
		}
	}
}

func TestPostFlopStrengthBuckets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hole  []string
		board []string
		want  HandStrength
	}{
		{"set", []string{"8c", "8d"}, []string{"8s", "Kh", "2d"}, Strong},
		{"flush", []string{"As", "Ks"}, []string{"2s", "7s", "9s"}, VeryStrong},
		{"straight flush", []string{"6h", "5h"}, []string{"4h", "3h", "2h"}, VeryStrong},
		{"royal flush", []string{"As", "Ks"}, []string{"Qs", "Js", "Ts", "2d", "3c"}, VeryStrong},
		{"top pair", []string{"Ah", "Kd"}, []string{"Kh", "7c", "2s"}, Medium},
		{"board pair only", []string{"9h", "4d"}, []string{"Kh", "Kc", "2s"}, Weak},
		{"two overcards", []string{"Ah", "Kd"}, []string{"9h", "7c", "2s"}, Weak},
		{"air", []string{"5h", "4d"}, []string{"Kh", "9c", "As"}, VeryWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hole := mustCards(t, tt.hole...)
			board := mustCards(t, tt.board...)
			got := EvaluateStrength(hole, board, game.Flop)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFallbackChecksWhenFree(t *testing.T) {
	t.Parallel()

	view := game.View{ValidActions: []game.ValidAction{
		{Action: game.Fold}, {Action: game.Check},
	}}
	if d := Fallback(view); d.Action != game.Check {
		t.Errorf("fallback = %v, want check", d.Action)
	}

	view.ValidActions = []game.ValidAction{
		{Action: game.Fold}, {Action: game.Call, Min: 10, Max: 10},
	}
	if d := Fallback(view); d.Action != game.Fold {
		t.Errorf("fallback = %v, want fold facing a bet", d.Action)
	}
}

func TestForPersonalityUnknown(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)
	if _, err := ForPersonality("tilted", rand.New(rand.NewSource(1)), logger); err == nil {
		t.Error("expected an error for an unknown personality")
	}
	if _, err := ForPersonality("", rand.New(rand.NewSource(1)), logger); err != nil {
		t.Errorf("empty personality should default to balanced: %v", err)
	}
}

// TestDecisionsAreLegal plays every personality against the engine for many
// hands; every proposed decision must pass engine validation.
func TestDecisionsAreLegal(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)
	personalities := []string{
		PersonalityBalanced, PersonalityAggressive, PersonalityTight,
		PersonalityCallingStation, PersonalityRandom,
	}

	for _, name := range personalities {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(42))
			source, err := ForPersonality(name, rng, logger)
			if err != nil {
				t.Fatal(err)
			}

			seats := []game.SeatConfig{
				{Name: "a", Stack: 200}, {Name: "b", Stack: 200},
				{Name: "c", Stack: 120},
			}
			g, err := game.New("ai-test", game.Config{SmallBlind: 5, BigBlind: 10, Seats: seats}, rng)
			if err != nil {
				t.Fatal(err)
			}

			for hand := 0; hand < 40 && g.FundedSeats() >= 2; hand++ {
				if err := g.StartNewHand(); err != nil {
					t.Fatal(err)
				}
				for steps := 0; g.HandInProgress(); steps++ {
					if steps > 500 {
						t.Fatal("hand did not terminate")
					}
					seat := g.CurrentPlayerIndex
					view := g.View(seat)
					decision, err := source.Decide(context.Background(), view, g.HoleCardsOf(seat))
					if err != nil {
						t.Fatalf("hand %d: %v", hand, err)
					}
					res := g.ApplyAction(seat, decision.Action, decision.Amount)
					if !res.OK {
						t.Fatalf("hand %d: %s proposed illegal %v(%d): %s",
							hand, name, decision.Action, decision.Amount, res.Reason)
					}
				}
			}
		})
	}
}
