package poker

import (
	"testing"
)

func mustCards(t *testing.T, notations ...string) []Card {
	t.Helper()
	cards, err := ParseCards(notations...)
	if err != nil {
		t.Fatal(err)
	}
	return cards
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    []string
		category Category
	}{
		{"high card", []string{"As", "Kd", "9h", "5c", "2s"}, HighCard},
		{"pair", []string{"As", "Ad", "9h", "5c", "2s"}, Pair},
		{"two pair", []string{"As", "Ad", "9h", "9c", "2s"}, TwoPair},
		{"three of a kind", []string{"As", "Ad", "Ah", "9c", "2s"}, ThreeOfAKind},
		{"straight", []string{"9s", "8d", "7h", "6c", "5s"}, Straight},
		{"wheel straight", []string{"As", "2d", "3h", "4c", "5s"}, Straight},
		{"flush", []string{"As", "Js", "9s", "5s", "2s"}, Flush},
		{"full house", []string{"As", "Ad", "Ah", "9c", "9s"}, FullHouse},
		{"four of a kind", []string{"As", "Ad", "Ah", "Ac", "2s"}, FourOfAKind},
		{"straight flush", []string{"9s", "8s", "7s", "6s", "5s"}, StraightFlush},
		{"steel wheel", []string{"As", "2s", "3s", "4s", "5s"}, StraightFlush},
		{"royal flush", []string{"As", "Ks", "Qs", "Js", "Ts"}, RoyalFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := Evaluate(mustCards(t, tt.cards...))
			if err != nil {
				t.Fatal(err)
			}
			if v.Category != tt.category {
				t.Errorf("got %v, want %v", v.Category, tt.category)
			}
		})
	}
}

func TestEvaluateWheelIsLowestStraight(t *testing.T) {
	t.Parallel()

	wheel, err := Evaluate(mustCards(t, "As", "2d", "3h", "4c", "5s"))
	if err != nil {
		t.Fatal(err)
	}
	sixHigh, err := Evaluate(mustCards(t, "2d", "3h", "4c", "5s", "6d"))
	if err != nil {
		t.Fatal(err)
	}
	if !sixHigh.Beats(wheel) {
		t.Errorf("six-high straight %v should beat wheel %v", sixHigh, wheel)
	}
	if wheel.TieBreak[0] != Five {
		t.Errorf("wheel high card = %v, want Five", wheel.TieBreak[0])
	}
}

func TestEvaluateBestOfSeven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    []string
		category Category
	}{
		// Flush on the board beats the pair in hand.
		{"finds flush in seven", []string{"Ah", "2h", "5h", "9h", "Kh", "As", "Ad"}, Flush},
		// Board pairs plus pocket pair make a full house.
		{"finds full house in seven", []string{"As", "Ad", "9h", "9c", "9s", "2d", "3c"}, FullHouse},
		// Straight using exactly one hole card.
		{"finds straight in seven", []string{"9s", "8d", "7h", "6c", "5s", "As", "Ah"}, Straight},
		{"six cards", []string{"As", "Ad", "Ah", "9c", "9s", "2d"}, FullHouse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := Evaluate(mustCards(t, tt.cards...))
			if err != nil {
				t.Fatal(err)
			}
			if v.Category != tt.category {
				t.Errorf("got %v, want %v", v.Category, tt.category)
			}
		})
	}
}

func TestEvaluateTieBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		winner []string
		loser  []string
	}{
		{"higher pair", []string{"Ks", "Kd", "9h", "5c", "2s"}, []string{"Qs", "Qd", "Ah", "5c", "2s"}},
		{"same pair better kicker", []string{"Ks", "Kd", "Ah", "5c", "2s"}, []string{"Kh", "Kc", "Qh", "5d", "2d"}},
		{"two pair high pair decides", []string{"As", "Ad", "3h", "3c", "2s"}, []string{"Ks", "Kd", "Qh", "Qc", "As"}},
		{"full house trips decide", []string{"9s", "9d", "9h", "2c", "2s"}, []string{"8s", "8d", "8h", "Ac", "As"}},
		{"flush by top card", []string{"As", "Js", "9s", "5s", "2s"}, []string{"Kh", "Qh", "Jh", "9h", "2h"}},
		{"quads over lower quads", []string{"3s", "3d", "3h", "3c", "2s"}, []string{"2s", "2d", "2h", "2c", "As"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, err := Evaluate(mustCards(t, tt.winner...))
			if err != nil {
				t.Fatal(err)
			}
			l, err := Evaluate(mustCards(t, tt.loser...))
			if err != nil {
				t.Fatal(err)
			}
			if !w.Beats(l) {
				t.Errorf("%v should beat %v", w, l)
			}
			if l.Compare(w) != -1 {
				t.Errorf("comparison should be symmetric")
			}
		})
	}
}

func TestEvaluateExactTie(t *testing.T) {
	t.Parallel()

	a, err := Evaluate(mustCards(t, "As", "Kd", "9h", "5c", "2s"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(mustCards(t, "Ad", "Kh", "9c", "5s", "2d"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Compare(b) != 0 {
		t.Errorf("identical ranks in different suits must tie: %v vs %v", a, b)
	}
}

func TestEvaluateInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := Evaluate(mustCards(t, "As", "Kd")); err == nil {
		t.Error("too few cards should fail")
	}

	eight := mustCards(t, "As", "Kd", "9h", "5c", "2s", "3d", "4h", "6s")
	if _, err := Evaluate(eight); err == nil {
		t.Error("too many cards should fail")
	}

	dupes := mustCards(t, "As", "As", "9h", "5c", "2s")
	if _, err := Evaluate(dupes); err == nil {
		t.Error("duplicate cards should fail")
	}
}
