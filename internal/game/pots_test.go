package game

import (
	"testing"
)

func TestHeadsUpAllInScenario(t *testing.T) {
	t.Parallel()

	// Dealer/SB seat 0 is dealt first: aces for seat 0, kings for seat 1,
	// then a dry board.
	g := newTestGame(t, []int{100, 100}, 5, 10,
		WithDeckFactory(stackedDeckFactory(t,
			"As", "Ah", "Kd", "Kc",
			"2c", "7d", "9h", "3s", "5c")))
	if err := g.StartNewHand(); err != nil {
		t.Fatal(err)
	}

	mustApply(t, g, 0, Raise, 100)
	res := mustApply(t, g, 1, Call, 0)

	if !res.HandEnded {
		t.Fatal("hand should run out once both players are all-in")
	}
	if g.State != Showdown {
		t.Errorf("state = %v, want showdown", g.State)
	}
	if len(g.CommunityCards) != 5 {
		t.Errorf("community cards = %d, want 5 dealt immediately", len(g.CommunityCards))
	}

	result := res.Result
	if len(result.Pots) != 1 {
		t.Fatalf("pots = %d, want a single pot", len(result.Pots))
	}
	if result.Pots[0].Amount != 200 {
		t.Errorf("pot = %d, want 200", result.Pots[0].Amount)
	}
	if len(result.Pots[0].Winners) != 1 || result.Pots[0].Winners[0] != 0 {
		t.Errorf("winners = %v, want [0]", result.Pots[0].Winners)
	}
	if g.Players[0].Stack != 200 || g.Players[1].Stack != 0 {
		t.Errorf("stacks = %d/%d, want 200/0", g.Players[0].Stack, g.Players[1].Stack)
	}
	assertConservation(t, g, 200)
}

func TestHeadsUpAllInTieSplitsPot(t *testing.T) {
	t.Parallel()

	// Both seats play the board's full house; the pot splits evenly.
	g := newTestGame(t, []int{100, 100}, 5, 10,
		WithDeckFactory(stackedDeckFactory(t,
			"Ah", "Kh", "As", "Ks",
			"9c", "9d", "9s", "4c", "4d")))
	if err := g.StartNewHand(); err != nil {
		t.Fatal(err)
	}

	mustApply(t, g, 0, Raise, 100)
	res := mustApply(t, g, 1, Call, 0)

	if !res.HandEnded {
		t.Fatal("expected hand to complete")
	}
	if g.Players[0].Stack != 100 || g.Players[1].Stack != 100 {
		t.Errorf("stacks = %d/%d, want an even 100/100 split", g.Players[0].Stack, g.Players[1].Stack)
	}
}

func TestSidePotsAwardedIndependently(t *testing.T) {
	t.Parallel()

	// Seat 1 (short stack, aces) should win only the main pot; seat 2
	// (kings) takes the side pot seat 1 was never eligible for.
	// Deal order starts at the small blind: seat 1, seat 2, seat 0.
	g := newTestGame(t, []int{100, 50, 200}, 5, 10,
		WithDeckFactory(stackedDeckFactory(t,
			"As", "Ah", "Ks", "Kh", "3c", "3d",
			"7h", "8h", "Jc", "Qd", "4s")))
	if err := g.StartNewHand(); err != nil {
		t.Fatal(err)
	}

	mustApply(t, g, 0, Raise, 100) // all-in
	mustApply(t, g, 1, Call, 0)    // all-in for 50
	res := mustApply(t, g, 2, Call, 0)

	if !res.HandEnded {
		t.Fatal("expected hand to complete")
	}
	result := res.Result
	if len(result.Pots) != 2 {
		t.Fatalf("pots = %d, want main + one side pot", len(result.Pots))
	}

	main, side := result.Pots[0], result.Pots[1]
	if main.Amount != 150 {
		t.Errorf("main pot = %d, want 150 (50 from each)", main.Amount)
	}
	if len(main.Eligible) != 3 {
		t.Errorf("main pot eligible = %v, want all three", main.Eligible)
	}
	if len(main.Winners) != 1 || main.Winners[0] != 1 {
		t.Errorf("main pot winners = %v, want [1]", main.Winners)
	}

	if side.Amount != 100 {
		t.Errorf("side pot = %d, want 100", side.Amount)
	}
	if len(side.Eligible) != 2 {
		t.Errorf("side pot eligible = %v, want seats 0 and 2", side.Eligible)
	}
	if len(side.Winners) != 1 || side.Winners[0] != 2 {
		t.Errorf("side pot winners = %v, want [2]", side.Winners)
	}

	if g.Players[0].Stack != 0 || g.Players[1].Stack != 150 || g.Players[2].Stack != 200 {
		t.Errorf("stacks = %d/%d/%d, want 0/150/200",
			g.Players[0].Stack, g.Players[1].Stack, g.Players[2].Stack)
	}
	assertConservation(t, g, 350)
}

func TestOddChipGoesToFirstSeatClockwiseFromDealer(t *testing.T) {
	t.Parallel()

	// The board plays for both remaining seats; the 5-chip pot splits 2/2
	// with the odd chip to the first winner clockwise from the dealer.
	g := newTestGame(t, []int{10, 10, 10}, 1, 2,
		WithDeckFactory(stackedDeckFactory(t,
			"3c", "3d", "4c", "4d", "2h", "2d",
			"As", "Ks", "Qs", "Js", "Ts")))
	if err := g.StartNewHand(); err != nil {
		t.Fatal(err)
	}

	mustApply(t, g, 0, Call, 0)
	mustApply(t, g, 1, Fold, 0)
	mustApply(t, g, 2, Check, 0)

	// Check every street down to showdown.
	for g.HandInProgress() {
		mustApply(t, g, g.CurrentPlayerIndex, Check, 0)
	}

	result := g.Result()
	if result == nil {
		t.Fatal("expected a hand result")
	}
	if len(result.Pots) != 1 || result.Pots[0].Amount != 5 {
		t.Fatalf("pots = %+v, want one pot of 5", result.Pots)
	}
	winners := result.Pots[0].Winners
	if len(winners) != 2 || winners[0] != 2 || winners[1] != 0 {
		t.Fatalf("winners = %v, want [2 0] ordered clockwise from dealer", winners)
	}

	// Seat 2 is first clockwise from the dealer (seat 0 among winners) and
	// receives the odd chip.
	if g.Players[2].Stack != 11 {
		t.Errorf("seat 2 stack = %d, want 11", g.Players[2].Stack)
	}
	if g.Players[0].Stack != 10 {
		t.Errorf("seat 0 stack = %d, want 10", g.Players[0].Stack)
	}
	if g.Players[1].Stack != 9 {
		t.Errorf("seat 1 stack = %d, want 9", g.Players[1].Stack)
	}
	assertConservation(t, g, 30)
}

func TestBuildPotsConservation(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Invested: 100, Active: true, AllIn: true},
		{Seat: 1, Invested: 50, Active: true, AllIn: true},
		{Seat: 2, Invested: 100, Active: true},
		{Seat: 3, Invested: 30, Active: false}, // folded chips stay in the pot
	}
	pots := buildPots(players, 280)

	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	if total != 280 {
		t.Errorf("pots sum to %d, want 280", total)
	}
	if len(pots) != 2 {
		t.Fatalf("got %d pots, want 2", len(pots))
	}
	if pots[0].Amount != 180 { // 50 from three contenders + 30 folded
		t.Errorf("main pot = %d, want 180", pots[0].Amount)
	}
	if pots[1].Amount != 100 {
		t.Errorf("side pot = %d, want 100", pots[1].Amount)
	}
}
