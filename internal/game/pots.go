package game

import (
	"sort"

	"github.com/tablestakes/holdem/poker"
)

// PotResult is one pot (main or side) and its outcome
type PotResult struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Winners  []int `json:"winners,omitempty"`
}

// ShowdownHand is one revealed hand at showdown
type ShowdownHand struct {
	Seat      int             `json:"seat"`
	HoleCards []poker.Card    `json:"holeCards"`
	Value     poker.HandValue `json:"value"`
}

// HandResult summarizes a completed hand
type HandResult struct {
	HandID     string         `json:"handId"`
	HandNumber int            `json:"handNumber"`
	Board      []poker.Card   `json:"board"`
	Pots       []PotResult    `json:"pots"`
	Hands      []ShowdownHand `json:"hands,omitempty"`
	Payouts    map[int]int    `json:"payouts"`
	FoldedWin  bool           `json:"foldedWin"`
}

// buildPots layers the collected chips into a main pot and side pots keyed
// by the distinct all-in investment levels present in the hand. A seat is
// eligible for a pot layer if it invested at least that layer's threshold
// and did not fold. The sum of all pot amounts equals total.
func buildPots(players []*Player, total int) []PotResult {
	// Distinct investment levels of all-in contenders split the pot into
	// layers; without any, everything is one pot.
	levelSet := map[int]bool{}
	for _, p := range players {
		if p.Active && p.AllIn && p.Invested > 0 {
			levelSet[p.Invested] = true
		}
	}

	maxInvested := 0
	for _, p := range players {
		if p.Invested > maxInvested {
			maxInvested = p.Invested
		}
	}

	levels := make([]int, 0, len(levelSet)+1)
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	if len(levels) == 0 || levels[len(levels)-1] < maxInvested {
		levels = append(levels, maxInvested)
	}

	var pots []PotResult
	orphaned := 0
	prev := 0
	for _, level := range levels {
		pot := PotResult{}
		for _, p := range players {
			contribution := min(p.Invested, level) - min(p.Invested, prev)
			pot.Amount += contribution
			if p.Active && p.Invested >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		switch {
		case pot.Amount == 0:
		case len(pot.Eligible) == 0:
			// Chips above every contender's investment (a folded
			// over-investor); they belong to the pot below.
			orphaned += pot.Amount
		default:
			pots = append(pots, pot)
		}
		prev = level
	}
	if orphaned > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += orphaned
	}

	// All layers must account for every collected chip.
	sum := 0
	for _, pot := range pots {
		sum += pot.Amount
	}
	if sum != total {
		// A mismatch means investment tracking diverged from the pot.
		panic("game: side pot layering lost chips")
	}
	return pots
}
