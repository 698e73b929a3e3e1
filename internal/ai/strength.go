package ai

import (
	"fmt"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/poker"
)

// HandStrength buckets a hand's relative strength for decision making
type HandStrength int

const (
	VeryWeak HandStrength = iota
	Weak
	Medium
	Strong
	VeryStrong
)

func (hs HandStrength) String() string {
	switch hs {
	case VeryWeak:
		return "very weak"
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	case VeryStrong:
		return "very strong"
	default:
		return "unknown"
	}
}

// EvaluateStrength buckets the seat's hand. Pre-flop it scores the hole
// cards alone; post-flop it evaluates the best five-card hand against the
// board.
func EvaluateStrength(holeCards []poker.Card, community []poker.Card, street game.Street) HandStrength {
	if len(holeCards) != 2 {
		return VeryWeak
	}
	if street == game.PreFlop || len(community) < 3 {
		return preFlopStrength(holeCards)
	}
	return postFlopStrength(holeCards, community)
}

// preFlopStrength scores hole cards on pairs, high cards, suitedness and
// connectedness
func preFlopStrength(holeCards []poker.Card) HandStrength {
	hi, lo := holeCards[0].Rank, holeCards[1].Rank
	if lo > hi {
		hi, lo = lo, hi
	}

	if hi == lo {
		switch {
		case hi >= poker.Ten:
			return VeryStrong
		case hi >= poker.Seven:
			return Strong
		default:
			return Medium
		}
	}

	suited := holeCards[0].Suit == holeCards[1].Suit
	gap := int(hi) - int(lo)

	score := 0
	if hi == poker.Ace {
		score += 3
	} else if hi >= poker.Queen {
		score += 2
	} else if hi >= poker.Ten {
		score++
	}
	if lo >= poker.Ten {
		score++
	}
	if suited {
		score++
	}
	if gap == 1 {
		score++
	}

	switch {
	case score >= 6:
		return VeryStrong
	case score >= 4:
		return Strong
	case score >= 2:
		return Medium
	case score >= 1:
		return Weak
	default:
		return VeryWeak
	}
}

// postFlopStrength buckets the made hand category against the board
func postFlopStrength(holeCards []poker.Card, community []poker.Card) HandStrength {
	cards := make([]poker.Card, 0, len(holeCards)+len(community))
	cards = append(cards, holeCards...)
	cards = append(cards, community...)

	value, err := poker.Evaluate(cards)
	if err != nil {
		return VeryWeak
	}

	switch value.Category {
	case poker.Straight, poker.Flush, poker.FullHouse, poker.FourOfAKind,
		poker.StraightFlush, poker.RoyalFlush:
		return VeryStrong
	case poker.ThreeOfAKind, poker.TwoPair:
		return Strong
	case poker.Pair:
		// A pair using a hole card is worth more than the board pairing
		// itself, but the bucket is coarse either way.
		if pairsBoard(holeCards, community) {
			return Weak
		}
		return Medium
	default:
		if hasOvercards(holeCards, community) {
			return Weak
		}
		return VeryWeak
	}
}

func pairsBoard(holeCards, community []poker.Card) bool {
	for _, h := range holeCards {
		for _, c := range community {
			if h.Rank == c.Rank {
				return false
			}
		}
	}
	return true
}

func hasOvercards(holeCards, community []poker.Card) bool {
	boardHigh := poker.Two
	for _, c := range community {
		if c.Rank > boardHigh {
			boardHigh = c.Rank
		}
	}
	over := 0
	for _, h := range holeCards {
		if h.Rank > boardHigh {
			over++
		}
	}
	return over == 2
}

// describeHole renders hole cards in shorthand like "AKs" or "T9o"
func describeHole(holeCards []poker.Card) string {
	if len(holeCards) != 2 {
		return "??"
	}
	hi, lo := holeCards[0], holeCards[1]
	if lo.Rank > hi.Rank {
		hi, lo = lo, hi
	}
	if hi.Rank == lo.Rank {
		return fmt.Sprintf("%s%s", hi.Rank, lo.Rank)
	}
	suffix := "o"
	if hi.Suit == lo.Suit {
		suffix = "s"
	}
	return fmt.Sprintf("%s%s%s", hi.Rank, lo.Rank, suffix)
}
