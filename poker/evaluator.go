package poker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidHand is returned when the evaluator is given malformed input.
// It should be unreachable in normal play.
var ErrInvalidHand = errors.New("poker: invalid hand")

// Category enumerates hand categories ordered from weakest to strongest
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandValue is the result of evaluating a hand. Values are totally ordered:
// compare Category first, then TieBreak ranks in order of significance.
type HandValue struct {
	Category Category `json:"category"`
	TieBreak [5]Rank  `json:"tieBreak"`
}

// Compare returns 1 if v beats o, -1 if o beats v, 0 on an exact tie
func (v HandValue) Compare(o HandValue) int {
	if v.Category != o.Category {
		if v.Category > o.Category {
			return 1
		}
		return -1
	}
	for i := range v.TieBreak {
		if v.TieBreak[i] != o.TieBreak[i] {
			if v.TieBreak[i] > o.TieBreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Beats reports whether v strictly beats o
func (v HandValue) Beats(o HandValue) bool {
	return v.Compare(o) > 0
}

func (v HandValue) String() string {
	return fmt.Sprintf("%s (%s high)", v.Category, v.TieBreak[0])
}

// Evaluate ranks the best 5-card hand available in 5 to 7 cards.
// Malformed input (wrong count or duplicate cards) returns ErrInvalidHand.
func Evaluate(cards []Card) (HandValue, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandValue{}, fmt.Errorf("%w: got %d cards, want 5-7", ErrInvalidHand, len(cards))
	}

	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if c.Rank > Ace || c.Suit > Spades {
			return HandValue{}, fmt.Errorf("%w: malformed card %v", ErrInvalidHand, c)
		}
		if seen[c] {
			return HandValue{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		seen[c] = true
	}

	if len(cards) == 5 {
		var five [5]Card
		copy(five[:], cards)
		return evaluateFive(five), nil
	}

	// Best 5-card subset among 6 or 7 cards.
	best := HandValue{}
	first := true
	var five [5]Card
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five[0], five[1], five[2], five[3], five[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						v := evaluateFive(five)
						if first || v.Beats(best) {
							best = v
							first = false
						}
					}
				}
			}
		}
	}
	return best, nil
}

func evaluateFive(cards [5]Card) HandValue {
	var counts [13]int
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	straightHigh, isStraight := straightHighRank(counts)

	if isStraight && flush {
		if straightHigh == Ace {
			return HandValue{Category: RoyalFlush, TieBreak: [5]Rank{Ace}}
		}
		return HandValue{Category: StraightFlush, TieBreak: [5]Rank{straightHigh}}
	}

	// Ranks ordered by count (desc) then rank (desc); this yields the
	// tie-break key directly for every paired category.
	type group struct {
		rank  Rank
		count int
	}
	groups := make([]group, 0, 5)
	for r := Ace; ; r-- {
		if counts[r] > 0 {
			groups = append(groups, group{rank: r, count: counts[r]})
		}
		if r == Two {
			break
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	var key [5]Rank
	for i, g := range groups {
		key[i] = g.rank
	}

	switch {
	case groups[0].count == 4:
		return HandValue{Category: FourOfAKind, TieBreak: key}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandValue{Category: FullHouse, TieBreak: key}
	case flush:
		return HandValue{Category: Flush, TieBreak: key}
	case isStraight:
		return HandValue{Category: Straight, TieBreak: [5]Rank{straightHigh}}
	case groups[0].count == 3:
		return HandValue{Category: ThreeOfAKind, TieBreak: key}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandValue{Category: TwoPair, TieBreak: key}
	case groups[0].count == 2:
		return HandValue{Category: Pair, TieBreak: key}
	default:
		return HandValue{Category: HighCard, TieBreak: key}
	}
}

// straightHighRank returns the high card of a 5-card straight, handling the
// wheel (A-2-3-4-5) where the five plays high.
func straightHighRank(counts [13]int) (Rank, bool) {
	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	if distinct != 5 {
		return 0, false
	}

	// Wheel
	if counts[Ace] > 0 && counts[Two] > 0 && counts[Three] > 0 && counts[Four] > 0 && counts[Five] > 0 {
		return Five, true
	}

	low := Rank(0)
	for r := Two; r <= Ace; r++ {
		if counts[r] > 0 {
			low = r
			break
		}
	}
	for i := Rank(0); i < 5; i++ {
		if low+i > Ace || counts[low+i] == 0 {
			return 0, false
		}
	}
	return low + 4, true
}
