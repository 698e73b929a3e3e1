package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/tablestakes/holdem/poker"
)

var (
	// ErrNotEnoughPlayers is returned when fewer than two seats are funded
	ErrNotEnoughPlayers = errors.New("game: need at least two funded seats")
	// ErrHandInProgress is returned when StartNewHand is called mid-hand
	ErrHandInProgress = errors.New("game: hand already in progress")
)

// SeatConfig describes one seat at table creation
type SeatConfig struct {
	ID          string
	Name        string
	Stack       int
	Human       bool
	Personality string
}

// Config holds table parameters
type Config struct {
	SmallBlind int
	BigBlind   int
	Seats      []SeatConfig
}

// Option customizes Game construction
type Option func(*Game)

// WithDeckFactory overrides how each hand's deck is built. Used by tests to
// stack known cards.
func WithDeckFactory(f func() *poker.Deck) Option {
	return func(g *Game) {
		g.newDeck = f
	}
}

// Game orchestrates one hand at a time for a fixed list of seats. All
// methods must be called from a single goroutine; the session manager
// serializes access.
type Game struct {
	ID      string
	Players []*Player

	State              Street
	DealerIndex        int
	SmallBlindIndex    int
	BigBlindIndex      int
	CommunityCards     []poker.Card
	CurrentBet         int
	LastRaiseAmount    int
	CurrentPlayerIndex int // -1 when no action is pending
	HandCount          int
	HandID             string

	SmallBlind int
	BigBlind   int

	collected int // chips collected from completed streets
	deck      *poker.Deck
	newDeck   func() *poker.Deck
	result    *HandResult
}

// New creates a table. The RNG drives deck shuffling and must not be shared
// with other goroutines.
func New(id string, cfg Config, rng *rand.Rand, opts ...Option) (*Game, error) {
	if len(cfg.Seats) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if cfg.SmallBlind <= 0 || cfg.BigBlind < cfg.SmallBlind {
		return nil, fmt.Errorf("game: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}

	g := &Game{
		ID:                 id,
		State:              PreFlop,
		DealerIndex:        -1,
		SmallBlindIndex:    -1,
		BigBlindIndex:      -1,
		CurrentPlayerIndex: -1,
		SmallBlind:         cfg.SmallBlind,
		BigBlind:           cfg.BigBlind,
	}
	g.newDeck = func() *poker.Deck { return poker.NewDeck(rng) }

	for i, seat := range cfg.Seats {
		id := seat.ID
		if id == "" {
			id = uuid.NewString()
		}
		g.Players = append(g.Players, &Player{
			ID:          id,
			Name:        seat.Name,
			Seat:        i,
			Stack:       seat.Stack,
			Human:       seat.Human,
			Personality: seat.Personality,
		})
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// HandInProgress reports whether a hand is being played
func (g *Game) HandInProgress() bool {
	return g.HandID != "" && g.result == nil
}

// Result returns the completed hand's result, or nil mid-hand
func (g *Game) Result() *HandResult {
	return g.result
}

// Pot returns the main pot total including bets still in front of players
func (g *Game) Pot() int {
	total := g.collected
	for _, p := range g.Players {
		total += p.Bet
	}
	return total
}

// TotalChips returns all chips on the table. Constant across every action
// within a hand (chip conservation).
func (g *Game) TotalChips() int {
	total := g.Pot()
	for _, p := range g.Players {
		total += p.Stack
	}
	return total
}

// FundedSeats returns the number of seats able to play the next hand
func (g *Game) FundedSeats() int {
	n := 0
	for _, p := range g.Players {
		if p.Stack > 0 {
			n++
		}
	}
	return n
}

// StartNewHand rotates the blinds clockwise among still-funded seats, deals
// hole cards and posts blinds. Seats with zero stack stay in the seat list
// but sit out the hand.
func (g *Game) StartNewHand() error {
	if g.HandInProgress() {
		return ErrHandInProgress
	}
	if g.FundedSeats() < 2 {
		return ErrNotEnoughPlayers
	}

	for _, p := range g.Players {
		p.Bet = 0
		p.Invested = 0
		p.HoleCards = nil
		p.AllIn = false
		p.HasActed = false
		p.Active = p.Stack > 0
	}
	g.CommunityCards = nil
	g.collected = 0
	g.result = nil
	g.State = PreFlop
	g.CurrentBet = 0
	g.LastRaiseAmount = g.BigBlind

	if g.DealerIndex < 0 {
		g.DealerIndex = g.nextFunded(0)
	} else {
		g.DealerIndex = g.nextFunded(g.DealerIndex + 1)
	}
	if g.FundedSeats() == 2 {
		// Heads-up: the dealer posts the small blind
		g.SmallBlindIndex = g.DealerIndex
		g.BigBlindIndex = g.nextFunded(g.DealerIndex + 1)
	} else {
		g.SmallBlindIndex = g.nextFunded(g.DealerIndex + 1)
		g.BigBlindIndex = g.nextFunded(g.SmallBlindIndex + 1)
	}

	g.deck = g.newDeck()
	for i := 0; i < len(g.Players); i++ {
		p := g.Players[g.wrap(g.SmallBlindIndex+i)]
		if p.Active {
			p.HoleCards = g.deck.Deal(2)
		}
	}

	g.postBlind(g.SmallBlindIndex, g.SmallBlind)
	g.postBlind(g.BigBlindIndex, g.BigBlind)
	g.CurrentBet = g.BigBlind

	g.HandCount++
	g.HandID = uuid.NewString()

	g.CurrentPlayerIndex = g.nextToAct(g.BigBlindIndex + 1)
	if g.CurrentPlayerIndex == -1 {
		// Blinds put everyone all-in; run the hand out immediately.
		g.endBettingRound()
	}
	return nil
}

// postBlind posts a blind, truncated to the stack when short
func (g *Game) postBlind(seat, amount int) {
	p := g.Players[seat]
	posted := min(amount, p.Stack)
	p.Stack -= posted
	p.Bet += posted
	p.Invested += posted
	if p.Stack == 0 {
		p.AllIn = true
	}
}

func (g *Game) wrap(i int) int {
	return ((i % len(g.Players)) + len(g.Players)) % len(g.Players)
}

// nextFunded returns the first seat at or after from (clockwise) with chips
func (g *Game) nextFunded(from int) int {
	for i := 0; i < len(g.Players); i++ {
		seat := g.wrap(from + i)
		if g.Players[seat].Stack > 0 {
			return seat
		}
	}
	return -1
}

// pendingAction reports whether the seat still owes a decision this street
func (g *Game) pendingAction(p *Player) bool {
	if !p.CanAct() {
		return false
	}
	return p.Bet != g.CurrentBet || !p.HasActed
}

// nextToAct returns the first seat at or after from (clockwise) with a
// pending decision, or -1 when the betting round is complete
func (g *Game) nextToAct(from int) int {
	for i := 0; i < len(g.Players); i++ {
		seat := g.wrap(from + i)
		if g.pendingAction(g.Players[seat]) {
			return seat
		}
	}
	return -1
}

// contenders counts players still contesting the pot
func (g *Game) contenders() int {
	n := 0
	for _, p := range g.Players {
		if p.Active {
			n++
		}
	}
	return n
}

// canActCount counts players able to make further wagers
func (g *Game) canActCount() int {
	n := 0
	for _, p := range g.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

func (g *Game) collectBets() {
	for _, p := range g.Players {
		g.collected += p.Bet
		p.Bet = 0
	}
}

// dealNextStreet reveals the next street's cards and resets street betting
func (g *Game) dealNextStreet() {
	switch g.State {
	case PreFlop:
		g.State = Flop
		g.CommunityCards = append(g.CommunityCards, g.deck.Deal(3)...)
	case Flop:
		g.State = Turn
		g.CommunityCards = append(g.CommunityCards, g.deck.Deal(1)...)
	case Turn:
		g.State = River
		g.CommunityCards = append(g.CommunityCards, g.deck.Deal(1)...)
	}
	g.CurrentBet = 0
	g.LastRaiseAmount = g.BigBlind
	for _, p := range g.Players {
		p.HasActed = false
	}
}

// endBettingRound collects bets and either advances to the next street or,
// when no further wagering is possible, fast-forwards to showdown.
func (g *Game) endBettingRound() {
	g.collectBets()

	if g.State == River {
		g.State = Showdown
		g.CurrentPlayerIndex = -1
		g.resolveShowdown()
		return
	}

	g.dealNextStreet()

	if g.canActCount() > 1 {
		g.CurrentPlayerIndex = g.nextToAct(g.DealerIndex + 1)
		if g.CurrentPlayerIndex != -1 {
			return
		}
	}

	// All-in fast-forward: deal the remaining streets with no betting.
	for g.State != River {
		g.dealNextStreet()
	}
	g.State = Showdown
	g.CurrentPlayerIndex = -1
	g.resolveShowdown()
}

// awardToSurvivor ends the hand when everyone else has folded. No further
// cards are revealed and no hands are ranked.
func (g *Game) awardToSurvivor() {
	g.collectBets()

	var survivor *Player
	for _, p := range g.Players {
		if p.Active {
			survivor = p
			break
		}
	}

	pot := g.collected
	g.collected = 0
	survivor.Stack += pot

	g.result = &HandResult{
		HandID:     g.HandID,
		HandNumber: g.HandCount,
		Board:      append([]poker.Card(nil), g.CommunityCards...),
		FoldedWin:  true,
		Pots: []PotResult{{
			Amount:   pot,
			Eligible: []int{survivor.Seat},
			Winners:  []int{survivor.Seat},
		}},
		Payouts: map[int]int{survivor.Seat: pot},
	}
	g.CurrentPlayerIndex = -1
}

// resolveShowdown partitions the pot into main and side pots, ranks each
// eligible hand and pays each pot independently.
func (g *Game) resolveShowdown() {
	pots := buildPots(g.Players, g.collected)
	g.collected = 0

	result := &HandResult{
		HandID:     g.HandID,
		HandNumber: g.HandCount,
		Board:      append([]poker.Card(nil), g.CommunityCards...),
		Payouts:    map[int]int{},
	}

	values := map[int]poker.HandValue{}
	for _, p := range g.Players {
		if !p.Active {
			continue
		}
		cards := append(append([]poker.Card(nil), p.HoleCards...), g.CommunityCards...)
		value, err := poker.Evaluate(cards)
		if err != nil {
			// Unreachable with a well-formed deck; a malformed hand here
			// means the table state is corrupt.
			panic(fmt.Sprintf("game: showdown evaluation failed for seat %d: %v", p.Seat, err))
		}
		values[p.Seat] = value
		result.Hands = append(result.Hands, ShowdownHand{
			Seat:      p.Seat,
			HoleCards: append([]poker.Card(nil), p.HoleCards...),
			Value:     value,
		})
	}

	for _, pot := range pots {
		var winners []int
		var best poker.HandValue
		for _, seat := range pot.Eligible {
			v := values[seat]
			if len(winners) == 0 || v.Beats(best) {
				winners = []int{seat}
				best = v
			} else if v.Compare(best) == 0 {
				winners = append(winners, seat)
			}
		}
		pot.Winners = g.orderFromDealer(winners)

		share := pot.Amount / len(pot.Winners)
		remainder := pot.Amount % len(pot.Winners)
		for i, seat := range pot.Winners {
			won := share
			if i == 0 {
				// Odd chip goes to the first winner clockwise from the dealer.
				won += remainder
			}
			g.Players[seat].Stack += won
			result.Payouts[seat] += won
		}
		result.Pots = append(result.Pots, pot)
	}

	g.result = result
}

// orderFromDealer sorts seats by clockwise distance from the dealer
func (g *Game) orderFromDealer(seats []int) []int {
	ordered := append([]int(nil), seats...)
	distance := func(seat int) int {
		return g.wrap(seat - g.DealerIndex - 1)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && distance(ordered[j]) < distance(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
