package game

import "github.com/tablestakes/holdem/poker"

// PlayerView is the client-visible slice of a seat's state. Hole cards are
// only present for the viewer's own seat or for hands revealed at showdown.
type PlayerView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Seat        int          `json:"seat"`
	Stack       int          `json:"stack"`
	Bet         int          `json:"bet"`
	Invested    int          `json:"invested"`
	HoleCards   []poker.Card `json:"holeCards,omitempty"`
	Active      bool         `json:"active"`
	AllIn       bool         `json:"allIn"`
	Human       bool         `json:"human"`
	Personality string       `json:"personality,omitempty"`
}

// View is a read-only snapshot of the game, safe to hand to AI decision
// sources and to serialize to clients.
type View struct {
	GameID          string        `json:"gameId"`
	HandID          string        `json:"handId,omitempty"`
	HandNumber      int           `json:"handNumber"`
	State           Street        `json:"state"`
	Players         []PlayerView  `json:"players"`
	DealerIndex     int           `json:"dealerIndex"`
	SmallBlindIndex int           `json:"smallBlindIndex"`
	BigBlindIndex   int           `json:"bigBlindIndex"`
	SmallBlind      int           `json:"smallBlind"`
	BigBlind        int           `json:"bigBlind"`
	CommunityCards  []poker.Card  `json:"communityCards"`
	Pot             int           `json:"pot"`
	CurrentBet      int           `json:"currentBet"`
	LastRaiseAmount int           `json:"lastRaiseAmount"`
	CurrentPlayer   *int          `json:"currentPlayer"` // nil when no action is pending
	ValidActions    []ValidAction `json:"validActions,omitempty"`
}

// View renders the game from one seat's perspective. Pass a negative seat
// for an observer who sees no hole cards.
func (g *Game) View(viewer int) View {
	v := View{
		GameID:          g.ID,
		HandID:          g.HandID,
		HandNumber:      g.HandCount,
		State:           g.State,
		DealerIndex:     g.DealerIndex,
		SmallBlindIndex: g.SmallBlindIndex,
		BigBlindIndex:   g.BigBlindIndex,
		SmallBlind:      g.SmallBlind,
		BigBlind:        g.BigBlind,
		CommunityCards:  append([]poker.Card(nil), g.CommunityCards...),
		Pot:             g.Pot(),
		CurrentBet:      g.CurrentBet,
		LastRaiseAmount: g.LastRaiseAmount,
	}

	if g.CurrentPlayerIndex >= 0 {
		seat := g.CurrentPlayerIndex
		v.CurrentPlayer = &seat
		v.ValidActions = g.ValidActions(seat)
	}

	for _, p := range g.Players {
		pv := PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Seat:        p.Seat,
			Stack:       p.Stack,
			Bet:         p.Bet,
			Invested:    p.Invested,
			Active:      p.Active,
			AllIn:       p.AllIn,
			Human:       p.Human,
			Personality: p.Personality,
		}
		if p.Seat == viewer {
			pv.HoleCards = append([]poker.Card(nil), p.HoleCards...)
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

// HoleCardsOf exposes a seat's own hole cards for decision sources
func (g *Game) HoleCardsOf(seat int) []poker.Card {
	if seat < 0 || seat >= len(g.Players) {
		return nil
	}
	return append([]poker.Card(nil), g.Players[seat].HoleCards...)
}
