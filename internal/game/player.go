package game

import "github.com/tablestakes/holdem/poker"

// Player is the per-seat state for one hand. It is mutated exclusively by
// the Game during action application.
type Player struct {
	ID          string
	Name        string
	Seat        int
	Stack       int
	Bet         int // chips wagered this street
	Invested    int // chips wagered this hand
	HoleCards   []poker.Card
	Active      bool // still contesting the pot
	AllIn       bool
	HasActed    bool // acted since the last bet or street change
	Human       bool
	Personality string
}

// CanAct reports whether the seat can still make a betting decision
func (p *Player) CanAct() bool {
	return p.Active && !p.AllIn
}
