// Package ai provides decision sources that pick betting actions for
// computer-controlled seats.
package ai

import (
	"context"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/poker"
)

// Decision is a proposed action for the acting seat. Amount is the total
// bet to raise to this street and is ignored for other actions.
type Decision struct {
	Action    game.Action `json:"action"`
	Amount    int         `json:"amount"`
	Reasoning string      `json:"reasoning,omitempty"`
}

// DecisionSource produces a decision for the acting seat. The view is
// rendered from that seat's perspective, so the seat's own hole cards are
// present and everyone else's are hidden. Implementations may block (an
// external model call, a slow heuristic) and must honor ctx cancellation.
//
// A returned decision is a proposal, not a command: the engine still
// validates it, and callers fall back to check or fold when it is rejected.
type DecisionSource interface {
	Decide(ctx context.Context, view game.View, holeCards []poker.Card) (Decision, error)
}

// Fallback returns the safe decision for a seat whose source failed or
// proposed an illegal action: check when nothing is owed, otherwise fold.
func Fallback(view game.View) Decision {
	for _, va := range view.ValidActions {
		if va.Action == game.Check {
			return Decision{Action: game.Check, Reasoning: "fallback: checking"}
		}
	}
	return Decision{Action: game.Fold, Reasoning: "fallback: folding"}
}
