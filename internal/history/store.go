// Package history persists completed hands for later review. Writes are
// fire-and-forget from the session's point of view: a failed save is logged
// and never blocks play.
package history

import (
	"context"
	"time"

	"github.com/tablestakes/holdem/internal/game"
)

// ActionRecord is one decision taken during a hand
type ActionRecord struct {
	DecisionID string    `json:"decisionId"`
	Seat       int       `json:"seat"`
	Street     string    `json:"street"`
	Action     string    `json:"action"`
	Amount     int       `json:"amount,omitempty"`
	Reasoning  string    `json:"reasoning,omitempty"`
	Fallback   bool      `json:"fallback,omitempty"`
	At         time.Time `json:"at"`
}

// CompletedHand is the persisted record of one finished hand
type CompletedHand struct {
	GameID     string          `json:"gameId"`
	HandID     string          `json:"handId"`
	HandNumber int             `json:"handNumber"`
	PlayedAt   time.Time       `json:"playedAt"`
	Result     game.HandResult `json:"result"`
	Actions    []ActionRecord  `json:"actions"`
}

// Store persists and retrieves completed hands
type Store interface {
	SaveHand(ctx context.Context, hand CompletedHand) error
	// Hands returns the most recent hands for a game, newest first.
	Hands(ctx context.Context, gameID string, limit int) ([]CompletedHand, error)
	Close() error
}
