// Package session runs games: it drives AI seats, orders every observable
// change into a sequenced event stream, and supports pausing between AI
// actions for step-through play.
package session

import (
	"time"

	"github.com/tablestakes/holdem/internal/game"
)

// EventType identifies the kind of event on a session stream
type EventType string

const (
	EventHandStart        EventType = "hand_start"
	EventStateUpdate      EventType = "state_update"
	EventAIAction         EventType = "ai_action"
	EventPlayerAction     EventType = "player_action"
	EventActionRejected   EventType = "action_rejected"
	EventRoundComplete    EventType = "round_complete"
	EventShowdown         EventType = "showdown"
	EventAwaitingContinue EventType = "awaiting_continue"
	EventAutoResumed      EventType = "auto_resumed"
	EventGameOver         EventType = "game_over"
)

// Event is one entry on a session's stream. Seq increases by exactly one
// per event, with no gaps, so a client can detect missed events and
// resubscribe for a fresh snapshot.
type Event struct {
	Seq       int64     `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// DecisionRecord describes one applied decision. DecisionID is stable
// across snapshot and stream, so a reconnecting client can dedupe an
// ai_action event it already saw in the snapshot's history.
type DecisionRecord struct {
	DecisionID string      `json:"decisionId"`
	HandID     string      `json:"handId"`
	Seat       int         `json:"seat"`
	Name       string      `json:"name"`
	Street     game.Street `json:"street"`
	Action     game.Action `json:"action"`
	Amount     int         `json:"amount,omitempty"`
	Paid       int         `json:"paid,omitempty"`
	AllIn      bool        `json:"allIn,omitempty"`
	Reasoning  string      `json:"reasoning,omitempty"`
	// Fallback is set when the source's proposal was rejected or errored
	// and the safe action was substituted under the same decision id.
	Fallback bool      `json:"fallback,omitempty"`
	At       time.Time `json:"at"`
}

// HandStartData announces a new hand
type HandStartData struct {
	HandID     string `json:"handId"`
	HandNumber int    `json:"handNumber"`
	Dealer     int    `json:"dealer"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
}

// ActionRejectedData reports a refused action without advancing the stream's
// game state
type ActionRejectedData struct {
	Seat   int             `json:"seat"`
	Action game.Action     `json:"action"`
	Amount int             `json:"amount,omitempty"`
	Code   game.RejectCode `json:"code"`
	Reason string          `json:"reason"`
}

// RoundCompleteData marks the end of a betting round
type RoundCompleteData struct {
	HandID string      `json:"handId"`
	Street game.Street `json:"street"`
	Pot    int         `json:"pot"`
}

// AwaitingContinueData is emitted when a step-mode session pauses. The
// session resumes on an explicit continue or automatically after Timeout.
type AwaitingContinueData struct {
	HandID  string        `json:"handId"`
	Timeout time.Duration `json:"timeout"`
}

// AutoResumedData is emitted when a paused session resumes because its
// continue timeout expired rather than by client request
type AutoResumedData struct {
	HandID string        `json:"handId"`
	After  time.Duration `json:"after"`
}

// GameOverData is the final event on a stream
type GameOverData struct {
	HandsPlayed int         `json:"handsPlayed"`
	Stacks      map[int]int `json:"stacks"`
}

// Phase is the session's lifecycle state
type Phase string

const (
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
	PhaseIdle    Phase = "idle"
)

// Snapshot is the atomically consistent starting point handed to a new or
// reconnecting subscriber: the stream it then receives contains exactly the
// events with Seq greater than the snapshot's.
type Snapshot struct {
	Seq       int64            `json:"seq"`
	Phase     Phase            `json:"phase"`
	StepMode  bool             `json:"stepMode"`
	View      game.View        `json:"view"`
	Decisions []DecisionRecord `json:"decisions"`
	// Result is the last completed hand, if any.
	Result *game.HandResult `json:"result,omitempty"`
}
