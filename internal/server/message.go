package server

import (
	"encoding/json"
	"time"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/session"
)

// MessageType identifies a WebSocket message
type MessageType string

func (t MessageType) String() string { return string(t) }

const (
	// Client -> Server
	MessageTypeAuth            MessageType = "auth"
	MessageTypeSubscribe       MessageType = "subscribe"
	MessageTypeAction          MessageType = "action"
	MessageTypeContinue        MessageType = "continue"
	MessageTypeStepMode        MessageType = "step_mode"
	MessageTypeSnapshotRequest MessageType = "snapshot_request"

	// Server -> Client
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeSnapshot     MessageType = "snapshot"
	MessageTypeEvent        MessageType = "event"
	MessageTypeActionResult MessageType = "action_result"
	MessageTypeContinueAck  MessageType = "continue_ack"
	MessageTypeError        MessageType = "error"
)

// Message is the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client -> Server payloads

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type SubscribeData struct {
	GameID string `json:"gameId,omitempty"`
	// Seat requests a seat-bound view with that seat's hole cards; nil
	// subscribes as an observer.
	Seat *int `json:"seat,omitempty"`
}

type ActionData struct {
	GameID string `json:"gameId,omitempty"`
	Seat   int    `json:"seat"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
	// DecisionID makes resubmitting the same decision after a reconnect
	// idempotent.
	DecisionID string `json:"decisionId,omitempty"`
}

type ContinueData struct {
	GameID string `json:"gameId,omitempty"`
}

type StepModeData struct {
	GameID  string `json:"gameId,omitempty"`
	Enabled bool   `json:"enabled"`
}

type SnapshotRequestData struct {
	GameID string `json:"gameId,omitempty"`
	Seat   *int   `json:"seat,omitempty"`
}

// Server -> Client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SnapshotData struct {
	GameID   string           `json:"gameId"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type ActionResultData struct {
	GameID string            `json:"gameId"`
	Result game.ActionResult `json:"result"`
}

type ContinueAckData struct {
	GameID  string `json:"gameId"`
	Resumed bool   `json:"resumed"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
