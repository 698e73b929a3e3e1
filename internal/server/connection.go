package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tablestakes/holdem/internal/auth"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client
type Connection struct {
	conn     *websocket.Conn
	send     chan *Message
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	sessions *session.Manager
	auth     auth.Validator

	mu        sync.RWMutex
	playerID  string
	sess      *session.Session
	sub       *session.Subscriber
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, sessions *session.Manager, validator auth.Validator) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: sessions,
		auth:     validator,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.dropSubscription()
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown.
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.Player())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Player returns the authenticated player id, if any
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Connection) setPlayer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeSubscribe:
		var data SubscribeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse subscribe data")
			return
		}
		c.handleSubscribe(data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse action data")
			return
		}
		c.handleAction(data, msg.RequestID)

	case MessageTypeContinue:
		var data ContinueData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse continue data")
			return
		}
		c.handleContinue(data)

	case MessageTypeStepMode:
		var data StepModeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse step mode data")
			return
		}
		c.handleStepMode(data)

	case MessageTypeSnapshotRequest:
		var data SnapshotRequestData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse snapshot request")
			return
		}
		c.handleSnapshotRequest(data, msg.RequestID)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "player name required")
		return
	}

	identity, err := c.auth.Validate(c.ctx, data.Token)
	if err != nil {
		c.logger.Warn("auth rejected", "playerName", data.PlayerName, "err", err)
		response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
			Success: false, Error: err.Error(),
		})
		_ = c.SendMessage(response)
		return
	}

	playerID := data.PlayerName
	if identity != nil && identity.PlayerID != "" {
		playerID = identity.PlayerID
	}
	c.setPlayer(playerID)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success: true, PlayerID: playerID,
	})
	_ = c.SendMessage(response)
}

// handleSubscribe attaches the connection to a session stream. Resubscribing
// replaces any previous stream: the client receives a fresh snapshot and
// events strictly after it, which is the reconnection path.
func (c *Connection) handleSubscribe(data SubscribeData) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}

	sess, ok := c.lookupSession(data.GameID)
	if !ok {
		c.sendError("game_not_found", "no such game")
		return
	}

	seat := -1
	if data.Seat != nil {
		seat = *data.Seat
	}

	c.dropSubscription()
	sub, snap, err := sess.Subscribe(c.ctx, seat)
	if err != nil {
		c.sendError("subscribe_failed", err.Error())
		return
	}

	c.mu.Lock()
	c.sess = sess
	c.sub = sub
	c.mu.Unlock()

	response, err := NewMessage(MessageTypeSnapshot, SnapshotData{
		GameID:   sess.ID(),
		Snapshot: snap,
	})
	if err != nil {
		c.sendError("internal_error", "failed to encode snapshot")
		return
	}
	_ = c.SendMessage(response)

	go c.forwardEvents(sub)
}

// forwardEvents relays session events to the client until the subscription
// or connection ends
func (c *Connection) forwardEvents(sub *session.Subscriber) {
	for evt := range sub.Events() {
		msg, err := NewMessage(MessageTypeEvent, evt)
		if err != nil {
			c.logger.Error("failed to encode event", "error", err)
			continue
		}
		if err := c.SendMessage(msg); err != nil {
			return
		}
	}
}

func (c *Connection) handleAction(data ActionData, requestID string) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}
	sess, ok := c.lookupSession(data.GameID)
	if !ok {
		c.sendError("game_not_found", "no such game")
		return
	}
	action, err := game.ParseAction(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}

	result, err := sess.Act(c.ctx, data.Seat, action, data.Amount, data.DecisionID)
	if err != nil {
		c.sendError("action_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeActionResult, ActionResultData{
		GameID: sess.ID(),
		Result: result,
	})
	response.RequestID = requestID
	_ = c.SendMessage(response)
}

func (c *Connection) handleContinue(data ContinueData) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}
	sess, ok := c.lookupSession(data.GameID)
	if !ok {
		c.sendError("game_not_found", "no such game")
		return
	}
	resumed, err := sess.Continue(c.ctx)
	if err != nil {
		c.sendError("continue_failed", err.Error())
		return
	}
	response, _ := NewMessage(MessageTypeContinueAck, ContinueAckData{
		GameID:  sess.ID(),
		Resumed: resumed,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStepMode(data StepModeData) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}
	sess, ok := c.lookupSession(data.GameID)
	if !ok {
		c.sendError("game_not_found", "no such game")
		return
	}
	if err := sess.SetStepMode(c.ctx, data.Enabled); err != nil {
		c.sendError("step_mode_failed", err.Error())
	}
}

// handleSnapshotRequest returns a one-off snapshot without touching the
// connection's event subscription
func (c *Connection) handleSnapshotRequest(data SnapshotRequestData, requestID string) {
	if c.Player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}
	sess, ok := c.lookupSession(data.GameID)
	if !ok {
		c.sendError("game_not_found", "no such game")
		return
	}

	seat := -1
	if data.Seat != nil {
		seat = *data.Seat
	}
	snap, err := sess.Snapshot(c.ctx, seat)
	if err != nil {
		c.sendError("snapshot_failed", err.Error())
		return
	}

	response, err := NewMessage(MessageTypeSnapshot, SnapshotData{
		GameID:   sess.ID(),
		Snapshot: snap,
	})
	if err != nil {
		c.sendError("internal_error", "failed to encode snapshot")
		return
	}
	response.RequestID = requestID
	_ = c.SendMessage(response)
}

func (c *Connection) lookupSession(gameID string) (*session.Session, bool) {
	if gameID == "" {
		return c.sessions.Default()
	}
	return c.sessions.Get(gameID)
}

func (c *Connection) dropSubscription() {
	c.mu.Lock()
	sess, sub := c.sess, c.sub
	c.sess, c.sub = nil, nil
	c.mu.Unlock()

	if sess != nil && sub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sess.Unsubscribe(ctx, sub)
	}
}
