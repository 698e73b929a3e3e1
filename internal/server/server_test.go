package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/auth"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/session"
)

func testLogger() *log.Logger { return log.New(io.Discard) }

// startTestServer brings up a server with one human-vs-human session
func startTestServer(t *testing.T) (string, *session.Manager) {
	t.Helper()

	seats := []game.SeatConfig{
		{Name: "alice", Stack: 100}, {Name: "bob", Stack: 100},
	}
	g, err := game.New("g1", game.Config{SmallBlind: 5, BigBlind: 10, Seats: seats},
		rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	manager := session.NewManager(testLogger())
	sess := session.New("g1", g, nil, nil, testLogger(), session.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, manager.Start(ctx, sess))

	validator := auth.NewStaticValidator(map[string]auth.Identity{
		"alice-token": {PlayerID: "p-alice", PlayerName: "alice"},
	})
	srv := New("", manager, validator, testLogger())
	go srv.trackConnections(ctx)

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(func() {
		ts.Close()
		cancel()
		manager.StopAll()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http"), manager
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType) Message {
	t.Helper()
	for i := 0; i < 50; i++ {
		msg := readMessage(t, conn)
		if msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("never received %s", typ)
	return Message{}
}

func authenticate(t *testing.T, conn *websocket.Conn, token string) AuthResponseData {
	t.Helper()
	sendMessage(t, conn, MessageTypeAuth, AuthData{PlayerName: "alice", Token: token})
	msg := readUntil(t, conn, MessageTypeAuthResponse)
	var resp AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	return resp
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	url, _ := startTestServer(t)
	conn := dial(t, url)

	// Every write is refused before authenticating, including the step-mode
	// controls.
	sendMessage(t, conn, MessageTypeSubscribe, SubscribeData{})
	msg := readUntil(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "not_authenticated", errData.Code)

	sendMessage(t, conn, MessageTypeContinue, ContinueData{})
	msg = readUntil(t, conn, MessageTypeError)
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "not_authenticated", errData.Code)

	sendMessage(t, conn, MessageTypeStepMode, StepModeData{Enabled: true})
	msg = readUntil(t, conn, MessageTypeError)
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "not_authenticated", errData.Code)

	// A bad token is rejected.
	resp := authenticate(t, conn, "wrong-token")
	assert.False(t, resp.Success)

	// The right token works.
	resp = authenticate(t, conn, "alice-token")
	require.True(t, resp.Success)
	assert.Equal(t, "p-alice", resp.PlayerID)
}

func TestSubscribeAndAct(t *testing.T) {
	t.Parallel()

	url, _ := startTestServer(t)
	conn := dial(t, url)
	require.True(t, authenticate(t, conn, "alice-token").Success)

	seat := 0
	sendMessage(t, conn, MessageTypeSubscribe, SubscribeData{Seat: &seat})
	msg := readUntil(t, conn, MessageTypeSnapshot)

	var snap SnapshotData
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "g1", snap.GameID)
	assert.Equal(t, session.PhaseRunning, snap.Snapshot.Phase)
	require.NotNil(t, snap.Snapshot.View.CurrentPlayer)
	assert.Equal(t, 0, *snap.Snapshot.View.CurrentPlayer)

	sendMessage(t, conn, MessageTypeAction, ActionData{
		Seat: 0, Action: "call", DecisionID: "d1",
	})
	msg = readUntil(t, conn, MessageTypeActionResult)
	var result ActionResultData
	require.NoError(t, json.Unmarshal(msg.Data, &result))
	assert.True(t, result.Result.OK)

	// The action also shows up on the event stream after the snapshot.
	evtMsg := readUntil(t, conn, MessageTypeEvent)
	var evt session.Event
	require.NoError(t, json.Unmarshal(evtMsg.Data, &evt))
	assert.Greater(t, evt.Seq, snap.Snapshot.Seq)
	assert.Equal(t, session.EventPlayerAction, evt.Type)
}

func TestSnapshotRequestWithoutSubscription(t *testing.T) {
	t.Parallel()

	url, _ := startTestServer(t)
	conn := dial(t, url)
	require.True(t, authenticate(t, conn, "alice-token").Success)

	seat := 1
	sendMessage(t, conn, MessageTypeSnapshotRequest, SnapshotRequestData{Seat: &seat})
	msg := readUntil(t, conn, MessageTypeSnapshot)

	var snap SnapshotData
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "g1", snap.GameID)
	// Seat 1's view shows its own hole cards and nobody else's.
	require.Len(t, snap.Snapshot.View.Players, 2)
	assert.Empty(t, snap.Snapshot.View.Players[0].HoleCards)
	assert.Len(t, snap.Snapshot.View.Players[1].HoleCards, 2)
}

func TestActionReplayedAfterReconnect(t *testing.T) {
	t.Parallel()

	url, _ := startTestServer(t)

	conn := dial(t, url)
	require.True(t, authenticate(t, conn, "alice-token").Success)
	sendMessage(t, conn, MessageTypeAction, ActionData{
		Seat: 0, Action: "call", DecisionID: "reconnect-1",
	})
	msg := readUntil(t, conn, MessageTypeActionResult)
	var first ActionResultData
	require.NoError(t, json.Unmarshal(msg.Data, &first))
	require.True(t, first.Result.OK)
	conn.Close()

	// A fresh connection replaying the same decision id gets the original
	// result; the game does not act twice.
	conn2 := dial(t, url)
	require.True(t, authenticate(t, conn2, "alice-token").Success)
	sendMessage(t, conn2, MessageTypeAction, ActionData{
		Seat: 0, Action: "call", DecisionID: "reconnect-1",
	})
	msg = readUntil(t, conn2, MessageTypeActionResult)
	var second ActionResultData
	require.NoError(t, json.Unmarshal(msg.Data, &second))
	assert.Equal(t, first.Result, second.Result)

	// Still seat 1's turn: a second call from seat 0 would be out of turn.
	sendMessage(t, conn2, MessageTypeAction, ActionData{Seat: 0, Action: "check"})
	msg = readUntil(t, conn2, MessageTypeActionResult)
	var third ActionResultData
	require.NoError(t, json.Unmarshal(msg.Data, &third))
	assert.False(t, third.Result.OK)
	assert.Equal(t, game.RejectOutOfTurn, third.Result.Code)
}

func TestUnknownGameAndBadAction(t *testing.T) {
	t.Parallel()

	url, _ := startTestServer(t)
	conn := dial(t, url)
	require.True(t, authenticate(t, conn, "alice-token").Success)

	sendMessage(t, conn, MessageTypeSubscribe, SubscribeData{GameID: "nope"})
	msg := readUntil(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "game_not_found", errData.Code)

	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 0, Action: "splash-the-pot"})
	msg = readUntil(t, conn, MessageTypeError)
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "invalid_action", errData.Code)
}
