package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/tablestakes/holdem/internal/ai"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/history"
)

// DefaultStepTimeout is how long a paused session waits for a continue
// before resuming on its own
const DefaultStepTimeout = 60 * time.Second

const defaultHistorySize = 128

// ErrClosed is returned by session calls after the session has shut down
var ErrClosed = errors.New("session closed")

// Config tunes a session
type Config struct {
	// StepMode pauses the session after every AI action until a continue
	// arrives or StepTimeout expires.
	StepMode    bool
	StepTimeout time.Duration
	// ActionDelay spaces out AI actions so games are watchable in real time.
	ActionDelay time.Duration
	// HandLimit stops the session after this many hands. Zero means play
	// until fewer than two seats can post a blind.
	HandLimit int
	// HistorySize bounds the decision history kept for snapshots.
	HistorySize int
	// Clock is injectable for tests; nil means the real clock.
	Clock quartz.Clock
}

// Session owns one game. All game access happens on the session's goroutine;
// the exported methods communicate with it over a command channel, so they
// are safe to call from any goroutine while Run is active.
type Session struct {
	id      string
	g       *game.Game
	sources map[int]ai.DecisionSource
	store   history.Store
	logger  *log.Logger
	clock   quartz.Clock
	cfg     Config

	cmds   chan command
	closed chan struct{}

	// Everything below is owned by the Run goroutine.
	subs        map[*Subscriber]struct{}
	seq         int64
	stepMode    bool
	// stepPrompted marks that the pause gating the next AI decision has
	// already been issued, so resuming executes the decision instead of
	// pausing again.
	stepPrompted bool
	paused       bool
	pauseGen    int
	pausedAt    time.Time
	resumeTimer *quartz.Timer
	decisions   []DecisionRecord
	handActions []history.ActionRecord
	applied     map[string]game.ActionResult
	lastResult  *game.HandResult
	done        bool
}

type command interface{ apply(s *Session) }

type subscribeCmd struct {
	seat  int
	reply chan subscribeReply
}

type subscribeReply struct {
	sub  *Subscriber
	snap Snapshot
}

type unsubscribeCmd struct{ sub *Subscriber }

type actCmd struct {
	seat       int
	action     game.Action
	amount     int
	decisionID string
	reply      chan game.ActionResult
}

type continueCmd struct{ reply chan bool }

type stepModeCmd struct {
	enabled bool
	reply   chan struct{}
}

type resumeCmd struct{ gen int }

type snapshotCmd struct {
	seat  int
	reply chan Snapshot
}

// New creates a session for a game. The sources map assigns a decision
// source to each AI seat; seats without a source act through Act (humans).
// The store may be nil to disable persistence.
func New(id string, g *game.Game, sources map[int]ai.DecisionSource, store history.Store, logger *log.Logger, cfg Config) *Session {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Session{
		id:       id,
		g:        g,
		sources:  sources,
		store:    store,
		logger:   logger.WithPrefix("session").With("game", id),
		clock:    cfg.Clock,
		cfg:      cfg,
		cmds:     make(chan command),
		closed:   make(chan struct{}),
		subs:     make(map[*Subscriber]struct{}),
		stepMode: cfg.StepMode,
		applied:  make(map[string]game.ActionResult),
	}
}

// ID returns the session's game id
func (s *Session) ID() string { return s.id }

// Run drives the session until ctx is canceled. It must be called exactly
// once.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started")
	defer s.shutdown()

	// Deal the first hand before serving any command, so a client that
	// subscribes or acts right away never observes a table with no hand.
	if err := s.startHand(); err != nil {
		return err
	}

	for {
		if s.runnable() {
			// Serve any pending command first so clients are never
			// starved by back-to-back AI actions.
			select {
			case cmd := <-s.cmds:
				cmd.apply(s)
				continue
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := s.step(ctx); err != nil {
				return err
			}
			continue
		}

		select {
		case cmd := <-s.cmds:
			cmd.apply(s)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runnable reports whether the session can make progress without waiting
// for a client
func (s *Session) runnable() bool {
	if s.paused || s.done {
		return false
	}
	if !s.g.HandInProgress() {
		return true
	}
	_, ok := s.sources[s.g.CurrentPlayerIndex]
	return ok
}

func (s *Session) step(ctx context.Context) error {
	if !s.g.HandInProgress() {
		return s.startHand()
	}

	// Step mode gates every AI decision: pause first, decide only after a
	// continue or the auto-resume timeout.
	if s.stepMode && !s.stepPrompted {
		s.stepPrompted = true
		s.pauseForContinue()
		return nil
	}

	if s.cfg.ActionDelay > 0 {
		timer := s.clock.NewTimer(s.cfg.ActionDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	seat := s.g.CurrentPlayerIndex
	src := s.sources[seat]
	view := s.g.View(seat)

	record := DecisionRecord{
		DecisionID: uuid.NewString(),
		HandID:     s.g.HandID,
		Seat:       seat,
		Name:       s.g.Players[seat].Name,
		Street:     s.g.State,
		At:         s.clock.Now(),
	}

	decision, err := src.Decide(ctx, view, s.g.HoleCardsOf(seat))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("decision source failed, using fallback", "seat", seat, "err", err)
		decision = ai.Fallback(view)
		record.Fallback = true
	}

	res := s.g.ApplyAction(seat, decision.Action, decision.Amount)
	if !res.OK {
		s.logger.Warn("ai proposed illegal action",
			"seat", seat, "action", decision.Action, "amount", decision.Amount, "reason", res.Reason)
		s.emit(EventActionRejected, ActionRejectedData{
			Seat: seat, Action: decision.Action, Amount: decision.Amount,
			Code: res.Code, Reason: res.Reason,
		})
		decision = ai.Fallback(view)
		record.Fallback = true
		res = s.g.ApplyAction(seat, decision.Action, decision.Amount)
		if !res.OK {
			// Check or fold is always legal for the acting seat; if this
			// trips, the engine and session disagree about whose turn it is.
			s.logger.Error("fallback action rejected, stopping session",
				"seat", seat, "reason", res.Reason)
			s.finish()
			return nil
		}
	}

	s.stepPrompted = false

	record.Action = decision.Action
	record.Amount = decision.Amount
	record.Paid = res.Paid
	record.AllIn = res.AllIn
	record.Reasoning = decision.Reasoning
	s.recordDecision(record)

	s.emit(EventAIAction, record)
	s.broadcastState()
	s.afterAction(res)
	return nil
}

func (s *Session) startHand() error {
	if s.g.FundedSeats() < 2 || (s.cfg.HandLimit > 0 && s.g.HandCount >= s.cfg.HandLimit) {
		s.finish()
		return nil
	}
	if err := s.g.StartNewHand(); err != nil {
		s.logger.Error("failed to start hand", "err", err)
		s.finish()
		return nil
	}
	s.handActions = s.handActions[:0]
	clear(s.applied)

	s.emit(EventHandStart, HandStartData{
		HandID:     s.g.HandID,
		HandNumber: s.g.HandCount,
		Dealer:     s.g.DealerIndex,
		SmallBlind: s.g.SmallBlind,
		BigBlind:   s.g.BigBlind,
	})
	s.broadcastState()
	return nil
}

// afterAction emits the round and hand lifecycle events that follow an
// applied action
func (s *Session) afterAction(res game.ActionResult) {
	if res.HandEnded {
		s.lastResult = res.Result
		s.emit(EventShowdown, res.Result)
		s.persist(res.Result)
		return
	}
	if res.RoundEnded {
		s.emit(EventRoundComplete, RoundCompleteData{
			HandID: s.g.HandID,
			Street: s.g.State,
			Pot:    s.g.Pot(),
		})
	}
}

func (s *Session) pauseForContinue() {
	s.paused = true
	s.pausedAt = s.clock.Now()
	s.pauseGen++
	gen := s.pauseGen

	s.emit(EventAwaitingContinue, AwaitingContinueData{
		HandID:  s.g.HandID,
		Timeout: s.cfg.StepTimeout,
	})

	s.resumeTimer = s.clock.AfterFunc(s.cfg.StepTimeout, func() {
		select {
		case s.cmds <- resumeCmd{gen: gen}:
		case <-s.closed:
		}
	})
}

func (s *Session) stopResumeTimer() {
	if s.resumeTimer != nil {
		s.resumeTimer.Stop()
		s.resumeTimer = nil
	}
}

func (s *Session) finish() {
	if s.done {
		return
	}
	s.done = true
	s.stopResumeTimer()
	s.paused = false

	stacks := make(map[int]int, len(s.g.Players))
	for _, p := range s.g.Players {
		stacks[p.Seat] = p.Stack
	}
	s.emit(EventGameOver, GameOverData{HandsPlayed: s.g.HandCount, Stacks: stacks})
	s.logger.Info("game over", "hands", s.g.HandCount)
}

func (s *Session) recordDecision(record DecisionRecord) {
	s.decisions = append(s.decisions, record)
	if len(s.decisions) > s.cfg.HistorySize {
		s.decisions = s.decisions[len(s.decisions)-s.cfg.HistorySize:]
	}
	s.handActions = append(s.handActions, history.ActionRecord{
		DecisionID: record.DecisionID,
		Seat:       record.Seat,
		Street:     record.Street.String(),
		Action:     record.Action.String(),
		Amount:     record.Amount,
		Reasoning:  record.Reasoning,
		Fallback:   record.Fallback,
		At:         record.At,
	})
}

// persist hands the completed hand to the store without blocking play
func (s *Session) persist(result *game.HandResult) {
	if s.store == nil || result == nil {
		return
	}
	hand := history.CompletedHand{
		GameID:     s.id,
		HandID:     result.HandID,
		HandNumber: result.HandNumber,
		PlayedAt:   s.clock.Now(),
		Result:     *result,
		Actions:    append([]history.ActionRecord(nil), s.handActions...),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.SaveHand(ctx, hand); err != nil {
			s.logger.Warn("failed to persist hand", "hand", hand.HandID, "err", err)
		}
	}()
}

func (s *Session) phase() Phase {
	switch {
	case s.done:
		return PhaseIdle
	case s.paused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

func (s *Session) snapshot(seat int) Snapshot {
	return Snapshot{
		Seq:       s.seq,
		Phase:     s.phase(),
		StepMode:  s.stepMode,
		View:      s.g.View(seat),
		Decisions: append([]DecisionRecord(nil), s.decisions...),
		Result:    s.lastResult,
	}
}

// emit broadcasts one event, identical for every subscriber
func (s *Session) emit(typ EventType, data any) {
	s.seq++
	evt := Event{Seq: s.seq, Type: typ, Timestamp: s.clock.Now(), Data: data}
	for sub := range s.subs {
		s.send(sub, evt)
	}
}

// broadcastState sends a state_update rendered per subscriber, so each seat
// sees its own hole cards and nobody else's
func (s *Session) broadcastState() {
	s.seq++
	now := s.clock.Now()
	for sub := range s.subs {
		s.send(sub, Event{
			Seq:       s.seq,
			Type:      EventStateUpdate,
			Timestamp: now,
			Data:      s.g.View(sub.Seat),
		})
	}
}

func (s *Session) send(sub *Subscriber, evt Event) {
	select {
	case sub.events <- evt:
	default:
		// The subscriber can no longer keep up; cut it loose so the
		// stream stays ordered for everyone else.
		s.logger.Warn("dropping slow subscriber", "seat", sub.Seat)
		delete(s.subs, sub)
		close(sub.events)
	}
}

func (s *Session) shutdown() {
	close(s.closed)
	s.stopResumeTimer()
	for sub := range s.subs {
		delete(s.subs, sub)
		close(sub.events)
	}
	s.logger.Info("session stopped")
}

func (c subscribeCmd) apply(s *Session) {
	sub := newSubscriber(c.seat)
	s.subs[sub] = struct{}{}
	c.reply <- subscribeReply{sub: sub, snap: s.snapshot(c.seat)}
}

func (c unsubscribeCmd) apply(s *Session) {
	if _, ok := s.subs[c.sub]; ok {
		delete(s.subs, c.sub)
		close(c.sub.events)
	}
}

func (c actCmd) apply(s *Session) {
	if c.decisionID != "" {
		if res, ok := s.applied[c.decisionID]; ok {
			c.reply <- res
			return
		}
	}

	record := DecisionRecord{
		DecisionID: c.decisionID,
		HandID:     s.g.HandID,
		Seat:       c.seat,
		Street:     s.g.State,
		At:         s.clock.Now(),
	}
	if record.DecisionID == "" {
		record.DecisionID = uuid.NewString()
	}
	if c.seat >= 0 && c.seat < len(s.g.Players) {
		record.Name = s.g.Players[c.seat].Name
	}

	res := s.g.ApplyAction(c.seat, c.action, c.amount)
	if !res.OK {
		s.emit(EventActionRejected, ActionRejectedData{
			Seat: c.seat, Action: c.action, Amount: c.amount,
			Code: res.Code, Reason: res.Reason,
		})
		c.reply <- res
		return
	}
	if c.decisionID != "" {
		s.applied[c.decisionID] = res
	}

	record.Action = c.action
	record.Amount = c.amount
	record.Paid = res.Paid
	record.AllIn = res.AllIn
	s.recordDecision(record)

	s.emit(EventPlayerAction, record)
	s.broadcastState()
	s.afterAction(res)
	c.reply <- res
}

func (c continueCmd) apply(s *Session) {
	if !s.paused {
		c.reply <- false
		return
	}
	s.stopResumeTimer()
	s.paused = false
	c.reply <- true
}

func (c stepModeCmd) apply(s *Session) {
	s.stepMode = c.enabled
	if !c.enabled {
		s.stepPrompted = false
		if s.paused {
			s.stopResumeTimer()
			s.paused = false
		}
	}
	c.reply <- struct{}{}
}

func (c resumeCmd) apply(s *Session) {
	// A stale timer from an earlier pause must not resume a later one.
	if !s.paused || c.gen != s.pauseGen {
		return
	}
	s.resumeTimer = nil
	s.paused = false
	s.emit(EventAutoResumed, AutoResumedData{
		HandID: s.g.HandID,
		After:  s.clock.Now().Sub(s.pausedAt),
	})
}

func (c snapshotCmd) apply(s *Session) {
	c.reply <- s.snapshot(c.seat)
}

// Subscribe attaches a new subscriber viewing from the given seat (negative
// for an observer) and returns the snapshot its stream continues from.
func (s *Session) Subscribe(ctx context.Context, seat int) (*Subscriber, Snapshot, error) {
	cmd := subscribeCmd{seat: seat, reply: make(chan subscribeReply, 1)}
	if err := s.submit(ctx, cmd); err != nil {
		return nil, Snapshot{}, err
	}
	reply := <-cmd.reply
	return reply.sub, reply.snap, nil
}

// Unsubscribe detaches a subscriber and closes its event channel
func (s *Session) Unsubscribe(ctx context.Context, sub *Subscriber) error {
	return s.submit(ctx, unsubscribeCmd{sub: sub})
}

// Act applies an action for a seat, typically a human player. A non-empty
// decisionID makes the call idempotent within the current hand: resubmitting
// after a reconnect returns the original result instead of acting twice.
func (s *Session) Act(ctx context.Context, seat int, action game.Action, amount int, decisionID string) (game.ActionResult, error) {
	cmd := actCmd{seat: seat, action: action, amount: amount, decisionID: decisionID, reply: make(chan game.ActionResult, 1)}
	if err := s.submit(ctx, cmd); err != nil {
		return game.ActionResult{}, err
	}
	return <-cmd.reply, nil
}

// Continue resumes a paused session. It reports whether the session was
// actually paused.
func (s *Session) Continue(ctx context.Context) (bool, error) {
	cmd := continueCmd{reply: make(chan bool, 1)}
	if err := s.submit(ctx, cmd); err != nil {
		return false, err
	}
	return <-cmd.reply, nil
}

// SetStepMode toggles pausing between AI actions
func (s *Session) SetStepMode(ctx context.Context, enabled bool) error {
	cmd := stepModeCmd{enabled: enabled, reply: make(chan struct{}, 1)}
	if err := s.submit(ctx, cmd); err != nil {
		return err
	}
	<-cmd.reply
	return nil
}

// Snapshot returns the current session state from a seat's perspective
func (s *Session) Snapshot(ctx context.Context, seat int) (Snapshot, error) {
	cmd := snapshotCmd{seat: seat, reply: make(chan Snapshot, 1)}
	if err := s.submit(ctx, cmd); err != nil {
		return Snapshot{}, err
	}
	return <-cmd.reply, nil
}

func (s *Session) submit(ctx context.Context, cmd command) error {
	select {
	case s.cmds <- cmd:
		return nil
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
