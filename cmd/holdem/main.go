package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tablestakes/holdem/internal/ai"
	"github.com/tablestakes/holdem/internal/auth"
	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/history"
	"github.com/tablestakes/holdem/internal/logging"
	"github.com/tablestakes/holdem/internal/server"
	"github.com/tablestakes/holdem/internal/session"
)

var cli struct {
	Debug bool `short:"d" help:"Enable debug logging."`

	Serve serveCmd `cmd:"" default:"withargs" help:"Run the WebSocket server."`
	Demo  demoCmd  `cmd:"" help:"Watch AI seats play hands in the terminal."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("Texas hold'em engine with AI opponents and step-through play."),
	)
	logger := logging.Default(cli.Debug)
	ctx.FatalIfErrorf(ctx.Run(logger))
}

type serveCmd struct {
	Config string `short:"c" default:"holdem.hcl" help:"Path to HCL configuration file."`
	Addr   string `short:"a" help:"Listen address (overrides config)."`
	Seed   int64  `help:"Deterministic RNG seed (0 uses the clock)."`
}

func (cmd *serveCmd) Run(logger *log.Logger) error {
	cfg, err := loadConfig(cmd.Config, logger)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.ListenAddr = cmd.Addr
	}
	if len(cfg.Tables) == 0 {
		return fmt.Errorf("no tables configured")
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var validator auth.Validator = auth.NewNoopValidator()
	if cfg.Server.AuthURL != "" {
		validator = auth.NewHTTPValidator(cfg.Server.AuthURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := session.NewManager(logger)
	defer manager.StopAll()

	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	for i, table := range cfg.Tables {
		sess, err := buildSession(table, cfg, store, logger, seed+int64(i))
		if err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
		if err := manager.Start(ctx, sess); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
		logger.Info("table ready", "name", table.Name,
			"stakes", fmt.Sprintf("%d/%d", table.SmallBlind, table.BigBlind),
			"seats", len(table.Seats))
	}

	srv := server.New(cfg.Server.ListenAddr, manager, validator, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return srv.Run(groupCtx) })

	err = group.Wait()
	if err == context.Canceled {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func loadConfig(path string, logger *log.Logger) (server.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("no config file, using defaults", "path", path)
		return server.DefaultConfig(), nil
	}
	return server.LoadConfig(path)
}

func openStore(cfg server.Config, logger *log.Logger) (history.Store, error) {
	if cfg.History.Path == "" {
		return history.NewMemoryStore(0), nil
	}
	logger.Info("opening history database", "path", cfg.History.Path)
	return history.NewSQLiteStore(cfg.History.Path)
}

func buildSession(table server.TableConfig, cfg server.Config, store history.Store, logger *log.Logger, seed int64) (*session.Session, error) {
	if len(table.Seats) < 2 {
		return nil, fmt.Errorf("need at least 2 seats, have %d", len(table.Seats))
	}

	gameCfg := game.Config{
		SmallBlind: table.SmallBlind,
		BigBlind:   table.BigBlind,
	}
	sources := make(map[int]ai.DecisionSource)
	rng := rand.New(rand.NewSource(seed))

	for seat, sc := range table.Seats {
		gameCfg.Seats = append(gameCfg.Seats, game.SeatConfig{
			Name:        sc.Name,
			Stack:       sc.Stack,
			Human:       sc.Human,
			Personality: sc.Personality,
		})
		if sc.Human {
			continue
		}
		source, err := ai.ForPersonality(sc.Personality, rng, logger)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", sc.Name, err)
		}
		sources[seat] = source
	}

	g, err := game.New(table.Name, gameCfg, rng)
	if err != nil {
		return nil, err
	}

	return session.New(table.Name, g, sources, store, logger, session.Config{
		StepMode:    cfg.Session.StepMode,
		StepTimeout: cfg.Session.StepTimeout(),
		ActionDelay: cfg.Session.ActionDelay(),
		HandLimit:   cfg.Session.HandLimit,
	}), nil
}

type demoCmd struct {
	Hands int   `default:"5" help:"Number of hands to play."`
	Seats int   `default:"4" help:"Number of AI seats."`
	Seed  int64 `help:"Deterministic RNG seed (0 uses the clock)."`
}

func (cmd *demoCmd) Run(logger *log.Logger) error {
	if cmd.Seats < 2 || cmd.Seats > 9 {
		return fmt.Errorf("seats must be between 2 and 9")
	}
	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	personalities := []string{
		ai.PersonalityBalanced, ai.PersonalityAggressive,
		ai.PersonalityTight, ai.PersonalityCallingStation,
	}

	gameCfg := game.Config{SmallBlind: 5, BigBlind: 10}
	sources := make(map[int]ai.DecisionSource)
	for seat := 0; seat < cmd.Seats; seat++ {
		personality := personalities[seat%len(personalities)]
		gameCfg.Seats = append(gameCfg.Seats, game.SeatConfig{
			Name:        fmt.Sprintf("%s-%d", personality, seat),
			Stack:       1000,
			Personality: personality,
		})
		source, err := ai.ForPersonality(personality, rng, logger)
		if err != nil {
			return err
		}
		sources[seat] = source
	}

	g, err := game.New("demo", gameCfg, rng)
	if err != nil {
		return err
	}

	sess := session.New("demo", g, sources, nil, logger, session.Config{
		HandLimit: cmd.Hands,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return sess.Run(groupCtx) })

	sub, snap, err := sess.Subscribe(ctx, -1)
	if err != nil {
		return err
	}
	fmt.Printf("demo: %d seats, %d hands, seed %d\n\n", cmd.Seats, cmd.Hands, seed)
	printDemoEvents(sub, snap)

	stop()
	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func printDemoEvents(sub *session.Subscriber, snap session.Snapshot) {
	names := make(map[int]string)
	for _, p := range snap.View.Players {
		names[p.Seat] = p.Name
	}

	for evt := range sub.Events() {
		switch evt.Type {
		case session.EventHandStart:
			data := evt.Data.(session.HandStartData)
			fmt.Printf("--- hand %d (dealer %s) ---\n", data.HandNumber, names[data.Dealer])

		case session.EventAIAction:
			record := evt.Data.(session.DecisionRecord)
			if record.Amount > 0 {
				fmt.Printf("  [%s] %s %ss to %d (%s)\n",
					record.Street, record.Name, record.Action, record.Amount, record.Reasoning)
			} else {
				fmt.Printf("  [%s] %s %ss (%s)\n",
					record.Street, record.Name, record.Action, record.Reasoning)
			}

		case session.EventShowdown:
			result := evt.Data.(*game.HandResult)
			if result.FoldedWin {
				for seat, amount := range result.Payouts {
					fmt.Printf("  %s takes %d uncontested\n\n", names[seat], amount)
				}
				continue
			}
			fmt.Printf("  board: %v\n", result.Board)
			for _, pot := range result.Pots {
				for _, winner := range pot.Winners {
					fmt.Printf("  %s wins %d\n", names[winner], pot.Amount/len(pot.Winners))
				}
			}
			fmt.Println()

		case session.EventGameOver:
			data := evt.Data.(session.GameOverData)
			fmt.Println("final stacks:")
			for seat := 0; seat < len(names); seat++ {
				fmt.Printf("  %s: %d\n", names[seat], data.Stacks[seat])
			}
			return
		}
	}
}
