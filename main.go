package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pythons/ai"
	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"
	"pythons/server"
	"pythons/ui"
	"pythons/ui/terminal"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

type options struct {
	config    string
	frontend  string
	autopilot string
	seed      uint64
	runs      int
	logFile   string

	httpAddr       string
	sshAddr        string
	hostKey        string
	password       string
	authorizedKeys string
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "path to a TOML config file")
	flag.StringVar(&opts.frontend, "ui", "raylib", "frontend: raylib, terminal or none")
	flag.StringVar(&opts.autopilot, "autopilot", "", "steer automatically: greedy or qlearn")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")
	flag.IntVar(&opts.runs, "runs", 0, "number of runs to play with -ui none")
	flag.StringVar(&opts.logFile, "log", "", "append logs to this file instead of stderr")
	flag.StringVar(&opts.httpAddr, "http", "", "serve the spectator API on this address")
	flag.StringVar(&opts.sshAddr, "ssh", "", "serve games over SSH on this address")
	flag.StringVar(&opts.hostKey, "host-key", os.Getenv("HOME")+"/.ssh/id_rsa", "SSH host key")
	flag.StringVar(&opts.password, "password", "", "SSH password (empty accepts any)")
	flag.StringVar(&opts.authorizedKeys, "authorized-keys", "", "SSH authorized_keys file")
	flag.Parse()

	logger, err := newLogger(opts)
	if err != nil {
		log.Fatal(err)
	}

	cfg := types.DefaultConfig()
	if opts.config != "" {
		if cfg, err = types.LoadConfig(opts.config); err != nil {
			logger.Fatal(err)
		}
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Fatal(err)
	}
}

func newLogger(opts options) (*log.Logger, error) {
	var w io.Writer = os.Stderr
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		w = f
	case opts.frontend == "terminal":
		// stderr shares the screen with tcell
		w = io.Discard
	}
	return log.New(w, "[pythons] ", log.Ldate|log.Ltime|log.Lmsgprefix), nil
}

func newGame(cfg types.Config, autopilot string, l *log.Logger) (*game.Game, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	pilot, err := ai.New(autopilot, grid, cfg.Seed)
	if err != nil {
		return nil, err
	}
	gameOpts := []game.Option{game.WithLogger(l)}
	if pilot != nil {
		gameOpts = append(gameOpts, game.WithPilot(pilot))
	}
	return game.New(cfg, gameOpts...)
}

func run(ctx context.Context, cfg types.Config, opts options, logger *log.Logger) error {
	var publisher server.Publisher
	errc := make(chan error, 2)
	background := 0

	if opts.httpAddr != "" {
		spectator := server.NewSpectator(log.New(logger.Writer(), logger.Prefix()+"[http] ", logger.Flags()))
		publisher = spectator
		background++
		go func() { errc <- spectator.ListenAndServe(ctx, opts.httpAddr) }()
	}

	if opts.sshAddr != "" {
		hostKey, err := server.LoadHostKey(opts.hostKey)
		if err != nil {
			return err
		}
		sshLog := log.New(logger.Writer(), logger.Prefix()+"[ssh] ", logger.Flags())
		factory := func(l *log.Logger) (*game.Game, error) {
			return newGame(cfg, "", l)
		}
		srv, err := server.NewSSHServer(server.SSHConfig{
			Address:            opts.sshAddr,
			HostKey:            hostKey,
			Password:           opts.password,
			AuthorizedKeysFile: opts.authorizedKeys,
		}, factory, publisher, sshLog)
		if err != nil {
			return err
		}
		background++
		go func() { errc <- srv.ListenAndServe(ctx) }()
	}

	g, err := newGame(cfg, opts.autopilot, logger)
	if err != nil {
		return err
	}
	publish := func(game.Snapshot) {}
	if publisher != nil {
		publish = server.Observe(publisher, g)
	}

	switch opts.frontend {
	case "raylib":
		err = runWindow(ctx, g, cfg, publish)
	case "terminal":
		err = runTerminal(ctx, g, publish)
	case "none":
		switch {
		case opts.runs > 0:
			if opts.autopilot == "" {
				return errors.New("-ui none with -runs needs -autopilot")
			}
			err = runHeadless(ctx, g, opts.runs, publish)
			logStats(logger, g.Stats())
		case background > 0:
			for i := 0; i < background; i++ {
				if err := <-errc; err != nil {
					return err
				}
			}
		default:
			return errors.New("-ui none needs -runs, -http or -ssh")
		}
	default:
		return errors.Errorf("unknown frontend %q", opts.frontend)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runWindow drives the game from raylib's frame loop: events are handled
// every frame, a tick runs whenever the current interval has elapsed.
func runWindow(ctx context.Context, g *game.Game, cfg types.Config, publish func(game.Snapshot)) error {
	rl.InitWindow(int32(cfg.BoardWidth), int32(cfg.BoardHeight+cfg.BoardHeight/20+20), ui.Title)
	rl.SetWindowState(rl.FlagWindowResizable)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	renderer := ui.NewRenderer()
	lastUpdate := time.Now()

	for !g.Done() {
		if ctx.Err() != nil {
			g.Handle(input.QuitEvent())
			break
		}

		for _, ev := range ui.PollEvents() {
			before := g.State()
			g.Handle(ev)
			if g.State() != before {
				lastUpdate = time.Now()
				publish(g.Snapshot())
			}
		}

		if rl.IsWindowResized() {
			renderer.UpdateDimensions()
		}

		if time.Since(lastUpdate) >= g.Interval() {
			publish(g.Tick())
			lastUpdate = time.Now()
		}

		renderer.Draw(g.Snapshot())
	}
	return nil
}

func runTerminal(ctx context.Context, g *game.Game, publish func(game.Snapshot)) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "terminal init")
	}
	defer screen.Fini()
	return terminal.Play(ctx, g, screen, publish)
}

// runHeadless plays n complete runs as fast as the pilot decides. A run
// that goes on for too long without ending counts as stalled.
func runHeadless(ctx context.Context, g *game.Game, n int, publish func(game.Snapshot)) error {
	maxTicks := uint64(100 * g.Grid().Size())
	for i := 0; i < n; i++ {
		g.Handle(input.KeyEvent())
		for g.State() == manager.Running {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap := g.Tick()
			publish(snap)
			if snap.Tick > maxTicks {
				return errors.Errorf("run %s stalled after %d ticks", snap.RunID, snap.Tick)
			}
		}
	}
	return nil
}

func logStats(l *log.Logger, stats manager.Stats) {
	l.Printf("%d runs, high score %d, average %.1f", stats.Runs, stats.HighScore, stats.AverageScore)
}
