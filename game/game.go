package game

import (
	"fmt"
	"io"
	"log"
	"time"

	"pythons/game/entity"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"

	"golang.org/x/exp/rand"
)

// Pilot steers the snake in place of a player. Decide is called once per
// running tick, before the velocity is committed.
type Pilot interface {
	Decide(s Snapshot) (input.Dir, bool)
}

// Learner is implemented by pilots that want to see how a run ended.
type Learner interface {
	EndRun(s Snapshot)
}

// Game is the orchestrator. It is not safe for concurrent use: one goroutine
// handles events, ticks and takes snapshots.
type Game struct {
	cfg  types.Config
	grid types.Grid

	snake     *entity.Snake
	target    types.Point
	hasTarget bool
	score     int
	tick      uint64
	collision types.CollisionType
	won       bool
	quit      bool

	mapper     *input.Mapper
	collisions *manager.CollisionManager
	food       *manager.FoodManager
	speed      *manager.SpeedManager
	state      *manager.StateManager
	pilot      Pilot

	log    *log.Logger
	runLog *log.Logger
}

type Option func(*Game)

// WithLogger sets the logger used for run events.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		g.log = l
	}
}

// WithPilot hands steering to p.
func WithPilot(p Pilot) Option {
	return func(g *Game) {
		g.pilot = p
	}
}

// New validates cfg and builds a game waiting on the splash screen.
func New(cfg types.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Game{
		cfg:        cfg,
		grid:       grid,
		collisions: manager.NewCollisionManager(grid),
		food:       manager.NewFoodManager(grid, rand.New(rand.NewSource(seed))),
		speed:      manager.NewSpeedManager(cfg.BaseTickRate, cfg.SpeedStep, cfg.SpeedModulus),
		state:      manager.NewStateManager(),
		log:        log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.runLog = g.log
	g.reset()
	return g, nil
}

// reset puts every per-run value back to its configured start.
func (g *Game) reset() {
	g.snake = entity.NewSnake(g.cfg.InitialBody(), g.cfg.InitialDirection)
	g.mapper = input.NewMapper(g.cfg.InitialDirection)
	g.target = g.cfg.InitialTarget
	g.hasTarget = true
	g.score = 0
	g.tick = 0
	g.collision = types.NoCollision
	g.won = false
	g.speed.Reset()
}

// Handle applies one input event. Quit wins over everything; in Splash and
// GameOver any other press starts a fresh run; while Running only
// directions matter.
func (g *Game) Handle(ev input.Event) {
	if g.quit {
		return
	}
	switch ev.Kind {
	case input.Quit:
		g.quit = true
		g.runLog.Print("quit")
	case input.Direction:
		if g.state.State() == manager.Running {
			g.mapper.Request(ev.Dir)
			return
		}
		g.start()
	case input.Key:
		if g.state.State() != manager.Running {
			g.start()
		}
	}
}

func (g *Game) start() {
	g.reset()
	id, ok := g.state.Start()
	if !ok {
		return
	}
	g.runLog = log.New(g.log.Writer(), fmt.Sprintf("%s[run:%s] ", g.log.Prefix(), shortID(id)), g.log.Flags())
	g.runLog.Printf("run started on %dx%d board at %d ticks/s", g.grid.Width, g.grid.Height, g.speed.Rate())
}

// Tick advances a running game by one step and returns the new snapshot.
// Outside Running it only returns the current snapshot.
func (g *Game) Tick() Snapshot {
	if g.quit || g.state.State() != manager.Running {
		return g.Snapshot()
	}

	if g.pilot != nil {
		if d, ok := g.pilot.Decide(g.Snapshot()); ok {
			g.mapper.Request(d)
		}
	}

	g.tick++
	velocity := g.mapper.Commit()
	res := g.snake.Step(velocity, g.target, g.collisions)
	if res.Collision != types.NoCollision {
		g.collision = res.Collision
		g.end(false)
		return g.Snapshot()
	}

	if res.Grew {
		g.score += g.cfg.Award
		next, err := g.food.Pick(g.snake)
		if err != nil {
			// only a full board makes Pick fail
			g.runLog.Print(err)
			g.hasTarget = false
			g.won = true
			g.end(true)
			return g.Snapshot()
		}
		g.target = next
	}

	if g.speed.Update(g.score) {
		g.runLog.Printf("score %d: speed up to %d ticks/s", g.score, g.speed.Rate())
	}
	return g.Snapshot()
}

func (g *Game) end(won bool) {
	rec, ok := g.state.End(g.score, g.collision, won)
	if !ok {
		return
	}
	if won {
		g.runLog.Printf("board filled, run won with score %d after %d ticks", rec.Score, g.tick)
	} else {
		g.runLog.Printf("game over (%s collision) with score %d after %d ticks", rec.Cause, rec.Score, g.tick)
	}
	if l, ok := g.pilot.(Learner); ok {
		l.EndRun(g.Snapshot())
	}
}

// Interval is the time until the next tick should run.
func (g *Game) Interval() time.Duration {
	return g.speed.Interval()
}

// Done reports whether a quit was received.
func (g *Game) Done() bool {
	return g.quit
}

func (g *Game) State() manager.RunState {
	return g.state.State()
}

func (g *Game) Grid() types.Grid {
	return g.grid
}

// Stats returns the statistics of the finished runs.
func (g *Game) Stats() manager.Stats {
	return g.state.GetStats()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
