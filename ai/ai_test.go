package ai

import (
	"testing"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"

	"golang.org/x/exp/rand"
)

func snapshot(grid types.Grid, dir types.Point, target types.Point, body ...types.Point) game.Snapshot {
	return game.Snapshot{
		State:     manager.Running,
		Grid:      grid,
		Body:      body,
		Direction: dir,
		Target:    target,
		HasTarget: true,
	}
}

var grid = types.Grid{Width: 10, Height: 10, CellSize: 1}

func TestGreedyHeadsForTarget(t *testing.T) {
	p := NewGreedy(grid)
	tests := []struct {
		name   string
		dir    types.Point
		target types.Point
		want   input.Dir
	}{
		{"straight ahead", types.Right, types.Point{X: 9, Y: 5}, input.Right},
		{"turn up", types.Right, types.Point{X: 5, Y: 0}, input.Up},
		{"turn down", types.Right, types.Point{X: 5, Y: 9}, input.Down},
		// target behind: reversal is not a candidate
		{"behind", types.Right, types.Point{X: 0, Y: 5}, input.Up},
	}
	for _, tt := range tests {
		s := snapshot(grid, tt.dir, tt.target, types.Point{X: 5, Y: 5}, types.Point{X: 4, Y: 5})
		got, ok := p.Decide(s)
		if !ok || got != tt.want {
			t.Errorf("%s: Decide = %v,%v want %v", tt.name, got, ok, tt.want)
		}
	}
}

func TestGreedyAvoidsWallsAndBody(t *testing.T) {
	p := NewGreedy(grid)

	// at the right edge heading right with the target beyond the corner
	s := snapshot(grid, types.Right, types.Point{X: 9, Y: 0}, types.Point{X: 9, Y: 5}, types.Point{X: 8, Y: 5})
	got, ok := p.Decide(s)
	if !ok || got != input.Up {
		t.Errorf("Decide = %v,%v want up", got, ok)
	}

	// boxed in: top-left corner, body below
	s = snapshot(grid, types.Up, types.Point{X: 5, Y: 5},
		types.Point{X: 0, Y: 0}, types.Point{X: 0, Y: 1}, types.Point{X: 1, Y: 1}, types.Point{X: 1, Y: 0})
	if d, ok := p.Decide(s); ok {
		t.Errorf("expected no safe move, got %v", d)
	}
}

func TestGreedyPlaysAGame(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Seed = 5
	g, err := game.New(cfg, game.WithPilot(NewGreedy(mustGrid(t, cfg))))
	if err != nil {
		t.Fatal(err)
	}
	g.Handle(input.KeyEvent())

	var snap game.Snapshot
	for i := 0; i < 2000 && g.State() == manager.Running; i++ {
		snap = g.Tick()
	}
	if snap.Score < 3*cfg.Award {
		t.Errorf("greedy pilot scored only %d", snap.Score)
	}
}

func TestQLearningDecidesAndLearns(t *testing.T) {
	q := NewQLearning(grid, 11)
	q.Epsilon = 0

	s := snapshot(grid, types.Right, types.Point{X: 8, Y: 5}, types.Point{X: 5, Y: 5}, types.Point{X: 4, Y: 5})
	for i := 0; i < 20; i++ {
		d, ok := q.Decide(s)
		if !ok {
			t.Fatal("no decision")
		}
		if d == input.Left {
			t.Fatal("reversal chosen")
		}
	}
	if len(q.QTable) == 0 {
		t.Error("nothing learned")
	}

	q.EndRun(s)
	if q.GamesPlayed != 1 || q.hasLast {
		t.Errorf("EndRun did not close the episode: %+v", q)
	}
}

func TestQLearningObserve(t *testing.T) {
	q := NewQLearning(grid, 1)
	s := snapshot(grid, types.Up, types.Point{X: 3, Y: 0}, types.Point{X: 0, Y: 0}, types.Point{X: 0, Y: 1})
	st := q.Observe(s)

	if st.RelativeFoodDir != [2]int{1, 0} || st.FoodDistance != 3 {
		t.Errorf("food view = %v / %d", st.RelativeFoodDir, st.FoodDistance)
	}
	want := [4]bool{true, false, true, true} // up wall, right free, down body, left wall
	if st.DangerDirs != want {
		t.Errorf("dangers = %v, want %v", st.DangerDirs, want)
	}
}

func TestQLearningTracksRuns(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Seed = 3
	q := NewQLearning(mustGrid(t, cfg), 3)
	g, err := game.New(cfg, game.WithPilot(q))
	if err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 20; run++ {
		g.Handle(input.KeyEvent())
		for i := 0; i < 2000 && g.State() == manager.Running; i++ {
			g.Tick()
		}
	}
	if len(q.QTable) == 0 {
		t.Fatal("nothing learned")
	}
	if q.GamesPlayed != g.Stats().Runs {
		t.Errorf("learner saw %d runs, game finished %d", q.GamesPlayed, g.Stats().Runs)
	}
}

func TestNewPilot(t *testing.T) {
	for _, name := range []string{"greedy", "qlearn"} {
		p, err := New(name, grid, 1)
		if err != nil || p == nil {
			t.Errorf("New(%q) = %v, %v", name, p, err)
		}
	}
	if p, err := New("", grid, 1); err != nil || p != nil {
		t.Errorf("manual play should have no pilot, got %v, %v", p, err)
	}
	if _, err := New("astar", grid, 1); err == nil {
		t.Error("unknown pilot accepted")
	}
}

func mustGrid(t *testing.T, cfg types.Config) types.Grid {
	t.Helper()
	g, err := cfg.Grid()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestPilotSeedSeparatesStreams(t *testing.T) {
	const gameSeed = 42
	if PilotSeed(gameSeed) == gameSeed {
		t.Fatal("pilot seed equals game seed")
	}
	if PilotSeed(gameSeed) != PilotSeed(gameSeed) {
		t.Fatal("pilot seed is not deterministic")
	}

	p, err := New("qlearn", grid, gameSeed)
	if err != nil {
		t.Fatal(err)
	}
	pilotRng := p.(*QLearning).rng
	foodRng := rand.New(rand.NewSource(gameSeed))
	same := 0
	for i := 0; i < 16; i++ {
		if pilotRng.Uint64() == foodRng.Uint64() {
			same++
		}
	}
	if same == 16 {
		t.Fatal("pilot draws the same sequence as target placement")
	}
}
