package terminal

import (
	"context"
	"testing"
	"time"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"

	"github.com/gdamore/tcell/v2"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(40, 20)
	t.Cleanup(s.Fini)
	return s
}

func runeAt(s tcell.SimulationScreen, x, y int) rune {
	cells, width, _ := s.GetContents()
	c := cells[y*width+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func TestDrawRunning(t *testing.T) {
	screen := newScreen(t)
	term := New(screen)

	snap := game.Snapshot{
		State:     manager.Running,
		Grid:      types.Grid{Width: 6, Height: 4, CellSize: 1},
		Body:      []types.Point{{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Direction: types.Right,
		Target:    types.Point{X: 5, Y: 3},
		HasTarget: true,
	}
	term.Draw(snap)

	tests := []struct {
		cell types.Point
		want rune
	}{
		{types.Point{X: 2, Y: 1}, headRune},
		{types.Point{X: 1, Y: 1}, bodyRune},
		{types.Point{X: 0, Y: 1}, bodyRune},
		{types.Point{X: 5, Y: 3}, targetRune},
		{types.Point{X: 3, Y: 1}, ' '},
	}
	for _, tt := range tests {
		x, y := transform(tt.cell.X, tt.cell.Y)
		if got := runeAt(screen, x, y); got != tt.want {
			t.Errorf("cell %v: got %q, want %q", tt.cell, got, tt.want)
		}
	}

	if got := runeAt(screen, 0, 1); got != '+' {
		t.Errorf("frame corner: got %q", got)
	}
	if got := runeAt(screen, 7, 3); got != '|' {
		t.Errorf("right frame: got %q", got)
	}
}

func TestDrawHidesMissingTarget(t *testing.T) {
	screen := newScreen(t)
	term := New(screen)

	term.Draw(game.Snapshot{
		State:  manager.GameOver,
		Grid:   types.Grid{Width: 3, Height: 1, CellSize: 1},
		Body:   []types.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		Target: types.Point{X: 2, Y: 0},
		Won:    true,
	})
	x, y := transform(2, 0)
	if got := runeAt(screen, x, y); got == targetRune {
		t.Fatalf("target drawn although absent")
	}
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		want input.Event
	}{
		{tcell.KeyUp, input.DirEvent(input.Up)},
		{tcell.KeyDown, input.DirEvent(input.Down)},
		{tcell.KeyLeft, input.DirEvent(input.Left)},
		{tcell.KeyRight, input.DirEvent(input.Right)},
		{tcell.KeyEscape, input.QuitEvent()},
		{tcell.KeyCtrlC, input.QuitEvent()},
		{tcell.KeyEnter, input.KeyEvent()},
	}
	for _, tt := range tests {
		if got := TranslateKey(tcell.NewEventKey(tt.key, 0, tcell.ModNone)); got != tt.want {
			t.Errorf("key %v: got %+v, want %+v", tt.key, got, tt.want)
		}
	}
	if got := TranslateKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)); got != input.KeyEvent() {
		t.Errorf("rune: got %+v", got)
	}
}

func TestPumpDeliversKeys(t *testing.T) {
	screen := newScreen(t)
	term := New(screen)
	quit := make(chan struct{})
	defer close(quit)

	events := term.Pump(quit)
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)

	select {
	case ev := <-events:
		if ev != input.DirEvent(input.Left) {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestPlayStopsOnEscape(t *testing.T) {
	screen := newScreen(t)

	cfg := types.DefaultConfig()
	g, err := game.New(cfg)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}

	var frames int
	done := make(chan error, 1)
	go func() {
		done <- Play(context.Background(), g, screen, func(game.Snapshot) { frames++ })
	}()

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not return")
	}
	if frames == 0 {
		t.Fatal("observer saw no frames")
	}
}
