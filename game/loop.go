package game

import (
	"context"
	"time"

	"pythons/game/input"
)

// Run drives the game from a single goroutine until a quit arrives, the
// event channel closes or ctx is cancelled. Splash and GameOver are
// handled inside the same loop, so a quit ends the wait just as it ends a
// running game, and the pending tick is dropped.
//
// render receives one snapshot per tick plus one whenever an event starts
// a new run.
func (g *Game) Run(ctx context.Context, events <-chan input.Event, render func(Snapshot)) error {
	if render == nil {
		render = func(Snapshot) {}
	}
	render(g.Snapshot())

	timer := time.NewTimer(g.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			before := g.State()
			g.Handle(ev)
			if g.Done() {
				return nil
			}
			if g.State() != before {
				render(g.Snapshot())
				resetTimer(timer, g.Interval())
			}
		case <-timer.C:
			render(g.Tick())
			timer.Reset(g.Interval())
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
