package server

import (
	"pythons/game"
	"pythons/game/manager"
)

// Publisher receives the frames a game draws and its run statistics.
type Publisher interface {
	Publish(snap game.Snapshot)
	// PublishStats takes ownership of stats.
	PublishStats(stats manager.Stats)
}

// Observe returns a render hook for g that publishes every frame, and the
// statistics only when the number of finished runs changed since the last
// frame. The history is never copied on the per-frame path.
func Observe(pub Publisher, g *game.Game) func(game.Snapshot) {
	runs := -1
	return func(snap game.Snapshot) {
		pub.Publish(snap)
		if snap.Runs != runs {
			runs = snap.Runs
			pub.PublishStats(g.Stats())
		}
	}
}
