package game

import (
	"pythons/game/manager"
	"pythons/game/types"
)

// Snapshot is a read-only copy of everything a renderer needs for one
// frame. Holding one never aliases the game's own state.
type Snapshot struct {
	RunID     string           `json:"runId"`
	Tick      uint64           `json:"tick"`
	State     manager.RunState `json:"state"`
	Grid      types.Grid       `json:"grid"`
	Body      []types.Point    `json:"body"` // head first
	Direction types.Point      `json:"direction"`
	Target    types.Point      `json:"target"`
	HasTarget bool             `json:"hasTarget"`
	Score     int              `json:"score"`
	HighScore int              `json:"highScore"`
	Runs      int              `json:"runs"`
	TickRate  int              `json:"tickRate"`
	Cause     string           `json:"cause,omitempty"`
	Won       bool             `json:"won"`
}

// Head returns the first body cell.
func (s Snapshot) Head() types.Point {
	if len(s.Body) == 0 {
		return types.Point{}
	}
	return s.Body[0]
}

// Occupied returns the body as a set.
func (s Snapshot) Occupied() types.CellSet {
	return types.NewCellSet(s.Body...)
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		RunID:     g.state.RunID(),
		Tick:      g.tick,
		State:     g.state.State(),
		Grid:      g.grid,
		Body:      g.snake.Cells(),
		Direction: g.mapper.Current(),
		Target:    g.target,
		HasTarget: g.hasTarget,
		Score:     g.score,
		HighScore: g.state.GetHighScore(),
		Runs:      g.state.Runs(),
		TickRate:  g.speed.Rate(),
		Won:       g.won,
	}
	if snap.State == manager.GameOver {
		snap.Cause = g.collision.String()
		if g.won {
			snap.Cause = "win"
		}
	}
	return snap
}
