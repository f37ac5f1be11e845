// Package ai provides autopilots that steer the snake through the same
// input path a player uses.
package ai

import (
	"time"

	"pythons/game"
	"pythons/game/types"

	"github.com/pkg/errors"
)

// seedMix separates the pilot's random stream from the one placing targets.
const seedMix = 0x9e3779b97f4a7c15

// PilotSeed derives the pilot seed from the game seed. A zero game seed
// means a time based one.
func PilotSeed(gameSeed uint64) uint64 {
	if gameSeed == 0 {
		gameSeed = uint64(time.Now().UnixNano())
	}
	return gameSeed ^ seedMix
}

// New returns the pilot registered under name for a game seeded with
// gameSeed. An empty name means manual play.
func New(name string, grid types.Grid, gameSeed uint64) (game.Pilot, error) {
	switch name {
	case "":
		return nil, nil
	case "greedy":
		return NewGreedy(grid), nil
	case "qlearn":
		return NewQLearning(grid, PilotSeed(gameSeed)), nil
	default:
		return nil, errors.Errorf("unknown autopilot %q", name)
	}
}
