package manager

import (
	"pythons/game/types"
)

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// Check runs the boundary check first, then the self check. body is the
// snake before the new head is inserted, tail included.
func (cm *CollisionManager) Check(pos types.Point, body types.Occupancy) types.CollisionType {
	if cm.isWallCollision(pos) {
		return types.WallCollision
	}
	if body != nil && body.Contains(pos) {
		return types.SelfCollision
	}
	return types.NoCollision
}

// isWallCollision checks if a position collides with walls
func (cm *CollisionManager) isWallCollision(pos types.Point) bool {
	return !cm.grid.InBounds(pos)
}

// IsDanger reports whether moving onto pos would end the run.
func (cm *CollisionManager) IsDanger(pos types.Point, body types.Occupancy) bool {
	return cm.Check(pos, body) != types.NoCollision
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Point, food types.Point) bool {
	return pos == food
}
