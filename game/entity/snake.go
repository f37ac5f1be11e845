package entity

import (
	"pythons/game/types"
)

// Collider decides whether a head position ends the run.
type Collider interface {
	Check(pos types.Point, body types.Occupancy) types.CollisionType
}

// StepResult reports what a single step did to the body.
type StepResult struct {
	Head      types.Point
	Grew      bool
	Collision types.CollisionType
}

// Snake is the ordered body, head first. No cell appears twice.
type Snake struct {
	Body      []types.Point
	Direction types.Point
	occupied  types.CellSet
}

// NewSnake builds a snake from cells ordered head to tail.
func NewSnake(body []types.Point, direction types.Point) *Snake {
	s := &Snake{
		Body:      make([]types.Point, len(body)),
		Direction: direction,
	}
	copy(s.Body, body)
	s.occupied = types.NewCellSet(body...)
	return s
}

// GetHead returns the first cell of the body.
func (s *Snake) GetHead() types.Point {
	return s.Body[0]
}

// GetTail returns the last cell of the body.
func (s *Snake) GetTail() types.Point {
	return s.Body[len(s.Body)-1]
}

// Contains reports whether p is part of the body.
func (s *Snake) Contains(p types.Point) bool {
	return s.occupied.Contains(p)
}

// Len is the number of cells in the body.
func (s *Snake) Len() int {
	return len(s.Body)
}

// Cells returns a copy of the body, head first.
func (s *Snake) Cells() []types.Point {
	cells := make([]types.Point, len(s.Body))
	copy(cells, s.Body)
	return cells
}

// NextHead is where the head lands when moving by velocity.
func (s *Snake) NextHead(velocity types.Point) types.Point {
	return s.GetHead().Add(velocity)
}

// Step moves the snake one cell along velocity.
//
// Collisions are judged against the body as it stands before the tail is
// dropped, so moving into the cell the tail is about to vacate is fatal on
// growth and non-growth ticks alike. A fatal step is not applied: the body
// keeps its last valid shape.
func (s *Snake) Step(velocity, target types.Point, collider Collider) StepResult {
	s.Direction = velocity
	newHead := s.NextHead(velocity)

	if c := collider.Check(newHead, s); c != types.NoCollision {
		return StepResult{Head: newHead, Collision: c}
	}

	s.Move(newHead)
	if newHead == target {
		return StepResult{Head: newHead, Grew: true}
	}
	s.RemoveTail()
	return StepResult{Head: newHead}
}

// Move inserts a new head.
func (s *Snake) Move(newHead types.Point) {
	s.Body = append(s.Body, types.Point{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
	s.occupied[newHead] = struct{}{}
}

// RemoveTail drops the last cell.
func (s *Snake) RemoveTail() {
	if len(s.Body) == 0 {
		return
	}
	tail := s.Body[len(s.Body)-1]
	s.Body = s.Body[:len(s.Body)-1]
	delete(s.occupied, tail)
}
