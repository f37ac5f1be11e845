package entity

import (
	"testing"

	"pythons/game/types"
)

// gridCollider mirrors manager.CollisionManager without the import cycle.
type gridCollider struct{ grid types.Grid }

func (c gridCollider) Check(pos types.Point, body types.Occupancy) types.CollisionType {
	if !c.grid.InBounds(pos) {
		return types.WallCollision
	}
	if body.Contains(pos) {
		return types.SelfCollision
	}
	return types.NoCollision
}

var board = gridCollider{grid: types.Grid{Width: 4, Height: 4, CellSize: 1}}

func pts(xy ...int) []types.Point {
	out := make([]types.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, types.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func assertNoDuplicates(t *testing.T, s *Snake) {
	t.Helper()
	seen := types.NewCellSet()
	for _, c := range s.Body {
		if seen.Contains(c) {
			t.Fatalf("duplicate cell %v in body %v", c, s.Body)
		}
		seen[c] = struct{}{}
	}
	if seen.Len() != s.occupied.Len() {
		t.Fatalf("occupancy index out of sync: %d vs %d", seen.Len(), s.occupied.Len())
	}
}

func TestStepWithoutTargetKeepsLength(t *testing.T) {
	s := NewSnake(pts(1, 1, 0, 1), types.Right)
	res := s.Step(types.Right, types.Point{X: 3, Y: 3}, board)

	if res.Collision != types.NoCollision || res.Grew {
		t.Fatalf("unexpected result %+v", res)
	}
	if s.Len() != 2 {
		t.Errorf("length = %d, want 2", s.Len())
	}
	if s.GetHead() != (types.Point{X: 2, Y: 1}) || s.GetTail() != (types.Point{X: 1, Y: 1}) {
		t.Errorf("body = %v", s.Body)
	}
	if s.Contains(types.Point{X: 0, Y: 1}) {
		t.Error("old tail still indexed")
	}
	assertNoDuplicates(t, s)
}

func TestStepOntoTargetGrows(t *testing.T) {
	s := NewSnake(pts(1, 1, 0, 1), types.Right)
	res := s.Step(types.Right, types.Point{X: 2, Y: 1}, board)

	if !res.Grew || res.Head != (types.Point{X: 2, Y: 1}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if s.Len() != 3 {
		t.Errorf("length = %d, want 3", s.Len())
	}
	if s.GetTail() != (types.Point{X: 0, Y: 1}) {
		t.Errorf("tail should stay on a growth tick, body = %v", s.Body)
	}
	assertNoDuplicates(t, s)
}

func TestStepOffBoardIsWallCollision(t *testing.T) {
	s := NewSnake(pts(3, 0, 2, 0), types.Right)
	before := s.Cells()

	res := s.Step(types.Right, types.Point{X: 0, Y: 3}, board)
	if res.Collision != types.WallCollision {
		t.Fatalf("collision = %v, want wall", res.Collision)
	}
	if res.Head != (types.Point{X: 4, Y: 0}) {
		t.Errorf("head = %v", res.Head)
	}
	for i, c := range s.Body {
		if c != before[i] {
			t.Fatalf("fatal step changed the body: %v", s.Body)
		}
	}
}

func TestStepIntoBodyIsSelfCollision(t *testing.T) {
	// head (2,2), body curls through (3,2) (3,1) (2,1); moving up lands on
	// (2,1), which is not the tail.
	s := NewSnake(pts(2, 2, 3, 2, 3, 1, 2, 1, 1, 1), types.Left)
	res := s.Step(types.Up, types.Point{X: 0, Y: 0}, board)
	if res.Collision != types.SelfCollision {
		t.Fatalf("collision = %v, want self", res.Collision)
	}
}

func TestStepIntoVacatingTailIsFatal(t *testing.T) {
	// 2x2 loop: head (1,0), tail (0,0). Moving left targets the tail cell.
	s := NewSnake(pts(1, 0, 1, 1, 0, 1, 0, 0), types.Up)
	res := s.Step(types.Left, types.Point{X: 3, Y: 3}, board)
	if res.Collision != types.SelfCollision {
		t.Fatalf("collision = %v, want self", res.Collision)
	}
}

func TestBodyStaysUniqueOverManySteps(t *testing.T) {
	grid := types.Grid{Width: 6, Height: 6, CellSize: 1}
	c := gridCollider{grid: grid}
	s := NewSnake(pts(2, 0, 1, 0), types.Right)

	// walk a clockwise lap around the border, eating once per side
	moves := []types.Point{}
	for i := 0; i < 3; i++ {
		moves = append(moves, types.Right)
	}
	for i := 0; i < 5; i++ {
		moves = append(moves, types.Down)
	}
	for i := 0; i < 5; i++ {
		moves = append(moves, types.Left)
	}
	for i := 0; i < 4; i++ {
		moves = append(moves, types.Up)
	}
	targets := types.NewCellSet(pts(5, 0, 5, 5, 0, 5)...)

	for i, v := range moves {
		target := types.Point{X: -9, Y: -9}
		next := s.NextHead(v)
		if targets.Contains(next) {
			target = next
		}
		before := s.Len()
		res := s.Step(v, target, c)
		if res.Collision != types.NoCollision {
			t.Fatalf("move %d: unexpected collision %v at %v", i, res.Collision, res.Head)
		}
		want := before
		if res.Grew {
			want++
		}
		if s.Len() != want {
			t.Fatalf("move %d: length %d, want %d", i, s.Len(), want)
		}
		assertNoDuplicates(t, s)
	}
	if s.Len() != 5 {
		t.Errorf("final length %d, want 5", s.Len())
	}
}
