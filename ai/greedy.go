package ai

import (
	"sort"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"

	"github.com/joonazan/vec2"
)

// Directions in the order candidate moves are tried.
var Directions = []input.Dir{input.Up, input.Right, input.Down, input.Left}

type Movement struct {
	Dir       input.Dir
	Magnitude float64 // distance from the next cell to the target
	Freedom   int     // safe neighbours of the next cell
}

type Movements []*Movement

func (p Movements) Len() int { return len(p) }
func (p Movements) Less(i, j int) bool {
	if p[i].Magnitude != p[j].Magnitude {
		return p[i].Magnitude < p[j].Magnitude
	}
	return p[i].Freedom > p[j].Freedom
}
func (p Movements) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

// Greedy heads for the target along the shortest straight-line distance,
// never choosing a move that ends the run if another one exists.
type Greedy struct {
	collisions *manager.CollisionManager
}

func NewGreedy(grid types.Grid) *Greedy {
	return &Greedy{collisions: manager.NewCollisionManager(grid)}
}

func vec(p types.Point) vec2.Vector {
	return vec2.Vector{X: float64(p.X), Y: float64(p.Y)}
}

// Decide implements game.Pilot.
func (p *Greedy) Decide(s game.Snapshot) (input.Dir, bool) {
	if len(s.Body) == 0 {
		return input.None, false
	}
	head := s.Head()
	body := s.Occupied()
	target := vec(head)
	if s.HasTarget {
		target = vec(s.Target)
	}

	moves := Movements{}
	for _, d := range Directions {
		v := d.ToPoint()
		if v == s.Direction.Reverse() {
			continue
		}
		next := head.Add(v)
		if p.collisions.IsDanger(next, body) {
			continue
		}
		moves = append(moves, &Movement{
			Dir:       d,
			Magnitude: vec(next).Minus(target).Length(),
			Freedom:   p.freedom(next, body),
		})
	}
	if len(moves) == 0 {
		return input.None, false
	}
	sort.Stable(moves)
	return moves[0].Dir, true
}

func (p *Greedy) freedom(pos types.Point, body types.Occupancy) int {
	n := 0
	for _, d := range Directions {
		if !p.collisions.IsDanger(pos.Add(d.ToPoint()), body) {
			n++
		}
	}
	return n
}
