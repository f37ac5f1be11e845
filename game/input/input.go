// Package input normalizes frontend key presses into simulation commands.
package input

import "pythons/game/types"

// Kind identifies an input event.
type Kind int

const (
	// Unknown events are ignored by the core.
	Unknown Kind = iota
	Quit
	Direction
	// Key is any other key press. It only matters while the game waits
	// for a press on the splash or game over screen.
	Key
)

// Dir is one of the four cardinal directions a player can request.
type Dir int

const (
	None Dir = iota
	Up
	Right
	Down
	Left
)

// ToPoint converts a Dir into a unit velocity.
func (d Dir) ToPoint() types.Point {
	switch d {
	case Up:
		return types.Up
	case Right:
		return types.Right
	case Down:
		return types.Down
	case Left:
		return types.Left
	default:
		return types.Point{}
	}
}

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// FromPoint is the inverse of ToPoint. Non unit vectors map to None.
func FromPoint(p types.Point) Dir {
	switch p {
	case types.Up:
		return Up
	case types.Right:
		return Right
	case types.Down:
		return Down
	case types.Left:
		return Left
	default:
		return None
	}
}

// Event is a single discrete input.
type Event struct {
	Kind Kind
	Dir  Dir
}

func QuitEvent() Event { return Event{Kind: Quit} }
func KeyEvent() Event { return Event{Kind: Key} }
func DirEvent(d Dir) Event { return Event{Kind: Direction, Dir: d} }

// Mapper turns direction requests into the velocity used on the next tick.
// Requests between two ticks overwrite each other; only the last accepted
// one survives.
type Mapper struct {
	current types.Point
	pending types.Point
}

// NewMapper starts with the given heading.
func NewMapper(heading types.Point) *Mapper {
	return &Mapper{current: heading, pending: heading}
}

// Apply returns requested unless it reverses current, in which case
// current is kept.
func Apply(current, requested types.Point) types.Point {
	if !requested.IsCardinal() || requested == current.Reverse() {
		return current
	}
	return requested
}

// Request records a direction for the next tick. It reports whether the
// request was accepted. Reversal is judged against the velocity of the last
// tick, not against earlier pending requests.
func (m *Mapper) Request(d Dir) bool {
	next := Apply(m.current, d.ToPoint())
	if next == m.current && d.ToPoint() != m.current {
		return false
	}
	m.pending = next
	return true
}

// Commit makes the pending velocity current and returns it. Called once per tick.
func (m *Mapper) Commit() types.Point {
	m.current = m.pending
	return m.current
}

// Current is the velocity applied on the last tick.
func (m *Mapper) Current() types.Point {
	return m.current
}

// Pending is the velocity the next tick will use.
func (m *Mapper) Pending() types.Point {
	return m.pending
}
