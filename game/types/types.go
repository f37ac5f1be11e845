package types

import "github.com/pkg/errors"

// Point is a grid cell (column, row) or, for velocities, a unit step.
type Point struct {
	X int `toml:"x" json:"x"`
	Y int `toml:"y" json:"y"`
}

// Unit velocities.
var (
	Up    = Point{X: 0, Y: -1}
	Down  = Point{X: 0, Y: 1}
	Left  = Point{X: -1, Y: 0}
	Right = Point{X: 1, Y: 0}
)

// Add returns p moved by v.
func (p Point) Add(v Point) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Reverse returns the opposite vector.
func (p Point) Reverse() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// IsCardinal reports whether p is one of the four unit velocities.
func (p Point) IsCardinal() bool {
	return p == Up || p == Down || p == Left || p == Right
}

// Grid is the discrete board the simulation runs on.
type Grid struct {
	Width    int `json:"width"`    // columns
	Height   int `json:"height"`   // rows
	CellSize int `json:"cellSize"` // pixels per cell side
}

// MaxCells bounds the board so every per-cell structure stays small.
const MaxCells = 1 << 16

// NewGrid derives a grid from pixel extents. The cell size must divide both
// extents so every pixel belongs to exactly one cell.
func NewGrid(pixelWidth, pixelHeight, cellSize int) (Grid, error) {
	if cellSize <= 0 {
		return Grid{}, errors.Wrapf(ErrConfiguration, "cell size %d must be positive", cellSize)
	}
	if pixelWidth <= 0 || pixelHeight <= 0 {
		return Grid{}, errors.Wrapf(ErrConfiguration, "board %dx%d must be positive", pixelWidth, pixelHeight)
	}
	if pixelWidth%cellSize != 0 || pixelHeight%cellSize != 0 {
		return Grid{}, errors.Wrapf(ErrConfiguration,
			"board %dx%d is not divisible by cell size %d", pixelWidth, pixelHeight, cellSize)
	}
	grid := Grid{
		Width:    pixelWidth / cellSize,
		Height:   pixelHeight / cellSize,
		CellSize: cellSize,
	}
	if grid.Width > MaxCells || grid.Height > MaxCells || grid.Size() > MaxCells {
		return Grid{}, errors.Wrapf(ErrConfiguration,
			"board of %dx%d cells exceeds %d cells", grid.Width, grid.Height, MaxCells)
	}
	return grid, nil
}

// InBounds reports whether p lies on the board.
func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Size is the number of cells on the board.
func (g Grid) Size() int {
	return g.Width * g.Height
}

// AllCells enumerates the board row by row.
func (g Grid) AllCells() []Point {
	cells := make([]Point, 0, g.Size())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cells = append(cells, Point{X: x, Y: y})
		}
	}
	return cells
}

// Cell returns the i-th cell of AllCells without allocating.
func (g Grid) Cell(i int) Point {
	return Point{X: i % g.Width, Y: i / g.Width}
}

// ToPixel returns the top-left pixel of a cell.
func (g Grid) ToPixel(p Point) (int, int) {
	return p.X * g.CellSize, p.Y * g.CellSize
}

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

// CellSet is a plain set of occupied cells.
type CellSet map[Point]struct{}

// NewCellSet builds a set from the given cells.
func NewCellSet(cells ...Point) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s CellSet) Contains(p Point) bool {
	_, ok := s[p]
	return ok
}

func (s CellSet) Len() int {
	return len(s)
}

// Occupancy is a read-only view of occupied cells.
type Occupancy interface {
	Contains(p Point) bool
	Len() int
}
