package manager

import (
	"pythons/game/types"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// MaxRejectionDraws bounds blind draws before falling back to enumerating
// the free cells.
const MaxRejectionDraws = 32

// FoodManager places the single target on a free cell.
type FoodManager struct {
	grid types.Grid
	rng  *rand.Rand
	free []types.Point // scratch for the fallback path, grown on first use
}

func NewFoodManager(grid types.Grid, rng *rand.Rand) *FoodManager {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FoodManager{
		grid: grid,
		rng:  rng,
	}
}

// Pick draws a cell uniformly among the cells not in excluded.
//
// Blind draws over the whole board are tried first; once they keep landing
// on occupied cells the free cells are enumerated and one is drawn from
// them. Both paths are uniform over the free cells, and the second always
// terminates. A fully occupied board yields ErrExhaustedGrid.
func (fm *FoodManager) Pick(excluded types.Occupancy) (types.Point, error) {
	size := fm.grid.Size()
	if excluded.Len() >= size {
		return types.Point{}, errors.Wrapf(types.ErrExhaustedGrid, "%d of %d cells occupied", excluded.Len(), size)
	}

	for i := 0; i < MaxRejectionDraws; i++ {
		food := fm.grid.Cell(fm.rng.Intn(size))
		if !excluded.Contains(food) {
			return food, nil
		}
	}

	fm.free = fm.free[:0]
	for i := 0; i < size; i++ {
		if c := fm.grid.Cell(i); !excluded.Contains(c) {
			fm.free = append(fm.free, c)
		}
	}
	if len(fm.free) == 0 {
		return types.Point{}, errors.Wrapf(types.ErrExhaustedGrid, "no free cell on %dx%d board", fm.grid.Width, fm.grid.Height)
	}
	return fm.free[fm.rng.Intn(len(fm.free))], nil
}
