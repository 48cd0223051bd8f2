package manager

import (
	"errors"
	"time"

	"golang.org/x/exp/rand"

	"github.com/alexanderi96/rsnake/game/types"
)

// ErrBoardFull is returned when every cell of the grid is occupied.
var ErrBoardFull = errors.New("no free cell for food")

// Attempts per grid cell before rejection sampling gives up
const attemptsPerCell = 4

type FoodManager struct {
	grid        types.Grid
	rng         *rand.Rand
	maxAttempts int
}

// NewFoodManager creates a food manager. A zero seed picks a time-based one.
func NewFoodManager(grid types.Grid, seed uint64) *FoodManager {
	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &FoodManager{
		grid:        grid,
		rng:         rand.New(src),
		maxAttempts: grid.Cells() * attemptsPerCell,
	}
}

// GenerateFood samples uniformly over the grid until it hits a cell outside
// occupied. Once the attempt budget is spent it falls back to picking from the
// remaining free cells, and reports ErrBoardFull when there are none.
func (fm *FoodManager) GenerateFood(occupied map[types.Cell]struct{}) (types.Cell, error) {
	for i := 0; i < fm.maxAttempts; i++ {
		food := types.Cell{
			X: fm.rng.Intn(fm.grid.Size),
			Y: fm.rng.Intn(fm.grid.Size),
		}
		if _, taken := occupied[food]; !taken {
			return food, nil
		}
	}

	free := fm.freeCells(occupied)
	if len(free) == 0 {
		return types.Cell{}, ErrBoardFull
	}
	return free[fm.rng.Intn(len(free))], nil
}

func (fm *FoodManager) freeCells(occupied map[types.Cell]struct{}) []types.Cell {
	free := make([]types.Cell, 0, max(fm.grid.Cells()-len(occupied), 0))
	for y := 0; y < fm.grid.Size; y++ {
		for x := 0; x < fm.grid.Size; x++ {
			c := types.Cell{X: x, Y: y}
			if _, taken := occupied[c]; !taken {
				free = append(free, c)
			}
		}
	}
	return free
}
