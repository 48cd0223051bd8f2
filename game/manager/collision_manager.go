package manager

import (
	"github.com/alexanderi96/rsnake/game/types"
)

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// Check classifies the move of the head onto pos against the pre-move body.
// The last segment is skipped: it vacates its cell during the same move, so
// reaching it is never fatal.
func (cm *CollisionManager) Check(pos types.Cell, body []types.Cell) types.CollisionType {
	if cm.isWallCollision(pos) {
		return types.WallCollision
	}
	if cm.isSelfCollision(pos, body) {
		return types.SelfCollision
	}
	return types.NoCollision
}

// isWallCollision checks if a position is outside the grid
func (cm *CollisionManager) isWallCollision(pos types.Cell) bool {
	return !cm.grid.InBounds(pos)
}

func (cm *CollisionManager) isSelfCollision(pos types.Cell, body []types.Cell) bool {
	if len(body) < 2 {
		return false
	}
	for _, part := range body[:len(body)-1] {
		if pos == part {
			return true
		}
	}
	return false
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Cell, food types.Cell) bool {
	return pos == food
}
