package manager

import (
	"testing"

	"github.com/alexanderi96/rsnake/game/types"
)

func TestCollisionManagerCheck(t *testing.T) {
	cm := NewCollisionManager(types.Grid{Size: 20})

	// Head at (5,5) moving; body bends back so (5,6) and (6,6) are occupied
	body := []types.Cell{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}}

	tests := []struct {
		name string
		pos  types.Cell
		body []types.Cell
		want types.CollisionType
	}{
		{"free cell", types.Cell{X: 4, Y: 5}, body, types.NoCollision},
		{"left wall", types.Cell{X: -1, Y: 5}, body, types.WallCollision},
		{"right wall", types.Cell{X: 20, Y: 5}, body, types.WallCollision},
		{"top wall", types.Cell{X: 5, Y: -1}, body, types.WallCollision},
		{"bottom wall", types.Cell{X: 5, Y: 20}, body, types.WallCollision},
		{"into body", types.Cell{X: 5, Y: 6}, body, types.SelfCollision},
		{"into vacating tail", types.Cell{X: 6, Y: 5}, body, types.NoCollision},
		{"single segment never self collides", types.Cell{X: 5, Y: 5}, body[:1], types.NoCollision},
		{"wall wins over body", types.Cell{X: 20, Y: 0}, nil, types.WallCollision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cm.Check(tt.pos, tt.body); got != tt.want {
				t.Errorf("Check(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestCollisionManagerFood(t *testing.T) {
	cm := NewCollisionManager(types.Grid{Size: 20})
	if !cm.IsFoodCollision(types.Cell{X: 3, Y: 4}, types.Cell{X: 3, Y: 4}) {
		t.Error("expected food collision on same cell")
	}
	if cm.IsFoodCollision(types.Cell{X: 3, Y: 4}, types.Cell{X: 4, Y: 3}) {
		t.Error("unexpected food collision")
	}
}
