package entity

import "github.com/alexanderi96/rsnake/game/types"

// Snake is the ordered chain of cells controlled by the player.
// The head is at index 0 and the tail at the last index.
type Snake struct {
	Body []types.Cell
}

func NewSnake(startPos types.Cell) *Snake {
	return &Snake{
		Body: []types.Cell{startPos},
	}
}

// Move prepends a new head. The tail is kept until RemoveTail is called.
func (s *Snake) Move(newHead types.Cell) {
	s.Body = append(s.Body, types.Cell{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 1 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

func (s *Snake) GetHead() types.Cell {
	return s.Body[0]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Contains reports whether any segment occupies the cell
func (s *Snake) Contains(c types.Cell) bool {
	for _, part := range s.Body {
		if part == c {
			return true
		}
	}
	return false
}

// Cells returns a copy of the body safe to hand outside the engine
func (s *Snake) Cells() []types.Cell {
	body := make([]types.Cell, len(s.Body))
	copy(body, s.Body)
	return body
}

// Occupied returns the body as a set for food placement
func (s *Snake) Occupied() map[types.Cell]struct{} {
	occupied := make(map[types.Cell]struct{}, len(s.Body))
	for _, part := range s.Body {
		occupied[part] = struct{}{}
	}
	return occupied
}
