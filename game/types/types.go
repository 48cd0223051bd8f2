package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRules is returned when a Rules value cannot drive a game.
var ErrInvalidRules = errors.New("invalid rules")

// Cell is a position on the grid
type Cell struct {
	X, Y int
}

// Add returns the cell translated by one step in the given direction
func (c Cell) Add(d Direction) Cell {
	delta := d.Delta()
	return Cell{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// Grid represents the game grid dimensions. The board is always square.
type Grid struct {
	Size int
}

// InBounds reports whether the cell lies inside the grid
func (g Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Size && c.Y >= 0 && c.Y < g.Size
}

// Center returns the starting cell for a new snake
func (g Grid) Center() Cell {
	return Cell{X: g.Size / 2, Y: g.Size / 2}
}

// Cells returns the number of cells on the board
func (g Grid) Cells() int {
	return g.Size * g.Size
}

// Direction is one of the four cardinal directions
type Direction int

const (
	NONE Direction = iota
	UP
	RIGHT
	DOWN
	LEFT
)

// Delta converts a Direction into a unit displacement. Y grows downwards.
func (d Direction) Delta() Cell {
	switch d {
	case UP:
		return Cell{X: 0, Y: -1}
	case RIGHT:
		return Cell{X: 1, Y: 0}
	case DOWN:
		return Cell{X: 0, Y: 1}
	case LEFT:
		return Cell{X: -1, Y: 0}
	default:
		return Cell{}
	}
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case UP:
		return DOWN
	case RIGHT:
		return LEFT
	case DOWN:
		return UP
	case LEFT:
		return RIGHT
	default:
		return NONE
	}
}

// TurnLeft returns the direction after a 90 degree counter-clockwise turn
func (d Direction) TurnLeft() Direction {
	switch d {
	case UP:
		return LEFT
	case RIGHT:
		return UP
	case DOWN:
		return RIGHT
	case LEFT:
		return DOWN
	default:
		return d
	}
}

// TurnRight returns the direction after a 90 degree clockwise turn
func (d Direction) TurnRight() Direction {
	switch d {
	case UP:
		return RIGHT
	case RIGHT:
		return DOWN
	case DOWN:
		return LEFT
	case LEFT:
		return UP
	default:
		return d
	}
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	return d >= UP && d <= LEFT
}

func (d Direction) String() string {
	switch d {
	case UP:
		return "UP"
	case RIGHT:
		return "RIGHT"
	case DOWN:
		return "DOWN"
	case LEFT:
		return "LEFT"
	default:
		return "NONE"
	}
}

// GameState is the phase of the game state machine
type GameState int

const (
	Idle GameState = iota
	Running
	Paused
	Over
)

func (s GameState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Over:
		return "over"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
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
		return "ok"
	}
}

// Rules holds the configuration constants shared by every component.
// Speeds are tick intervals in milliseconds; lower is faster.
type Rules struct {
	GridSize       int `yaml:"grid_size"`
	InitialSpeed   int `yaml:"initial_speed_ms"`
	SpeedStep      int `yaml:"speed_step_ms"`
	MinSpeed       int `yaml:"min_speed_ms"`
	ScoreIncrement int `yaml:"score_increment"`
	SpeedThreshold int `yaml:"speed_threshold"`
}

// Game constants
const (
	DefaultGridSize       = 20
	DefaultInitialSpeed   = 150
	DefaultSpeedStep      = 10
	DefaultMinSpeed       = 50
	DefaultScoreIncrement = 10
	DefaultSpeedThreshold = 50
)

// DefaultRules returns the classic 20x20 ruleset
func DefaultRules() Rules {
	return Rules{
		GridSize:       DefaultGridSize,
		InitialSpeed:   DefaultInitialSpeed,
		SpeedStep:      DefaultSpeedStep,
		MinSpeed:       DefaultMinSpeed,
		ScoreIncrement: DefaultScoreIncrement,
		SpeedThreshold: DefaultSpeedThreshold,
	}
}

// Validate checks that the rules describe a playable game
func (r Rules) Validate() error {
	switch {
	case r.GridSize <= 0:
		return fmt.Errorf("%w: grid size must be positive, got %d", ErrInvalidRules, r.GridSize)
	case r.InitialSpeed <= 0:
		return fmt.Errorf("%w: initial speed must be positive, got %d", ErrInvalidRules, r.InitialSpeed)
	case r.MinSpeed <= 0:
		return fmt.Errorf("%w: min speed must be positive, got %d", ErrInvalidRules, r.MinSpeed)
	case r.MinSpeed > r.InitialSpeed:
		return fmt.Errorf("%w: min speed %d exceeds initial speed %d", ErrInvalidRules, r.MinSpeed, r.InitialSpeed)
	case r.SpeedStep < 0:
		return fmt.Errorf("%w: speed step must not be negative, got %d", ErrInvalidRules, r.SpeedStep)
	case r.ScoreIncrement <= 0:
		return fmt.Errorf("%w: score increment must be positive, got %d", ErrInvalidRules, r.ScoreIncrement)
	case r.SpeedThreshold <= 0:
		return fmt.Errorf("%w: speed threshold must be positive, got %d", ErrInvalidRules, r.SpeedThreshold)
	}
	return nil
}

// Grid returns the board described by the rules
func (r Rules) Grid() Grid {
	return Grid{Size: r.GridSize}
}

// Interval converts a speed in milliseconds to a tick interval
func Interval(speed int) time.Duration {
	return time.Duration(speed) * time.Millisecond
}
