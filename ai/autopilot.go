// Package ai plays the game through the same command surface as a human.
package ai

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/manager"
	"github.com/alexanderi96/rsnake/game/types"
)

// Params configures an Autopilot
type Params struct {
	LearningRate float64
	Discount     float64
	Epsilon      float64

	// Learning enables table updates; off means pure exploitation of a loaded table.
	Learning bool

	// Seed for exploration; zero picks a time-based seed.
	Seed uint64
}

// Autopilot turns snapshots into direction proposals, one decision per tick
type Autopilot struct {
	ID string

	mu          sync.Mutex
	agent       *QLearning
	learning    bool
	prev        State
	prevAction  Action
	hasPrev     bool
	lastTicks   uint64
	lastScore   int
	gamesPlayed int
	logger      *slog.Logger
}

func NewAutopilot(p Params, logger *slog.Logger) *Autopilot {
	if logger == nil {
		logger = slog.Default()
	}
	seed := p.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	id := uuid.New().String()
	return &Autopilot{
		ID:       id,
		agent:    NewQLearning(p.LearningRate, p.Discount, p.Epsilon, rand.New(rand.NewSource(seed))),
		learning: p.Learning,
		logger:   logger.With("agent", id),
	}
}

// Observe builds the agent state for a snapshot
func Observe(snap game.Snapshot) State {
	head := snap.Head()
	dir := snap.Direction
	collisions := manager.NewCollisionManager(snap.Grid)

	var state State
	for i, d := range [3]types.Direction{dir.TurnLeft(), dir, dir.TurnRight()} {
		state.DangerDirs[i] = collisions.Check(head.Add(d), snap.Snake) != types.NoCollision
	}

	if !snap.HasFood {
		state.FoodDistance = -1
		return state
	}

	dx, dy := snap.Food.X-head.X, snap.Food.Y-head.Y
	ahead := dir.Delta()
	right := dir.TurnRight().Delta()
	state.RelativeFoodDir = [2]int{
		sign(dx*right.X + dy*right.Y),
		sign(dx*ahead.X + dy*ahead.Y),
	}
	state.FoodDistance = abs(dx) + abs(dy)
	return state
}

// Step decides the direction for the next tick. It returns false when there
// is nothing to propose: the game is not running or this tick was already decided.
func (a *Autopilot) Step(snap game.Snapshot) (types.Direction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch snap.State {
	case types.Over:
		a.endGame(snap)
		return types.NONE, false
	case types.Running:
	default:
		return types.NONE, false
	}

	if a.hasPrev {
		switch {
		case snap.Ticks == a.lastTicks:
			return types.NONE, false
		case snap.Ticks < a.lastTicks:
			// Restarted without us seeing the end of the previous game
			a.hasPrev = false
		}
	}

	state := Observe(snap)
	if a.hasPrev && a.learning {
		ate := snap.Score > a.lastScore
		a.agent.Update(a.prev, a.prevAction, state, Reward(a.prev, state, ate, false))
	}

	action := a.agent.GetAction(state)
	a.prev, a.prevAction, a.hasPrev = state, action, true
	a.lastTicks, a.lastScore = snap.Ticks, snap.Score

	return action.Apply(snap.Direction), true
}

// endGame punishes the fatal move. Caller holds mu.
func (a *Autopilot) endGame(snap game.Snapshot) {
	if !a.hasPrev {
		return
	}
	if a.learning {
		a.agent.UpdateTerminal(a.prev, a.prevAction, rewardDeath)
	}
	a.hasPrev = false
	a.gamesPlayed++

	a.logger.Debug("autopilot game finished",
		"games", a.gamesPlayed,
		"score", snap.Score,
		"total_reward", a.agent.TotalReward,
	)
}

// GamesPlayed returns how many games the agent has seen end
func (a *Autopilot) GamesPlayed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gamesPlayed
}

func (a *Autopilot) SaveQTable(filename string) error {
	return a.agent.SaveQTable(filename)
}

func (a *Autopilot) LoadQTable(filename string) error {
	return a.agent.LoadQTable(filename)
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
