package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/alexanderi96/rsnake/game/types"
)

const (
	rewardCloser  = 0.5
	rewardFarther = -0.3
	rewardFood    = 1.0
	rewardDeath   = -1.0
)

// State is what the agent sees around the head, relative to where it is heading
type State struct {
	RelativeFoodDir [2]int  // Sign of the food offset in the snake's frame (side, ahead)
	FoodDistance    int     // Manhattan distance to food, -1 without food
	DangerDirs      [3]bool // Danger to the left, ahead, to the right
}

// Action is a turn relative to the current direction
type Action int

const (
	TurnLeft Action = iota
	Straight
	TurnRight
)

var actions = [...]Action{TurnLeft, Straight, TurnRight}

// Apply converts the relative action into an absolute direction
func (a Action) Apply(current types.Direction) types.Direction {
	switch a {
	case TurnLeft:
		return current.TurnLeft()
	case TurnRight:
		return current.TurnRight()
	default:
		return current
	}
}

func (a Action) String() string {
	switch a {
	case TurnLeft:
		return "left"
	case Straight:
		return "straight"
	case TurnRight:
		return "right"
	default:
		return "unknown"
	}
}

type QTable map[string]map[Action]float64

// QLearning is a tabular Q-learning agent with epsilon-greedy exploration
type QLearning struct {
	mu sync.RWMutex

	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	TotalReward  float64

	// source is the file the table was last loaded from or saved to
	source string
	rng    *rand.Rand
}

// NewQLearning creates an agent with an empty table
func NewQLearning(learningRate, discount, epsilon float64, rng *rand.Rand) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: learningRate,
		Discount:     discount,
		Epsilon:      epsilon,
		rng:          rng,
	}
}

func getStateKey(s State) string {
	return fmt.Sprintf("%d,%d|%d%d%d",
		s.RelativeFoodDir[0], s.RelativeFoodDir[1],
		boolToInt(s.DangerDirs[0]), boolToInt(s.DangerDirs[1]), boolToInt(s.DangerDirs[2]))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetAction picks a random action with probability epsilon, the best known one otherwise
func (q *QLearning) GetAction(state State) Action {
	if q.rng.Float64() < q.Epsilon {
		return actions[q.rng.Intn(len(actions))]
	}
	return q.getBestAction(state)
}

func (q *QLearning) getBestAction(state State) Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	values := q.ensureState(getStateKey(state))

	// Ties keep going straight
	bestAction := Straight
	bestValue := values[Straight]
	for _, action := range actions {
		if values[action] > bestValue {
			bestValue = values[action]
			bestAction = action
		}
	}
	return bestAction
}

// ensureState returns the action values for key, creating zeroed ones. Caller holds mu.
func (q *QLearning) ensureState(key string) map[Action]float64 {
	values, exists := q.QTable[key]
	if !exists {
		values = make(map[Action]float64, len(actions))
		for _, a := range actions {
			values[a] = 0
		}
		q.QTable[key] = values
	}
	return values
}

// Reward scores the transition from state to next
func Reward(state, next State, ate, crashed bool) float64 {
	switch {
	case crashed:
		return rewardDeath
	case ate:
		return rewardFood
	}

	var reward float64
	if state.FoodDistance >= 0 && next.FoodDistance >= 0 {
		distanceChange := next.FoodDistance - state.FoodDistance
		if distanceChange < 0 {
			reward = rewardCloser
		} else if distanceChange > 0 {
			reward = rewardFarther
		}
	}
	return reward
}

// Update applies the Q-learning rule for a non-terminal transition
func (q *QLearning) Update(state State, action Action, nextState State, reward float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	current := q.ensureState(getStateKey(state))
	next := q.ensureState(getStateKey(nextState))

	maxNextQ := math.Inf(-1)
	for _, value := range next {
		maxNextQ = max(maxNextQ, value)
	}

	currentQ := current[action]
	current[action] = currentQ + q.LearningRate*(reward+q.Discount*maxNextQ-currentQ)
	q.TotalReward += reward
}

// UpdateTerminal applies the rule for a move that ended the game
func (q *QLearning) UpdateTerminal(state State, action Action, reward float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	current := q.ensureState(getStateKey(state))
	currentQ := current[action]
	current[action] = currentQ + q.LearningRate*(reward-currentQ)
	q.TotalReward += reward
}

// Value returns the learned value of action in state
func (q *QLearning) Value(state State, action Action) float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.QTable[getStateKey(state)][action]
}

// SaveQTable writes the table as JSON. A table stored there by another agent
// is merged in first; the file this table came from is simply overwritten.
func (q *QLearning) SaveQTable(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating qtable directory: %w", err)
	}

	q.mu.RLock()
	own := q.source == filepath.Clean(filename)
	q.mu.RUnlock()

	if !own {
		existingTable := make(QTable)
		if data, err := os.ReadFile(filename); err == nil {
			if err := json.Unmarshal(data, &existingTable); err == nil {
				q.mergeQTables(existingTable)
			}
		}
	}

	q.mu.RLock()
	data, err := json.MarshalIndent(q.QTable, "", "  ")
	q.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling qtable: %w", err)
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing qtable: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("replacing qtable: %w", err)
	}

	q.mu.Lock()
	q.source = filepath.Clean(filename)
	q.mu.Unlock()
	return nil
}

// LoadQTable replaces the table with the one stored in filename
func (q *QLearning) LoadQTable(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	table := make(QTable)
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parsing qtable: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.QTable = table
	q.source = filepath.Clean(filename)
	return nil
}

// mergeQTables averages the current table with another one
func (q *QLearning) mergeQTables(other QTable) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for state, values := range other {
		if _, exists := q.QTable[state]; !exists {
			q.QTable[state] = make(map[Action]float64)
		}

		for action, value := range values {
			currentValue, exists := q.QTable[state][action]
			if !exists {
				q.QTable[state][action] = value
			} else {
				q.QTable[state][action] = (currentValue + value) / 2
			}
		}
	}
}
