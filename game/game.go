package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderi96/rsnake/game/entity"
	"github.com/alexanderi96/rsnake/game/manager"
	"github.com/alexanderi96/rsnake/game/types"
)

// Options configures a new Engine
type Options struct {
	Rules types.Rules

	// HighScore is the persisted best score read once at startup.
	HighScore int

	// Seed for food placement; zero picks a time-based seed.
	Seed uint64

	Sink        EventSink
	EventBuffer int

	// Clock supplies the time for commands (start, resume). Tick takes its
	// time explicitly. Defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger
}

// TickResult describes what a call to Tick did
type TickResult struct {
	// Advanced is false when the tick was a no-op (not running, or the
	// speed interval has not elapsed yet).
	Advanced  bool
	Ate       bool
	Collision types.CollisionType
	Direction types.Direction
	State     types.GameState
}

// Crashed reports whether the tick ended the game
func (r TickResult) Crashed() bool {
	return r.Collision != types.NoCollision
}

// Snapshot is a consistent read-only copy of the engine state
type Snapshot struct {
	Grid      types.Grid
	Snake     []types.Cell
	Food      types.Cell
	HasFood   bool
	Direction types.Direction
	Pending   types.Direction
	Score     int
	HighScore int
	Speed     int
	State     types.GameState
	Ticks     uint64
}

// Head returns the first snake segment
func (s Snapshot) Head() types.Cell {
	return s.Snake[0]
}

// Engine is the single owner of the game state. Every command and Tick takes
// the same lock, so input arriving between ticks is always seen by the next
// tick and no partial move is ever observable.
type Engine struct {
	mu sync.Mutex

	rules      types.Rules
	grid       types.Grid
	collisions *manager.CollisionManager
	foods      *manager.FoodManager
	arbiter    Arbiter

	snake     *entity.Snake
	food      types.Cell
	hasFood   bool
	direction types.Direction
	score     int
	highScore int
	speed     int
	state     types.GameState
	lastTick  time.Time
	startTime time.Time
	ticks     uint64

	events *dispatcher
	clock  func() time.Time
	logger *slog.Logger
}

// NewEngine validates the rules and returns an idle engine
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}

	grid := opts.Rules.Grid()
	e := &Engine{
		rules:      opts.Rules,
		grid:       grid,
		collisions: manager.NewCollisionManager(grid),
		foods:      manager.NewFoodManager(grid, opts.Seed),
		highScore:  max(opts.HighScore, 0),
		state:      types.Idle,
		clock:      clock,
		logger:     logger,
	}
	e.events = newDispatcher(sink, opts.EventBuffer, logger)
	e.reset(clock())

	return e, nil
}

// reset reinitializes everything a new game starts from. Caller holds mu.
func (e *Engine) reset(now time.Time) {
	e.snake = entity.NewSnake(e.grid.Center())
	e.direction = types.RIGHT
	e.arbiter.Clear()
	e.speed = e.rules.InitialSpeed
	e.ticks = 0
	e.lastTick = now
	e.startTime = now
	e.placeFood()

	if e.score != 0 {
		e.score = 0
		e.events.emit("score_changed", func(s EventSink) { s.OnScoreChanged(0) })
	}
}

// placeFood puts food on a free cell. Caller holds mu.
func (e *Engine) placeFood() {
	food, err := e.foods.GenerateFood(e.snake.Occupied())
	if err != nil {
		if errors.Is(err, manager.ErrBoardFull) {
			e.logger.Warn("board is full, no food placed", "length", e.snake.Len())
		}
		e.hasFood = false
		return
	}
	e.food = food
	e.hasFood = true
}

// setState switches state and notifies the sink. Caller holds mu.
func (e *Engine) setState(state types.GameState) {
	if e.state == state {
		return
	}
	e.logger.Debug("game state changed", "from", e.state, "to", state)
	e.state = state
	e.events.emit("state_changed", func(s EventSink) { s.OnStateChanged(state) })
}

// Start begins a new game from Idle or Over. It is a no-op in any other state.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.start()
}

func (e *Engine) start() bool {
	if e.state != types.Idle && e.state != types.Over {
		return false
	}
	e.reset(e.clock())
	e.setState(types.Running)
	return true
}

// Restart abandons the current game, if any, and starts a fresh one
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == types.Running || e.state == types.Paused {
		e.setState(types.Over)
	}
	e.start()
}

// Pause freezes a running game
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != types.Running {
		return false
	}
	e.setState(types.Paused)
	return true
}

// Resume continues a paused game. Time spent paused is not simulated: the
// speed interval restarts from the moment of resuming.
func (e *Engine) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resume()
}

func (e *Engine) resume() bool {
	if e.state != types.Paused {
		return false
	}
	e.lastTick = e.clock()
	e.setState(types.Running)
	return true
}

// TogglePause pauses a running game or resumes a paused one
func (e *Engine) TogglePause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case types.Running:
		e.setState(types.Paused)
		return true
	case types.Paused:
		return e.resume()
	default:
		return false
	}
}

// ProposeDirection offers a direction for the next tick. It is accepted only
// while running and only if it does not reverse the current direction.
func (e *Engine) ProposeDirection(d types.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != types.Running {
		return false
	}
	return e.arbiter.Propose(d, e.direction)
}

// Tick advances the simulation by one step if the game is running and at
// least the current speed interval has passed since the last accepted tick.
func (e *Engine) Tick(now time.Time) TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != types.Running || now.Sub(e.lastTick) < types.Interval(e.speed) {
		return TickResult{State: e.state, Direction: e.direction}
	}

	direction := e.arbiter.Resolve(e.direction)
	e.arbiter.Clear()
	e.direction = direction

	newHead := e.snake.GetHead().Add(direction)
	collision := e.collisions.Check(newHead, e.snake.Body)
	if collision != types.NoCollision {
		e.lastTick = now
		e.gameOver(collision, now)
		return TickResult{
			Advanced:  true,
			Collision: collision,
			Direction: direction,
			State:     e.state,
		}
	}

	e.snake.Move(newHead)
	ate := e.hasFood && e.collisions.IsFoodCollision(newHead, e.food)
	if ate {
		e.eat()
	} else {
		e.snake.RemoveTail()
	}

	e.lastTick = now
	e.ticks++

	return TickResult{
		Advanced:  true,
		Ate:       ate,
		Direction: direction,
		State:     e.state,
	}
}

// eat applies scoring, food respawn and speed scaling. Caller holds mu.
func (e *Engine) eat() {
	e.score += e.rules.ScoreIncrement
	score := e.score

	e.events.emit("ate", func(s EventSink) { s.OnAte() })
	e.events.emit("score_changed", func(s EventSink) { s.OnScoreChanged(score) })

	if score > e.highScore {
		e.highScore = score
		e.events.emit("high_score_changed", func(s EventSink) { s.OnHighScoreChanged(score) })
	}

	e.placeFood()

	if score > 0 && score%e.rules.SpeedThreshold == 0 {
		e.speed = max(e.speed-e.rules.SpeedStep, e.rules.MinSpeed)
		e.logger.Debug("speed increased", "score", score, "speed_ms", e.speed)
	}
}

// gameOver ends the game leaving the snake as it was before the fatal move.
// Caller holds mu.
func (e *Engine) gameOver(collision types.CollisionType, now time.Time) {
	e.events.emit("crashed", func(s EventSink) { s.OnCrashed() })
	e.setState(types.Over)

	e.logger.Info("game over",
		"collision", collision,
		"score", e.score,
		"high_score", e.highScore,
		"length", e.snake.Len(),
		"duration", now.Sub(e.startTime).Round(time.Millisecond),
	)
}

// Snapshot returns a copy of the observable state. Safe at any time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Grid:      e.grid,
		Snake:     e.snake.Cells(),
		Food:      e.food,
		HasFood:   e.hasFood,
		Direction: e.direction,
		Pending:   e.arbiter.Pending(),
		Score:     e.score,
		HighScore: e.highScore,
		Speed:     e.speed,
		State:     e.state,
		Ticks:     e.ticks,
	}
}

// State returns the current phase of the game
func (e *Engine) State() types.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Flush waits until every event emitted so far has reached the sink
func (e *Engine) Flush() {
	e.events.flush()
}

// Close delivers pending events and stops the event dispatcher. The engine
// keeps simulating afterwards but no longer reports events.
func (e *Engine) Close() {
	e.events.close()
}
