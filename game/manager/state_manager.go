package manager

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/alexanderi96/rsnake/game/types"
)

// Oldest records are dropped past this many finished games
const maxHistory = 1000

// GameRecord describes one finished game
type GameRecord struct {
	SessionID string    `json:"sessionId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Score     int       `json:"score"`
	Length    int       `json:"length"`
}

// Duration returns how long the game lasted
func (r GameRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

type GameStats struct {
	HighScore    int          `json:"highScore"`
	ScoreHistory []GameRecord `json:"scoreHistory"`
}

// csvRecord is the flat row layout written by ExportCSV
type csvRecord struct {
	SessionID       string  `csv:"session_id"`
	StartTime       string  `csv:"start_time"`
	EndTime         string  `csv:"end_time"`
	DurationSeconds float64 `csv:"duration_seconds"`
	Score           int     `csv:"score"`
	Length          int     `csv:"length"`
}

// StateManager owns the state that outlives a single game: the persisted high
// score and the history of finished games. It receives engine events and
// writes the stats file whenever either changes.
type StateManager struct {
	mu           sync.RWMutex
	filename     string
	highScore    int
	scoreHistory []GameRecord

	current *GameRecord
	now     func() time.Time
	logger  *slog.Logger
}

// NewStateManager creates a manager backed by filename. An empty filename
// keeps everything in memory.
func NewStateManager(filename string, logger *slog.Logger) *StateManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateManager{
		filename:     filename,
		scoreHistory: make([]GameRecord, 0),
		now:          time.Now,
		logger:       logger,
	}
}

// LoadStats reads the stats file. A missing file is not an error.
func (sm *StateManager) LoadStats() error {
	if sm.filename == "" {
		return nil
	}

	data, err := os.ReadFile(sm.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading stats file: %w", err)
	}

	var stats GameStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return fmt.Errorf("parsing stats file: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if stats.HighScore > sm.highScore {
		sm.highScore = stats.HighScore
	}
	if stats.ScoreHistory != nil {
		sm.scoreHistory = stats.ScoreHistory
	}
	return nil
}

// SaveStats writes the stats file through a temporary file and rename.
func (sm *StateManager) SaveStats() error {
	if sm.filename == "" {
		return nil
	}

	sm.mu.RLock()
	stats := GameStats{
		HighScore:    sm.highScore,
		ScoreHistory: sm.scoreHistory,
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	sm.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sm.filename), 0755); err != nil {
		return fmt.Errorf("creating stats directory: %w", err)
	}
	tmp := sm.filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing stats file: %w", err)
	}
	if err := os.Rename(tmp, sm.filename); err != nil {
		return fmt.Errorf("replacing stats file: %w", err)
	}
	return nil
}

// ExportCSV writes the finished-game history as CSV.
func (sm *StateManager) ExportCSV(path string) error {
	sm.mu.RLock()
	rows := make([]csvRecord, 0, len(sm.scoreHistory))
	for _, r := range sm.scoreHistory {
		rows = append(rows, csvRecord{
			SessionID:       r.SessionID,
			StartTime:       r.StartTime.Format(time.RFC3339),
			EndTime:         r.EndTime.Format(time.RFC3339),
			DurationSeconds: r.Duration().Seconds(),
			Score:           r.Score,
			Length:          r.Length,
		})
	}
	sm.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (sm *StateManager) GetHighScore() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.highScore
}

// GetScoreHistory returns a copy of the finished games, oldest first
func (sm *StateManager) GetScoreHistory() []GameRecord {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	history := make([]GameRecord, len(sm.scoreHistory))
	copy(history, sm.scoreHistory)
	return history
}

func (sm *StateManager) GetGamesPlayed() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.scoreHistory)
}

func (sm *StateManager) GetAverageScore() float64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if len(sm.scoreHistory) == 0 {
		return 0
	}
	total := 0
	for _, r := range sm.scoreHistory {
		total += r.Score
	}
	return float64(total) / float64(len(sm.scoreHistory))
}

func (sm *StateManager) GetMaxScore() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	maxScore := 0
	for _, r := range sm.scoreHistory {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	return maxScore
}

// OnAte grows the length of the game in progress
func (sm *StateManager) OnAte() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.current != nil {
		sm.current.Length++
	}
}

func (sm *StateManager) OnCrashed() {}

func (sm *StateManager) OnScoreChanged(score int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.current != nil {
		sm.current.Score = score
	}
}

// OnHighScoreChanged records and persists a new high score
func (sm *StateManager) OnHighScoreChanged(highScore int) {
	sm.mu.Lock()
	if highScore <= sm.highScore {
		sm.mu.Unlock()
		return
	}
	sm.highScore = highScore
	sm.mu.Unlock()

	if err := sm.SaveStats(); err != nil {
		sm.logger.Error("failed to persist high score", "high_score", highScore, "error", err)
	}
}

// OnStateChanged opens a record when a fresh game starts and closes it when
// the game ends.
func (sm *StateManager) OnStateChanged(state types.GameState) {
	switch state {
	case types.Running:
		sm.mu.Lock()
		if sm.current == nil {
			sm.current = &GameRecord{
				SessionID: uuid.New().String(),
				StartTime: sm.now(),
				Length:    1,
			}
		}
		sm.mu.Unlock()
	case types.Over:
		sm.finishGame()
	}
}

func (sm *StateManager) finishGame() {
	sm.mu.Lock()
	if sm.current == nil {
		sm.mu.Unlock()
		return
	}
	record := *sm.current
	record.EndTime = sm.now()
	sm.current = nil

	sm.scoreHistory = append(sm.scoreHistory, record)
	if len(sm.scoreHistory) > maxHistory {
		sm.scoreHistory = sm.scoreHistory[len(sm.scoreHistory)-maxHistory:]
	}
	sm.mu.Unlock()

	sm.logger.Info("game recorded",
		"session", record.SessionID,
		"score", record.Score,
		"length", record.Length,
		"duration", record.Duration().Round(time.Millisecond),
	)
	if err := sm.SaveStats(); err != nil {
		sm.logger.Error("failed to persist game history", "session", record.SessionID, "error", err)
	}
}
