package manager

import (
	"time"

	"pythons/game/types"

	"github.com/google/uuid"
)

// RunState is the phase of the game loop.
type RunState int

const (
	Splash RunState = iota
	Running
	GameOver
)

func (s RunState) String() string {
	switch s {
	case Splash:
		return "splash"
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText lets snapshots carry the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RunRecord rappresenta i dati di una partita conclusa.
type RunRecord struct {
	ID        string              `json:"id"`
	Score     int                 `json:"score"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
	Collision types.CollisionType `json:"-"`
	Cause     string              `json:"cause"`
	Won       bool                `json:"won"`
}

// Stats summarizes the finished runs of this process.
type Stats struct {
	Runs         int         `json:"runs"`
	HighScore    int         `json:"highScore"`
	AverageScore float64     `json:"averageScore"`
	History      []RunRecord `json:"history"`
}

// StateManager owns the run state and the in-memory history of runs.
type StateManager struct {
	state     RunState
	runID     string
	startTime time.Time
	highScore int
	history   []RunRecord
	now       func() time.Time
}

func NewStateManager() *StateManager {
	return &StateManager{
		state:   Splash,
		history: make([]RunRecord, 0),
		now:     time.Now,
	}
}

func (sm *StateManager) State() RunState {
	return sm.state
}

// RunID is the id of the current or last run, empty before the first one.
func (sm *StateManager) RunID() string {
	return sm.runID
}

// Start enters Running with a fresh run id. Only valid from Splash or GameOver.
func (sm *StateManager) Start() (string, bool) {
	if sm.state == Running {
		return sm.runID, false
	}
	sm.state = Running
	sm.runID = uuid.New().String()
	sm.startTime = sm.now()
	return sm.runID, true
}

// End freezes the current run and records it. Only valid from Running.
func (sm *StateManager) End(score int, collision types.CollisionType, won bool) (RunRecord, bool) {
	if sm.state != Running {
		return RunRecord{}, false
	}
	sm.state = GameOver

	cause := collision.String()
	if won {
		cause = "win"
	}
	rec := RunRecord{
		ID:        sm.runID,
		Score:     score,
		StartTime: sm.startTime,
		EndTime:   sm.now(),
		Collision: collision,
		Cause:     cause,
		Won:       won,
	}
	sm.history = append(sm.history, rec)
	if score > sm.highScore {
		sm.highScore = score
	}
	return rec, true
}

func (sm *StateManager) GetHighScore() int {
	return sm.highScore
}

func (sm *StateManager) Runs() int {
	return len(sm.history)
}

// GetStats returns a copy of the session statistics.
func (sm *StateManager) GetStats() Stats {
	history := make([]RunRecord, len(sm.history))
	copy(history, sm.history)

	var avg float64
	if len(history) > 0 {
		total := 0
		for _, r := range history {
			total += r.Score
		}
		avg = float64(total) / float64(len(history))
	}
	return Stats{
		Runs:         len(history),
		HighScore:    sm.highScore,
		AverageScore: avg,
		History:      history,
	}
}
