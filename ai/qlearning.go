package ai

import (
	"fmt"
	"math"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"
	"pythons/game/types"

	"golang.org/x/exp/rand"
)

type State struct {
	RelativeFoodDir [2]int  // Food direction relative to head (x, y)
	FoodDistance    int     // Manhattan distance to food
	DangerDirs      [4]bool // Danger in each direction (up, right, down, left)
}

// Action indexes Directions.
type Action int

const (
	Up Action = iota
	Right
	Down
	Left
)

func (a Action) Dir() input.Dir {
	return Directions[a]
}

type QTable map[string][4]float64

// QLearning is a tabular Q-learning pilot. The table lives only as long as
// the process; nothing is written to disk.
type QLearning struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
	TotalReward  float64
	GamesPlayed  int

	collisions *manager.CollisionManager
	rng        *rand.Rand

	hasLast    bool
	lastState  State
	lastAction Action
	lastScore  int
}

func NewQLearning(grid types.Grid, seed uint64) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		MinEpsilon:   0.01,
		EpsilonDecay: 0.99,
		collisions:   manager.NewCollisionManager(grid),
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Observe builds the learner's view of a snapshot.
func (q *QLearning) Observe(s game.Snapshot) State {
	head := s.Head()
	body := s.Occupied()

	var st State
	if s.HasTarget {
		st.RelativeFoodDir = [2]int{sign(s.Target.X - head.X), sign(s.Target.Y - head.Y)}
		st.FoodDistance = abs(s.Target.X-head.X) + abs(s.Target.Y-head.Y)
	}
	for i, d := range Directions {
		st.DangerDirs[i] = q.collisions.IsDanger(head.Add(d.ToPoint()), body)
	}
	return st
}

func (q *QLearning) getStateKey(s State) string {
	return fmt.Sprintf("%d,%d|%t%t%t%t", s.RelativeFoodDir[0], s.RelativeFoodDir[1],
		s.DangerDirs[0], s.DangerDirs[1], s.DangerDirs[2], s.DangerDirs[3])
}

// Decide implements game.Pilot. It first learns from the previous move,
// then picks the next one epsilon-greedily, never the reverse of the
// current heading.
func (q *QLearning) Decide(s game.Snapshot) (input.Dir, bool) {
	if len(s.Body) == 0 {
		return input.None, false
	}
	state := q.Observe(s)
	if q.hasLast {
		reward := q.reward(q.lastState, state, s.Score > q.lastScore)
		q.update(q.lastState, q.lastAction, reward, &state)
	}

	allowed := make([]Action, 0, 4)
	for a := Up; a <= Left; a++ {
		if a.Dir().ToPoint() != s.Direction.Reverse() {
			allowed = append(allowed, a)
		}
	}

	var action Action
	if q.rng.Float64() < q.Epsilon {
		// Exploration: random action
		action = allowed[q.rng.Intn(len(allowed))]
	} else {
		action = q.getBestAction(state, allowed)
	}

	q.hasLast = true
	q.lastState = state
	q.lastAction = action
	q.lastScore = s.Score
	return action.Dir(), true
}

// EndRun implements game.Learner: the last move is scored as terminal.
func (q *QLearning) EndRun(s game.Snapshot) {
	if q.hasLast {
		reward := -1.0
		if s.Won {
			reward = 1.0
		}
		q.update(q.lastState, q.lastAction, reward, nil)
	}
	q.hasLast = false
	q.GamesPlayed++
	q.Epsilon = math.Max(q.MinEpsilon, q.Epsilon*q.EpsilonDecay)
}

func (q *QLearning) reward(prev, next State, ate bool) float64 {
	if ate {
		return 1.0
	}
	switch {
	case next.FoodDistance < prev.FoodDistance:
		// Got closer to food
		return 0.5
	case next.FoodDistance > prev.FoodDistance:
		return -0.3
	}
	return 0
}

func (q *QLearning) getBestAction(state State, allowed []Action) Action {
	values := q.QTable[q.getStateKey(state)]
	best := allowed[0]
	bestValue := math.Inf(-1)
	for _, a := range allowed {
		if values[a] > bestValue {
			bestValue = values[a]
			best = a
		}
	}
	return best
}

// update applies the Q-learning rule; next is nil for terminal moves.
func (q *QLearning) update(state State, action Action, reward float64, next *State) {
	key := q.getStateKey(state)
	values := q.QTable[key]

	maxNextQ := 0.0
	if next != nil {
		nextValues := q.QTable[q.getStateKey(*next)]
		maxNextQ = nextValues[0]
		for _, v := range nextValues[1:] {
			maxNextQ = math.Max(maxNextQ, v)
		}
	}

	current := values[action]
	values[action] = current + q.LearningRate*(reward+q.Discount*maxNextQ-current)
	q.QTable[key] = values
	q.TotalReward += reward
}

func sign(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
