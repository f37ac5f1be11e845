package manager

import "time"

// SpeedManager holds the tick rate of a run. The rate steps up when the
// score reaches a new multiple of the modulus. The check compares levels,
// not remainders, so a score that jumps past several multiples at once
// still adds a single step.
type SpeedManager struct {
	base       int
	step       int
	modulus    int
	rate       int
	checkpoint int // score/modulus level already paid out
}

func NewSpeedManager(base, step, modulus int) *SpeedManager {
	sm := &SpeedManager{
		base:    base,
		step:    step,
		modulus: modulus,
	}
	sm.Reset()
	return sm
}

// Reset returns to the base rate for a new run.
func (sm *SpeedManager) Reset() {
	sm.rate = sm.base
	sm.checkpoint = 0
}

// Update applies at most one speed step for score and reports whether the
// rate changed. Calling it again with the same score is a no-op.
func (sm *SpeedManager) Update(score int) bool {
	level := score / sm.modulus
	if level <= sm.checkpoint {
		return false
	}
	sm.checkpoint = level
	sm.rate += sm.step
	return true
}

// TickInterval updates for score and returns the time between ticks.
func (sm *SpeedManager) TickInterval(score int) time.Duration {
	sm.Update(score)
	return sm.Interval()
}

// Interval is the time between ticks at the current rate.
func (sm *SpeedManager) Interval() time.Duration {
	return time.Second / time.Duration(sm.rate)
}

// Rate is the current tick rate in ticks per second.
func (sm *SpeedManager) Rate() int {
	return sm.rate
}
