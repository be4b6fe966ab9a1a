package searcher

import (
	"time"

	"nogo/config"
)

// Clock is a monotonic time source, injected so tests can control elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// timeManager splits one budget over a whole game.
type timeManager struct {
	managed   bool
	basic     int
	peak      int // 0 selects the flat schedule
	bonus     float64
	initial   time.Duration
	remaining time.Duration
}

func newTimeManager(cfg config.Search) *timeManager {
	basic := cfg.BasicConst
	if basic <= 0 {
		basic = config.BasicConst
	}
	bonus := cfg.TimeBonus
	if bonus <= 0 {
		bonus = config.TimeBonus
	}
	initial := cfg.InitialTime
	if initial <= 0 {
		initial = config.InitialTime
	}
	return &timeManager{
		managed:   cfg.TimeManaged,
		basic:     basic,
		peak:      cfg.EnhancedPeak,
		bonus:     bonus,
		initial:   initial,
		remaining: initial,
	}
}

func (tm *timeManager) reset() {
	tm.remaining = tm.initial
}

// allowance returns the thinking time for the move at turn (0 for the first move).
func (tm *timeManager) allowance(turn int) time.Duration {
	divisor := float64(tm.basic)
	if tm.peak > 0 {
		divisor += float64(max(tm.peak-2*turn, 0))
	}
	return time.Duration(float64(tm.remaining) / divisor * tm.bonus)
}

// spend charges elapsed to the budget. The remainder may go negative.
func (tm *timeManager) spend(elapsed time.Duration) {
	tm.remaining -= elapsed
}

// expired reports whether elapsed used up budget. Always false without time management.
func (tm *timeManager) expired(elapsed, budget time.Duration) bool {
	return tm.managed && elapsed >= budget
}
