package searcher

import (
	"time"

	"nogo/config"
	"nogo/game"
)

// earlyStop ends a search once the most visited root child can no longer be
// caught by the runner-up within the remaining budget.
type earlyStop struct {
	mode      config.EarlyMode
	threshold int
	ratio     float64
	rollouts  int // Visits per iteration
}

func newEarlyStop(cfg config.Early, rollouts int) earlyStop {
	mode := cfg.Mode
	if mode == "" {
		mode = config.EarlyOff
	}
	return earlyStop{
		mode:      mode,
		threshold: cfg.Threshold,
		ratio:     cfg.Ratio,
		rollouts:  rollouts,
	}
}

func (e earlyStop) enabled() bool {
	return e.mode != config.EarlyOff
}

// margin is the visit lead required to stop. rate is iterations per second
// measured on earlier moves; 0 means unknown.
func (e earlyStop) margin(remaining time.Duration, rate float64) (float64, bool) {
	switch e.mode {
	case config.EarlyFixed:
		return float64(e.threshold * e.rollouts), true
	case config.EarlyThroughput:
		if rate <= 0 {
			return 0, false
		}
		return remaining.Seconds() * rate * e.ratio * float64(e.rollouts), true
	}
	return 0, false
}

func (e earlyStop) decide(root *node, remaining time.Duration, rate float64) (game.Move, bool) {
	margin, ok := e.margin(remaining, rate)
	if !ok {
		return nil, false
	}
	most, second, leader := root.leaders()
	if leader == nil || float64(most)-margin < float64(second) {
		return nil, false
	}
	return leader, true
}

// unstable reports whether the most visited root child is not the one with the best win rate.
func unstable(root *node, self game.Side) bool {
	visited, ok := root.mostVisited()
	if !ok {
		return false
	}
	best, _ := root.highestWinRate(self)
	return best != visited
}
