package metrics

import (
	"sync/atomic"
	"time"
)

type StopReason string

const (
	StopNone     StopReason = ""
	StopCount    StopReason = "count"    // Iteration cap reached
	StopTime     StopReason = "time"     // Thinking time used up
	StopTerminal StopReason = "terminal" // Root position has no legal move
	StopEarly    StopReason = "early"    // Leading move judged unbeatable
)

type SearchMetric struct {
	LeafParallel   int
	ThinkingTime   time.Duration
	Duration       time.Duration
	RemainingTime  time.Duration
	Iterations     int
	Rollouts       int
	UnstablePasses int
	TreeSize       int
	StopReason     StopReason
	IsTreeReset    bool
}

type MoveMetric struct {
	Step int
	Side string
	SearchMetric
}

type GameMetric struct {
	Black      string // Agent name
	White      string // Agent name
	Winner     string // Side
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type Collector interface {
	Start(leafParallel int, thinkingTime time.Duration)
	SetTreeReset(value bool)
	AddIteration()
	AddRollouts(n int)
	AddUnstablePass()
	Stop(reason StopReason)
	Complete(remaining time.Duration, treeSize int) SearchMetric
}

type collector struct {
	leafParallel   int
	thinkingTime   time.Duration
	startTime      time.Time
	iterations     atomic.Int32
	rollouts       atomic.Int32
	unstablePasses atomic.Int32
	stopReason     atomic.Value
	isTreeReset    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) Start(leafParallel int, thinkingTime time.Duration) {
	m.startTime = time.Now()
	m.leafParallel = leafParallel
	m.thinkingTime = thinkingTime
	m.iterations.Store(0)
	m.rollouts.Store(0)
	m.unstablePasses.Store(0)
	m.stopReason.Store(StopNone)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddRollouts(n int) {
	m.rollouts.Add(int32(n))
}

func (m *collector) AddUnstablePass() {
	m.unstablePasses.Add(1)
}

// Stop keeps the first reason recorded since Start.
func (m *collector) Stop(reason StopReason) {
	m.stopReason.CompareAndSwap(StopNone, reason)
}

func (m *collector) Complete(remaining time.Duration, treeSize int) SearchMetric {
	reason, _ := m.stopReason.Load().(StopReason)
	return SearchMetric{
		LeafParallel:   m.leafParallel,
		ThinkingTime:   m.thinkingTime,
		Duration:       time.Since(m.startTime),
		RemainingTime:  remaining,
		Iterations:     int(m.iterations.Load()),
		Rollouts:       int(m.rollouts.Load()),
		UnstablePasses: int(m.unstablePasses.Load()),
		TreeSize:       treeSize,
		StopReason:     reason,
		IsTreeReset:    m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(leafParallel int, thinkingTime time.Duration) {}
func (m *dummyCollector) SetTreeReset(value bool)                            {}
func (m *dummyCollector) AddIteration()                                      {}
func (m *dummyCollector) AddRollouts(n int)                                  {}
func (m *dummyCollector) AddUnstablePass()                                   {}
func (m *dummyCollector) Stop(reason StopReason)                             {}
func (m *dummyCollector) Complete(remaining time.Duration, treeSize int) SearchMetric {
	return SearchMetric{}
}
