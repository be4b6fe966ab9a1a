package searcher

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"nogo/config"
	"nogo/experiments/metrics"
	"nogo/game"
)

type Option func(mcts *MCTS)

// WithClock replaces the wall clock used for time management.
func WithClock(clock Clock) Option {
	return func(m *MCTS) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = logger
	}
}

// MCTS is a stateful player for one side. It keeps its tree across moves of a
// game and is not safe for concurrent use.
type MCTS struct {
	self         game.Side
	policy       uct
	iterations   int
	leafParallel int
	rollouts     int // Visits per iteration, max(1, leafParallel)
	unstableN    int
	timer        *timeManager
	early        earlyStop
	clock        Clock
	rng          *rand.Rand
	metrics      metrics.Collector
	logger       zerolog.Logger

	tree *tree
	last game.State // Position after our previous move
	turn int
	rate float64 // Iterations per second measured on the previous move

	metric metrics.SearchMetric
}

// NewMCTS validates cfg and returns a player ready for a new game.
func NewMCTS(cfg config.Search, options ...Option) (*MCTS, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	side, err := cfg.Side()
	if err != nil {
		return nil, err
	}

	rollouts := max(1, cfg.LeafParallel)
	m := &MCTS{ // Default values
		self:         side,
		policy:       newUCT(side, cfg.Exploration),
		iterations:   cfg.Iterations(),
		leafParallel: cfg.LeafParallel,
		rollouts:     rollouts,
		unstableN:    cfg.Unstable,
		timer:        newTimeManager(cfg),
		early:        newEarlyStop(cfg.Early, rollouts),
		clock:        systemClock{},
		rng:          rand.New(rand.NewSource(cfg.ResolvedSeed())),
		metrics:      metrics.NewDummyCollector(),
		logger:       log.Logger.With().Str("player", cfg.Name).Logger(),
		tree:         newTree(side),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

func (m *MCTS) Side() game.Side {
	return m.self
}

// Metric returns the statistics of the last ChooseMove call.
func (m *MCTS) Metric() metrics.SearchMetric {
	return m.metric
}

// Remaining returns what is left of the game's time budget.
func (m *MCTS) Remaining() time.Duration {
	return m.timer.remaining
}

// ResetForNewGame discards the tree and the budget and plays side from now on.
func (m *MCTS) ResetForNewGame(side game.Side) {
	m.self = side
	m.policy = newUCT(side, m.policy.c)
	m.last = nil
	m.resetGame()
}

func (m *MCTS) resetGame() {
	m.logger.Info().Dur("remaining", m.timer.remaining).Msg("game reset")
	m.tree.reset(m.self)
	m.turn = 0
	m.timer.reset()
	m.metrics.SetTreeReset(true)
}

// ChooseMove searches observed, a position where it is our turn, and returns the
// most visited move. false means we have no legal move.
func (m *MCTS) ChooseMove(observed game.State) (game.Move, bool) {
	start := m.clock.Now()
	m.metrics.SetTreeReset(false)

	if m.last == nil {
		m.resetGame()
	} else {
		m.reconcile(observed)
	}
	turn := m.turn
	m.turn++

	if m.tree.root.side != m.self {
		m.logger.Error().Stringer("root", m.tree.root.side).Stringer("self", m.self).Msg("wrong role at root")
		panic(fmt.Sprintf("wrong role at root: %s to move, playing %s\n%s", m.tree.root.side, m.self, observed))
	}

	thinking := m.timer.allowance(turn)
	m.metrics.Start(m.leafParallel, thinking)

	iterations := 0
	stopped := false
	if m.early.enabled() {
		if _, ok := m.early.decide(m.tree.root, thinking, m.rate); ok {
			m.metrics.Stop(metrics.StopEarly)
			stopped = true
		}
	}
	if !stopped {
		n, reason := m.iterate(observed, start, thinking, true)
		iterations += n
		m.metrics.Stop(reason)
	}

	for pass := 0; pass < m.unstableN && unstable(m.tree.root, m.self); pass++ {
		n, _ := m.iterate(observed, m.clock.Now(), thinking/2, false)
		iterations += n
		m.metrics.AddUnstablePass()
	}

	elapsed := m.clock.Now().Sub(start)
	if iterations > 0 && elapsed > 0 {
		m.rate = float64(iterations) / elapsed.Seconds()
	}
	m.logger.Debug().
		Int("rollouts", iterations*m.rollouts).
		Float64("rate", m.rate).
		Dur("thinking", thinking).
		Msg("search finished")
	m.logRoot()

	move, ok := m.tree.root.mostVisited()
	m.timer.spend(elapsed)
	defer func() {
		m.metric = m.metrics.Complete(m.timer.remaining, m.tree.size())
	}()

	if !ok {
		m.last = observed
		return nil, false
	}
	after, legality := observed.Play(move)
	if legality != game.Legal {
		m.logger.Warn().Stringer("move", move).Msg("search picked an illegal move")
		m.last = observed
		return nil, false
	}
	m.tree.moveRoot(move)
	m.last = after
	return move, true
}

// reconcile moves the root past the opponent's reply, found by replaying every
// legal opponent move on our last position. An unreachable position starts a new game.
func (m *MCTS) reconcile(observed game.State) {
	want := observed.Hash()
	for _, move := range m.last.LegalMoves(m.self.Opponent()) {
		after, legality := m.last.Play(move)
		if legality == game.Legal && after.Hash() == want {
			m.tree.moveRoot(move)
			return
		}
	}
	m.logger.Warn().Msg("cannot find opponent move, starting a new game")
	m.resetGame()
}

// iterate runs searches from the root until the iteration cap, the time budget
// counted from start, a terminal root or (when early is set) an early cutoff.
// The first search always runs so an unexplored root gets a child.
func (m *MCTS) iterate(state game.State, start time.Time, budget time.Duration, early bool) (int, metrics.StopReason) {
	for i := 0; i < m.iterations; i++ {
		elapsed := m.clock.Now().Sub(start)
		if i > 0 && m.timer.expired(elapsed, budget) {
			return i, metrics.StopTime
		}
		if m.tree.root.terminal {
			return i, metrics.StopTerminal
		}

		m.search(state, m.tree.root)
		m.metrics.AddIteration()

		if early && m.early.enabled() {
			if _, ok := m.early.decide(m.tree.root, budget-elapsed, m.rate); ok {
				return i + 1, metrics.StopEarly
			}
		}
	}
	return m.iterations, metrics.StopCount
}

// search descends from n by UCB, expands one new child, plays it out and folds the
// result into every node on the way back. It returns the move chosen at n and the
// summed rollout result.
func (m *MCTS) search(state game.State, n *node) (game.Move, float64) {
	if n.terminal {
		result := outcome(n.side, m.self) * float64(m.rollouts)
		n.markTerminal(outcome(n.side, m.self), m.rollouts)
		return nil, result
	}

	// Selection
	var best game.Move
	bestScore := math.Inf(-1)
	for _, move := range state.LegalMoves(n.side) {
		if score := m.policy.score(n, move); score > bestScore {
			best = move
			bestScore = score
		}
	}

	// No legal move: n.side loses
	if best == nil {
		n.markTerminal(outcome(n.side, m.self), m.rollouts)
		return nil, outcome(n.side, m.self) * float64(m.rollouts)
	}

	after, legality := state.Play(best)
	if legality != game.Legal {
		panic(fmt.Sprintf("enumerated move %s is illegal", best))
	}

	var result float64
	if n.hasChild(best) {
		_, result = m.search(after, n.child(best))
	} else {
		result = m.expand(after, n.addChild(best))
	}
	n.record(result, m.rollouts)
	return best, result
}

// expand evaluates a freshly added child from its position.
func (m *MCTS) expand(state game.State, child *node) float64 {
	if !state.HasLegalMove(child.side) {
		child.markTerminal(outcome(child.side, m.self), m.rollouts)
		return outcome(child.side, m.self) * float64(m.rollouts)
	}

	var result float64
	if m.leafParallel > 1 {
		seeds := make([]uint64, m.leafParallel)
		for i := range seeds {
			seeds[i] = m.rng.Uint64()
		}
		result = fanOut(state, child.side, m.self, seeds)
	} else {
		result = rollout(state, child.side, m.self, m.rng)
	}
	m.metrics.AddRollouts(m.rollouts)

	child.record(result, m.rollouts)
	return result
}

func (m *MCTS) logRoot() {
	if m.logger.GetLevel() > zerolog.TraceLevel || zerolog.GlobalLevel() > zerolog.TraceLevel {
		return
	}
	root := m.tree.root
	for _, move := range root.order {
		child := root.children[move]
		m.logger.Trace().
			Stringer("move", move).
			Int("visits", child.visits).
			Float64("wins", child.wins).
			Bool("terminal", child.terminal).
			Msg("root child")
	}
}
