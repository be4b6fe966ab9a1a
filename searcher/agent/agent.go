package agent

import (
	"fmt"

	"nogo/config"
	"nogo/experiments/metrics"
	"nogo/game"
	"nogo/searcher"
)

type Agent interface {
	// FindMove returns a move for the side to move in state and the search metrics (if collected).
	// A nil move means the agent has no legal move.
	FindMove(state game.State) (game.Move, metrics.SearchMetric)
	// Reset prepares the agent for a new game played as side.
	Reset(side game.Side)
	Name() string
}

// New builds the agent selected by cfg.Strategy. Options only apply to MCTS agents.
func New(cfg config.Search, options ...searcher.Option) (Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case config.StrategyRandom:
		side, err := cfg.Side()
		if err != nil {
			return nil, err
		}
		return NewRandomAgent(cfg.Name, side, cfg.ResolvedSeed()), nil
	case config.StrategyMCTS:
		mcts, err := searcher.NewMCTS(cfg, options...)
		if err != nil {
			return nil, err
		}
		return NewMCTSAgent(cfg.Name, mcts), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", config.ErrInvalidConfig, cfg.Strategy)
}

type mctsAgent struct {
	name string
	mcts *searcher.MCTS
}

// NewMCTSAgent returns an agent playing the most visited move of mcts.
func NewMCTSAgent(name string, mcts *searcher.MCTS) Agent {
	return &mctsAgent{name: name, mcts: mcts}
}

func (a *mctsAgent) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	move, ok := a.mcts.ChooseMove(state)
	if !ok {
		return nil, a.mcts.Metric()
	}
	return move, a.mcts.Metric()
}

func (a *mctsAgent) Reset(side game.Side) {
	a.mcts.ResetForNewGame(side)
}

func (a *mctsAgent) Name() string {
	return a.name
}
