package agent

import (
	"golang.org/x/exp/rand"

	"nogo/experiments/metrics"
	"nogo/game"
)

type randomAgent struct {
	name string
	side game.Side
	rng  *rand.Rand
}

// NewRandomAgent returns an agent playing uniformly among the legal moves of side.
func NewRandomAgent(name string, side game.Side, seed uint64) Agent {
	return &randomAgent{
		name: name,
		side: side,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (a *randomAgent) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	moves := state.LegalMoves(a.side)
	if len(moves) == 0 {
		return nil, metrics.SearchMetric{}
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}
}

func (a *randomAgent) Reset(side game.Side) {
	a.side = side
}

func (a *randomAgent) Name() string {
	return a.name
}
