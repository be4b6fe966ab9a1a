package engine

import (
	"context"

	"nogo/experiments/metrics"
	"nogo/game"
)

type Result struct {
	Winner game.Side // Empty when the turn limit was reached
	Final  game.State
	Game   metrics.GameMetric
	Moves  []metrics.MoveMetric
}

type Engine interface {
	// Run plays a game till the side to move has no legal move or the turn limit is reached
	Run(ctx context.Context) (Result, error)
}
