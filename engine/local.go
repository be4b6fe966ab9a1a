package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"nogo/config"
	"nogo/experiments/metrics"
	"nogo/game"
	"nogo/searcher/agent"
)

type Local struct {
	size     int
	maxTurns int
	agents   [2]agent.Agent // Black, White
}

// NewLocal returns an engine playing black against white on an empty size x size board.
func NewLocal(size int, black, white agent.Agent) *Local {
	if size < 1 {
		panic("board size must be positive")
	}
	if black == nil || white == nil {
		panic("need two agents")
	}
	return &Local{
		size:     size,
		maxTurns: config.MaxTurns,
		agents:   [2]agent.Agent{black, white},
	}
}

func (e *Local) agent(side game.Side) agent.Agent {
	if side == game.White {
		return e.agents[1]
	}
	return e.agents[0]
}

// Run executes the entire game loop until one side cannot move.
func (e *Local) Run(ctx context.Context) (Result, error) {
	e.agents[0].Reset(game.Black)
	e.agents[1].Reset(game.White)

	var state game.State = game.NewBoard(e.size)
	side := game.Black
	winner := game.Empty
	moveMetrics := []metrics.MoveMetric{}
	start := time.Now()

	log.Info().Msgf("%s (black) against %s (white) on %dx%d", e.agents[0].Name(), e.agents[1].Name(), e.size, e.size)

	for step := 1; step <= e.maxTurns; step++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !state.HasLegalMove(side) {
			winner = side.Opponent()
			break
		}

		move, metric := e.agent(side).FindMove(state)
		move = e.validate(state, side, move)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Side:         side.String(),
			SearchMetric: metric,
		})

		state, _ = state.Play(move)
		side = side.Opponent()
	}

	if winner == game.Empty {
		log.Warn().Msgf("stopped after %d turns without a winner", e.maxTurns)
	} else {
		log.Info().Msgf("game ended after %d moves, winner: %s", len(moveMetrics), winner)
	}

	end := time.Now()
	return Result{
		Winner: winner,
		Final:  state,
		Game: metrics.GameMetric{
			Black:      e.agents[0].Name(),
			White:      e.agents[1].Name(),
			Winner:     winner.String(),
			StartTime:  start,
			EndTime:    end,
			Duration:   end.Sub(start),
			TotalMoves: len(moveMetrics),
		},
		Moves: moveMetrics,
	}, nil
}

// validate replaces a missing or illegal move by the first legal one. side must have a legal move.
func (e *Local) validate(state game.State, side game.Side, move game.Move) game.Move {
	if move != nil && move.Side() == side {
		if _, legality := state.Play(move); legality == game.Legal {
			return move
		}
	}
	fallback := state.LegalMoves(side)
	if len(fallback) == 0 {
		panic("no legal moves at all")
	}
	log.Warn().
		Str("agent", e.agent(side).Name()).
		Interface("move", move).
		Stringer("fallback", fallback[0]).
		Msg("agent returned an invalid move, playing the first legal one")
	return fallback[0]
}
