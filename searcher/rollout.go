package searcher

import (
	"fmt"
	"sync"

	"golang.org/x/exp/rand"

	"nogo/game"
)

// rollout plays uniformly random moves, alternating sides from toMove, until the
// side to move has none. The result is Win or Loss for self.
func rollout(state game.State, toMove, self game.Side, rng *rand.Rand) float64 {
	side := toMove
	moves := state.LegalMoves(side)
	for len(moves) > 0 {
		move := moves[rng.Intn(len(moves))] // Random rollout policy
		next, legality := state.Play(move)
		if legality != game.Legal {
			panic(fmt.Sprintf("enumerated move %s is illegal", move))
		}
		state = next
		side = side.Opponent()
		moves = state.LegalMoves(side)
	}
	return outcome(side, self)
}

// outcome is the reward for self when loser has no legal move.
func outcome(loser, self game.Side) float64 {
	if loser == self {
		return Loss
	}
	return Win
}

// fanOut runs one rollout per seed concurrently and returns the summed result.
// It blocks until every rollout is done.
func fanOut(state game.State, toMove, self game.Side, seeds []uint64) float64 {
	var mu sync.Mutex
	results := make([]float64, 0, len(seeds))

	var wg sync.WaitGroup
	for _, seed := range seeds {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()

			result := rollout(state, toMove, self, rand.New(rand.NewSource(seed)))

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(seed)
	}
	wg.Wait()

	sum := 0.0
	for _, result := range results {
		sum += result
	}
	return sum
}
