package searcher

import (
	"math"

	"nogo/game"
)

const Win = 1.0   // Reward for the engine winning a playout
const Loss = -Win // Reward for the engine losing a playout

// Untried moves of the engine are always explored first. Untried replies of the
// opponent score like a certain opponent win without an exploration bonus, so they
// only get tried once every explored reply looks worse than that for the opponent.
const unexploredOwn = 999.0
const unexploredOpponent = Win

// Proven outcomes dominate any UCB value.
const terminalScale = 1e6

type uct struct {
	self game.Side
	c    float64
}

func newUCT(self game.Side, c float64) uct {
	return uct{self: self, c: c}
}

// score rates move from parent, from the point of view of parent.side.
func (u uct) score(parent *node, move game.Move) float64 {
	child, ok := parent.children[move]
	if !ok {
		if parent.side == u.self {
			return unexploredOwn
		}
		return unexploredOpponent
	}

	sign := perspective(parent.side, u.self)
	if child.terminal {
		return sign * child.winRate() * terminalScale
	}
	return u.evaluate(sign*child.wins, float64(child.visits), float64(parent.visits))
}

func (u uct) evaluate(q float64, n float64, N float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	if N == 0 {
		panic("N cannot be 0")
	}
	// UCT = q/n + c*sqrt(ln(N)/n)
	return q/n + u.c*math.Sqrt(math.Log(N)/n)
}
