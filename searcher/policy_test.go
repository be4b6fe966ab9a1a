package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"nogo/game"
)

func TestEvaluate(t *testing.T) {
	u := newUCT(game.Black, 1.44)

	t.Run("formula", func(t *testing.T) {
		got := u.evaluate(3, 4, 10)

		require.InDelta(t, 0.75+1.44*math.Sqrt(math.Log(10)/4), got, 1e-9)
	})

	t.Run("zero child visits", func(t *testing.T) {
		require.Panics(t, func() { u.evaluate(1, 0, 10) })
	})

	t.Run("zero parent visits", func(t *testing.T) {
		require.Panics(t, func() { u.evaluate(1, 1, 0) })
	})
}

func TestScore(t *testing.T) {
	u := newUCT(game.Black, 1.44)

	t.Run("untried move of the engine is explored first", func(t *testing.T) {
		parent := newNode(game.Black, nil)
		tried := mockMove{cell: 0, side: game.Black}
		parent.addChild(tried).record(Win, 1)
		parent.record(Win, 1)

		untried := u.score(parent, mockMove{cell: 1, side: game.Black})

		require.Equal(t, unexploredOwn, untried)
		require.Greater(t, untried, u.score(parent, tried))
	})

	t.Run("untried reply of the opponent", func(t *testing.T) {
		parent := newNode(game.White, nil)

		require.Equal(t, unexploredOpponent, u.score(parent, mockMove{cell: 1, side: game.White}))
	})

	t.Run("opponent maximises the negated engine score", func(t *testing.T) {
		parent := newNode(game.White, nil)
		good := mockMove{cell: 0, side: game.White}
		bad := mockMove{cell: 1, side: game.White}
		parent.addChild(good).record(-3, 4) // Engine loses most playouts
		parent.addChild(bad).record(3, 4)
		parent.record(0, 8)

		require.Greater(t, u.score(parent, good), u.score(parent, bad))
	})

	t.Run("proven wins and losses dominate", func(t *testing.T) {
		parent := newNode(game.Black, nil)
		win := mockMove{cell: 0, side: game.Black}
		loss := mockMove{cell: 1, side: game.Black}
		open := mockMove{cell: 2, side: game.Black}
		parent.addChild(win).markTerminal(Win, 1)
		parent.addChild(loss).markTerminal(Loss, 1)
		parent.addChild(open).record(1, 1)
		parent.record(1, 3)

		require.Equal(t, terminalScale, u.score(parent, win))
		require.Equal(t, -terminalScale, u.score(parent, loss))
		require.Greater(t, u.score(parent, win), u.score(parent, open))
		require.Less(t, u.score(parent, loss), u.score(parent, open))
	})

	t.Run("proven outcome is mirrored for the opponent", func(t *testing.T) {
		parent := newNode(game.White, nil)
		engineWins := mockMove{cell: 0, side: game.White}
		parent.addChild(engineWins).markTerminal(Win, 1)
		parent.record(Win, 1)

		require.Equal(t, -terminalScale, u.score(parent, engineWins))
	})
}
