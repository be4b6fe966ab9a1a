package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *Board {
	t.Helper()
	b, err := ParseBoard(text)
	require.NoError(t, err)
	return b
}

func TestBoardLegalMoves(t *testing.T) {
	t.Run("empty board allows every cell", func(t *testing.T) {
		b := NewBoard(DefaultSize)

		require.Len(t, b.LegalMoves(Black), 81, "Every cell should be playable")
		require.Len(t, b.LegalMoves(White), 81, "Every cell should be playable")
		require.True(t, b.HasLegalMove(Black))
	})

	t.Run("suicide is illegal", func(t *testing.T) {
		b := mustParse(t, `
			.O.
			O..
			...`)

		_, got := b.Play(Place{Point: 0, Who: Black})
		require.Equal(t, Illegal, got, "Black stone in the corner would have no liberty")

		_, got = b.Play(Place{Point: 0, Who: White})
		require.Equal(t, Legal, got, "White stone connects to friendly stones with liberties")
	})

	t.Run("capture is illegal", func(t *testing.T) {
		b := mustParse(t, `
			XO.
			...
			...`)

		_, got := b.Play(Place{Point: 3, Who: White})
		require.Equal(t, Illegal, got, "White would take the last liberty of the black stone")

		_, got = b.Play(Place{Point: 3, Who: Black})
		require.Equal(t, Legal, got, "Black extends its own group")
	})

	t.Run("occupied and out of range cells are illegal", func(t *testing.T) {
		b := mustParse(t, `
			X.
			..`)

		_, got := b.Play(Place{Point: 0, Who: White})
		require.Equal(t, Illegal, got)
		_, got = b.Play(Place{Point: 4, Who: White})
		require.Equal(t, Illegal, got)
		_, got = b.Play(Place{Point: -1, Who: White})
		require.Equal(t, Illegal, got)
		_, got = b.Play(Place{Point: 1, Who: Empty})
		require.Equal(t, Illegal, got)
	})

	t.Run("single cell board has no legal move", func(t *testing.T) {
		b := NewBoard(1)

		require.False(t, b.HasLegalMove(Black))
		require.False(t, b.HasLegalMove(White))
		require.Empty(t, b.LegalMoves(Black))
	})
}

func TestBoardPlay(t *testing.T) {
	t.Run("legal move returns a new board", func(t *testing.T) {
		b := NewBoard(3)

		after, got := b.Play(Place{Point: 4, Who: Black})

		require.Equal(t, Legal, got)
		require.Equal(t, Black, after.(*Board).At(4), "Stone should be placed on the copy")
		require.Equal(t, Empty, b.At(4), "Receiver should not change")
		require.NotEqual(t, b.Hash(), after.Hash(), "Hash should change with the position")
	})

	t.Run("illegal move returns the same board", func(t *testing.T) {
		b := mustParse(t, `
			.O.
			O..
			...`)

		after, got := b.Play(Place{Point: 0, Who: Black})

		require.Equal(t, Illegal, got)
		require.Same(t, b, after, "Illegal move should not produce a new position")
	})
}

func TestBoardText(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		text := "X.O\n...\n.OX\n"
		b := mustParse(t, text)

		require.Equal(t, text, b.String())
		require.Equal(t, mustParse(t, text).Hash(), b.Hash(), "Equal positions should hash equally")
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := ParseBoard("X..\n..\n...")
		require.Error(t, err)
	})

	t.Run("rejects unknown marks", func(t *testing.T) {
		_, err := ParseBoard("X?\n..")
		require.Error(t, err)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseBoard("\n \n")
		require.Error(t, err)
	})
}

func TestParseSide(t *testing.T) {
	for name, want := range map[string]Side{"black": Black, "First": Black, "white": White, "second": White} {
		got, err := ParseSide(name)
		require.NoError(t, err)
		require.Equal(t, want, got, name)
	}

	_, err := ParseSide("unknown")
	require.Error(t, err)
	require.Equal(t, Empty, Empty.Opponent(), "Empty has no opponent")
	require.Equal(t, White, Black.Opponent())
}
