package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

const DefaultSize = 9

const (
	blackMark = 'X'
	whiteMark = 'O'
	emptyMark = '.'
)

// Place puts a stone of side Who on cell Point (row-major index).
type Place struct {
	Point int
	Who   Side
}

func (p Place) Side() Side {
	return p.Who
}

func (p Place) String() string {
	return fmt.Sprintf("%s@%d", p.Who, p.Point)
}

// Board is a NoGo position. A placement is illegal if it captures an enemy group
// or leaves the placed stone's own group without liberties.
type Board struct {
	size  int
	cells []Side
}

func NewBoard(size int) *Board {
	if size < 1 {
		panic(fmt.Sprintf("invalid board size %d", size))
	}
	return &Board{size: size, cells: make([]Side, size*size)}
}

// ParseBoard reads rows of 'X' (black), 'O' (white) and '.' (empty).
// Whitespace inside a row is ignored, blank lines are skipped.
func ParseBoard(text string) (*Board, error) {
	rows := []string{}
	for _, line := range strings.Split(text, "\n") {
		row := strings.Join(strings.Fields(line), "")
		if row != "" {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty board")
	}

	b := NewBoard(len(rows))
	for r, row := range rows {
		if len(row) != b.size {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r+1, len(row), b.size)
		}
		for c, mark := range row {
			switch mark {
			case blackMark:
				b.cells[r*b.size+c] = Black
			case whiteMark:
				b.cells[r*b.size+c] = White
			case emptyMark:
			default:
				return nil, fmt.Errorf("unexpected mark %q at row %d", mark, r+1)
			}
		}
	}
	return b, nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) At(point int) Side {
	return b.cells[point]
}

func (b *Board) Copy() *Board {
	cells := make([]Side, len(b.cells))
	copy(cells, b.cells)
	return &Board{size: b.size, cells: cells}
}

func (b *Board) LegalMoves(side Side) []Move {
	moves := []Move{}
	for point := range b.cells {
		if b.legal(point, side) {
			moves = append(moves, Place{Point: point, Who: side})
		}
	}
	return moves
}

func (b *Board) HasLegalMove(side Side) bool {
	for point := range b.cells {
		if b.legal(point, side) {
			return true
		}
	}
	return false
}

func (b *Board) Play(move Move) (State, Legality) {
	place, ok := move.(Place)
	if !ok || !b.legal(place.Point, place.Who) {
		return b, Illegal
	}
	after := b.Copy()
	after.cells[place.Point] = place.Who
	return after, Legal
}

func (b *Board) legal(point int, side Side) bool {
	if side != Black && side != White {
		return false
	}
	if point < 0 || point >= len(b.cells) || b.cells[point] != Empty {
		return false
	}

	if !b.hasLiberty(point, point, side) {
		return false
	}
	for _, n := range b.neighbors(point) {
		if b.cells[n] == side.Opponent() && !b.hasLiberty(n, point, side) {
			return false
		}
	}
	return true
}

// hasLiberty reports whether the group containing start touches an empty cell,
// as if a stone of side placed had been put on cell at. The board is never written,
// so concurrent rollouts may share it.
func (b *Board) hasLiberty(start, at int, placed Side) bool {
	cell := func(p int) Side {
		if p == at {
			return placed
		}
		return b.cells[p]
	}

	side := cell(start)
	seen := make([]bool, len(b.cells))
	stack := []int{start}
	seen[start] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range b.neighbors(p) {
			switch {
			case cell(n) == Empty:
				return true
			case cell(n) == side && !seen[n]:
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

func (b *Board) neighbors(point int) []int {
	r, c := point/b.size, point%b.size
	ns := make([]int, 0, 4)
	if r > 0 {
		ns = append(ns, point-b.size)
	}
	if r < b.size-1 {
		ns = append(ns, point+b.size)
	}
	if c > 0 {
		ns = append(ns, point-1)
	}
	if c < b.size-1 {
		ns = append(ns, point+1)
	}
	return ns
}

func (b *Board) Hash() StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(b.size))
	for _, cell := range b.cells {
		hasher.Write([]byte{byte(cell)})
	}

	return StateHash(hasher.Sum64())
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			switch b.cells[r*b.size+c] {
			case Black:
				sb.WriteRune(blackMark)
			case White:
				sb.WriteRune(whiteMark)
			default:
				sb.WriteRune(emptyMark)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
