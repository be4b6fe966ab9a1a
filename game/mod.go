package game

import (
	"fmt"
	"strings"
)

// Side identifies one of the two players. Black always moves first.
type Side int8

const (
	Empty Side = iota
	Black
	White
)

func (s Side) Opponent() Side {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// ParseSide accepts a color or a seat name.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "black", "first", "b":
		return Black, nil
	case "white", "second", "w":
		return White, nil
	}
	return Empty, fmt.Errorf("invalid role: %q", name)
}

// Move must be comparable, it is used as a map key by the searcher.
type Move interface {
	Side() Side
	String() string
}

type Legality int

const (
	Legal Legality = iota
	Illegal
)

type StateHash uint64

// State should be immutable - operations on State always return a new copy
type State interface {
	LegalMoves(side Side) []Move
	// Play returns the receiver unchanged together with Illegal when the move is rejected
	Play(move Move) (State, Legality)
	HasLegalMove(side Side) bool
	Hash() StateHash
	String() string
}
