package searcher

import (
	"math"

	"nogo/game"
)

// node is a position reached by move from its parent. Children are owned
// exclusively by their parent; there are no back pointers.
type node struct {
	side     game.Side // Side to move from this position
	move     game.Move // nil at the root
	visits   int
	wins     float64 // Always from the engine's own perspective
	terminal bool
	children map[game.Move]*node
	order    []game.Move // Insertion order, for deterministic iteration
}

func newNode(side game.Side, move game.Move) *node {
	return &node{
		side:     side,
		move:     move,
		children: map[game.Move]*node{},
	}
}

func (n *node) hasChild(move game.Move) bool {
	_, ok := n.children[move]
	return ok
}

func (n *node) child(move game.Move) *node {
	return n.children[move]
}

// addChild creates the node for move, to be played by the opponent of n.side.
func (n *node) addChild(move game.Move) *node {
	if child, ok := n.children[move]; ok {
		return child
	}
	child := newNode(n.side.Opponent(), move)
	n.children[move] = child
	n.order = append(n.order, move)
	return child
}

// record folds the summed result of rollouts playouts into the node.
func (n *node) record(result float64, rollouts int) {
	n.wins += result
	n.visits += rollouts
}

// markTerminal records rollouts visits of a position where n.side cannot move.
// The score is overwritten so the mean is exactly the proven outcome.
func (n *node) markTerminal(outcome float64, rollouts int) {
	if len(n.children) > 0 {
		panic("terminal node cannot have children")
	}
	n.terminal = true
	n.visits += rollouts
	n.wins = outcome * float64(n.visits)
}

func (n *node) winRate() float64 {
	if n.visits == 0 {
		panic("cannot compute win rate: 0 visits")
	}
	return n.wins / float64(n.visits)
}

// mostVisited returns the child move with the highest visit count.
func (n *node) mostVisited() (game.Move, bool) {
	var best game.Move
	maxVisits := -1
	for _, move := range n.order {
		if v := n.children[move].visits; v > maxVisits {
			maxVisits = v
			best = move
		}
	}
	return best, best != nil
}

// highestWinRate returns the visited child move that is best for n.side.
func (n *node) highestWinRate(self game.Side) (game.Move, bool) {
	var best game.Move
	maxRate := math.Inf(-1)
	for _, move := range n.order {
		child := n.children[move]
		if child.visits == 0 {
			continue
		}
		rate := perspective(n.side, self) * child.winRate()
		if rate > maxRate {
			maxRate = rate
			best = move
		}
	}
	return best, best != nil
}

// leaders returns the two highest child visit counts and the leading move.
func (n *node) leaders() (most, second int, leader game.Move) {
	for _, move := range n.order {
		v := n.children[move].visits
		switch {
		case v > most:
			second = most
			most = v
			leader = move
		case v > second:
			second = v
		}
	}
	return most, second, leader
}

// perspective is +1 when side is the engine's own side and -1 otherwise.
func perspective(side, self game.Side) float64 {
	if side == self {
		return 1
	}
	return -1
}

// tree owns the root. Moving the root drops every node outside the new root's subtree.
type tree struct {
	root *node
}

func newTree(side game.Side) *tree {
	return &tree{root: newNode(side, nil)}
}

// moveRoot reuses the subtree under move, creating an empty one if move was never explored.
func (t *tree) moveRoot(move game.Move) {
	t.root = t.root.addChild(move)
}

func (t *tree) reset(side game.Side) {
	t.root = newNode(side, nil)
}

// size counts the nodes reachable from the root.
func (t *tree) size() int {
	count := 0
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return count
}
