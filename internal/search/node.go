package search

import (
	"math"

	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// ExplorationC is the UCT exploration constant.
var ExplorationC = math.Sqrt2

// node is one position in the search tree. A node exclusively owns its
// children; the parent pointer is a back-reference used only for the
// backpropagation walk and never keeps anything alive on its own (the
// whole tree shares the root's lifetime, and there are no cycles).
type node struct {
	state  *diplomacy.GameState
	parent *node

	// Orders that produced this state from the parent, split by side.
	coalitionOrders []diplomacy.Order
	opponentOrders  []diplomacy.Order

	children []*node
	// Un-expanded coalition joint actions, seeded at node creation for
	// movement nodes. Expansion pops from the front.
	pending [][]diplomacy.Order

	visits   int
	value    float64
	squared  float64
	terminal bool
	hash     uint64
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// stdDev is the standard deviation of backpropagated values, used for the
// confidence label.
func (n *node) stdDev() float64 {
	if n.visits == 0 {
		return 0
	}
	mean := n.mean()
	variance := n.squared/float64(n.visits) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// bestChild picks the child maximizing UCT. A child with zero visits is
// chosen immediately.
func (n *node) bestChild(c float64) *node {
	var best *node
	bestScore := math.Inf(-1)
	logParent := math.Log(float64(n.visits))
	for _, child := range n.children {
		if child.visits == 0 {
			return child
		}
		score := child.mean() + c*math.Sqrt(logParent/float64(child.visits))
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// mostVisitedChild returns the child with the highest visit count, or nil.
func (n *node) mostVisitedChild() *node {
	var best *node
	for _, child := range n.children {
		if best == nil || child.visits > best.visits {
			best = child
		}
	}
	return best
}

// backpropagate walks from the node to the root accumulating the rollout
// value and its square.
func (n *node) backpropagate(value float64) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.visits++
		cur.value += value
		cur.squared += value * value
	}
}

// depth returns the node's distance from the root.
func (n *node) depth() int {
	d := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}
