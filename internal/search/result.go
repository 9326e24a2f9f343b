package search

import (
	"sort"
	"strings"
	"time"

	"github.com/FTWinston/Stabalyzer/internal/eval"
	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// TopMoves is how many ranked candidates a search returns.
const TopMoves = 3

// Confidence labels how trustworthy a candidate's expected value is,
// from its visit count and the standard deviation of its rollout values.
type Confidence struct {
	Level  string
	Visits int
	StdDev float64
}

func confidenceFor(visits int, stdDev float64) Confidence {
	level := "Low"
	switch {
	case visits > 1000 && stdDev < 0.15:
		level = "High"
	case visits > 500 || stdDev < 0.25:
		level = "Medium"
	}
	return Confidence{Level: level, Visits: visits, StdDev: stdDev}
}

// PredictedTurn is one step of a candidate's forecast line: the movement
// turn played, the state it produced, and both sides' orders.
type PredictedTurn struct {
	Turn            diplomacy.Turn
	State           *diplomacy.GameState
	CoalitionOrders []diplomacy.Order
	OpponentOrders  []diplomacy.Order
}

// RankedMove is one recommended coalition order set.
type RankedMove struct {
	Rank            int
	CoalitionOrders []diplomacy.Order
	OpponentOrders  []diplomacy.Order
	PredictedTurns  []PredictedTurn
	Fitness         eval.Fitness
	Score           int     // immediate fitness score of the resulting state
	ExpectedValue   float64 // mean rollout value in [0, 1]
	Confidence      Confidence
}

// WorkerResult is what a single search worker sends back.
type WorkerResult struct {
	Moves       []RankedMove
	Table       *Table
	Simulations int
}

// Result is the merged outcome of an analysis.
type Result struct {
	ID          string
	Moves       []RankedMove
	Simulations int
	Elapsed     time.Duration
	TableSize   int
}

// rank orders the root's visited children by mean value and extracts the
// top candidates with their predicted-turn trails.
func (s *MCTS) rank() []RankedMove {
	if s.root == nil {
		return nil
	}
	children := make([]*node, 0, len(s.root.children))
	for _, c := range s.root.children {
		if c.visits > 0 {
			children = append(children, c)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].mean() > children[j].mean()
	})
	if len(children) > TopMoves {
		children = children[:TopMoves]
	}

	moves := make([]RankedMove, 0, len(children))
	for i, c := range children {
		f := eval.Evaluate(c.state, s.coalition, s.priorities)
		moves = append(moves, RankedMove{
			Rank:            i + 1,
			CoalitionOrders: c.coalitionOrders,
			OpponentOrders:  c.opponentOrders,
			PredictedTurns:  s.trail(c),
			Fitness:         f,
			Score:           f.Score,
			ExpectedValue:   c.mean(),
			Confidence:      confidenceFor(c.visits, c.stdDev()),
		})
	}
	return moves
}

// trail follows the most-visited child chain from a root child, emitting
// one entry per movement turn along the path.
func (s *MCTS) trail(c *node) []PredictedTurn {
	var out []PredictedTurn
	parentTurn := s.root.state.Turn
	for cur := c; cur != nil; cur = cur.mostVisitedChild() {
		if parentTurn.Phase == diplomacy.PhaseMovement {
			out = append(out, PredictedTurn{
				Turn:            parentTurn,
				State:           cur.state,
				CoalitionOrders: cur.coalitionOrders,
				OpponentOrders:  cur.opponentOrders,
			})
		}
		parentTurn = cur.state.Turn
	}
	return out
}

// Fingerprint canonically identifies a coalition order set so equivalent
// candidates found by different workers can be merged: one token per
// order, sorted.
func Fingerprint(orders []diplomacy.Order) string {
	tokens := make([]string, 0, len(orders))
	for _, o := range orders {
		var b strings.Builder
		b.WriteString(o.Type.String())
		b.WriteByte(':')
		b.WriteString(o.Location)
		if o.Target != "" {
			b.WriteByte('-')
			b.WriteString(o.Target)
			if o.TargetCoast != diplomacy.NoCoast {
				b.WriteByte('/')
				b.WriteString(string(o.TargetCoast))
			}
		}
		if o.AuxLoc != "" {
			b.WriteByte('~')
			b.WriteString(o.AuxLoc)
			if o.AuxTarget != "" {
				b.WriteByte('-')
				b.WriteString(o.AuxTarget)
			}
		}
		if o.Type == diplomacy.OrderWaive || o.Type == diplomacy.OrderBuild {
			b.WriteString(string(o.Power))
		}
		tokens = append(tokens, b.String())
	}
	sort.Strings(tokens)
	return strings.Join(tokens, ";")
}
