package search

import (
	"sync/atomic"
	"time"

	"github.com/FTWinston/Stabalyzer/internal/eval"
	"github.com/FTWinston/Stabalyzer/internal/sampler"
	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// Config carries the tunable search parameters.
type Config struct {
	MaxDepth   int           // rollout depth in movement steps
	Samples    int           // coalition joint actions queued per movement node
	SearchTime time.Duration // wall-clock budget
	Seed       uint64        // base PRNG seed
	Threads    int           // parallel workers (1 = inline)
	TableSize  int           // transposition table capacity (0 = default)
	// Simulations caps iterations per worker when positive. Searches are
	// normally time-bounded; a fixed iteration budget makes single-worker
	// runs reproducible bit for bit.
	Simulations int
}

// DefaultSamples is the number of joint actions queued per movement node.
const DefaultSamples = 30

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 6
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.SearchTime <= 0 {
		c.SearchTime = 60 * time.Second
	}
	if c.Threads <= 0 {
		c.Threads = 1
	}
	return c
}

// MCTS is a single-threaded Monte-Carlo tree search over coalition joint
// actions. Each search worker owns one MCTS with its own PRNG and
// transposition table; nothing here is shared.
type MCTS struct {
	cfg        Config
	coalition  eval.Coalition
	priorities []eval.Priority
	m          *diplomacy.DiplomacyMap
	sampler    *sampler.Sampler
	table      *Table
	cancel     *atomic.Bool

	root        *node
	simulations int
}

// NewMCTS creates a search instance with a deterministic seed. The cancel
// flag is polled at iteration boundaries; it may be nil.
func NewMCTS(cfg Config, coalition eval.Coalition, priorities []eval.Priority, m *diplomacy.DiplomacyMap, cancel *atomic.Bool) *MCTS {
	cfg = cfg.withDefaults()
	return &MCTS{
		cfg:        cfg,
		coalition:  coalition,
		priorities: priorities,
		m:          m,
		sampler:    sampler.New(cfg.Seed, m),
		table:      NewTable(cfg.TableSize),
		cancel:     cancel,
	}
}

// Run searches from the given state until the deadline passes or the
// cancel flag is set, then ranks the root's children. A partially searched
// tree still ranks.
func (s *MCTS) Run(gs *diplomacy.GameState, deadline time.Time) *WorkerResult {
	s.root = s.newNode(gs, nil, nil, nil)
	s.simulations = 0

	for {
		if s.cancel != nil && s.cancel.Load() {
			break
		}
		if s.cfg.Simulations > 0 && s.simulations >= s.cfg.Simulations {
			break
		}
		if !time.Now().Before(deadline) {
			break
		}
		leaf := s.selectAndExpand()
		value := s.rollout(leaf)
		leaf.backpropagate(value)
		s.recordPath(leaf)
		s.simulations++
	}

	return &WorkerResult{
		Moves:       s.rank(),
		Table:       s.table,
		Simulations: s.simulations,
	}
}

// newNode builds a tree node; movement nodes are seeded with a queue of
// coalition joint actions to expand.
func (s *MCTS) newNode(gs *diplomacy.GameState, parent *node, coalitionOrders, opponentOrders []diplomacy.Order) *node {
	f := eval.Evaluate(gs, s.coalition, s.priorities)
	n := &node{
		state:           gs,
		parent:          parent,
		coalitionOrders: coalitionOrders,
		opponentOrders:  opponentOrders,
		terminal:        f.Win || f.Lost,
		hash:            diplomacy.Hash(gs, s.m),
	}
	if !n.terminal && gs.Turn.Phase == diplomacy.PhaseMovement {
		n.pending = make([][]diplomacy.Order, 0, s.cfg.Samples)
		for i := 0; i < s.cfg.Samples; i++ {
			n.pending = append(n.pending, s.sampler.Joint(gs, s.coalition.Powers))
		}
	}
	return n
}

// selectAndExpand descends by UCT until it reaches a terminal node, a node
// with un-expanded joint actions (expanding one), or a retreat/build
// pass-through (expanding its single cached child). The tree only
// branches in movement phases.
func (s *MCTS) selectAndExpand() *node {
	cur := s.root
	for {
		if cur.terminal {
			return cur
		}
		if cur.state.Turn.Phase != diplomacy.PhaseMovement {
			if len(cur.children) == 0 {
				return s.expandPassThrough(cur)
			}
			cur = cur.children[0]
			continue
		}
		if len(cur.pending) > 0 {
			return s.expandMovement(cur)
		}
		if len(cur.children) == 0 {
			return cur
		}
		cur = cur.bestChild(ExplorationC)
	}
}

// expandMovement pops one sampled coalition joint action, composes it with
// freshly sampled opponent joint actions, adjudicates, and links the child.
func (s *MCTS) expandMovement(n *node) *node {
	coalitionOrders := n.pending[0]
	n.pending = n.pending[1:]

	var opponentOrders []diplomacy.Order
	for _, p := range s.coalition.Opponents() {
		opponentOrders = append(opponentOrders, s.sampler.Joint(n.state, []diplomacy.Power{p})...)
	}

	all := make([]diplomacy.Order, 0, len(coalitionOrders)+len(opponentOrders))
	all = append(all, coalitionOrders...)
	all = append(all, opponentOrders...)
	next, _ := diplomacy.Adjudicate(n.state, all, s.m)

	child := s.newNode(next, n, coalitionOrders, opponentOrders)
	n.children = append(n.children, child)
	return child
}

// expandPassThrough auto-samples retreat/build orders for every power and
// caches the single resulting child.
func (s *MCTS) expandPassThrough(n *node) *node {
	var coalitionOrders, opponentOrders []diplomacy.Order
	for _, p := range diplomacy.AllPowers() {
		orders := s.sampler.Joint(n.state, []diplomacy.Power{p})
		if s.coalition.Contains(p) {
			coalitionOrders = append(coalitionOrders, orders...)
		} else {
			opponentOrders = append(opponentOrders, orders...)
		}
	}
	all := make([]diplomacy.Order, 0, len(coalitionOrders)+len(opponentOrders))
	all = append(all, coalitionOrders...)
	all = append(all, opponentOrders...)
	next, _ := diplomacy.Adjudicate(n.state, all, s.m)

	child := s.newNode(next, n, coalitionOrders, opponentOrders)
	n.children = append(n.children, child)
	return child
}

// rollout plays random coherent orders for every power for up to MaxDepth
// movement steps and returns the normalized fitness of the final state in
// [0, 1]. Terminal wins map to 1, terminal losses to 0.
func (s *MCTS) rollout(start *node) float64 {
	gs := start.state
	for steps := 0; steps < s.cfg.MaxDepth; {
		f := eval.Evaluate(gs, s.coalition, s.priorities)
		if f.Win {
			return 1
		}
		if f.Lost {
			return 0
		}

		wasMovement := gs.Turn.Phase == diplomacy.PhaseMovement
		var orders []diplomacy.Order
		for _, p := range diplomacy.AllPowers() {
			orders = append(orders, s.sampler.Joint(gs, []diplomacy.Power{p})...)
		}
		gs, _ = diplomacy.Adjudicate(gs, orders, s.m)
		if wasMovement {
			steps++
		}
	}
	return normalizeFitness(eval.Evaluate(gs, s.coalition, s.priorities))
}

func normalizeFitness(f eval.Fitness) float64 {
	if f.Win {
		return 1
	}
	if f.Lost {
		return 0
	}
	v := float64(f.Score) / float64(eval.MaxRawScore)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// recordPath stores the statistics of every node on the completed
// trajectory in the transposition table.
func (s *MCTS) recordPath(leaf *node) {
	for cur := leaf; cur != nil; cur = cur.parent {
		s.table.Put(Entry{
			Hash:   cur.hash,
			Depth:  cur.depth(),
			Visits: cur.visits,
			Value:  cur.value,
		})
	}
}
