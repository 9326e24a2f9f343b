// Package sampler draws coherent joint actions for sets of powers. The
// exact joint order space is O(options^units) and is never enumerated;
// instead one plausible order per unit is sampled with heuristic soft-max
// weighting, then upgraded with supports and convoys that reference real
// decisions from the same pass.
package sampler

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// Primary action scores. The ladder is deliberately small so soft-max
// exponentials stay well inside float range.
const (
	scoreEnemyCenter   = 5.0
	scoreNeutralCenter = 4.0
	scoreMove          = 1.0
	scoreHoldOnCenter  = 0.5
	scoreHold          = 0.0
	scorePartnerCenter = -2.0
)

// Coordination upgrade scores.
const (
	scoreSupportAttackCenter = 6.0
	scoreSupportHoldVital    = 5.0
	scoreSupportMove         = 3.0
	scoreConvoyMatch         = 3.0
	scoreSupportHoldEdge     = 2.5
	scoreSupportHoldIdle     = 0.1
)

// Sampler draws joint actions using a seeded PRNG. It is not safe for
// concurrent use; each search worker owns its own Sampler.
type Sampler struct {
	rng *rand.Rand
	src rand.Source
	m   *diplomacy.DiplomacyMap
}

// New creates a sampler with a deterministic seed.
func New(seed uint64, m *diplomacy.DiplomacyMap) *Sampler {
	src := rand.NewSource(seed)
	return &Sampler{rng: rand.New(src), src: src, m: m}
}

// Joint samples one coherent joint action for the given powers in the
// state's current phase: one order per unit (per dislodged unit in
// Retreat, per adjustment in Build).
func (s *Sampler) Joint(gs *diplomacy.GameState, powers []diplomacy.Power) []diplomacy.Order {
	switch gs.Turn.Phase {
	case diplomacy.PhaseRetreat:
		return s.retreats(gs, powers)
	case diplomacy.PhaseBuild:
		return s.builds(gs, powers)
	default:
		return s.movement(gs, powers)
	}
}

// decision carries one unit's evolving choice through the sampling pass.
type decision struct {
	unit    diplomacy.Unit
	order   diplomacy.Order
	score   float64
	options []diplomacy.Order
}

func (s *Sampler) movement(gs *diplomacy.GameState, powers []diplomacy.Power) []diplomacy.Order {
	friendly := make(map[diplomacy.Power]bool, len(powers))
	for _, p := range powers {
		friendly[p] = true
	}

	var decisions []*decision
	for _, p := range powers {
		units := gs.UnitsOf(p)
		optionLists := diplomacy.MovementOptions(gs, p, s.m)
		for i, opts := range optionLists {
			decisions = append(decisions, &decision{unit: units[i], options: opts})
		}
	}

	// Phase 1: primary Move/Hold per unit. Destinations claimed by an
	// earlier friendly unit are filtered out, so no two moves in one
	// sample collide.
	claimed := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		var cands []diplomacy.Order
		var scores []float64
		for _, o := range d.options {
			switch o.Type {
			case diplomacy.OrderHold:
				cands = append(cands, o)
				scores = append(scores, s.primaryScore(gs, friendly, o))
			case diplomacy.OrderMove:
				if claimed[o.Target] {
					continue
				}
				cands = append(cands, o)
				scores = append(scores, s.primaryScore(gs, friendly, o))
			}
		}
		if len(cands) == 0 {
			d.order = holdOrder(d.unit)
			d.score = scoreHold
			continue
		}
		idx := s.pickWeighted(scores)
		d.order = cands[idx]
		d.score = scores[idx]
		if d.order.Type == diplomacy.OrderMove {
			claimed[d.order.Target] = true
		}
	}

	// Phase 1b: a pair of moves that swap provinces over land would bounce
	// in adjudication; the lower-scored leg holds instead.
	s.fixSwaps(decisions, claimed)

	// Phase 2: upgrade units to supports/convoys that reference another
	// unit's actual decision.
	s.coordinate(gs, decisions, friendly)

	orders := make([]diplomacy.Order, 0, len(decisions))
	for _, d := range decisions {
		orders = append(orders, d.order)
	}
	return orders
}

func (s *Sampler) primaryScore(gs *diplomacy.GameState, friendly map[diplomacy.Power]bool, o diplomacy.Order) float64 {
	if o.Type == diplomacy.OrderHold {
		if owner, isCenter := gs.SupplyCenters[o.Location]; isCenter && owner == o.Power {
			return scoreHoldOnCenter
		}
		return scoreHold
	}

	owner, isCenter := gs.SupplyCenters[o.Target]
	if !isCenter {
		return scoreMove
	}
	switch {
	case owner == diplomacy.Neutral:
		return scoreNeutralCenter
	case owner == o.Power:
		return scoreMove
	case friendly[owner]:
		return scorePartnerCenter
	default:
		return scoreEnemyCenter
	}
}

func (s *Sampler) fixSwaps(decisions []*decision, claimed map[string]bool) {
	for i, a := range decisions {
		if a.order.Type != diplomacy.OrderMove || a.order.ViaConvoy {
			continue
		}
		for _, b := range decisions[i+1:] {
			if b.order.Type != diplomacy.OrderMove || b.order.ViaConvoy {
				continue
			}
			if a.order.Target != b.unit.Province || b.order.Target != a.unit.Province {
				continue
			}
			loser := a
			if b.score < a.score {
				loser = b
			}
			delete(claimed, loser.order.Target)
			loser.order = holdOrder(loser.unit)
			loser.score = scoreHold
		}
	}
}

func (s *Sampler) coordinate(gs *diplomacy.GameState, decisions []*decision, friendly map[diplomacy.Power]bool) {
	// Current decision per friendly province.
	byProvince := make(map[string]*decision, len(decisions))
	for _, d := range decisions {
		byProvince[d.unit.Province] = d
	}

	// Units that may still receive a support-hold: stationary friends.
	supportable := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		if d.order.Type == diplomacy.OrderHold {
			supportable[d.unit.Province] = true
		}
	}
	// Decisions already referenced by an issued support/convoy must not be
	// abandoned by a later upgrade.
	referenced := make(map[string]bool, len(decisions))

	for _, d := range decisions {
		if referenced[d.unit.Province] {
			continue
		}

		cands := []diplomacy.Order{d.order}
		scores := []float64{d.score}

		for _, o := range d.options {
			switch o.Type {
			case diplomacy.OrderSupport:
				target, ok := byProvince[o.AuxLoc]
				if !ok || target == d {
					continue
				}
				if o.IsSupportHold() {
					if target.order.Type != diplomacy.OrderHold || !supportable[o.AuxLoc] {
						continue
					}
					cands = append(cands, o)
					scores = append(scores, s.supportHoldScore(gs, friendly, o.AuxLoc))
					continue
				}
				if target.order.Type != diplomacy.OrderMove || target.order.Target != o.AuxTarget {
					continue
				}
				cands = append(cands, o)
				scores = append(scores, s.supportMoveScore(gs, friendly, o.AuxTarget))

			case diplomacy.OrderConvoy:
				target, ok := byProvince[o.AuxLoc]
				if !ok || target == d {
					continue
				}
				if target.order.Type != diplomacy.OrderMove || !target.order.ViaConvoy || target.order.Target != o.AuxTarget {
					continue
				}
				cands = append(cands, o)
				scores = append(scores, scoreConvoyMatch)
			}
		}

		if len(cands) == 1 {
			continue
		}
		idx := s.pickWeighted(scores)
		if idx == 0 {
			continue
		}
		picked := cands[idx]
		d.order = picked
		d.score = scores[idx]
		// An upgraded unit is no longer a useful support-hold target;
		// mutual support-holds are tactically dead.
		delete(supportable, d.unit.Province)
		referenced[picked.AuxLoc] = true
	}
}

func (s *Sampler) supportHoldScore(gs *diplomacy.GameState, friendly map[diplomacy.Power]bool, province string) float64 {
	threatened := s.threatened(gs, friendly, province)
	owner, isCenter := gs.SupplyCenters[province]
	if threatened && isCenter && friendly[owner] {
		return scoreSupportHoldVital
	}
	if threatened {
		return scoreSupportHoldEdge
	}
	return scoreSupportHoldIdle
}

func (s *Sampler) supportMoveScore(gs *diplomacy.GameState, friendly map[diplomacy.Power]bool, dest string) float64 {
	owner, isCenter := gs.SupplyCenters[dest]
	if isCenter && owner != diplomacy.Neutral && !friendly[owner] {
		return scoreSupportAttackCenter
	}
	return scoreSupportMove
}

// threatened reports whether any enemy unit could move into the province.
func (s *Sampler) threatened(gs *diplomacy.GameState, friendly map[diplomacy.Power]bool, province string) bool {
	for _, u := range gs.Units {
		if friendly[u.Power] {
			continue
		}
		if s.m.Adjacent(u.Province, u.Coast, province, diplomacy.NoCoast, u.Type == diplomacy.Fleet) {
			return true
		}
	}
	return false
}

func (s *Sampler) retreats(gs *diplomacy.GameState, powers []diplomacy.Power) []diplomacy.Order {
	var orders []diplomacy.Order
	for _, p := range powers {
		for _, opts := range diplomacy.RetreatOptions(gs, p, s.m) {
			orders = append(orders, opts[s.rng.Intn(len(opts))])
		}
	}
	return orders
}

func (s *Sampler) builds(gs *diplomacy.GameState, powers []diplomacy.Power) []diplomacy.Order {
	var orders []diplomacy.Order
	for _, p := range powers {
		delta := gs.SupplyCenterCount(p) - gs.UnitCount(p)
		lists := diplomacy.BuildOptions(gs, p, s.m)
		if delta == 0 || len(lists) == 0 {
			continue
		}
		opts := lists[0]

		if delta < 0 {
			// Forced disbands: uniform distinct picks.
			for _, i := range s.rng.Perm(len(opts))[:min(-delta, len(opts))] {
				orders = append(orders, opts[i])
			}
			continue
		}

		// Builds: armies before fleets, distinct locations, waive leftovers.
		var armies, fleets []diplomacy.Order
		for _, o := range opts {
			switch {
			case o.Type != diplomacy.OrderBuild:
			case o.UnitType == diplomacy.Army:
				armies = append(armies, o)
			default:
				fleets = append(fleets, o)
			}
		}
		s.shuffleOrders(armies)
		s.shuffleOrders(fleets)

		used := make(map[string]bool, delta)
		placed := 0
		for _, o := range append(armies, fleets...) {
			if placed >= delta || used[o.Location] {
				continue
			}
			used[o.Location] = true
			placed++
			orders = append(orders, o)
		}
		for ; placed < delta; placed++ {
			orders = append(orders, diplomacy.Order{Type: diplomacy.OrderWaive, Power: p})
		}
	}
	return orders
}

func (s *Sampler) shuffleOrders(orders []diplomacy.Order) {
	s.rng.Shuffle(len(orders), func(i, j int) {
		orders[i], orders[j] = orders[j], orders[i]
	})
}

// pickWeighted draws an index with probability proportional to
// exp(score), stabilized by subtracting the maximum score first.
func (s *Sampler) pickWeighted(scores []float64) int {
	if len(scores) == 1 {
		return 0
	}
	maxScore := math.Inf(-1)
	for _, sc := range scores {
		if sc > maxScore {
			maxScore = sc
		}
	}
	weights := make([]float64, len(scores))
	for i, sc := range scores {
		weights[i] = math.Exp(sc - maxScore)
	}
	w := sampleuv.NewWeighted(weights, s.src)
	idx, ok := w.Take()
	if !ok {
		return 0
	}
	return idx
}

func holdOrder(u diplomacy.Unit) diplomacy.Order {
	return diplomacy.Order{
		Type: diplomacy.OrderHold, UnitType: u.Type, Power: u.Power,
		Location: u.Province, Coast: u.Coast,
	}
}
