package diplomacy

import "sort"

// MovementOptions enumerates the legal Movement-phase orders for every
// unit of a power. The result holds one option list per unit; a caller
// assembling a joint action picks exactly one order from each list. Every
// list starts with the unit's hold.
func MovementOptions(gs *GameState, power Power, m *DiplomacyMap) [][]Order {
	var all [][]Order
	for _, unit := range gs.Units {
		if unit.Power != power {
			continue
		}
		all = append(all, unitOptions(unit, gs, m))
	}
	return all
}

func unitOptions(unit Unit, gs *GameState, m *DiplomacyMap) []Order {
	isFleet := unit.Type == Fleet
	orders := []Order{{
		Type: OrderHold, UnitType: unit.Type, Power: unit.Power,
		Location: unit.Province, Coast: unit.Coast,
	}}

	// Direct moves.
	reach := moveDestinations(unit, m)
	for _, d := range reach {
		orders = append(orders, Order{
			Type: OrderMove, UnitType: unit.Type, Power: unit.Power,
			Location: unit.Province, Coast: unit.Coast,
			Target: d.Province, TargetCoast: d.Coast,
		})
	}

	// Convoyed moves for armies: any coastal province reachable through a
	// chain of fleet-occupied seas.
	if !isFleet {
		_, dests := convoyReach(gs, m, unit.Province)
		for _, d := range dests {
			orders = append(orders, Order{
				Type: OrderMove, UnitType: unit.Type, Power: unit.Power,
				Location: unit.Province, Coast: unit.Coast,
				Target: d, ViaConvoy: true,
			})
		}
	}

	// Supports: for every destination this unit could move to, support any
	// unit holding there, and support any unit that can itself reach it.
	// Deterministic iteration order matters: option order feeds seeded
	// sampling.
	seen := make(map[string]bool, len(reach))
	var destList []string
	for _, d := range reach {
		if !seen[d.Province] {
			seen[d.Province] = true
			destList = append(destList, d.Province)
		}
	}
	for _, dest := range destList {
		if held := gs.UnitAt(dest); held != nil && held.Province != unit.Province {
			orders = append(orders, Order{
				Type: OrderSupport, UnitType: unit.Type, Power: unit.Power,
				Location: unit.Province, Coast: unit.Coast,
				AuxLoc: held.Province, AuxUnitType: held.Type,
			})
		}
		for _, other := range gs.Units {
			if other.Province == unit.Province || other.Province == dest {
				continue
			}
			if !canReach(other, dest, gs, m) {
				continue
			}
			orders = append(orders, Order{
				Type: OrderSupport, UnitType: unit.Type, Power: unit.Power,
				Location: unit.Province, Coast: unit.Coast,
				AuxLoc: other.Province, AuxTarget: dest, AuxUnitType: other.Type,
			})
		}
	}

	// Convoys: a sea fleet may carry any army whose convoy chains pass
	// through this sea.
	if isFleet && m.IsSea(unit.Province) {
		for _, army := range gs.Units {
			if army.Type != Army {
				continue
			}
			seas, dests := convoyReach(gs, m, army.Province)
			if !containsString(seas, unit.Province) {
				continue
			}
			for _, d := range dests {
				orders = append(orders, Order{
					Type: OrderConvoy, UnitType: Fleet, Power: unit.Power,
					Location: unit.Province, Coast: unit.Coast,
					AuxLoc: army.Province, AuxTarget: d, AuxUnitType: Army,
				})
			}
		}
	}

	return orders
}

// moveDestinations lists the locations a unit can move to in one step,
// enumerating each reachable coast of split-coast destinations for fleets.
func moveDestinations(unit Unit, m *DiplomacyMap) []Location {
	isFleet := unit.Type == Fleet
	var out []Location
	for _, prov := range m.ProvincesAdjacentTo(unit.Province, unit.Coast, isFleet) {
		p := m.Provinces[prov]
		if p == nil {
			continue
		}
		if isFleet && p.Type == Land {
			continue
		}
		if !isFleet && p.Type == Sea {
			continue
		}
		if isFleet && m.HasCoasts(prov) {
			for _, c := range m.FleetCoastsTo(unit.Province, unit.Coast, prov) {
				out = append(out, Location{Province: prov, Coast: c})
			}
			continue
		}
		out = append(out, Location{Province: prov})
	}
	return out
}

// canReach reports whether a unit can arrive at dest in one step, directly
// or (for armies) by some possible convoy.
func canReach(u Unit, dest string, gs *GameState, m *DiplomacyMap) bool {
	isFleet := u.Type == Fleet
	p := m.Provinces[dest]
	if p == nil {
		return false
	}
	if isFleet && p.Type == Land {
		return false
	}
	if !isFleet && p.Type == Sea {
		return false
	}
	if m.Adjacent(u.Province, u.Coast, dest, NoCoast, isFleet) {
		return true
	}
	return !isFleet && canBeConvoyed(u.Province, dest, gs, m)
}

// convoyReach runs a breadth-first search from a coastal province through
// fleet-occupied seas, returning the seas visited and the coastal
// provinces a convoyed army could land on.
func convoyReach(gs *GameState, m *DiplomacyMap, from string) (seas, dests []string) {
	if p := m.Provinces[from]; p == nil || p.Type == Sea {
		return nil, nil
	}
	visited := make(map[string]bool)
	destSet := make(map[string]bool)
	var queue []string

	for _, adj := range m.Adjacencies[from] {
		if !adj.FleetOK || !m.IsSea(adj.To) || visited[adj.To] {
			continue
		}
		if u := gs.UnitAt(adj.To); u != nil && u.Type == Fleet {
			visited[adj.To] = true
			queue = append(queue, adj.To)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		seas = append(seas, cur)
		for _, adj := range m.Adjacencies[cur] {
			if !adj.FleetOK {
				continue
			}
			if m.IsSea(adj.To) {
				if visited[adj.To] {
					continue
				}
				if u := gs.UnitAt(adj.To); u != nil && u.Type == Fleet {
					visited[adj.To] = true
					queue = append(queue, adj.To)
				}
				continue
			}
			if adj.To != from {
				destSet[adj.To] = true
			}
		}
	}

	dests = make([]string, 0, len(destSet))
	for d := range destSet {
		dests = append(dests, d)
	}
	sort.Strings(dests)
	sort.Strings(seas)
	return seas, dests
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// RetreatOptions enumerates the Retreat-phase options for a power: one
// list per dislodged unit, holding a retreat per legal destination plus a
// disband.
func RetreatOptions(gs *GameState, power Power, m *DiplomacyMap) [][]Order {
	var all [][]Order
	for _, d := range gs.Dislodged {
		if d.Unit.Power != power {
			continue
		}
		opts := make([]Order, 0, len(d.Retreats)+1)
		for _, loc := range d.Retreats {
			opts = append(opts, Order{
				Type: OrderRetreat, UnitType: d.Unit.Type, Power: power,
				Location: d.DislodgedFrom, Coast: d.Unit.Coast,
				Target: loc.Province, TargetCoast: loc.Coast,
			})
		}
		opts = append(opts, Order{
			Type: OrderDisband, UnitType: d.Unit.Type, Power: power,
			Location: d.DislodgedFrom, Coast: d.Unit.Coast,
		})
		all = append(all, opts)
	}
	return all
}

// BuildOptions enumerates the Build-phase options for a power as a single
// option list: build orders (every vacant owned home supply center, both
// unit kinds where legal, each coast for split-coast fleets) plus a waive
// when the power is owed builds, or disband orders when it is over its
// supply-center count. The sampler chooses the right multiplicity.
func BuildOptions(gs *GameState, power Power, m *DiplomacyMap) [][]Order {
	delta := gs.SupplyCenterCount(power) - gs.UnitCount(power)
	if delta == 0 {
		return nil
	}

	if delta < 0 {
		var opts []Order
		for _, u := range gs.UnitsOf(power) {
			opts = append(opts, Order{
				Type: OrderDisband, UnitType: u.Type, Power: power,
				Location: u.Province, Coast: u.Coast,
			})
		}
		if len(opts) == 0 {
			return nil
		}
		return [][]Order{opts}
	}

	var opts []Order
	for _, home := range HomeCenters(power) {
		if gs.SupplyCenters[home] != power || gs.UnitAt(home) != nil {
			continue
		}
		prov := m.Provinces[home]
		opts = append(opts, Order{Type: OrderBuild, UnitType: Army, Power: power, Location: home})
		if prov.Type == Coastal {
			if coasts := m.ValidCoasts(home); len(coasts) > 0 {
				for _, c := range coasts {
					opts = append(opts, Order{Type: OrderBuild, UnitType: Fleet, Power: power, Location: home, Coast: c})
				}
			} else {
				opts = append(opts, Order{Type: OrderBuild, UnitType: Fleet, Power: power, Location: home})
			}
		}
	}
	opts = append(opts, Order{Type: OrderWaive, Power: power})
	return [][]Order{opts}
}
