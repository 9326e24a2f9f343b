package diplomacy

import "sort"

// ResolveBuilds adjudicates a Build phase. For each power the adjustment
// delta is owned supply centers minus units: positive deltas accept up to
// delta builds on vacant owned home centers (excess builds fail, unused
// builds are waived automatically); negative deltas require exactly -delta
// disbands, with any shortfall filled by the civil-disorder rule (fleets
// before armies, then by distance to home centers, then by province tag).
// A zero delta ignores every order from that power.
func ResolveBuilds(gs *GameState, orders []Order, m *DiplomacyMap) (*GameState, []Resolution) {
	next := gs.Clone()

	byPower := make(map[Power][]int, 7)
	for i, o := range orders {
		byPower[o.Power] = append(byPower[o.Power], i)
	}
	statuses := make([]Resolution, len(orders))
	for i, o := range orders {
		statuses[i] = Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "unprocessed"}
	}

	for _, power := range AllPowers() {
		delta := gs.SupplyCenterCount(power) - gs.UnitCount(power)
		idxs := byPower[power]

		switch {
		case delta > 0:
			resolvePowerBuilds(next, m, power, delta, idxs, orders, statuses)
		case delta < 0:
			resolvePowerDisbands(next, m, power, -delta, idxs, orders, statuses)
		default:
			for _, i := range idxs {
				statuses[i].Status = StatusVoid
				statuses[i].Reason = "no adjustment required"
			}
		}
	}

	next.Turn = NextTurn(next.Turn, false)
	return next, statuses
}

func resolvePowerBuilds(next *GameState, m *DiplomacyMap, power Power, delta int, idxs []int, orders []Order, statuses []Resolution) {
	used := 0
	for _, i := range idxs {
		o := orders[i]
		switch o.Type {
		case OrderWaive:
			if used >= delta {
				statuses[i] = Resolution{Order: o, Power: power, Status: StatusFails, Reason: "builds exhausted"}
				continue
			}
			used++
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusSucceeds}

		case OrderBuild:
			if used >= delta {
				statuses[i] = Resolution{Order: o, Power: power, Status: StatusFails, Reason: "builds exhausted"}
				continue
			}
			if reason := buildProblem(o, next, m); reason != "" {
				statuses[i] = Resolution{Order: o, Power: power, Status: StatusVoid, Reason: reason}
				continue
			}
			used++
			next.Units = append(next.Units, Unit{
				Type:     o.UnitType,
				Power:    power,
				Province: o.Location,
				Coast:    o.Coast,
			})
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusSucceeds}

		default:
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusVoid, Reason: "order type not legal in build phase"}
		}
	}
	// Unused builds are waived automatically; no resolution is fabricated
	// for them.
}

// buildProblem returns a non-empty reason when a build order is illegal
// against the evolving state (earlier accepted builds occupy provinces).
func buildProblem(o Order, gs *GameState, m *DiplomacyMap) string {
	prov := m.Provinces[o.Location]
	if prov == nil {
		return "province does not exist"
	}
	if !prov.IsSupplyCenter {
		return "not a supply center"
	}
	if prov.HomePower != o.Power {
		return "not a home supply center"
	}
	if gs.SupplyCenters[o.Location] != o.Power {
		return "supply center not currently owned"
	}
	if gs.UnitAt(o.Location) != nil {
		return "province is occupied"
	}
	if o.UnitType == Fleet && prov.Type == Land {
		return "cannot build fleet in inland province"
	}
	if o.UnitType == Fleet && len(prov.Coasts) > 0 && o.Coast == NoCoast {
		return "must specify coast for fleet build"
	}
	if o.UnitType == Army && o.Coast != NoCoast {
		return "armies do not take a coast"
	}
	return ""
}

func resolvePowerDisbands(next *GameState, m *DiplomacyMap, power Power, needed int, idxs []int, orders []Order, statuses []Resolution) {
	removed := make(map[string]bool, needed)
	done := 0
	for _, i := range idxs {
		o := orders[i]
		if o.Type != OrderDisband {
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusVoid, Reason: "order type not legal in build phase"}
			continue
		}
		unit := next.UnitAt(o.Location)
		if unit == nil || unit.Power != power {
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusVoid, Reason: "no unit of " + string(power) + " at " + o.Location}
			continue
		}
		if done >= needed {
			statuses[i] = Resolution{Order: o, Power: power, Status: StatusFails, Reason: "disbands exhausted"}
			continue
		}
		removed[o.Location] = true
		done++
		statuses[i] = Resolution{Order: o, Power: power, Status: StatusSucceeds}
		removeUnit(next, o.Location, power)
	}

	// Civil disorder: pick the remaining disbands deterministically.
	if done < needed {
		for _, u := range civilDisorderPicks(next, m, power, needed-done) {
			removeUnit(next, u.Province, power)
		}
	}
}

func removeUnit(gs *GameState, province string, power Power) {
	for i := range gs.Units {
		if gs.Units[i].Province == province && gs.Units[i].Power == power {
			gs.Units = append(gs.Units[:i], gs.Units[i+1:]...)
			return
		}
	}
}

// civilDisorderPicks orders a power's units for forced disbanding: fleets
// before armies, then greater distance to the nearest home supply center,
// then alphabetical province tag.
func civilDisorderPicks(gs *GameState, m *DiplomacyMap, power Power, count int) []Unit {
	units := gs.UnitsOf(power)
	if len(units) == 0 || count <= 0 {
		return nil
	}
	homes := HomeCenters(power)

	type candidate struct {
		unit Unit
		dist int
	}
	cands := make([]candidate, 0, len(units))
	for _, u := range units {
		cands = append(cands, candidate{unit: u, dist: minDistanceToHome(u.Province, homes, m)})
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.unit.Type != b.unit.Type {
			return a.unit.Type == Fleet
		}
		if a.dist != b.dist {
			return a.dist > b.dist
		}
		return a.unit.Province < b.unit.Province
	})

	if count > len(cands) {
		count = len(cands)
	}
	out := make([]Unit, 0, count)
	for _, c := range cands[:count] {
		out = append(out, c.unit)
	}
	return out
}

// minDistanceToHome computes the minimum BFS distance from a province to
// any home supply center, over all adjacencies regardless of unit type.
func minDistanceToHome(from string, homes []string, m *DiplomacyMap) int {
	if len(homes) == 0 {
		return 999
	}
	homeSet := make(map[string]bool, len(homes))
	for _, h := range homes {
		homeSet[h] = true
	}
	if homeSet[from] {
		return 0
	}

	visited := map[string]bool{from: true}
	queue := []string{from}
	dist := 0
	for len(queue) > 0 {
		dist++
		var nextQueue []string
		for _, prov := range queue {
			for _, adj := range m.Adjacencies[prov] {
				if visited[adj.To] {
					continue
				}
				if homeSet[adj.To] {
					return dist
				}
				visited[adj.To] = true
				nextQueue = append(nextQueue, adj.To)
			}
		}
		queue = nextQueue
	}
	return 999
}
