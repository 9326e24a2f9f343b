package diplomacy

// ResolveRetreats adjudicates a Retreat phase. Each Retreat order is
// checked against its dislodged unit's legal retreat set; two or more
// retreats into the same province annihilate every contestant; Disband and
// absence of an order both remove the unit. Supply-center ownership
// updates after Fall retreats.
func ResolveRetreats(gs *GameState, orders []Order, m *DiplomacyMap) (*GameState, []Resolution) {
	resolutions := make([]Resolution, 0, len(orders))

	dislodgedAt := func(loc string, power Power) *DislodgedUnit {
		for i := range gs.Dislodged {
			d := &gs.Dislodged[i]
			if d.DislodgedFrom == loc && d.Unit.Power == power {
				return d
			}
		}
		return nil
	}

	type pendingRetreat struct {
		orderIdx int
		unit     Unit
		target   Location
	}
	var pending []pendingRetreat
	ordered := make(map[string]bool, len(orders))

	for _, o := range orders {
		switch o.Type {
		case OrderDisband:
			d := dislodgedAt(o.Location, o.Power)
			if d == nil {
				resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "no dislodged unit at " + o.Location})
				continue
			}
			if ordered[o.Location] {
				resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "duplicate order for unit"})
				continue
			}
			ordered[o.Location] = true
			resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusSucceeds})

		case OrderRetreat:
			d := dislodgedAt(o.Location, o.Power)
			if d == nil {
				resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "no dislodged unit at " + o.Location})
				continue
			}
			if ordered[o.Location] {
				resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "duplicate order for unit"})
				continue
			}
			target := Location{Province: o.Target, Coast: o.TargetCoast}
			legal := false
			for _, loc := range d.Retreats {
				if loc.Matches(target) {
					target = loc // adopt the stipulated coast
					legal = true
					break
				}
			}
			if !legal {
				resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "illegal retreat destination " + o.Target})
				ordered[o.Location] = true
				continue
			}
			ordered[o.Location] = true
			pending = append(pending, pendingRetreat{orderIdx: len(resolutions), unit: d.Unit, target: target})
			resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusSucceeds})

		default:
			resolutions = append(resolutions, Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "order type not legal in retreat phase"})
		}
	}

	// Standoff: multiple retreats into one province destroy all of them.
	targetCounts := make(map[string]int, len(pending))
	for _, p := range pending {
		targetCounts[p.target.Province]++
	}

	next := gs.Clone()
	for _, p := range pending {
		if targetCounts[p.target.Province] > 1 {
			res := &resolutions[p.orderIdx]
			res.Status = StatusBounced
			res.Reason = "retreat standoff at " + p.target.Province
			continue
		}
		next.Units = append(next.Units, Unit{
			Type:     p.unit.Type,
			Power:    p.unit.Power,
			Province: p.target.Province,
			Coast:    p.target.Coast,
		})
	}

	// Unordered dislodged units disband silently.
	next.Dislodged = nil

	if next.Turn.Season == Fall {
		updateSupplyCenterOwnership(next, m)
	}
	next.Turn = NextTurn(next.Turn, false)
	return next, resolutions
}
