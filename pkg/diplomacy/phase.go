package diplomacy

import (
	"sort"
	"sync"
)

// NextTurn computes the turn that follows the current one.
// Movement -> Retreat when there are dislodgements, otherwise Spring
// Movement advances to Fall Movement and Fall Movement to Fall Build.
// Retreat -> Fall Movement (after Spring) or Fall Build. Build -> Spring
// Movement of the next year.
func NextTurn(t Turn, hasDislodgements bool) Turn {
	switch t.Phase {
	case PhaseMovement:
		if hasDislodgements {
			return Turn{Year: t.Year, Season: t.Season, Phase: PhaseRetreat}
		}
		return afterMovement(t)
	case PhaseRetreat:
		return afterMovement(t)
	case PhaseBuild:
		return Turn{Year: t.Year + 1, Season: Spring, Phase: PhaseMovement}
	}
	return Turn{Year: t.Year + 1, Season: Spring, Phase: PhaseMovement}
}

func afterMovement(t Turn) Turn {
	if t.Season == Spring {
		return Turn{Year: t.Year, Season: Fall, Phase: PhaseMovement}
	}
	// After Fall movement/retreat the Build phase always runs, even when
	// no power has an adjustment to make.
	return Turn{Year: t.Year, Season: Fall, Phase: PhaseBuild}
}

// WinThreshold is the supply-center count that wins the game outright.
const WinThreshold = 18

// SoloWinner returns the power holding WinThreshold or more supply
// centers, if any.
func SoloWinner(gs *GameState) (Power, bool) {
	for _, power := range AllPowers() {
		if gs.SupplyCenterCount(power) >= WinThreshold {
			return power, true
		}
	}
	return Neutral, false
}

// updateSupplyCenterOwnership assigns every occupied supply center to the
// power whose unit stands on it. Called by the adjudicator after Fall
// Movement and Fall Retreat only; ownership never changes in Spring or
// during Build.
func updateSupplyCenterOwnership(gs *GameState, m *DiplomacyMap) {
	for provID := range gs.SupplyCenters {
		prov := m.Provinces[provID]
		if prov == nil || !prov.IsSupplyCenter {
			continue
		}
		if unit := gs.UnitAt(provID); unit != nil {
			gs.SupplyCenters[provID] = unit.Power
		}
		// Unoccupied centers keep their current owner.
	}
}

// homeCentersCache stores pre-computed home centers for each power.
// Home centers never change; the cache is built once for all powers so
// concurrent search workers only ever read it.
var (
	homeCentersOnce  sync.Once
	homeCentersCache map[Power][]string
)

// HomeCenters returns the home supply center IDs for a given power.
// Safe for concurrent use.
func HomeCenters(power Power) []string {
	homeCentersOnce.Do(func() {
		stdMap := StandardMap()
		homeCentersCache = make(map[Power][]string, 7)
		for _, prov := range stdMap.Provinces {
			if prov.IsSupplyCenter && prov.HomePower != Neutral {
				homeCentersCache[prov.HomePower] = append(homeCentersCache[prov.HomePower], prov.ID)
			}
		}
		for _, centers := range homeCentersCache {
			sort.Strings(centers)
		}
	})
	return homeCentersCache[power]
}
