package diplomacy

import (
	"sync"

	"golang.org/x/exp/rand"
)

// zobristSeed fixes the key table at compile time so hashes are stable
// across processes and workers.
const zobristSeed uint64 = 0x7a0b521d9c44e1f3

const (
	zobristMinYear = 1901
	zobristMaxYear = 2000
	zobristYears   = zobristMaxYear - zobristMinYear + 1
)

var (
	zobristOnce sync.Once

	// unit keys: [unit type][power][province][coast]
	zobristUnit [2][7][ProvinceCount][5]uint64
	// supply-center keys: [province][power]
	zobristSC [ProvinceCount][7]uint64
	// turn keys: [year offset][season][phase]
	zobristTurn [zobristYears][2][3]uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		rng := rand.New(rand.NewSource(zobristSeed))
		for t := range zobristUnit {
			for p := range zobristUnit[t] {
				for r := range zobristUnit[t][p] {
					for c := range zobristUnit[t][p][r] {
						zobristUnit[t][p][r][c] = rng.Uint64()
					}
				}
			}
		}
		for r := range zobristSC {
			for p := range zobristSC[r] {
				zobristSC[r][p] = rng.Uint64()
			}
		}
		for y := range zobristTurn {
			for s := range zobristTurn[y] {
				for ph := range zobristTurn[y][s] {
					zobristTurn[y][s][ph] = rng.Uint64()
				}
			}
		}
	})
}

func coastIndex(c Coast) int {
	switch c {
	case NorthCoast:
		return 1
	case SouthCoast:
		return 2
	case EastCoast:
		return 3
	case WestCoast:
		return 4
	}
	return 0
}

func seasonIndex(s Season) int {
	if s == Fall {
		return 1
	}
	return 0
}

func phaseIndex(p PhaseType) int {
	switch p {
	case PhaseRetreat:
		return 1
	case PhaseBuild:
		return 2
	}
	return 0
}

// Hash computes the Zobrist hash of a state: the XOR of one key per unit,
// one per owned supply center, and one for the turn descriptor. Equal
// states hash equally; hashes are stable across processes because the key
// table derives from a fixed seed.
func Hash(gs *GameState, m *DiplomacyMap) uint64 {
	initZobrist()

	var h uint64
	for _, u := range gs.Units {
		idx := m.ProvinceIndex(u.Province)
		pi := PowerIndex(u.Power)
		if idx < 0 || pi < 0 {
			continue
		}
		h ^= zobristUnit[int(u.Type)][pi][idx][coastIndex(u.Coast)]
	}
	for prov, owner := range gs.SupplyCenters {
		pi := PowerIndex(owner)
		if pi < 0 {
			continue // neutral centers do not contribute
		}
		idx := m.ProvinceIndex(prov)
		if idx < 0 {
			continue
		}
		h ^= zobristSC[idx][pi]
	}

	year := gs.Turn.Year
	if year < zobristMinYear {
		year = zobristMinYear
	}
	if year > zobristMaxYear {
		year = zobristMaxYear
	}
	h ^= zobristTurn[year-zobristMinYear][seasonIndex(gs.Turn.Season)][phaseIndex(gs.Turn.Phase)]

	return h
}
