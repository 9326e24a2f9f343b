package eval

import "github.com/FTWinston/Stabalyzer/pkg/diplomacy"

// WinKind distinguishes the two terminal outcomes a coalition can reach.
type WinKind string

const (
	WinDomination  WinKind = "domination"  // a coalition member holds 18+ centers
	WinElimination WinKind = "elimination" // every outside power is dead
)

// WinScore is the clamped score of any terminal win.
const WinScore = 999999

// MaxRawScore is the largest non-terminal score possible (all 34 supply
// centers and 34 units); rollout values normalize against it.
const MaxRawScore = 34*1000 + 34

// Fitness scores a state for a coalition.
type Fitness struct {
	SupplyCenters int
	Units         int
	Score         int
	Win           bool
	WinKind       WinKind
	Lost          bool // an outside power reached a solo win
}

// Evaluate computes the coalition's fitness for a state. A solo winner
// inside the coalition (or a full elimination of the outside powers)
// scores WinScore; a solo winner outside it scores zero and marks the
// state lost. Otherwise the score is centers*1000 + units adjusted by
// +-1000 per matched priority.
func Evaluate(gs *diplomacy.GameState, c Coalition, priorities []Priority) Fitness {
	f := Fitness{}
	for _, p := range c.Powers {
		f.SupplyCenters += gs.SupplyCenterCount(p)
		f.Units += gs.UnitCount(p)
	}

	if winner, ok := diplomacy.SoloWinner(gs); ok {
		if c.Contains(winner) {
			f.Win = true
			f.WinKind = WinDomination
			f.Score = WinScore
		} else {
			f.Lost = true
			f.Score = 0
		}
		return f
	}

	eliminated := true
	for _, p := range c.Opponents() {
		if gs.PowerIsAlive(p) {
			eliminated = false
			break
		}
	}
	if eliminated {
		f.Win = true
		f.WinKind = WinElimination
		f.Score = WinScore
		return f
	}

	f.Score = f.SupplyCenters*1000 + f.Units
	for _, pr := range priorities {
		if unit := gs.UnitAt(pr.Province); unit != nil && unit.Power == pr.Power {
			if pr.Action == Allow {
				f.Score += 1000
			} else {
				f.Score -= 1000
			}
		}
	}
	return f
}
