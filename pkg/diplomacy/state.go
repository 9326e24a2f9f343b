package diplomacy

// Season represents a game season.
type Season string

const (
	Spring Season = "spring"
	Fall   Season = "fall"
)

// PhaseType represents the type of game phase.
type PhaseType string

const (
	PhaseMovement PhaseType = "movement"
	PhaseRetreat  PhaseType = "retreat"
	PhaseBuild    PhaseType = "build"
)

// Turn identifies a point in game time.
type Turn struct {
	Year   int
	Season Season
	Phase  PhaseType
}

// DislodgedUnit is a unit that was forced out of its province and needs a
// retreat order. Retreats holds the legal retreat destinations computed at
// adjudication time (adjacent, not the attacker's origin, not a bounce
// site, not occupied).
type DislodgedUnit struct {
	Unit          Unit
	DislodgedFrom string // Province the unit was dislodged from
	AttackerFrom  string // Province the attacker came from (cannot retreat there)
	Retreats      []Location
}

// GameState represents a complete snapshot of the board at a point in time.
// States are treated as values: the adjudicator never mutates its input and
// always returns a fresh successor, so a state may be freely shared between
// tree nodes and workers.
type GameState struct {
	Turn          Turn
	Units         []Unit
	SupplyCenters map[string]Power // province ID -> owning power
	Dislodged     []DislodgedUnit  // non-empty only while Phase == PhaseRetreat
}

// NewInitialState returns the standard Diplomacy starting position
// (Spring 1901 Movement).
func NewInitialState() *GameState {
	return &GameState{
		Turn:          Turn{Year: 1901, Season: Spring, Phase: PhaseMovement},
		Units:         initialUnits(),
		SupplyCenters: initialSupplyCenters(),
	}
}

// UnitAt returns the unit at the given province, or nil if none.
func (gs *GameState) UnitAt(province string) *Unit {
	for i := range gs.Units {
		if gs.Units[i].Province == province {
			return &gs.Units[i]
		}
	}
	return nil
}

// SupplyCenterCount returns the number of supply centers owned by the given power.
func (gs *GameState) SupplyCenterCount(power Power) int {
	count := 0
	for _, owner := range gs.SupplyCenters {
		if owner == power {
			count++
		}
	}
	return count
}

// UnitCount returns the number of units belonging to the given power.
func (gs *GameState) UnitCount(power Power) int {
	count := 0
	for _, u := range gs.Units {
		if u.Power == power {
			count++
		}
	}
	return count
}

// UnitsOf returns all units belonging to the given power.
func (gs *GameState) UnitsOf(power Power) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Power == power {
			units = append(units, u)
		}
	}
	return units
}

// DislodgedOf returns the dislodged units belonging to the given power.
func (gs *GameState) DislodgedOf(power Power) []DislodgedUnit {
	var out []DislodgedUnit
	for _, d := range gs.Dislodged {
		if d.Unit.Power == power {
			out = append(out, d)
		}
	}
	return out
}

// PowerIsAlive returns true if the power still has at least one supply
// center or unit on the board.
func (gs *GameState) PowerIsAlive(power Power) bool {
	return gs.SupplyCenterCount(power) > 0 || gs.UnitCount(power) > 0
}

// Equal reports structural equality of two states.
func (gs *GameState) Equal(o *GameState) bool {
	if gs.Turn != o.Turn || len(gs.Units) != len(o.Units) ||
		len(gs.SupplyCenters) != len(o.SupplyCenters) || len(gs.Dislodged) != len(o.Dislodged) {
		return false
	}
	for i := range gs.Units {
		if gs.Units[i] != o.Units[i] {
			return false
		}
	}
	for k, v := range gs.SupplyCenters {
		ov, ok := o.SupplyCenters[k]
		if !ok || ov != v {
			return false
		}
	}
	for i := range gs.Dislodged {
		a, b := &gs.Dislodged[i], &o.Dislodged[i]
		if a.Unit != b.Unit || a.DislodgedFrom != b.DislodgedFrom ||
			a.AttackerFrom != b.AttackerFrom || len(a.Retreats) != len(b.Retreats) {
			return false
		}
		for j := range a.Retreats {
			if a.Retreats[j] != b.Retreats[j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the GameState. The adjudicator clones its
// input before applying results so callers can hold on to the original.
func (gs *GameState) Clone() *GameState {
	c := &GameState{Turn: gs.Turn}
	if gs.Units != nil {
		c.Units = make([]Unit, len(gs.Units))
		copy(c.Units, gs.Units)
	}
	if gs.SupplyCenters != nil {
		c.SupplyCenters = make(map[string]Power, len(gs.SupplyCenters))
		for k, v := range gs.SupplyCenters {
			c.SupplyCenters[k] = v
		}
	}
	if gs.Dislodged != nil {
		c.Dislodged = make([]DislodgedUnit, len(gs.Dislodged))
		copy(c.Dislodged, gs.Dislodged)
		for i := range c.Dislodged {
			if gs.Dislodged[i].Retreats != nil {
				c.Dislodged[i].Retreats = make([]Location, len(gs.Dislodged[i].Retreats))
				copy(c.Dislodged[i].Retreats, gs.Dislodged[i].Retreats)
			}
		}
	}
	return c
}

func initialUnits() []Unit {
	return []Unit{
		// Austria
		{Army, Austria, "vie", NoCoast},
		{Army, Austria, "bud", NoCoast},
		{Fleet, Austria, "tri", NoCoast},
		// England
		{Fleet, England, "lon", NoCoast},
		{Fleet, England, "edi", NoCoast},
		{Army, England, "lvp", NoCoast},
		// France
		{Fleet, France, "bre", NoCoast},
		{Army, France, "par", NoCoast},
		{Army, France, "mar", NoCoast},
		// Germany
		{Fleet, Germany, "kie", NoCoast},
		{Army, Germany, "ber", NoCoast},
		{Army, Germany, "mun", NoCoast},
		// Italy
		{Fleet, Italy, "nap", NoCoast},
		{Army, Italy, "rom", NoCoast},
		{Army, Italy, "ven", NoCoast},
		// Russia
		{Fleet, Russia, "stp", SouthCoast},
		{Army, Russia, "mos", NoCoast},
		{Army, Russia, "war", NoCoast},
		{Fleet, Russia, "sev", NoCoast},
		// Turkey
		{Fleet, Turkey, "ank", NoCoast},
		{Army, Turkey, "con", NoCoast},
		{Army, Turkey, "smy", NoCoast},
	}
}

func initialSupplyCenters() map[string]Power {
	return map[string]Power{
		// Austria
		"vie": Austria, "bud": Austria, "tri": Austria,
		// England
		"lon": England, "edi": England, "lvp": England,
		// France
		"bre": France, "par": France, "mar": France,
		// Germany
		"kie": Germany, "ber": Germany, "mun": Germany,
		// Italy
		"nap": Italy, "rom": Italy, "ven": Italy,
		// Russia
		"stp": Russia, "mos": Russia, "war": Russia, "sev": Russia,
		// Turkey
		"ank": Turkey, "con": Turkey, "smy": Turkey,
		// Neutral supply centers
		"nwy": Neutral, "swe": Neutral, "den": Neutral,
		"hol": Neutral, "bel": Neutral, "spa": Neutral,
		"por": Neutral, "tun": Neutral, "gre": Neutral,
		"ser": Neutral, "bul": Neutral, "rum": Neutral,
	}
}
