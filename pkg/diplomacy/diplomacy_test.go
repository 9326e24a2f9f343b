package diplomacy

import "testing"

// stateWith builds a Spring 1901 Movement state containing only the given
// units, with the standard supply-center ownership.
func stateWith(units ...Unit) *GameState {
	return &GameState{
		Turn:          Turn{Year: 1901, Season: Spring, Phase: PhaseMovement},
		Units:         units,
		SupplyCenters: initialSupplyCenters(),
	}
}

// resultFor finds a resolution's status by unit location.
func resultFor(results []Resolution, location string) OrderStatus {
	for _, r := range results {
		if r.Order.Location == location {
			return r.Status
		}
	}
	return OrderStatus(-1)
}

func move(ut UnitType, p Power, from, to string) Order {
	return Order{Type: OrderMove, UnitType: ut, Power: p, Location: from, Target: to}
}

func hold(ut UnitType, p Power, at string) Order {
	return Order{Type: OrderHold, UnitType: ut, Power: p, Location: at}
}

func supportMove(ut UnitType, p Power, at, who, dest string, whoType UnitType) Order {
	return Order{Type: OrderSupport, UnitType: ut, Power: p, Location: at, AuxLoc: who, AuxTarget: dest, AuxUnitType: whoType}
}

// --- Map tests ---

func TestStandardMapProvinceCount(t *testing.T) {
	m := StandardMap()
	if len(m.Provinces) != ProvinceCount {
		t.Fatalf("province count = %d, want %d", len(m.Provinces), ProvinceCount)
	}
}

func TestStandardMapSupplyCenterCount(t *testing.T) {
	m := StandardMap()
	count := 0
	for _, p := range m.Provinces {
		if p.IsSupplyCenter {
			count++
		}
	}
	if count != 34 {
		t.Fatalf("supply center count = %d, want 34", count)
	}
}

func TestLandBridges(t *testing.T) {
	m := StandardMap()
	// Constantinople and Kiel act as land bridges: armies cross the straits.
	cases := [][2]string{
		{"con", "smy"}, {"con", "ank"}, {"con", "bul"},
		{"kie", "den"}, {"kie", "hol"}, {"kie", "ber"},
	}
	for _, c := range cases {
		if !m.Adjacent(c[0], NoCoast, c[1], NoCoast, false) {
			t.Errorf("army %s -> %s should be adjacent", c[0], c[1])
		}
	}
}

func TestValidCoasts(t *testing.T) {
	m := StandardMap()
	if got := m.ValidCoasts("spa"); len(got) != 2 {
		t.Errorf("spa coasts = %v, want north+south", got)
	}
	if got := m.ValidCoasts("par"); len(got) != 0 {
		t.Errorf("par coasts = %v, want none", got)
	}
	if !m.HasCoasts("stp") || !m.HasCoasts("bul") {
		t.Error("stp and bul should have split coasts")
	}
}

func TestBicoastalFleetAdjacency(t *testing.T) {
	m := StandardMap()
	// A fleet on the north coast of Spain cannot reach the Gulf of Lyon.
	if m.Adjacent("spa", NorthCoast, "gol", NoCoast, true) {
		t.Error("spa/nc should not reach gol")
	}
	if !m.Adjacent("spa", SouthCoast, "gol", NoCoast, true) {
		t.Error("spa/sc should reach gol")
	}
}

func TestLocationMatchesWildcard(t *testing.T) {
	a := Location{Province: "spa", Coast: NorthCoast}
	b := Location{Province: "spa"}
	if !a.Matches(b) || !b.Matches(a) {
		t.Error("NoCoast should match any coast of the same province")
	}
	c := Location{Province: "spa", Coast: SouthCoast}
	if a.Matches(c) {
		t.Error("distinct coasts should not match")
	}
}

// --- Power parsing ---

func TestParsePowerAliases(t *testing.T) {
	cases := map[string]Power{
		"England":         England,
		"FRANCE":          France,
		"austria":         Austria,
		"Austria-Hungary": Austria,
	}
	for in, want := range cases {
		got, ok := ParsePower(in)
		if !ok || got != want {
			t.Errorf("ParsePower(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParsePower("atlantis"); ok {
		t.Error("unknown power should be rejected")
	}
}
