package diplomacy

import "testing"

func TestMovementOptionsShape(t *testing.T) {
	m := StandardMap()
	gs := NewInitialState()

	lists := MovementOptions(gs, France, m)
	if len(lists) != 3 {
		t.Fatalf("France has %d option lists, want 3", len(lists))
	}
	for _, opts := range lists {
		if len(opts) == 0 || opts[0].Type != OrderHold {
			t.Fatalf("every option list starts with the unit's hold, got %+v", opts)
		}
		loc := opts[0].Location
		for _, o := range opts {
			if o.Location != loc {
				t.Errorf("option list mixes units: %s vs %s", o.Location, loc)
			}
			if o.Type == OrderMove && o.Target == o.Location {
				t.Errorf("move to own province offered: %+v", o)
			}
		}
	}
}

func TestMovementOptionsSupportsAreReachable(t *testing.T) {
	m := StandardMap()
	gs := NewInitialState()
	for _, power := range AllPowers() {
		for _, opts := range MovementOptions(gs, power, m) {
			for _, o := range opts {
				if o.Type != OrderSupport {
					continue
				}
				if gs.UnitAt(o.AuxLoc) == nil {
					t.Errorf("support references missing unit: %+v", o)
				}
				if err := ValidateOrder(o, gs, m); err != nil {
					t.Errorf("generated support fails validation: %v", err)
				}
			}
		}
	}
}

func TestMovementOptionsFleetCoasts(t *testing.T) {
	m := StandardMap()
	gs := stateWith(Unit{Fleet, France, "mao", NoCoast})
	lists := MovementOptions(gs, France, m)
	if len(lists) != 1 {
		t.Fatalf("want one option list, got %d", len(lists))
	}
	sawNorth, sawSouth := false, false
	for _, o := range lists[0] {
		if o.Type == OrderMove && o.Target == "spa" {
			switch o.TargetCoast {
			case NorthCoast:
				sawNorth = true
			case SouthCoast:
				sawSouth = true
			default:
				t.Errorf("spa move without coast: %+v", o)
			}
		}
	}
	if !sawNorth || !sawSouth {
		t.Error("fleet in mao should get one move option per reachable spa coast")
	}
}

func TestRetreatOptions(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Fleet, England, "bla", NoCoast},
		Unit{Army, England, "arm", NoCoast},
		Unit{Fleet, Turkey, "ank", NoCoast},
	)
	next, _ := Adjudicate(gs, []Order{
		move(Fleet, England, "bla", "ank"),
		supportMove(Army, England, "arm", "bla", "ank", Fleet),
	}, m)

	lists := RetreatOptions(next, Turkey, m)
	if len(lists) != 1 {
		t.Fatalf("Turkey should have one dislodged unit, got %d lists", len(lists))
	}
	opts := lists[0]
	if opts[len(opts)-1].Type != OrderDisband {
		t.Error("last retreat option should be the disband")
	}
	for _, o := range opts[:len(opts)-1] {
		if o.Type != OrderRetreat {
			t.Errorf("non-retreat option before disband: %+v", o)
		}
		if o.Target == "bla" {
			t.Error("retreat to the attacker's origin offered")
		}
	}
}

func TestBuildOptionsBuildsAndWaive(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Turn:          Turn{Year: 1902, Season: Fall, Phase: PhaseBuild},
		Units:         []Unit{{Army, Russia, "ukr", NoCoast}},
		SupplyCenters: map[string]Power{"mos": Russia, "stp": Russia, "war": Russia},
	}
	lists := BuildOptions(gs, Russia, m)
	if len(lists) != 1 {
		t.Fatalf("want one option list, got %d", len(lists))
	}
	var waives, stpFleets int
	for _, o := range lists[0] {
		switch {
		case o.Type == OrderWaive:
			waives++
		case o.Type == OrderBuild && o.Location == "stp" && o.UnitType == Fleet:
			stpFleets++
			if o.Coast == NoCoast {
				t.Error("fleet build in stp must carry a coast")
			}
		}
	}
	if waives != 1 {
		t.Errorf("want exactly one waive option, got %d", waives)
	}
	if stpFleets != 2 {
		t.Errorf("want one stp fleet build per coast, got %d", stpFleets)
	}
}

func TestBuildOptionsDisbands(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Turn:          Turn{Year: 1902, Season: Fall, Phase: PhaseBuild},
		Units:         []Unit{{Army, Italy, "rom", NoCoast}, {Fleet, Italy, "nap", NoCoast}},
		SupplyCenters: map[string]Power{"rom": Italy},
	}
	lists := BuildOptions(gs, Italy, m)
	if len(lists) != 1 || len(lists[0]) != 2 {
		t.Fatalf("want one list with one disband per unit, got %+v", lists)
	}
	for _, o := range lists[0] {
		if o.Type != OrderDisband {
			t.Errorf("want disband options only, got %+v", o)
		}
	}
}
