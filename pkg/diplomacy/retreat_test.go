package diplomacy

import "testing"

// dislodgeTwo produces a retreat-phase state with two dislodged Turkish
// units whose retreat sets share a destination.
func dislodgeTwo(t *testing.T) *GameState {
	t.Helper()
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Russia, "sev", NoCoast},
		Unit{Army, Russia, "ukr", NoCoast},
		Unit{Army, Russia, "bul", NoCoast},
		Unit{Army, Russia, "gre", NoCoast},
		Unit{Army, Turkey, "rum", NoCoast},
		Unit{Army, Turkey, "ser", NoCoast},
	)
	next, _ := Adjudicate(gs, []Order{
		move(Army, Russia, "sev", "rum"),
		supportMove(Army, Russia, "ukr", "sev", "rum", Army),
		move(Army, Russia, "bul", "ser"),
		supportMove(Army, Russia, "gre", "bul", "ser", Army),
		hold(Army, Turkey, "rum"),
		hold(Army, Turkey, "ser"),
	}, m)
	if next.Turn.Phase != PhaseRetreat || len(next.Dislodged) != 2 {
		t.Fatalf("setup failed: %+v", next)
	}
	return next
}

func TestRetreatStandoffAnnihilates(t *testing.T) {
	m := StandardMap()
	gs := dislodgeTwo(t)

	// Both dislodged armies retreat to Budapest: both are destroyed.
	orders := []Order{
		{Type: OrderRetreat, UnitType: Army, Power: Turkey, Location: "rum", Target: "bud"},
		{Type: OrderRetreat, UnitType: Army, Power: Turkey, Location: "ser", Target: "bud"},
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "rum"); got != StatusBounced {
		t.Errorf("rum retreat: got %v, want bounced", got)
	}
	if got := resultFor(results, "ser"); got != StatusBounced {
		t.Errorf("ser retreat: got %v, want bounced", got)
	}
	if next.UnitAt("bud") != nil {
		t.Error("bud must stay empty after the retreat standoff")
	}
	if next.UnitCount(Turkey) != 0 {
		t.Errorf("both Turkish units should be destroyed, %d remain", next.UnitCount(Turkey))
	}
	if len(next.Dislodged) != 0 {
		t.Error("dislodged list must clear after the retreat phase")
	}
}

func TestRetreatSucceedsAndUnorderedDisbands(t *testing.T) {
	m := StandardMap()
	gs := dislodgeTwo(t)

	orders := []Order{
		{Type: OrderRetreat, UnitType: Army, Power: Turkey, Location: "rum", Target: "bud"},
		// The army out of ser gets no order and disbands.
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "rum"); got != StatusSucceeds {
		t.Errorf("rum retreat: got %v, want succeeds", got)
	}
	if u := next.UnitAt("bud"); u == nil || u.Power != Turkey {
		t.Error("retreated army should stand in bud")
	}
	if next.UnitCount(Turkey) != 1 {
		t.Errorf("want 1 Turkish unit after disband, got %d", next.UnitCount(Turkey))
	}
}

func TestRetreatToIllegalDestinationIsVoid(t *testing.T) {
	m := StandardMap()
	gs := dislodgeTwo(t)

	orders := []Order{
		// sev is the attacker's origin for the unit out of rum.
		{Type: OrderRetreat, UnitType: Army, Power: Turkey, Location: "rum", Target: "sev"},
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "rum"); got != StatusVoid {
		t.Errorf("retreat to attacker origin: got %v, want void", got)
	}
	if next.UnitCount(Turkey) != 0 {
		t.Error("a void retreat disbands the unit")
	}
}
