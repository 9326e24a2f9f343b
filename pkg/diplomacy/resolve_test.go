package diplomacy

import "testing"

// Supported attack dislodges a holding unit.
func TestSupportedAttackDislodgesHold(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Fleet, England, "bla", NoCoast},
		Unit{Army, England, "arm", NoCoast},
		Unit{Fleet, Turkey, "ank", NoCoast},
	)
	orders := []Order{
		move(Fleet, England, "bla", "ank"),
		supportMove(Army, England, "arm", "bla", "ank", Fleet),
		hold(Fleet, Turkey, "ank"),
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "bla"); got != StatusSucceeds {
		t.Errorf("bla -> ank: got %v, want succeeds", got)
	}
	if got := resultFor(results, "ank"); got != StatusDislodged {
		t.Errorf("ank hold: got %v, want dislodged", got)
	}
	if len(next.Dislodged) != 1 || next.Dislodged[0].DislodgedFrom != "ank" {
		t.Fatalf("dislodged = %+v, want fleet out of ank", next.Dislodged)
	}
	if next.Dislodged[0].AttackerFrom != "bla" {
		t.Errorf("attacker from = %s, want bla", next.Dislodged[0].AttackerFrom)
	}
	if next.Turn.Phase != PhaseRetreat {
		t.Errorf("phase = %s, want retreat", next.Turn.Phase)
	}
}

// A support cut by an unrelated attacker drops the attack to strength 1,
// which bounces on the defender's hold.
func TestSupportCutByUnrelatedAttacker(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Austria, "bud", NoCoast},
		Unit{Army, Austria, "ser", NoCoast},
		Unit{Army, Russia, "rum", NoCoast},
		Unit{Army, Turkey, "bul", NoCoast},
	)
	orders := []Order{
		move(Army, Austria, "bud", "rum"),
		supportMove(Army, Austria, "ser", "bud", "rum", Army),
		hold(Army, Russia, "rum"),
		move(Army, Turkey, "bul", "ser"),
	}
	_, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "ser"); got != StatusCut {
		t.Errorf("ser support: got %v, want cut", got)
	}
	if got := resultFor(results, "bud"); got != StatusBounced {
		t.Errorf("bud -> rum: got %v, want bounced", got)
	}
	if got := resultFor(results, "rum"); got != StatusSucceeds {
		t.Errorf("rum hold: got %v, want succeeds", got)
	}
}

// Head-to-head with support: the stronger side advances, the weaker is
// dislodged.
func TestHeadToHeadWithSupport(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Germany, "ber", NoCoast},
		Unit{Army, Germany, "mun", NoCoast},
		Unit{Army, Russia, "sil", NoCoast},
	)
	orders := []Order{
		move(Army, Germany, "ber", "sil"),
		supportMove(Army, Germany, "mun", "ber", "sil", Army),
		move(Army, Russia, "sil", "ber"),
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "ber"); got != StatusSucceeds {
		t.Errorf("ber -> sil: got %v, want succeeds", got)
	}
	if got := resultFor(results, "sil"); got != StatusDislodged {
		t.Errorf("sil -> ber: got %v, want dislodged", got)
	}
	if len(next.Dislodged) != 1 || next.Dislodged[0].Unit.Power != Russia {
		t.Fatalf("dislodged = %+v, want the Russian army", next.Dislodged)
	}
	// The dislodged army cannot retreat to Berlin (attacker origin).
	for _, loc := range next.Dislodged[0].Retreats {
		if loc.Province == "ber" {
			t.Error("retreat set must exclude the attacker's origin")
		}
		if loc.Province == "sil" {
			t.Error("retreat set must exclude the dislodging attack's destination")
		}
	}
}

// Three units rotating in a cycle all succeed.
func TestThreeUnitCircularMovement(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Fleet, Turkey, "ank", NoCoast},
		Unit{Army, Turkey, "con", NoCoast},
		Unit{Army, Turkey, "smy", NoCoast},
	)
	orders := []Order{
		move(Fleet, Turkey, "ank", "con"),
		move(Army, Turkey, "con", "smy"),
		move(Army, Turkey, "smy", "ank"),
	}
	next, results := Adjudicate(gs, orders, m)

	for _, loc := range []string{"ank", "con", "smy"} {
		if got := resultFor(results, loc); got != StatusSucceeds {
			t.Errorf("%s: got %v, want succeeds", loc, got)
		}
	}
	if next.UnitAt("con") == nil || next.UnitAt("con").Type != Fleet {
		t.Error("fleet should have rotated into con")
	}
	if len(next.Dislodged) != 0 {
		t.Errorf("no dislodgements expected, got %+v", next.Dislodged)
	}
}

// A convoy across the North Sea carries the army to Belgium.
func TestConvoyChainSucceeds(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, England, "lon", NoCoast},
		Unit{Fleet, England, "nth", NoCoast},
	)
	orders := []Order{
		{Type: OrderMove, UnitType: Army, Power: England, Location: "lon", Target: "bel", ViaConvoy: true},
		{Type: OrderConvoy, UnitType: Fleet, Power: England, Location: "nth", AuxLoc: "lon", AuxTarget: "bel", AuxUnitType: Army},
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "lon"); got != StatusSucceeds {
		t.Errorf("lon -> bel via convoy: got %v, want succeeds", got)
	}
	if next.UnitAt("bel") == nil || next.UnitAt("bel").Type != Army {
		t.Error("army should have landed in bel")
	}
}

// A convoy order issued by a coastal fleet is void, and without a complete
// all-sea chain the move fails.
func TestCoastalConvoyVoidsChain(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Turkey, "gre", NoCoast},
		Unit{Fleet, Turkey, "aeg", NoCoast},
		Unit{Fleet, Turkey, "con", NoCoast},
		Unit{Fleet, Turkey, "bla", NoCoast},
	)
	orders := []Order{
		{Type: OrderMove, UnitType: Army, Power: Turkey, Location: "gre", Target: "sev", ViaConvoy: true},
		{Type: OrderConvoy, UnitType: Fleet, Power: Turkey, Location: "aeg", AuxLoc: "gre", AuxTarget: "sev", AuxUnitType: Army},
		{Type: OrderConvoy, UnitType: Fleet, Power: Turkey, Location: "con", AuxLoc: "gre", AuxTarget: "sev", AuxUnitType: Army},
		{Type: OrderConvoy, UnitType: Fleet, Power: Turkey, Location: "bla", AuxLoc: "gre", AuxTarget: "sev", AuxUnitType: Army},
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "con"); got != StatusVoid {
		t.Errorf("con convoy: got %v, want void (coastal, not sea)", got)
	}
	if got := resultFor(results, "gre"); got == StatusSucceeds {
		t.Error("gre -> sev should fail without a complete sea chain")
	}
	if next.UnitAt("gre") == nil {
		t.Error("the army should still be in gre")
	}
}

// A failed move still cuts support at its target.
func TestFailedAttackStillCutsSupport(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, France, "bur", NoCoast},
		Unit{Army, Germany, "mun", NoCoast},
		Unit{Army, Germany, "sil", NoCoast},
		Unit{Army, Russia, "boh", NoCoast},
	)
	orders := []Order{
		move(Army, France, "bur", "mun"),
		supportMove(Army, Germany, "mun", "sil", "boh", Army),
		move(Army, Germany, "sil", "boh"),
		hold(Army, Russia, "boh"),
	}
	_, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "bur"); got != StatusBounced {
		t.Errorf("bur -> mun: got %v, want bounced", got)
	}
	if got := resultFor(results, "mun"); got != StatusCut {
		t.Errorf("mun support: got %v, want cut", got)
	}
	if got := resultFor(results, "sil"); got != StatusBounced {
		t.Errorf("sil -> boh: got %v, want bounced (support was cut)", got)
	}
}

// An attack out of the supported destination does not cut a support-move.
func TestSupportNotCutFromDestination(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Germany, "ber", NoCoast},
		Unit{Army, Germany, "mun", NoCoast},
		Unit{Army, Russia, "sil", NoCoast},
	)
	orders := []Order{
		move(Army, Germany, "ber", "sil"),
		supportMove(Army, Germany, "mun", "ber", "sil", Army),
		move(Army, Russia, "sil", "mun"),
	}
	_, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "mun"); got == StatusCut {
		t.Error("support into sil must not be cut by the attack out of sil")
	}
	if got := resultFor(results, "ber"); got != StatusSucceeds {
		t.Errorf("ber -> sil: got %v, want succeeds with strength 2", got)
	}
}

// The destination exception does not shield a support-hold: when the
// supported unit's own province is the attacker's origin, the cut applies.
func TestSupportHoldCutFromSupportedProvince(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Italy, "ven", NoCoast},
		Unit{Army, Austria, "tri", NoCoast},
	)
	orders := []Order{
		{Type: OrderSupport, UnitType: Army, Power: Italy, Location: "ven", AuxLoc: "tri", AuxUnitType: Army},
		move(Army, Austria, "tri", "ven"),
	}
	_, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "ven"); got != StatusCut {
		t.Errorf("ven support-hold of tri: got %v, want cut by the attack out of tri", got)
	}
	if got := resultFor(results, "tri"); got != StatusBounced {
		t.Errorf("tri -> ven: got %v, want bounced (1 vs 1)", got)
	}
}

// A standoff between equal attackers bounces everyone and leaves the
// contested province empty.
func TestStandoffBouncesAndLeavesProvinceEmpty(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Austria, "vie", NoCoast},
		Unit{Army, Russia, "gal", NoCoast},
	)
	orders := []Order{
		move(Army, Austria, "vie", "boh"),
		move(Army, Russia, "gal", "boh"),
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "vie"); got != StatusBounced {
		t.Errorf("vie -> boh: got %v, want bounced", got)
	}
	if got := resultFor(results, "gal"); got != StatusBounced {
		t.Errorf("gal -> boh: got %v, want bounced", got)
	}
	if next.UnitAt("boh") != nil {
		t.Error("boh must stay empty after the standoff")
	}
}

// A unit may never dislodge a unit of its own power.
func TestNoSelfDislodgement(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, Germany, "ber", NoCoast},
		Unit{Army, Germany, "pru", NoCoast},
		Unit{Army, Germany, "sil", NoCoast},
	)
	orders := []Order{
		hold(Army, Germany, "ber"),
		move(Army, Germany, "pru", "ber"),
		supportMove(Army, Germany, "sil", "pru", "ber", Army),
	}
	next, results := Adjudicate(gs, orders, m)

	if got := resultFor(results, "pru"); got != StatusBounced {
		t.Errorf("pru -> ber: got %v, want bounced (own unit)", got)
	}
	if len(next.Dislodged) != 0 {
		t.Errorf("no dislodgement expected, got %+v", next.Dislodged)
	}
}

// Moving a fleet to a split-coast province with several reachable coasts
// and no coast stipulated is rejected at validation, not silently matched.
func TestFleetMoveRequiresCoast(t *testing.T) {
	m := StandardMap()
	gs := stateWith(Unit{Fleet, France, "mao", NoCoast})
	orders := []Order{
		move(Fleet, France, "mao", "spa"),
	}
	_, results := Adjudicate(gs, orders, m)
	if got := resultFor(results, "mao"); got != StatusVoid {
		t.Errorf("mao -> spa with no coast: got %v, want void", got)
	}

	// Naming a coast works.
	withCoast := Order{Type: OrderMove, UnitType: Fleet, Power: France, Location: "mao", Target: "spa", TargetCoast: NorthCoast}
	next, results := Adjudicate(gs, []Order{withCoast}, m)
	if got := resultFor(results, "mao"); got != StatusSucceeds {
		t.Errorf("mao -> spa/nc: got %v, want succeeds", got)
	}
	if u := next.UnitAt("spa"); u == nil || u.Coast != NorthCoast {
		t.Errorf("fleet should sit on spa/nc, got %+v", u)
	}
}

// --- Property-style invariants ---

// After any adjudication at most one unit occupies a region and every
// resolution echoes an order that was actually submitted.
func TestAdjudicationInvariants(t *testing.T) {
	m := StandardMap()
	gs := NewInitialState()
	orders := []Order{
		move(Fleet, England, "lon", "nth"),
		move(Army, France, "par", "bur"),
		move(Army, Germany, "mun", "bur"), // will bounce with par
		move(Army, Russia, "war", "gal"),
		move(Army, Austria, "vie", "gal"), // will bounce with war
		move(Fleet, Turkey, "ank", "bla"),
		move(Fleet, Russia, "sev", "bla"), // will bounce with ank
	}
	next, results := Adjudicate(gs, orders, m)

	occupied := make(map[string]int)
	for _, u := range next.Units {
		occupied[u.Province]++
	}
	for prov, n := range occupied {
		if n > 1 {
			t.Errorf("region %s holds %d units", prov, n)
		}
	}

	if len(results) != len(orders) {
		t.Fatalf("got %d resolutions for %d orders", len(results), len(orders))
	}
	for i, r := range results {
		if r.Order != orders[i] {
			t.Errorf("resolution %d echoes %+v, want the submitted order", i, r.Order)
		}
	}
}

// Supply-center ownership never changes across Spring adjudications.
func TestSpringDoesNotChangeOwnership(t *testing.T) {
	m := StandardMap()
	gs := NewInitialState()
	before := make(map[string]Power, len(gs.SupplyCenters))
	for k, v := range gs.SupplyCenters {
		before[k] = v
	}

	orders := []Order{
		move(Army, Russia, "war", "sil"),
		move(Army, Germany, "ber", "pru"),
	}
	next, _ := Adjudicate(gs, orders, m)

	for k, v := range before {
		if next.SupplyCenters[k] != v {
			t.Errorf("ownership of %s changed in Spring: %v -> %v", k, v, next.SupplyCenters[k])
		}
	}
}

// Fall occupation of a neutral center transfers ownership.
func TestFallCaptureTransfersOwnership(t *testing.T) {
	m := StandardMap()
	gs := stateWith(Unit{Army, Austria, "bud", NoCoast})
	gs.Turn = Turn{Year: 1901, Season: Fall, Phase: PhaseMovement}

	next, _ := Adjudicate(gs, []Order{move(Army, Austria, "bud", "ser")}, m)
	if next.SupplyCenters["ser"] != Austria {
		t.Errorf("ser owner = %v, want austria", next.SupplyCenters["ser"])
	}
	if next.Turn.Phase != PhaseBuild {
		t.Errorf("phase after Fall movement = %v, want build", next.Turn.Phase)
	}
}

// The adjudicator must not mutate its input state.
func TestAdjudicateLeavesInputIntact(t *testing.T) {
	m := StandardMap()
	gs := NewInitialState()
	snapshot := gs.Clone()

	_, _ = Adjudicate(gs, []Order{move(Army, France, "par", "bur")}, m)

	if !gs.Equal(snapshot) {
		t.Error("input state was mutated by adjudication")
	}
}
