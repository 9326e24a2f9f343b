package diplomacy

// maxResolveIterations bounds the movement fix-point loop. The cap should
// never be reached on legal input; if it is, remaining moves bounce with
// reason "unresolvable" and the phase still completes.
const maxResolveIterations = 100

type moveState int

const (
	mvUnresolved moveState = iota
	mvSucceeds
	mvFails
)

// orderSlot tracks the resolution of a single unit's order in the dense
// per-province buffers.
type orderSlot struct {
	order     Order // as submitted (or defaulted hold); echoed in output
	eff       Order // effective order after voiding (void orders act as holds)
	submitted bool  // false for defaulted holds, which emit no Resolution

	provIdx   int16
	targetIdx int16

	status OrderStatus
	reason string

	// Move bookkeeping.
	mv        moveState
	viaConvoy bool // move travels by convoy (requested or required)
	noRoute   bool // no ordered convoy chain; the unit never leaves

	// Support bookkeeping.
	supValid bool // counted toward strengths (not void, not self-dislodging)
	cut      bool

	// Strengths, recomputed when cut/route state changes.
	attack  int // 1 + uncut supports for this move
	prevent int // contest strength at an attacked destination

	dislodgedBy int16 // attacker origin province, -1 if not dislodged
}

func (s *orderSlot) isMove() bool {
	return s.eff.Type == OrderMove
}

func (s *orderSlot) isArrivingMove() bool {
	return s.eff.Type == OrderMove && !s.noRoute
}

func (s *orderSlot) isUnresolvedMove() bool {
	return s.isArrivingMove() && s.mv == mvUnresolved
}

type resolver struct {
	gs *GameState
	m  *DiplomacyMap

	slots  []orderSlot
	lookup [ProvinceCount]int16 // province index -> slot offset (-1 = none)

	// slotFor aligns input orders with slots (-1 = rejected before slot
	// assignment; its resolution is in rejected).
	slotFor  []int
	rejected map[int]Resolution

	// Tie standoffs observed during resolution; confirmed as bounce sites
	// once no move has entered the province.
	standoffs map[int16]bool
}

func newResolver(gs *GameState, m *DiplomacyMap) *resolver {
	r := &resolver{gs: gs, m: m, standoffs: make(map[int16]bool)}
	for i := range r.lookup {
		r.lookup[i] = -1
	}
	return r
}

func (r *resolver) slotAt(provIdx int16) *orderSlot {
	if provIdx < 0 {
		return nil
	}
	i := r.lookup[provIdx]
	if i < 0 {
		return nil
	}
	return &r.slots[i]
}

// ResolveMovement adjudicates a Movement phase: validates orders, resolves
// them to a fix-point, and returns the successor state plus resolutions for
// every submitted order. Units without orders hold but emit no Resolution.
func ResolveMovement(gs *GameState, orders []Order, m *DiplomacyMap) (*GameState, []Resolution) {
	r := newResolver(gs, m)
	r.ingest(orders)
	r.markConvoyRoutes()
	r.computeSupportValidity()
	r.computeCuts()
	r.computeStrengths()
	r.iterate()
	return r.finish(orders)
}

// ingest validates submitted orders, defaults unordered units to holds,
// and populates the slot buffers. Orders that do not map to any unit (or
// duplicate a unit's order) cannot occupy a slot; their void resolutions
// are recorded by input index.
func (r *resolver) ingest(orders []Order) {
	r.slotFor = make([]int, len(orders))
	r.rejected = make(map[int]Resolution)
	taken := make(map[string]bool, len(orders))

	addSlot := func(submitted bool, o, eff Order) {
		pIdx := int16(r.m.ProvinceIndex(eff.Location))
		tIdx := int16(-1)
		if eff.Type == OrderMove {
			tIdx = int16(r.m.ProvinceIndex(eff.Target))
		}
		r.slots = append(r.slots, orderSlot{
			order:       o,
			eff:         eff,
			submitted:   submitted,
			provIdx:     pIdx,
			targetIdx:   tIdx,
			status:      StatusSucceeds,
			dislodgedBy: -1,
		})
		if pIdx >= 0 {
			r.lookup[pIdx] = int16(len(r.slots) - 1)
		}
	}

	for i, o := range orders {
		unit := r.gs.UnitAt(o.Location)
		if unit == nil {
			r.slotFor[i] = -1
			r.rejected[i] = Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "no unit at " + o.Location}
			continue
		}
		if taken[o.Location] {
			r.slotFor[i] = -1
			r.rejected[i] = Resolution{Order: o, Power: o.Power, Status: StatusVoid, Reason: "duplicate order for unit"}
			continue
		}
		taken[o.Location] = true

		hold := Order{Type: OrderHold, UnitType: unit.Type, Power: unit.Power, Location: unit.Province, Coast: unit.Coast}
		if err := ValidateOrder(o, r.gs, r.m); err != nil {
			ve := err.(*ValidationError)
			addSlot(true, o, hold)
			last := &r.slots[len(r.slots)-1]
			last.status = StatusVoid
			last.reason = ve.Message
		} else {
			addSlot(true, o, o)
		}
		r.slotFor[i] = len(r.slots) - 1
	}

	// Default unordered units to hold. These slots participate in strength
	// calculation but are not echoed in the output.
	for _, unit := range r.gs.Units {
		if taken[unit.Province] {
			continue
		}
		hold := Order{Type: OrderHold, UnitType: unit.Type, Power: unit.Power, Location: unit.Province, Coast: unit.Coast}
		addSlot(false, hold, hold)
	}
}

// markConvoyRoutes decides, for every move that requires or requests a
// convoy, whether a chain of fleets ordered to convoy it exists. Moves
// without a route fail immediately and never arrive at their destination.
func (r *resolver) markConvoyRoutes() {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.isMove() || s.status == StatusVoid {
			continue
		}
		if s.eff.UnitType != Army {
			continue
		}
		needs := s.eff.ViaConvoy || !r.m.Adjacent(s.eff.Location, s.eff.Coast, s.eff.Target, NoCoast, false)
		if !needs {
			continue
		}
		s.viaConvoy = true
		if !r.orderedConvoyPath(s) {
			s.noRoute = true
			s.mv = mvFails
			s.status = StatusFails
			s.reason = "no convoy route"
		}
	}
}

// orderedConvoyPath runs a breadth-first search over sea fleets that are
// ordered to convoy this exact (source, destination) pair and have not
// been dislodged.
func (r *resolver) orderedConvoyPath(mv *orderSlot) bool {
	src := mv.eff.Location
	dst := mv.eff.Target

	isLink := func(s *orderSlot) bool {
		return s.eff.Type == OrderConvoy &&
			s.status != StatusVoid &&
			s.dislodgedBy < 0 &&
			s.eff.AuxLoc == src && s.eff.AuxTarget == dst &&
			r.m.IsSea(s.eff.Location)
	}

	visited := make(map[int16]bool)
	var queue []int16
	for i := range r.slots {
		s := &r.slots[i]
		if !isLink(s) {
			continue
		}
		if r.m.Adjacent(src, NoCoast, s.eff.Location, NoCoast, true) {
			visited[s.provIdx] = true
			queue = append(queue, s.provIdx)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curLoc := r.m.ProvinceName(int(cur))

		if r.m.Adjacent(curLoc, NoCoast, dst, NoCoast, true) {
			return true
		}
		for i := range r.slots {
			s := &r.slots[i]
			if visited[s.provIdx] || !isLink(s) {
				continue
			}
			if r.m.Adjacent(curLoc, NoCoast, s.eff.Location, NoCoast, true) {
				visited[s.provIdx] = true
				queue = append(queue, s.provIdx)
			}
		}
	}
	return false
}

// computeSupportValidity disallows supports that would dislodge a unit of
// the supporting power.
func (r *resolver) computeSupportValidity() {
	for i := range r.slots {
		s := &r.slots[i]
		if s.eff.Type != OrderSupport {
			continue
		}
		s.supValid = s.status != StatusVoid
		if !s.supValid || s.eff.IsSupportHold() {
			continue
		}
		if occ := r.gs.UnitAt(s.eff.AuxTarget); occ != nil && occ.Power == s.eff.Power {
			occSlot := r.slotAt(int16(r.m.ProvinceIndex(s.eff.AuxTarget)))
			if occSlot == nil || !occSlot.isMove() {
				s.supValid = false
				s.status = StatusVoid
				s.reason = "support would dislodge own unit"
			}
		}
	}
}

// computeCuts applies the support-cutting rule: a support is cut by any
// move of another power arriving at the supporter's province, except when
// the attack comes from the very province the support directs force into —
// and that exception does not apply to a support-hold of the attacker's
// own province. Dislodged supporters are always cut.
func (r *resolver) computeCuts() {
	for i := range r.slots {
		s := &r.slots[i]
		if s.eff.Type != OrderSupport || !s.supValid {
			continue
		}
		if s.dislodgedBy >= 0 {
			if !s.cut {
				s.cut = true
				s.status = StatusCut
				s.reason = "supporter dislodged"
			}
			continue
		}
		s.cut = false
		dest := s.eff.SupportDest()
		for j := range r.slots {
			a := &r.slots[j]
			if !a.isArrivingMove() || a.targetIdx != s.provIdx {
				continue
			}
			if a.eff.Power == s.eff.Power {
				continue
			}
			if a.eff.Location == dest && !s.eff.IsSupportHold() {
				// Attack out of the province the support pushes into does
				// not cut it; the head-to-head outcome decides instead.
				continue
			}
			s.cut = true
			s.status = StatusCut
			s.reason = "support cut by attack from " + a.eff.Location
			break
		}
		if !s.cut && s.status == StatusCut {
			s.status = StatusSucceeds
			s.reason = ""
		}
	}
}

// computeStrengths recomputes attack and prevent strengths from the
// current cut/validity state.
func (r *resolver) computeStrengths() {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.isArrivingMove() {
			s.attack, s.prevent = 0, 0
			continue
		}
		strength := 1
		for j := range r.slots {
			sup := &r.slots[j]
			if sup.eff.Type != OrderSupport || !sup.supValid || sup.cut {
				continue
			}
			if sup.eff.AuxLoc != s.eff.Location || sup.eff.IsSupportHold() {
				continue
			}
			if sup.eff.AuxTarget == s.eff.Target {
				strength++
			}
		}
		s.attack = strength
		s.prevent = strength
	}
}

// holdStrength returns the strength with which the unit at provIdx keeps
// its province: 1 + uncut supports-to-hold for a stationary unit, 1 for a
// unit whose move failed, 0 for an empty province or a vacated one.
func (r *resolver) holdStrength(provIdx int16) int {
	s := r.slotAt(provIdx)
	if s == nil {
		return 0
	}
	if s.isMove() {
		if s.noRoute {
			return 1
		}
		switch s.mv {
		case mvSucceeds:
			return 0
		case mvFails:
			return 1
		}
		return 1 // unresolved; callers defer before trusting this
	}
	strength := 1
	for j := range r.slots {
		sup := &r.slots[j]
		if sup.eff.Type != OrderSupport || !sup.supValid || sup.cut {
			continue
		}
		if sup.eff.AuxLoc == s.eff.Location && sup.eff.IsSupportHold() {
			strength++
		}
	}
	return strength
}

// iterate drives movement resolution to a fix-point: destination clusters
// are decided while information is available, cycles of mutually dependent
// moves are resolved together, and the loop is hard-capped.
func (r *resolver) iterate() {
	for iter := 0; iter < maxResolveIterations; iter++ {
		changed := r.resolvePass()

		if !r.hasUnresolvedMoves() {
			return
		}
		if !changed && !r.resolveCycles() {
			break
		}
	}
	// Cap reached or no progress possible: remaining moves bounce.
	for i := range r.slots {
		s := &r.slots[i]
		if s.isUnresolvedMove() {
			s.mv = mvFails
			s.status = StatusBounced
			s.reason = "unresolvable"
		}
	}
}

func (r *resolver) hasUnresolvedMoves() bool {
	for i := range r.slots {
		if r.slots[i].isUnresolvedMove() {
			return true
		}
	}
	return false
}

func (r *resolver) resolvePass() bool {
	changed := false
	for i := range r.slots {
		s := &r.slots[i]
		if !s.isUnresolvedMove() {
			continue
		}
		if r.resolveAttacker(s) {
			changed = true
		}
	}
	return changed
}

// maxOtherPrevent returns the strongest prevent strength among the other
// moves contesting the same destination. Bounced moves still prevent;
// moves with no convoy route never arrived and do not.
func (r *resolver) maxOtherPrevent(a *orderSlot) int {
	max := 0
	for j := range r.slots {
		o := &r.slots[j]
		if o == a || !o.isArrivingMove() || o.targetIdx != a.targetIdx {
			continue
		}
		if o.prevent > max {
			max = o.prevent
		}
	}
	return max
}

// resolveAttacker attempts to decide one unresolved move. Returns true if
// the move's state changed.
func (r *resolver) resolveAttacker(a *orderSlot) bool {
	maxPrev := r.maxOtherPrevent(a)
	if a.attack <= maxPrev {
		a.mv = mvFails
		a.status = StatusBounced
		a.reason = "bounced"
		if a.attack == maxPrev {
			r.standoffs[a.targetIdx] = true
		}
		return true
	}

	occ := r.slotAt(a.targetIdx)
	if occ == nil {
		r.succeedMove(a, nil)
		return true
	}

	// Head-to-head: the destination unit is moving into this unit's
	// province over land. Convoyed legs are not head-to-head; a convoyed
	// swap resolves as a cycle instead.
	if occ.isArrivingMove() && occ.targetIdx == a.provIdx && !a.viaConvoy && !occ.viaConvoy {
		return r.resolveHeadToHead(a, occ)
	}

	if occ.isArrivingMove() {
		switch occ.mv {
		case mvSucceeds:
			r.succeedMove(a, nil)
			return true
		case mvFails:
			return r.resolveAgainstHolder(a, occ, 1)
		default:
			return false // defer until the occupant's move resolves
		}
	}

	return r.resolveAgainstHolder(a, occ, r.holdStrength(a.targetIdx))
}

func (r *resolver) resolveHeadToHead(a, occ *orderSlot) bool {
	if occ.eff.Power == a.eff.Power {
		a.mv = mvFails
		a.status = StatusBounced
		a.reason = "cannot dislodge own unit"
		return true
	}
	switch {
	case a.attack > occ.attack:
		occ.mv = mvFails
		occ.status = StatusBounced
		occ.reason = "lost head-to-head against " + a.eff.Location
		r.succeedMove(a, occ)
	case a.attack == occ.attack:
		a.mv = mvFails
		a.status = StatusBounced
		a.reason = "head-to-head standoff"
		occ.mv = mvFails
		occ.status = StatusBounced
		occ.reason = "head-to-head standoff"
	default:
		a.mv = mvFails
		a.status = StatusBounced
		a.reason = "lost head-to-head against " + occ.eff.Location
	}
	return true
}

// resolveAgainstHolder decides an attack on a province whose unit stays
// put with the given hold strength.
func (r *resolver) resolveAgainstHolder(a, occ *orderSlot, holdStr int) bool {
	if occ.eff.Power == a.eff.Power {
		a.mv = mvFails
		a.status = StatusBounced
		a.reason = "cannot dislodge own unit"
		return true
	}
	if a.attack > holdStr {
		r.succeedMove(a, occ)
		return true
	}
	a.mv = mvFails
	a.status = StatusBounced
	a.reason = "insufficient strength against " + occ.eff.Location
	return true
}

// succeedMove marks a move successful and dislodges the given occupant
// (if any), propagating the knock-on effects of the dislodgement.
func (r *resolver) succeedMove(a, dislodged *orderSlot) {
	a.mv = mvSucceeds
	a.status = StatusSucceeds
	a.reason = ""

	if dislodged == nil {
		return
	}
	dislodged.dislodgedBy = a.provIdx

	// A dislodged supporter's support is cut; a dislodged convoyer may
	// break a convoy chain. Both change strengths, so recompute.
	if dislodged.eff.Type == OrderSupport && dislodged.supValid && !dislodged.cut {
		r.computeCuts()
		r.computeStrengths()
	}
	if dislodged.eff.Type == OrderConvoy {
		r.recheckConvoyRoutes()
	}
}

// recheckConvoyRoutes re-runs path discovery for convoyed moves after a
// convoying fleet was dislodged. A move losing its last chain fails, stops
// cutting supports, and strengths are recomputed.
func (r *resolver) recheckConvoyRoutes() {
	changed := false
	for i := range r.slots {
		s := &r.slots[i]
		if !s.viaConvoy || s.noRoute || s.mv == mvSucceeds {
			continue
		}
		if !r.orderedConvoyPath(s) {
			s.noRoute = true
			s.mv = mvFails
			s.status = StatusFails
			s.reason = "no convoy route"
			changed = true
		}
	}
	if changed {
		r.computeCuts()
		r.computeStrengths()
	}
}

// resolveCycles detects circular movement (A->B, B->C, ..., Z->A) among
// still-unresolved moves and marks every member of a cycle as succeeding
// simultaneously. By the time the pass loop stalls, each remaining move is
// the unique strongest attacker into its destination, so the rotation is
// safe.
func (r *resolver) resolveCycles() bool {
	changed := false
	for i := range r.slots {
		start := &r.slots[i]
		if !start.isUnresolvedMove() {
			continue
		}

		var path []*orderSlot
		onPath := make(map[*orderSlot]bool)
		cur := start
		for {
			path = append(path, cur)
			onPath[cur] = true
			next := r.slotAt(cur.targetIdx)
			if next == nil || !next.isUnresolvedMove() {
				path = nil
				break
			}
			if next == start {
				break
			}
			if onPath[next] {
				path = nil
				break
			}
			cur = next
		}
		if len(path) < 2 {
			continue
		}
		for _, s := range path {
			s.mv = mvSucceeds
			s.status = StatusSucceeds
			s.reason = ""
		}
		changed = true
	}
	return changed
}

// finish assembles resolutions, dislodgements with retreat sets, and the
// successor state.
func (r *resolver) finish(orders []Order) (*GameState, []Resolution) {
	// Mark units attacked successfully while staying put as dislodged.
	for i := range r.slots {
		s := &r.slots[i]
		if !s.isArrivingMove() || s.mv != mvSucceeds {
			continue
		}
		occ := r.slotAt(s.targetIdx)
		if occ != nil && occ.dislodgedBy < 0 && !(occ.isArrivingMove() && occ.mv == mvSucceeds) {
			occ.dislodgedBy = s.provIdx
		}
	}

	// Provinces occupied after movement.
	occupiedAfter := make(map[string]bool, len(r.slots))
	for i := range r.slots {
		s := &r.slots[i]
		if s.dislodgedBy >= 0 {
			continue
		}
		if s.isArrivingMove() && s.mv == mvSucceeds {
			occupiedAfter[s.eff.Target] = true
		} else {
			occupiedAfter[s.eff.Location] = true
		}
	}

	// Confirmed bounce sites: standoffs nobody entered.
	bounceSites := make(map[string]bool, len(r.standoffs))
	for idx := range r.standoffs {
		if !occupiedAfter[r.m.ProvinceName(int(idx))] {
			bounceSites[r.m.ProvinceName(int(idx))] = true
		}
	}

	var dislodged []DislodgedUnit
	for i := range r.slots {
		s := &r.slots[i]
		if s.dislodgedBy < 0 {
			continue
		}
		if s.submitted {
			s.status = StatusDislodged
			if s.reason == "" {
				s.reason = "dislodged by attack from " + r.m.ProvinceName(int(s.dislodgedBy))
			}
		}
		unit := Unit{Type: s.eff.UnitType, Power: s.eff.Power, Province: s.eff.Location, Coast: s.eff.Coast}
		attackerFrom := r.m.ProvinceName(int(s.dislodgedBy))
		dislodged = append(dislodged, DislodgedUnit{
			Unit:          unit,
			DislodgedFrom: s.eff.Location,
			AttackerFrom:  attackerFrom,
			Retreats:      r.retreatSet(unit, attackerFrom, bounceSites, occupiedAfter),
		})
	}

	// Echo resolutions in input order.
	resolutions := make([]Resolution, 0, len(orders))
	for i := range orders {
		if r.slotFor[i] < 0 {
			resolutions = append(resolutions, r.rejected[i])
			continue
		}
		s := &r.slots[r.slotFor[i]]
		resolutions = append(resolutions, Resolution{Order: s.order, Power: s.order.Power, Status: s.status, Reason: s.reason})
	}

	next := r.applyMovement(dislodged)
	return next, resolutions
}

// retreatSet computes the legal retreat locations for a dislodged unit:
// adjacent by kind, not the attacker's origin, not a bounce site, not
// occupied after movement. Fleet retreats into split-coast provinces
// enumerate each reachable coast.
func (r *resolver) retreatSet(u Unit, attackerFrom string, bounceSites, occupiedAfter map[string]bool) []Location {
	isFleet := u.Type == Fleet
	var out []Location
	seen := make(map[Location]bool)
	for _, adj := range r.m.Adjacencies[u.Province] {
		if isFleet && !adj.FleetOK {
			continue
		}
		if !isFleet && !adj.ArmyOK {
			continue
		}
		if u.Coast != NoCoast && adj.FromCoast != NoCoast && adj.FromCoast != u.Coast {
			continue
		}
		if adj.To == attackerFrom || bounceSites[adj.To] || occupiedAfter[adj.To] {
			continue
		}
		loc := Location{Province: adj.To}
		if isFleet {
			loc.Coast = adj.ToCoast
		}
		if !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}
	return out
}

// applyMovement builds the successor state: moves winners, removes
// dislodged units, updates Fall supply-center ownership, and advances the
// turn.
func (r *resolver) applyMovement(dislodged []DislodgedUnit) *GameState {
	next := r.gs.Clone()

	dislodgedFrom := make(map[string]bool, len(dislodged))
	for _, d := range dislodged {
		dislodgedFrom[d.DislodgedFrom] = true
	}

	moved := make([]bool, len(next.Units))
	origin := make([]string, len(next.Units))
	for i := range next.Units {
		u := &next.Units[i]
		origin[i] = u.Province
		s := r.slotAt(int16(r.m.ProvinceIndex(u.Province)))
		if s == nil || !s.isArrivingMove() || s.mv != mvSucceeds {
			continue
		}
		moved[i] = true
		u.Province = s.eff.Target
		if s.eff.TargetCoast != NoCoast {
			u.Coast = s.eff.TargetCoast
		} else if s.eff.UnitType == Fleet && r.m.HasCoasts(s.eff.Target) {
			// Single reachable coast was validated; fill it in.
			coasts := r.m.FleetCoastsTo(s.eff.Location, s.eff.Coast, s.eff.Target)
			if len(coasts) == 1 {
				u.Coast = coasts[0]
			}
		} else {
			u.Coast = NoCoast
		}
	}

	remaining := next.Units[:0]
	for i, u := range next.Units {
		if moved[i] || !dislodgedFrom[origin[i]] {
			remaining = append(remaining, u)
		}
	}
	next.Units = remaining
	next.Dislodged = dislodged

	if next.Turn.Season == Fall {
		updateSupplyCenterOwnership(next, r.m)
	}
	next.Turn = NextTurn(next.Turn, len(dislodged) > 0)
	if next.Turn.Phase != PhaseRetreat {
		next.Dislodged = nil
	}
	return next
}

// Adjudicate resolves the orders issued in the state's current phase and
// produces the next state. It is total: every input state and order
// multiset yields a well-formed successor; individual order failures are
// reported as Resolutions, never as errors.
func Adjudicate(gs *GameState, orders []Order, m *DiplomacyMap) (*GameState, []Resolution) {
	switch gs.Turn.Phase {
	case PhaseRetreat:
		return ResolveRetreats(gs, orders, m)
	case PhaseBuild:
		return ResolveBuilds(gs, orders, m)
	default:
		return ResolveMovement(gs, orders, m)
	}
}
