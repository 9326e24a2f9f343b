package diplomacy

import "fmt"

// OrderType represents the kind of order issued to a unit or power.
// Hold/Move/Support/Convoy belong to the Movement phase, Retreat/Disband
// to the Retreat phase (Disband also doubles as an adjustment removal),
// Build/Waive to the Build phase.
type OrderType int

const (
	OrderHold    OrderType = iota // Unit holds position
	OrderMove                     // Unit moves to adjacent province (or via convoy)
	OrderSupport                  // Unit supports another unit's hold or move
	OrderConvoy                   // Fleet convoys army across sea
	OrderRetreat                  // Dislodged unit retreats to adjacent province
	OrderDisband                  // Unit is removed from the board
	OrderBuild                    // Power builds a new unit on a home supply center
	OrderWaive                    // Power voluntarily skips a build
)

func (o OrderType) String() string {
	switch o {
	case OrderHold:
		return "hold"
	case OrderMove:
		return "move"
	case OrderSupport:
		return "support"
	case OrderConvoy:
		return "convoy"
	case OrderRetreat:
		return "retreat"
	case OrderDisband:
		return "disband"
	case OrderBuild:
		return "build"
	case OrderWaive:
		return "waive"
	default:
		return "unknown"
	}
}

// Order is the single tagged order variant. Which fields are meaningful
// depends on Type:
//
//	Hold:    Location
//	Move:    Location, Target, ViaConvoy
//	Support: Location, AuxLoc (supported unit), AuxTarget ("" = support-hold)
//	Convoy:  Location (sea fleet), AuxLoc (army), AuxTarget (destination)
//	Retreat: Location, Target
//	Disband: Location
//	Build:   Power, UnitType, Location (province to build in), Coast
//	Waive:   Power
//
// Equality is structural; two orders are the same order iff all fields match.
type Order struct {
	Type OrderType

	// Unit being ordered. For Build: the kind, power, province and coast of
	// the new unit. Waive uses only Power.
	UnitType UnitType
	Power    Power
	Location string
	Coast    Coast

	// Destination province for Move/Retreat.
	Target      string
	TargetCoast Coast

	// Move only: the army asks to travel by convoy even when a land route
	// exists.
	ViaConvoy bool

	// Support: province of the supported unit. Convoy: province of the
	// convoyed army.
	AuxLoc string
	// Support: destination of the supported move ("" for support-hold).
	// Convoy: destination of the convoyed army.
	AuxTarget string
	// Support: type of the supported unit.
	AuxUnitType UnitType
}

// IsSupportHold reports whether the order is a support-to-hold.
func (o Order) IsSupportHold() bool {
	return o.Type == OrderSupport && (o.AuxTarget == "" || o.AuxTarget == o.AuxLoc)
}

// SupportDest returns the province a support order directs force into:
// the move destination for support-move, the supported unit's province
// for support-hold.
func (o Order) SupportDest() string {
	if o.IsSupportHold() {
		return o.AuxLoc
	}
	return o.AuxTarget
}

// OrderStatus describes the adjudicated outcome of an order.
type OrderStatus int

const (
	StatusSucceeds  OrderStatus = iota // Order carried out
	StatusFails                        // Order could not take effect (e.g. no convoy route)
	StatusVoid                         // Structurally illegal, treated as hold
	StatusCut                          // Support was cut
	StatusDislodged                    // The ordered unit was dislodged
	StatusBounced                      // Move bounced
)

func (s OrderStatus) String() string {
	switch s {
	case StatusSucceeds:
		return "succeeds"
	case StatusFails:
		return "fails"
	case StatusVoid:
		return "void"
	case StatusCut:
		return "cut"
	case StatusDislodged:
		return "dislodged"
	case StatusBounced:
		return "bounced"
	default:
		return "unknown"
	}
}

// Resolution pairs an order with its adjudicated outcome. The Order field
// is always the exact value that was submitted; units left without an
// order get no Resolution. The adjudicator never fabricates or rewrites
// orders in its output.
type Resolution struct {
	Order  Order
	Power  Power
	Status OrderStatus
	Reason string // optional explanation, e.g. "no convoy route"
}

// Describe returns a short debug description of the order. For the
// user-facing textual form defined by the output contract, see FormatOrder.
func (o Order) Describe() string {
	unitStr := "A"
	if o.UnitType == Fleet {
		unitStr = "F"
	}
	loc := o.Location
	if o.Coast != NoCoast {
		loc += "/" + string(o.Coast)
	}
	target := o.Target
	if o.TargetCoast != NoCoast {
		target += "/" + string(o.TargetCoast)
	}

	switch o.Type {
	case OrderHold:
		return fmt.Sprintf("%s %s hold", unitStr, loc)
	case OrderMove:
		if o.ViaConvoy {
			return fmt.Sprintf("%s %s -> %s via convoy", unitStr, loc, target)
		}
		return fmt.Sprintf("%s %s -> %s", unitStr, loc, target)
	case OrderSupport:
		if o.IsSupportHold() {
			return fmt.Sprintf("%s %s S %s", unitStr, loc, o.AuxLoc)
		}
		return fmt.Sprintf("%s %s S %s -> %s", unitStr, loc, o.AuxLoc, o.AuxTarget)
	case OrderConvoy:
		return fmt.Sprintf("%s %s C %s -> %s", unitStr, loc, o.AuxLoc, o.AuxTarget)
	case OrderRetreat:
		return fmt.Sprintf("%s %s R %s", unitStr, loc, target)
	case OrderDisband:
		return fmt.Sprintf("%s %s disband", unitStr, loc)
	case OrderBuild:
		return fmt.Sprintf("%s build %s %s", o.Power, unitStr, loc)
	case OrderWaive:
		return fmt.Sprintf("%s waive", o.Power)
	default:
		return fmt.Sprintf("%s %s ???", unitStr, loc)
	}
}
