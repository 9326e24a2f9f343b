package diplomacy

import "strings"

// DisplayRegion renders a region tag for output: sea regions UPPERCASE,
// land/coastal regions Title Case.
func DisplayRegion(tag string, m *DiplomacyMap) string {
	if m.IsSea(tag) {
		return strings.ToUpper(tag)
	}
	if tag == "" {
		return tag
	}
	return strings.ToUpper(tag[:1]) + tag[1:]
}

func displayLocation(tag string, coast Coast, m *DiplomacyMap) string {
	s := DisplayRegion(tag, m)
	if coast != NoCoast {
		s += "/" + string(coast)
	}
	return s
}

// DisplayPower renders a power name for output (Title Case).
func DisplayPower(p Power) string {
	s := string(p)
	if s == "" {
		return "Neutral"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatOrder renders an order in the one-line textual convention:
//
//	A Par H
//	F Bre - Eng
//	A Lon - Bel via convoy
//	A Mun S Ber
//	A Mun S Ber - Sil
//	F NTH C Lon - Bel
//	A Par R Bur
//	F NTH D
//	Build F Stp/nc
//	France Waive
func FormatOrder(o Order, m *DiplomacyMap) string {
	unitStr := "A"
	if o.UnitType == Fleet {
		unitStr = "F"
	}
	loc := DisplayRegion(o.Location, m)

	switch o.Type {
	case OrderHold:
		return unitStr + " " + loc + " H"
	case OrderMove:
		s := unitStr + " " + loc + " - " + displayLocation(o.Target, o.TargetCoast, m)
		if o.ViaConvoy {
			s += " via convoy"
		}
		return s
	case OrderSupport:
		if o.IsSupportHold() {
			return unitStr + " " + loc + " S " + DisplayRegion(o.AuxLoc, m)
		}
		return unitStr + " " + loc + " S " + DisplayRegion(o.AuxLoc, m) + " - " + DisplayRegion(o.AuxTarget, m)
	case OrderConvoy:
		return "F " + loc + " C " + DisplayRegion(o.AuxLoc, m) + " - " + DisplayRegion(o.AuxTarget, m)
	case OrderRetreat:
		return unitStr + " " + loc + " R " + displayLocation(o.Target, o.TargetCoast, m)
	case OrderDisband:
		return unitStr + " " + loc + " D"
	case OrderBuild:
		return "Build " + unitStr + " " + displayLocation(o.Location, o.Coast, m)
	case OrderWaive:
		return DisplayPower(o.Power) + " Waive"
	default:
		return o.Describe()
	}
}

// FormatOrders renders a list of orders, one per line.
func FormatOrders(orders []Order, m *DiplomacyMap) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, FormatOrder(o, m))
	}
	return out
}
