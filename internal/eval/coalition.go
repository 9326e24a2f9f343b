package eval

import (
	"fmt"
	"strings"

	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// Coalition is an ordered, non-empty set of powers whose combined position
// is being optimized, with a display name.
type Coalition struct {
	Name   string
	Powers []diplomacy.Power
}

// Contains reports whether the coalition includes the power.
func (c Coalition) Contains(p diplomacy.Power) bool {
	for _, cp := range c.Powers {
		if cp == p {
			return true
		}
	}
	return false
}

// Opponents returns the powers outside the coalition, in standard order.
func (c Coalition) Opponents() []diplomacy.Power {
	var out []diplomacy.Power
	for _, p := range diplomacy.AllPowers() {
		if !c.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// ParseCoalition parses a coalition specification of the form
// "P1+P2" with power names matched case-insensitively
// ("Austria-Hungary" aliases to Austria). Unknown names are rejected.
func ParseCoalition(spec string) (Coalition, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Coalition{}, fmt.Errorf("empty coalition specification")
	}
	var powers []diplomacy.Power
	seen := make(map[diplomacy.Power]bool)
	for _, token := range strings.Split(spec, "+") {
		token = strings.TrimSpace(token)
		p, ok := diplomacy.ParsePower(token)
		if !ok {
			return Coalition{}, fmt.Errorf("unknown power %q in coalition %q", token, spec)
		}
		if !seen[p] {
			seen[p] = true
			powers = append(powers, p)
		}
	}
	if len(powers) == 0 {
		return Coalition{}, fmt.Errorf("coalition %q names no powers", spec)
	}

	names := make([]string, 0, len(powers))
	for _, p := range powers {
		names = append(names, diplomacy.DisplayPower(p))
	}
	return Coalition{Name: strings.Join(names, "+"), Powers: powers}, nil
}

// ParseCoalitions parses a comma-separated list of coalition
// specifications ("P1+P2,P3+P4").
func ParseCoalitions(spec string) ([]Coalition, error) {
	var out []Coalition
	for _, token := range strings.Split(spec, ",") {
		c, err := ParseCoalition(token)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// SelectCoalition picks the coalition matching the optimize-for
// identifier (case-insensitive name match), or the first one when the
// identifier is empty.
func SelectCoalition(coalitions []Coalition, optimizeFor string) (Coalition, error) {
	if len(coalitions) == 0 {
		return Coalition{}, fmt.Errorf("no coalitions given")
	}
	if optimizeFor == "" {
		return coalitions[0], nil
	}
	for _, c := range coalitions {
		if strings.EqualFold(c.Name, optimizeFor) {
			return c, nil
		}
	}
	// Allow optimizing for a single member power of a listed coalition.
	if p, ok := diplomacy.ParsePower(optimizeFor); ok {
		for _, c := range coalitions {
			if c.Contains(p) {
				return c, nil
			}
		}
	}
	return Coalition{}, fmt.Errorf("no coalition matches %q", optimizeFor)
}

// PriorityAction adjusts the fitness score when a power occupies a region.
type PriorityAction int

const (
	Deny  PriorityAction = iota // -1000 when the power occupies the region
	Allow                       // +1000 when the power occupies the region
)

// Priority ties the fitness score to a specific (power, region) occupancy.
type Priority struct {
	Action   PriorityAction
	Power    diplomacy.Power
	Province string
}

// ParsePriority parses "<deny|allow> <power> <region>" case-insensitively,
// rejecting unknown powers and unknown region tags.
func ParsePriority(spec string, m *diplomacy.DiplomacyMap) (Priority, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(spec)))
	if len(fields) != 3 {
		return Priority{}, fmt.Errorf("priority %q: want <deny|allow> <power> <region>", spec)
	}

	var action PriorityAction
	switch fields[0] {
	case "deny":
		action = Deny
	case "allow":
		action = Allow
	default:
		return Priority{}, fmt.Errorf("priority %q: unknown action %q", spec, fields[0])
	}

	power, ok := diplomacy.ParsePower(fields[1])
	if !ok {
		return Priority{}, fmt.Errorf("priority %q: unknown power %q", spec, fields[1])
	}

	region := fields[2]
	if m.ProvinceIndex(region) < 0 {
		return Priority{}, fmt.Errorf("priority %q: unknown region %q", spec, region)
	}

	return Priority{Action: action, Power: power, Province: region}, nil
}
