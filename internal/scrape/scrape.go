// Package scrape fetches a Backstabbr game page and extracts the game
// state embedded in its JavaScript. Scrape failures are reported as
// wrapped errors and never reach the analytical core.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// regionAliases maps Backstabbr-specific region tags to the canonical
// three-letter tags used by the map table.
var regionAliases = map[string]string{
	"nor": "nwy", // Norway
	"lyo": "gol", // Gulf of Lyon
	"tyn": "tys", // Tyrrhenian Sea
	"nat": "nao", // North Atlantic Ocean
}

// UnitSpec is one scraped unit: either a bare one-letter kind ("A"/"F")
// or an object carrying the kind and an optional coast.
type UnitSpec struct {
	Kind  string
	Coast string
}

// UnmarshalJSON accepts both the string and the object form.
func (u *UnitSpec) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		u.Kind = s
		return nil
	}
	var obj struct {
		Kind  string `json:"kind"`
		Type  string `json:"type"`
		Coast string `json:"coast"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.Kind = obj.Kind
	if u.Kind == "" {
		u.Kind = obj.Type
	}
	u.Coast = obj.Coast
	return nil
}

// Game is the scraped payload before conversion to a GameState.
type Game struct {
	ID          string
	Name        string
	Turn        diplomacy.Turn
	Units       map[string]map[string]UnitSpec // player name -> region -> unit
	Territories map[string]string              // region -> owning power name
}

// Client fetches and parses game pages.
type Client struct {
	httpC *http.Client
}

// NewClient creates a scraper with a request timeout.
func NewClient() *Client {
	return &Client{httpC: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch downloads the game page and extracts the embedded state.
func (c *Client) Fetch(ctx context.Context, url string) (*Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: build request: %w", err)
	}
	resp, err := c.httpC.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("scrape: read %s: %w", url, err)
	}

	game, err := Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse %s: %w", url, err)
	}
	if game.ID == "" {
		game.ID = idFromURL(url)
	}
	log.Debug().Str("game", game.ID).Int("players", len(game.Units)).Msg("scraped game state")
	return game, nil
}

var (
	turnRe   = regexp.MustCompile(`(?i)\b(spring|fall)\s+(\d{4})\b`)
	gameIDRe = regexp.MustCompile(`(?i)game_?id\s*[=:]\s*["']([^"']+)["']`)
	nameRe   = regexp.MustCompile(`(?i)game_?name\s*[=:]\s*["']([^"']+)["']`)
	phaseRe  = regexp.MustCompile(`(?i)phase\s*[=:]\s*["']([^"']+)["']`)
)

// Parse extracts the embedded game state from a page body.
func Parse(body string) (*Game, error) {
	unitsRaw, err := extractJSObject(body, "unitsByPlayer")
	if err != nil {
		return nil, err
	}
	terrRaw, err := extractJSObject(body, "territories")
	if err != nil {
		return nil, err
	}

	game := &Game{Turn: diplomacy.Turn{Year: 1901, Season: diplomacy.Spring, Phase: diplomacy.PhaseMovement}}
	if err := json.Unmarshal([]byte(unitsRaw), &game.Units); err != nil {
		return nil, fmt.Errorf("decode unitsByPlayer: %w", err)
	}
	if err := json.Unmarshal([]byte(terrRaw), &game.Territories); err != nil {
		return nil, fmt.Errorf("decode territories: %w", err)
	}

	if m := turnRe.FindStringSubmatch(body); m != nil {
		year, _ := strconv.Atoi(m[2])
		if year >= 1901 {
			game.Turn.Year = year
		}
		if strings.EqualFold(m[1], "fall") {
			game.Turn.Season = diplomacy.Fall
		}
	}
	if m := phaseRe.FindStringSubmatch(body); m != nil {
		switch strings.ToLower(m[1]) {
		case "retreat", "retreats":
			game.Turn.Phase = diplomacy.PhaseRetreat
		case "build", "builds", "adjustment", "adjustments":
			game.Turn.Phase = diplomacy.PhaseBuild
		}
	}
	if m := gameIDRe.FindStringSubmatch(body); m != nil {
		game.ID = m[1]
	}
	if m := nameRe.FindStringSubmatch(body); m != nil {
		game.Name = m[1]
	}

	return game, nil
}

// extractJSObject finds `name = {...}` in the body and returns the
// balanced-brace object literal.
func extractJSObject(body, name string) (string, error) {
	idx := strings.Index(body, name)
	if idx < 0 {
		return "", fmt.Errorf("embedded %s not found", name)
	}
	rest := body[idx+len(name):]
	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return "", fmt.Errorf("embedded %s has no object literal", name)
	}
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(rest); i++ {
		ch := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[open : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("embedded %s object is unterminated", name)
}

func idFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// NormalizeRegion lowercases a scraped region tag, splits off a coast
// qualifier ("spa/sc", "spa_sc", "spa-sc"), and applies the Backstabbr
// alias table.
func NormalizeRegion(tag string) (string, diplomacy.Coast) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	coast := diplomacy.NoCoast
	for _, sep := range []string{"/", "_", "-"} {
		if i := strings.Index(tag, sep); i >= 0 {
			coast = parseCoast(tag[i+len(sep):])
			tag = tag[:i]
			break
		}
	}
	if canon, ok := regionAliases[tag]; ok {
		tag = canon
	}
	return tag, coast
}

func parseCoast(s string) diplomacy.Coast {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nc", "north":
		return diplomacy.NorthCoast
	case "sc", "south":
		return diplomacy.SouthCoast
	case "ec", "east":
		return diplomacy.EastCoast
	case "wc", "west":
		return diplomacy.WestCoast
	}
	return diplomacy.NoCoast
}

// GameState converts the scraped payload into a core state. Player and
// power names match case-insensitively ("Austria-Hungary" aliases to
// Austria); unknown players, unknown regions, and coastless fleets on
// split-coast provinces are rejected.
func (g *Game) GameState() (*diplomacy.GameState, error) {
	m := diplomacy.StandardMap()
	gs := &diplomacy.GameState{
		Turn:          g.Turn,
		SupplyCenters: make(map[string]diplomacy.Power),
	}

	// Start from the standard supply-center set so unowned centers stay
	// present (and neutral).
	for sc := range diplomacy.NewInitialState().SupplyCenters {
		gs.SupplyCenters[sc] = diplomacy.Neutral
	}

	for name := range g.Units {
		if _, ok := diplomacy.ParsePower(name); !ok {
			return nil, fmt.Errorf("unknown player %q", name)
		}
	}

	for _, power := range diplomacy.AllPowers() {
		spec, ok := findPlayer(g.Units, power)
		if !ok {
			continue
		}
		for tag, u := range spec {
			region, coast := NormalizeRegion(tag)
			if m.ProvinceIndex(region) < 0 {
				return nil, fmt.Errorf("unknown region %q for %s", tag, power)
			}
			var kind diplomacy.UnitType
			switch strings.ToUpper(strings.TrimSpace(u.Kind)) {
			case "A", "ARMY":
				kind = diplomacy.Army
			case "F", "FLEET":
				kind = diplomacy.Fleet
			default:
				return nil, fmt.Errorf("unknown unit kind %q at %s", u.Kind, region)
			}
			if u.Coast != "" {
				coast = parseCoast(u.Coast)
			}
			if kind == diplomacy.Fleet && m.HasCoasts(region) && coast == diplomacy.NoCoast {
				return nil, fmt.Errorf("fleet at %s requires a coast", region)
			}
			if kind == diplomacy.Army {
				coast = diplomacy.NoCoast
			}
			gs.Units = append(gs.Units, diplomacy.Unit{
				Type: kind, Power: power, Province: region, Coast: coast,
			})
		}
	}

	// Scraped maps iterate in random order; keep the unit list canonical.
	sort.Slice(gs.Units, func(i, j int) bool {
		a, b := gs.Units[i], gs.Units[j]
		if a.Power != b.Power {
			return diplomacy.PowerIndex(a.Power) < diplomacy.PowerIndex(b.Power)
		}
		return a.Province < b.Province
	})

	for tag, owner := range g.Territories {
		region, _ := NormalizeRegion(tag)
		if m.ProvinceIndex(region) < 0 {
			return nil, fmt.Errorf("unknown territory %q", tag)
		}
		prov := m.Provinces[region]
		if prov == nil || !prov.IsSupplyCenter {
			continue
		}
		power, ok := diplomacy.ParsePower(owner)
		if !ok {
			return nil, fmt.Errorf("unknown power %q owning %s", owner, region)
		}
		gs.SupplyCenters[region] = power
	}

	return gs, nil
}

func findPlayer(units map[string]map[string]UnitSpec, power diplomacy.Power) (map[string]UnitSpec, bool) {
	for name, spec := range units {
		if p, ok := diplomacy.ParsePower(name); ok && p == power {
			return spec, true
		}
	}
	return nil, false
}
