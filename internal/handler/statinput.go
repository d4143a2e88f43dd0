package handler

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/perfectballers/league/internal/domain"
)

// statAliases lists the accepted request keys of each counter, canonical first.
var statAliases = []struct {
	field domain.StatField
	keys  []string
}{
	{domain.FieldOnePtMade, []string{"one_pt_made", "one_points", "ones", "p1"}},
	{domain.FieldTwoPtMade, []string{"two_pt_made", "two_points", "twos", "p2"}},
	{domain.FieldThreePtMade, []string{"three_pt_made", "three_points", "threes", "p3"}},
	{domain.FieldPoints, []string{"points", "pts"}},
	{domain.FieldRebounds, []string{"rebounds", "reb"}},
	{domain.FieldAssists, []string{"assists", "ast"}},
	{domain.FieldSteals, []string{"steals", "stl"}},
	{domain.FieldBlocks, []string{"blocks", "blk"}},
	{domain.FieldFouls, []string{"fouls", "pf"}},
}

// statPayload is a loosely typed stat body: numbers may arrive as JSON
// numbers or numeric strings under any accepted alias.
type statPayload map[string]json.RawMessage

// pick returns the first present, non-null key.
func (p statPayload) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// intOf reads a number or numeric string; anything else is zero.
func intOf(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return int(f)
	}
	return 0
}

func (p statPayload) count(keys ...string) int {
	if v, ok := p.pick(keys...); ok {
		return intOf(v)
	}
	return 0
}

// input normalises the payload into the canonical write shape. Points are
// derived from the made shots when no points key is present. Negative
// counters are clamped.
func (p statPayload) input() domain.StatLineInput {
	in := domain.StatLineInput{
		PlayerID: int64(p.count("player_id")),
		TeamID:   int64(p.count("team_id")),
	}

	counts := make(map[domain.StatField]int, len(statAliases))
	for _, a := range statAliases {
		counts[a.field] = p.count(a.keys...)
	}
	c := domain.StatCounts{
		Rebounds:    counts[domain.FieldRebounds],
		Assists:     counts[domain.FieldAssists],
		Steals:      counts[domain.FieldSteals],
		Blocks:      counts[domain.FieldBlocks],
		Fouls:       counts[domain.FieldFouls],
		OnePtMade:   counts[domain.FieldOnePtMade],
		TwoPtMade:   counts[domain.FieldTwoPtMade],
		ThreePtMade: counts[domain.FieldThreePtMade],
	}.Clamped()
	if _, ok := p.pick("points", "pts"); ok {
		c.Points = max(0, counts[domain.FieldPoints])
	} else {
		c.Points = domain.DerivePoints(c.OnePtMade, c.TwoPtMade, c.ThreePtMade)
	}
	in.Counts = c

	if v, ok := p.pick("name"); ok {
		var name string
		if json.Unmarshal(v, &name) == nil && strings.TrimSpace(name) != "" {
			in.Profile.Name = &name
		}
	}
	if v, ok := p.pick("number"); ok {
		if n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(string(v)), `"`)); err == nil {
			in.Profile.Number = &n
		}
	}
	return in
}
