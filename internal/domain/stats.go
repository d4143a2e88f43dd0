package domain

import (
	"fmt"
	"strings"
)

// StatField is a canonical column of match_player_stats.
type StatField string

const (
	FieldPoints      StatField = "points"
	FieldRebounds    StatField = "rebounds"
	FieldAssists     StatField = "assists"
	FieldSteals      StatField = "steals"
	FieldBlocks      StatField = "blocks"
	FieldFouls       StatField = "fouls"
	FieldOnePtMade   StatField = "one_pt_made"
	FieldTwoPtMade   StatField = "two_pt_made"
	FieldThreePtMade StatField = "three_pt_made"
)

// StatFields lists every canonical field in storage order.
var StatFields = []StatField{
	FieldPoints, FieldRebounds, FieldAssists, FieldSteals, FieldBlocks, FieldFouls,
	FieldOnePtMade, FieldTwoPtMade, FieldThreePtMade,
}

// legacy scorer-pad names
var statFieldShortNames = map[string]StatField{
	"one":   FieldOnePtMade,
	"two":   FieldTwoPtMade,
	"three": FieldThreePtMade,
	"foul":  FieldFouls,
}

// ParseStatField resolves a canonical or scorer-pad field name.
func ParseStatField(name string) (StatField, error) {
	v := strings.ToLower(strings.TrimSpace(name))
	if f, ok := statFieldShortNames[v]; ok {
		return f, nil
	}
	if f := StatField(v); f.Valid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown stat field %q", name)
}

// Valid reports whether f is a canonical field.
func (f StatField) Valid() bool {
	for _, v := range StatFields {
		if v == f {
			return true
		}
	}
	return false
}

// IsMadeShot reports whether the field is one of the 1/2/3-point make counters.
func (f StatField) IsMadeShot() bool {
	return f == FieldOnePtMade || f == FieldTwoPtMade || f == FieldThreePtMade
}

// ClampAdd applies delta to a counter without going below zero.
func ClampAdd(value, delta int) int {
	return max(0, value+delta)
}

// DerivePoints converts made-shot counters into points.
func DerivePoints(one, two, three int) int {
	return one + 2*two + 3*three
}

// StatCounts is the per-game statistical line of one player.
type StatCounts struct {
	Points      int `json:"points"`
	Rebounds    int `json:"rebounds"`
	Assists     int `json:"assists"`
	Steals      int `json:"steals"`
	Blocks      int `json:"blocks"`
	Fouls       int `json:"fouls"`
	OnePtMade   int `json:"one_pt_made"`
	TwoPtMade   int `json:"two_pt_made"`
	ThreePtMade int `json:"three_pt_made"`
}

// Get returns the value of one field.
func (c StatCounts) Get(f StatField) int {
	switch f {
	case FieldPoints:
		return c.Points
	case FieldRebounds:
		return c.Rebounds
	case FieldAssists:
		return c.Assists
	case FieldSteals:
		return c.Steals
	case FieldBlocks:
		return c.Blocks
	case FieldFouls:
		return c.Fouls
	case FieldOnePtMade:
		return c.OnePtMade
	case FieldTwoPtMade:
		return c.TwoPtMade
	case FieldThreePtMade:
		return c.ThreePtMade
	}
	return 0
}

// Clamped returns a copy with every negative counter raised to zero.
func (c StatCounts) Clamped() StatCounts {
	return StatCounts{
		Points:      max(0, c.Points),
		Rebounds:    max(0, c.Rebounds),
		Assists:     max(0, c.Assists),
		Steals:      max(0, c.Steals),
		Blocks:      max(0, c.Blocks),
		Fouls:       max(0, c.Fouls),
		OnePtMade:   max(0, c.OnePtMade),
		TwoPtMade:   max(0, c.TwoPtMade),
		ThreePtMade: max(0, c.ThreePtMade),
	}
}

// StatLine is one match_player_stats row, keyed by (MatchID, PlayerID).
// PlayerName, TeamName and TeamLogo are filled by joined reads only.
type StatLine struct {
	ID       int64 `json:"id"`
	MatchID  int64 `json:"match_id"`
	PlayerID int64 `json:"player_id"`
	TeamID   int64 `json:"team_id"`
	StatCounts

	PlayerName *string `json:"-"`
	TeamName   *string `json:"-"`
	TeamLogo   *string `json:"-"`
}

// StatLineInput is the canonical write shape produced by the HTTP boundary.
type StatLineInput struct {
	PlayerID int64
	TeamID   int64
	Counts   StatCounts
	Profile  PlayerProfileUpdate
}
