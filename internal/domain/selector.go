package domain

import "strings"

// SeasonMode tells how a season selector scopes a query.
type SeasonMode int

const (
	// SeasonAuto picks the most recent season with data for the division.
	SeasonAuto SeasonMode = iota
	// SeasonAll removes the season filter.
	SeasonAll
	// SeasonExplicit filters on one season code.
	SeasonExplicit
)

// SeasonSelector is the parsed ?season= query argument.
type SeasonSelector struct {
	Mode SeasonMode
	Code string
}

// ParseSeasonSelector interprets "" as auto and all/any/* as no filter.
func ParseSeasonSelector(raw string) SeasonSelector {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "":
		return SeasonSelector{Mode: SeasonAuto}
	case "all", "any", "*":
		return SeasonSelector{Mode: SeasonAll}
	}
	return SeasonSelector{Mode: SeasonExplicit, Code: v}
}
