package domain

import (
	"sort"
	"strings"
)

// Canonical division codes.
const (
	DivisionChampion = "champion"
	DivisionD1       = "d1"
	DivisionD2       = "d2"
)

var divisionAliases = map[string]string{
	"champ":        DivisionChampion,
	"champion":     DivisionChampion,
	"championship": DivisionChampion,
	"c":            DivisionChampion,
	"d1":           DivisionD1,
	"div1":         DivisionD1,
	"division1":    DivisionD1,
	"division 1":   DivisionD1,
	"1":            DivisionD1,
	"d2":           DivisionD2,
	"div2":         DivisionD2,
	"division2":    DivisionD2,
	"division 2":   DivisionD2,
	"2":            DivisionD2,
}

var divisionOrder = map[string]int{
	DivisionChampion: 0,
	DivisionD1:       1,
	DivisionD2:       2,
}

// NormalizeDivisionCode maps the accepted spellings of a division onto its
// canonical code. Unknown codes are returned trimmed and lower-cased.
func NormalizeDivisionCode(code string) string {
	v := strings.ToLower(strings.TrimSpace(code))
	if canonical, ok := divisionAliases[v]; ok {
		return canonical
	}
	return v
}

// DivisionRank is the display position of a division; unknown codes sort last.
func DivisionRank(code string) int {
	if r, ok := divisionOrder[NormalizeDivisionCode(code)]; ok {
		return r
	}
	return 99
}

// Division is a league tier.
type Division struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// SortDivisions orders divisions champion, d1, d2, then by id.
func SortDivisions(divs []Division) {
	sort.SliceStable(divs, func(i, j int) bool {
		ri, rj := DivisionRank(divs[i].Code), DivisionRank(divs[j].Code)
		if ri != rj {
			return ri < rj
		}
		return divs[i].ID < divs[j].ID
	})
}

// Season is a bounded competitive period.
type Season struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Team represents a teams row.
type Team struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url"`
}

// PointsBoardOnly reports whether a division publishes only the points
// leaderboard. Lower tiers skip rebounds, assists, steals and blocks.
func PointsBoardOnly(code string) bool {
	c := NormalizeDivisionCode(code)
	return c == DivisionD1 || c == DivisionD2
}
