package domain

import "strings"

// Match stages.
const (
	StageRegular = "regular"
	StagePlayoff = "playoff"
)

// Match represents a matches row. Date and Time are the stored calendar
// values rendered as YYYY-MM-DD and HH:MM:SS.
type Match struct {
	ID         int64   `json:"id"`
	SeasonID   *int64  `json:"season_id"`
	DivisionID int64   `json:"division_id"`
	Stage      *string `json:"stage"`
	RoundNo    *int    `json:"round_no"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Venue      *string `json:"venue"`
	Status     *string `json:"status"`
	HomeTeamID *int64  `json:"home_team_id"`
	AwayTeamID *int64  `json:"away_team_id"`
	HomeScore  *int    `json:"home_score"`
	AwayScore  *int    `json:"away_score"`
}

// IsRegular reports whether the match counts toward standings and rankings.
// A missing stage is treated as regular.
func (m Match) IsRegular() bool {
	return IsRegularStage(m.Stage)
}

// Involves reports whether either side is one of the given teams.
func (m Match) Involves(teams map[int64]bool) bool {
	return (m.HomeTeamID != nil && teams[*m.HomeTeamID]) ||
		(m.AwayTeamID != nil && teams[*m.AwayTeamID])
}

// IsRegularStage applies the regular-season rule to a raw stage value.
func IsRegularStage(stage *string) bool {
	if stage == nil {
		return true
	}
	v := strings.ToLower(strings.TrimSpace(*stage))
	return v == "" || v == StageRegular
}

// MatchTeamKey addresses one side of one match.
type MatchTeamKey struct {
	MatchID int64
	TeamID  int64
}

// SideTotals is the summed box score of one team in one match.
type SideTotals struct {
	Points int `json:"pts"`
	Fouls  int `json:"fouls"`
}

// MatchTotals holds both sides of a recomputed match.
type MatchTotals struct {
	Home SideTotals `json:"home"`
	Away SideTotals `json:"away"`
}

// TeamTotal is one grouped row of the per-team box score sum.
type TeamTotal struct {
	TeamID int64
	Points int
	Fouls  int
}

// TotalsFor splits grouped team sums into home and away sides. Teams that
// have no rows yet contribute zero; rows for other teams are ignored.
func TotalsFor(m Match, rows []TeamTotal) MatchTotals {
	var out MatchTotals
	for _, r := range rows {
		switch {
		case m.HomeTeamID != nil && r.TeamID == *m.HomeTeamID:
			out.Home = SideTotals{Points: r.Points, Fouls: r.Fouls}
		case m.AwayTeamID != nil && r.TeamID == *m.AwayTeamID:
			out.Away = SideTotals{Points: r.Points, Fouls: r.Fouls}
		}
	}
	return out
}
