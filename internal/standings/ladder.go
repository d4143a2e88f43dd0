// Package standings builds the division ladder and the player leaderboards
// from an in-memory snapshot of matches and box score rows. Builders do no
// I/O and are safe for concurrent use.
package standings

import (
	"sort"
	"strings"

	"github.com/perfectballers/league/internal/domain"
)

// League points per result.
const (
	WinPoints  = 3
	DrawPoints = 2
	LossPoints = 1
)

// A team that sat out ByeThreshold or more rounds receives ByeBonus once.
const (
	ByeThreshold = 2
	ByeBonus     = 2
)

// LadderInput is the snapshot a ladder is built from. Matches must already be
// season-scoped; stage and team involvement are filtered here. PlayerPoints
// holds the summed box score points per match side.
type LadderInput struct {
	Teams        []domain.Team
	Matches      []domain.Match
	PlayerPoints map[domain.MatchTeamKey]int
}

// LadderRow is one ranked team.
type LadderRow struct {
	TeamID        int64   `json:"team_id"`
	Name          string  `json:"name"`
	LogoURL       *string `json:"logo_url"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	Points        int     `json:"points"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	PointDiff     int     `json:"point_diff"`
	Rank          int     `json:"rank"`
}

// ByeInfo explains the bye bonus of one team.
type ByeInfo struct {
	Played int `json:"played"`
	Byes   int `json:"byes"`
	Bonus  int `json:"bonus"`
}

// Ladder is the ranked table plus the counters used to build it.
type Ladder struct {
	Rows        []LadderRow
	RoundsTotal int
	MatchCount  int
	Byes        map[int64]ByeInfo
}

// BuildLadder ranks every team in the input. Teams without a counted match
// appear with zero results and, when eligible, the bye bonus only.
func BuildLadder(in LadderInput) Ladder {
	// a team listed under several seasons appears once
	scope := make(map[int64]bool, len(in.Teams))
	teams := make([]domain.Team, 0, len(in.Teams))
	rows := make(map[int64]*LadderRow, len(in.Teams))
	for _, t := range in.Teams {
		if scope[t.ID] {
			continue
		}
		scope[t.ID] = true
		teams = append(teams, t)
		rows[t.ID] = &LadderRow{TeamID: t.ID, Name: t.Name, LogoURL: t.LogoURL}
	}

	rounds := make(map[int]bool)
	played := make(map[int64]map[int]bool)
	matchCount := 0

	for _, m := range in.Matches {
		if !m.IsRegular() || !m.Involves(scope) {
			continue
		}

		if m.RoundNo != nil {
			rounds[*m.RoundNo] = true
			for _, id := range []*int64{m.HomeTeamID, m.AwayTeamID} {
				if id == nil {
					continue
				}
				if played[*id] == nil {
					played[*id] = make(map[int]bool)
				}
				played[*id][*m.RoundNo] = true
			}
		}

		home, away, ok := matchScore(m, in.PlayerPoints)
		if !ok {
			continue
		}
		matchCount++
		if m.HomeTeamID != nil {
			if r := rows[*m.HomeTeamID]; r != nil {
				r.record(home, away)
			}
		}
		if m.AwayTeamID != nil {
			if r := rows[*m.AwayTeamID]; r != nil {
				r.record(away, home)
			}
		}
	}

	out := Ladder{
		Rows:        make([]LadderRow, 0, len(teams)),
		RoundsTotal: len(rounds),
		MatchCount:  matchCount,
		Byes:        make(map[int64]ByeInfo, len(teams)),
	}
	for _, t := range teams {
		r := rows[t.ID]
		info := ByeInfo{Played: len(played[t.ID])}
		info.Byes = max(0, out.RoundsTotal-info.Played)
		if info.Byes >= ByeThreshold {
			info.Bonus = ByeBonus
		}
		r.Points = WinPoints*r.Wins + DrawPoints*r.Draws + LossPoints*r.Losses + info.Bonus
		r.PointDiff = r.PointsFor - r.PointsAgainst
		out.Byes[t.ID] = info
		out.Rows = append(out.Rows, *r)
	}

	SortLadder(out.Rows)
	for i := range out.Rows {
		out.Rows[i].Rank = i + 1
	}
	return out
}

// SortLadder orders rows by points, point differential and points for, all
// descending, then by team name ignoring case.
func SortLadder(rows []LadderRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.PointDiff != b.PointDiff {
			return a.PointDiff > b.PointDiff
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func (r *LadderRow) record(own, opp int) {
	switch {
	case own > opp:
		r.Wins++
	case own == opp:
		r.Draws++
	default:
		r.Losses++
	}
	r.PointsFor += own
	r.PointsAgainst += opp
}

// matchScore resolves both sides of a match, preferring the stored score and
// falling back to the box score sum. ok is false for a match with no stored
// score and no box score points, which has not been played.
func matchScore(m domain.Match, playerPoints map[domain.MatchTeamKey]int) (home, away int, ok bool) {
	home = sideScore(m.ID, m.HomeScore, m.HomeTeamID, playerPoints)
	away = sideScore(m.ID, m.AwayScore, m.AwayTeamID, playerPoints)
	ok = m.HomeScore != nil || m.AwayScore != nil || home+away > 0
	return home, away, ok
}

func sideScore(matchID int64, stored *int, teamID *int64, playerPoints map[domain.MatchTeamKey]int) int {
	if stored != nil {
		return *stored
	}
	if teamID == nil {
		return 0
	}
	return playerPoints[domain.MatchTeamKey{MatchID: matchID, TeamID: *teamID}]
}
