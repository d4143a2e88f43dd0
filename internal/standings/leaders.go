package standings

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/perfectballers/league/internal/domain"
)

// GamesOrder decides whether fewer or more games wins a tie on average and total.
type GamesOrder string

const (
	GamesAscending  GamesOrder = "asc"
	GamesDescending GamesOrder = "desc"
)

// ParseGamesOrder accepts asc or desc; empty means asc.
func ParseGamesOrder(s string) (GamesOrder, error) {
	switch GamesOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", GamesAscending:
		return GamesAscending, nil
	case GamesDescending:
		return GamesDescending, nil
	}
	return "", fmt.Errorf("unknown games tie-break %q", s)
}

// DefaultTop is the board length when none is requested.
const DefaultTop = 10

// ClampTop bounds a requested board length to [1, limit].
func ClampTop(n, limit int) int {
	return max(1, min(limit, n))
}

// Categories are the leaderboard statistics in display order.
var Categories = []domain.StatField{
	domain.FieldPoints, domain.FieldRebounds, domain.FieldAssists, domain.FieldSteals, domain.FieldBlocks,
}

// LeaderOptions tunes BuildLeaders.
type LeaderOptions struct {
	Top        int
	PointsOnly bool
	GamesOrder GamesOrder
}

// LeaderRow is one ranked player on one board.
type LeaderRow struct {
	PlayerID int64   `json:"player_id"`
	Player   string  `json:"player"`
	TeamID   int64   `json:"team_id"`
	Team     string  `json:"team"`
	LogoURL  *string `json:"logo_url"`
	Total    int     `json:"total"`
	Games    int     `json:"games"`
	Avg      float64 `json:"avg"`
	Rank     int     `json:"rank"`
}

// Boards holds one leaderboard per category. Every board is non-nil.
type Boards struct {
	Points   []LeaderRow `json:"points"`
	Rebounds []LeaderRow `json:"rebounds"`
	Assists  []LeaderRow `json:"assists"`
	Steals   []LeaderRow `json:"steals"`
	Blocks   []LeaderRow `json:"blocks"`
}

// Board returns the rows of one category.
func (b Boards) Board(f domain.StatField) []LeaderRow {
	switch f {
	case domain.FieldPoints:
		return b.Points
	case domain.FieldRebounds:
		return b.Rebounds
	case domain.FieldAssists:
		return b.Assists
	case domain.FieldSteals:
		return b.Steals
	case domain.FieldBlocks:
		return b.Blocks
	}
	return nil
}

type playerAgg struct {
	playerID int64
	name     string
	teamID   int64
	team     string
	logo     *string
	lastSeen int64
	matches  map[int64]bool
	totals   domain.StatCounts
}

// BuildLeaders aggregates box score lines per player and ranks each category
// by displayed average, total, games and name. Lines must already be scoped to regular
// season matches of the division. Players with no games or a zero total are
// left off that category's board.
func BuildLeaders(lines []domain.StatLine, opts LeaderOptions) Boards {
	if opts.Top <= 0 {
		opts.Top = DefaultTop
	}
	if opts.GamesOrder == "" {
		opts.GamesOrder = GamesAscending
	}

	players := aggregatePlayers(lines)

	out := Boards{
		Points:   board(players, domain.FieldPoints, opts),
		Rebounds: []LeaderRow{},
		Assists:  []LeaderRow{},
		Steals:   []LeaderRow{},
		Blocks:   []LeaderRow{},
	}
	if !opts.PointsOnly {
		out.Rebounds = board(players, domain.FieldRebounds, opts)
		out.Assists = board(players, domain.FieldAssists, opts)
		out.Steals = board(players, domain.FieldSteals, opts)
		out.Blocks = board(players, domain.FieldBlocks, opts)
	}
	return out
}

func aggregatePlayers(lines []domain.StatLine) []*playerAgg {
	byID := make(map[int64]*playerAgg)
	var order []*playerAgg
	for _, l := range lines {
		p := byID[l.PlayerID]
		if p == nil {
			p = &playerAgg{playerID: l.PlayerID, matches: make(map[int64]bool), lastSeen: -1}
			byID[l.PlayerID] = p
			order = append(order, p)
		}
		p.matches[l.MatchID] = true
		p.totals = addCounts(p.totals, l.StatCounts)
		if l.PlayerName != nil && *l.PlayerName != "" {
			p.name = *l.PlayerName
		}
		// displayed team follows the most recent match
		if l.MatchID > p.lastSeen {
			p.lastSeen = l.MatchID
			p.teamID = l.TeamID
			p.team = deref(l.TeamName)
			p.logo = l.TeamLogo
		}
	}
	for _, p := range order {
		if p.name == "" {
			p.name = fmt.Sprintf("Player #%d", p.playerID)
		}
		if p.team == "" {
			p.team = "-"
		}
	}
	return order
}

func board(players []*playerAgg, f domain.StatField, opts LeaderOptions) []LeaderRow {
	rows := make([]LeaderRow, 0, len(players))
	for _, p := range players {
		total := p.totals.Get(f)
		games := len(p.matches)
		if games <= 0 || total <= 0 {
			continue
		}
		avg := float64(total) / float64(games)
		rows = append(rows, LeaderRow{
			PlayerID: p.playerID,
			Player:   p.name,
			TeamID:   p.teamID,
			Team:     p.team,
			LogoURL:  p.logo,
			Total:    total,
			Games:    games,
			Avg:      math.Round(avg*10) / 10,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Avg != b.Avg {
			return a.Avg > b.Avg
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Games != b.Games {
			if opts.GamesOrder == GamesDescending {
				return a.Games > b.Games
			}
			return a.Games < b.Games
		}
		an, bn := strings.ToLower(a.Player), strings.ToLower(b.Player)
		if an != bn {
			return an < bn
		}
		return a.PlayerID < b.PlayerID
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	if len(rows) > opts.Top {
		rows = rows[:opts.Top]
	}
	return rows
}

func addCounts(a, b domain.StatCounts) domain.StatCounts {
	return domain.StatCounts{
		Points:      a.Points + b.Points,
		Rebounds:    a.Rebounds + b.Rebounds,
		Assists:     a.Assists + b.Assists,
		Steals:      a.Steals + b.Steals,
		Blocks:      a.Blocks + b.Blocks,
		Fouls:       a.Fouls + b.Fouls,
		OnePtMade:   a.OnePtMade + b.OnePtMade,
		TwoPtMade:   a.TwoPtMade + b.TwoPtMade,
		ThreePtMade: a.ThreePtMade + b.ThreePtMade,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
