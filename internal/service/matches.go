package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/matchstatus"
	"github.com/perfectballers/league/internal/repository"
)

// MatchService renders single-match views with the resolved status.
type MatchService struct {
	db      repository.DBTX
	leagues repository.LeagueRepository
	matches repository.MatchRepository
	stats   repository.StatsRepository
	players repository.PlayerRepository
	clock   matchstatus.Clock
	logger  *slog.Logger
}

// NewMatchService creates a MatchService.
func NewMatchService(
	db repository.DBTX,
	leagues repository.LeagueRepository,
	matches repository.MatchRepository,
	stats repository.StatsRepository,
	players repository.PlayerRepository,
	clock matchstatus.Clock,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		db:      db,
		leagues: leagues,
		matches: matches,
		stats:   stats,
		players: players,
		clock:   clock,
		logger:  logger,
	}
}

// MatchView is a match with its display status resolved.
type MatchView struct {
	domain.Match
	RawStatus *string            `json:"raw_status"`
	Status    matchstatus.Status `json:"status"`
}

// RosterLine is one rostered player and their line in the match, zeros
// when they have none.
type RosterLine struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Number   *int   `json:"number"`
	domain.StatCounts
}

// LineupSide is one team of a lineup.
type LineupSide struct {
	Team    *domain.Team      `json:"team"`
	Players []RosterLine      `json:"players"`
	Totals  domain.SideTotals `json:"totals"`
}

// Lineup is the scorer's view of a match.
type Lineup struct {
	Match MatchView  `json:"match"`
	Home  LineupSide `json:"home"`
	Away  LineupSide `json:"away"`
}

// BoxscoreLine is a stored line with display names.
type BoxscoreLine struct {
	domain.StatLine
	Player string `json:"player"`
	Team   string `json:"team"`
}

// Boxscore is every stored line of a match plus the per-side totals.
type Boxscore struct {
	Match  MatchView          `json:"match"`
	Lines  []BoxscoreLine     `json:"lines"`
	Totals domain.MatchTotals `json:"totals"`
}

// Resolve wraps a match with its status at the current league time.
func (s *MatchService) Resolve(m domain.Match) MatchView {
	return MatchView{
		Match:     m,
		RawStatus: m.Status,
		Status:    matchstatus.ResolvePtr(m.Status, m.Date, m.Time, s.clock.Now()),
	}
}

// Lineup returns both rosters, ordered by shirt number, with their lines.
func (s *MatchService) Lineup(ctx context.Context, matchID int64) (*Lineup, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	lines, err := s.stats.ListForMatches(ctx, s.db, []int64{m.ID})
	if err != nil {
		return nil, domain.ErrInternal("list stat lines", err)
	}
	byPlayer := make(map[int64]domain.StatCounts, len(lines))
	for _, l := range lines {
		byPlayer[l.PlayerID] = l.StatCounts
	}
	totals := totalsFromLines(*m, lines)

	home, err := s.side(ctx, m.HomeTeamID, byPlayer)
	if err != nil {
		return nil, err
	}
	away, err := s.side(ctx, m.AwayTeamID, byPlayer)
	if err != nil {
		return nil, err
	}
	home.Totals, away.Totals = totals.Home, totals.Away

	return &Lineup{Match: s.Resolve(*m), Home: home, Away: away}, nil
}

// Boxscore returns every stored line of a match.
func (s *MatchService) Boxscore(ctx context.Context, matchID int64) (*Boxscore, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	lines, err := s.stats.ListForMatches(ctx, s.db, []int64{m.ID})
	if err != nil {
		return nil, domain.ErrInternal("list stat lines", err)
	}

	out := &Boxscore{
		Match:  s.Resolve(*m),
		Lines:  make([]BoxscoreLine, 0, len(lines)),
		Totals: totalsFromLines(*m, lines),
	}
	for _, l := range lines {
		bl := BoxscoreLine{StatLine: l, Player: "Player #" + strconv.FormatInt(l.PlayerID, 10), Team: "-"}
		if l.PlayerName != nil && *l.PlayerName != "" {
			bl.Player = *l.PlayerName
		}
		if l.TeamName != nil && *l.TeamName != "" {
			bl.Team = *l.TeamName
		}
		out.Lines = append(out.Lines, bl)
	}
	return out, nil
}

func (s *MatchService) match(ctx context.Context, id int64) (*domain.Match, error) {
	if err := domain.ValidatePositiveID(id); err != nil {
		return nil, domain.ErrInvalidInput("match_id", err.Error())
	}
	m, err := s.matches.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", strconv.FormatInt(id, 10))
	}
	return m, nil
}

func (s *MatchService) side(ctx context.Context, teamID *int64, lines map[int64]domain.StatCounts) (LineupSide, error) {
	side := LineupSide{Players: []RosterLine{}}
	if teamID == nil {
		return side, nil
	}

	team, err := s.leagues.FindTeamByID(ctx, s.db, *teamID)
	if err != nil {
		return side, domain.ErrInternal("find team", err)
	}
	side.Team = team

	roster, err := s.players.ListByTeam(ctx, s.db, *teamID)
	if err != nil {
		return side, domain.ErrInternal("list roster", err)
	}
	for _, p := range roster {
		side.Players = append(side.Players, RosterLine{
			PlayerID:   p.ID,
			Name:       p.Name,
			Number:     p.Number,
			StatCounts: lines[p.ID],
		})
	}
	return side, nil
}

func totalsFromLines(m domain.Match, lines []domain.StatLine) domain.MatchTotals {
	var rows []domain.TeamTotal
	idx := make(map[int64]int)
	for _, l := range lines {
		i, ok := idx[l.TeamID]
		if !ok {
			i = len(rows)
			idx[l.TeamID] = i
			rows = append(rows, domain.TeamTotal{TeamID: l.TeamID})
		}
		rows[i].Points += l.Points
		rows[i].Fouls += l.Fouls
	}
	return domain.TotalsFor(m, rows)
}
