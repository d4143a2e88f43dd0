package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/infra"
	"github.com/perfectballers/league/internal/repository"
	"github.com/perfectballers/league/internal/standings"
)

// StandingsService loads division snapshots and runs the ladder and
// leaderboard builders over them. It never writes.
type StandingsService struct {
	db         repository.DBTX
	leagues    repository.LeagueRepository
	matches    repository.MatchRepository
	stats      repository.StatsRepository
	gamesOrder standings.GamesOrder
	maxTop     int
	metrics    *infra.Metrics
	logger     *slog.Logger
}

// NewStandingsService creates a StandingsService.
func NewStandingsService(
	db repository.DBTX,
	leagues repository.LeagueRepository,
	matches repository.MatchRepository,
	stats repository.StatsRepository,
	gamesOrder standings.GamesOrder,
	maxTop int,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *StandingsService {
	return &StandingsService{
		db:         db,
		leagues:    leagues,
		matches:    matches,
		stats:      stats,
		gamesOrder: gamesOrder,
		maxTop:     maxTop,
		metrics:    metrics,
		logger:     logger,
	}
}

// LadderDebug explains how a ladder was scoped.
type LadderDebug struct {
	TeamIDs     []int64                     `json:"team_ids"`
	MatchCount  int                         `json:"match_count"`
	RoundsTotal int                         `json:"rounds_total"`
	Byes        map[int64]standings.ByeInfo `json:"byes"`
	SeasonID    *int64                      `json:"season_id"`
	SeasonAll   bool                        `json:"season_all"`
	AutoMode    bool                        `json:"auto_mode"`
}

// LadderResult is the ladder of one division and season scope.
type LadderResult struct {
	Division string                `json:"division"`
	Season   *string               `json:"season"`
	Ladder   []standings.LadderRow `json:"ladder"`
	Debug    *LadderDebug          `json:"debug,omitempty"`
}

// RankingsDebug explains how the leaderboards were scoped.
type RankingsDebug struct {
	DivisionID      int64  `json:"division_id"`
	SeasonID        *int64 `json:"season_id"`
	MatchesCount    int    `json:"matches_count"`
	TeamsInDivision int    `json:"teams_in_division"`
	RowCount        int    `json:"row_count"`
}

// RankingsResult holds the leaderboards of one division and season scope.
type RankingsResult struct {
	Division string           `json:"division"`
	Season   *string          `json:"season"`
	Top      standings.Boards `json:"top"`
	Debug    *RankingsDebug   `json:"debug,omitempty"`
}

// seasonScope is a resolved season selector.
type seasonScope struct {
	id    *int64
	label *string
	all   bool
	auto  bool
}

// Divisions lists every division in display order.
func (s *StandingsService) Divisions(ctx context.Context) ([]domain.Division, error) {
	divs, err := s.leagues.ListDivisions(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list divisions", err)
	}
	if divs == nil {
		divs = []domain.Division{}
	}
	return divs, nil
}

// Ladder builds the standings of a division. An empty season argument picks
// the latest season with regular season matches, "all" drops the filter.
func (s *StandingsService) Ladder(ctx context.Context, divisionCode, seasonArg string, debug bool) (*LadderResult, error) {
	start := time.Now()

	div, err := s.division(ctx, divisionCode)
	if err != nil {
		return nil, err
	}
	scope, err := s.resolveSeason(ctx, div.ID, domain.ParseSeasonSelector(seasonArg), s.ladderAutoSeason)
	if err != nil {
		return nil, err
	}

	teams, err := s.leagues.ListDivisionTeams(ctx, s.db, div.ID, scope.id)
	if err != nil {
		return nil, domain.ErrInternal("list division teams", err)
	}
	teamIDs := teamIDsOf(teams)

	matches, err := s.matches.ListInvolving(ctx, s.db, teamIDs, repository.SeasonScope{
		ID:                scope.id,
		IncludeUnassigned: scope.auto,
	})
	if err != nil {
		return nil, domain.ErrInternal("list ladder matches", err)
	}
	matches = regularOnly(matches)

	points, err := s.stats.SumPointsByMatchTeam(ctx, s.db, matchIDsOf(matches))
	if err != nil {
		return nil, domain.ErrInternal("sum player points", err)
	}

	ladder := standings.BuildLadder(standings.LadderInput{
		Teams:        teams,
		Matches:      matches,
		PlayerPoints: points,
	})

	res := &LadderResult{Division: div.Code, Season: scope.label, Ladder: ladder.Rows}
	if debug {
		res.Debug = &LadderDebug{
			TeamIDs:     teamIDs,
			MatchCount:  ladder.MatchCount,
			RoundsTotal: ladder.RoundsTotal,
			Byes:        ladder.Byes,
			SeasonID:    scope.id,
			SeasonAll:   scope.all,
			AutoMode:    scope.auto,
		}
	}

	s.metrics.ObserveBuild("ladder", time.Since(start))
	s.logger.Debug("ladder built",
		"division", div.Code,
		"teams", len(teams),
		"matches", ladder.MatchCount,
		"rounds", ladder.RoundsTotal,
	)
	return res, nil
}

// PlayerRankings builds the leaderboards of a division. top is clamped to
// [1, max top]; zero means the default board length.
func (s *StandingsService) PlayerRankings(ctx context.Context, divisionCode, seasonArg string, top int, debug bool) (*RankingsResult, error) {
	start := time.Now()

	if top == 0 {
		top = standings.DefaultTop
	}
	top = standings.ClampTop(top, s.maxTop)

	div, err := s.division(ctx, divisionCode)
	if err != nil {
		return nil, err
	}
	scope, err := s.resolveSeason(ctx, div.ID, domain.ParseSeasonSelector(seasonArg), s.rankingsAutoSeason)
	if err != nil {
		return nil, err
	}

	teams, err := s.leagues.ListDivisionTeams(ctx, s.db, div.ID, scope.id)
	if err != nil {
		return nil, domain.ErrInternal("list division teams", err)
	}

	matches, err := s.matches.ListInDivisionScope(ctx, s.db, div.ID, teamIDsOf(teams), repository.SeasonScope{
		ID:                scope.id,
		IncludeUnassigned: true,
	})
	if err != nil {
		return nil, domain.ErrInternal("list ranking matches", err)
	}
	matches = regularOnly(matches)

	lines, err := s.stats.ListForMatches(ctx, s.db, matchIDsOf(matches))
	if err != nil {
		return nil, domain.ErrInternal("list stat lines", err)
	}

	boards := standings.BuildLeaders(lines, standings.LeaderOptions{
		Top:        top,
		PointsOnly: domain.PointsBoardOnly(div.Code),
		GamesOrder: s.gamesOrder,
	})

	res := &RankingsResult{Division: div.Code, Season: scope.label, Top: boards}
	if debug {
		res.Debug = &RankingsDebug{
			DivisionID:      div.ID,
			SeasonID:        scope.id,
			MatchesCount:    len(matches),
			TeamsInDivision: len(teams),
			RowCount:        len(lines),
		}
	}

	s.metrics.ObserveBuild("rankings", time.Since(start))
	s.logger.Debug("rankings built", "division", div.Code, "matches", len(matches), "rows", len(lines))
	return res, nil
}

// division looks a division up by its canonical code, then by the raw code.
func (s *StandingsService) division(ctx context.Context, code string) (*domain.Division, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput("division", "division is required")
	}
	candidates := []string{domain.NormalizeDivisionCode(code)}
	if candidates[0] != code {
		candidates = append(candidates, code)
	}
	for _, c := range candidates {
		div, err := s.leagues.FindDivisionByCode(ctx, s.db, c)
		if err != nil {
			return nil, domain.ErrInternal("find division", err)
		}
		if div != nil {
			return div, nil
		}
	}
	return nil, domain.ErrNotFound("division", code)
}

type autoSeasonFunc func(ctx context.Context, divisionID int64) (*int64, error)

func (s *StandingsService) resolveSeason(ctx context.Context, divisionID int64, sel domain.SeasonSelector, auto autoSeasonFunc) (seasonScope, error) {
	switch sel.Mode {
	case domain.SeasonAll:
		all := "all"
		return seasonScope{label: &all, all: true}, nil

	case domain.SeasonExplicit:
		season, err := s.leagues.FindSeasonByCode(ctx, s.db, sel.Code)
		if err != nil {
			return seasonScope{}, domain.ErrInternal("find season", err)
		}
		if season == nil {
			return seasonScope{}, domain.ErrNotFound("season", sel.Code)
		}
		return seasonScope{id: &season.ID, label: &season.Code}, nil
	}

	id, err := auto(ctx, divisionID)
	if err != nil {
		return seasonScope{}, domain.ErrInternal("select season", err)
	}
	scope := seasonScope{id: id, auto: true}
	if id != nil {
		season, err := s.leagues.FindSeasonByID(ctx, s.db, *id)
		if err != nil {
			return seasonScope{}, domain.ErrInternal("find season", err)
		}
		if season != nil {
			scope.label = &season.Code
		}
	}
	return scope, nil
}

// ladderAutoSeason: latest season with a regular season match, else the
// latest season a team was assigned to the division.
func (s *StandingsService) ladderAutoSeason(ctx context.Context, divisionID int64) (*int64, error) {
	id, err := s.leagues.LatestMatchSeasonID(ctx, s.db, divisionID, true)
	if err != nil || id != nil {
		return id, err
	}
	return s.leagues.LatestMembershipSeasonID(ctx, s.db, divisionID)
}

// rankingsAutoSeason also falls back to seasons with playoff matches only.
func (s *StandingsService) rankingsAutoSeason(ctx context.Context, divisionID int64) (*int64, error) {
	for _, regular := range []bool{true, false} {
		id, err := s.leagues.LatestMatchSeasonID(ctx, s.db, divisionID, regular)
		if err != nil || id != nil {
			return id, err
		}
	}
	return s.leagues.LatestMembershipSeasonID(ctx, s.db, divisionID)
}

func regularOnly(matches []domain.Match) []domain.Match {
	out := matches[:0]
	for _, m := range matches {
		if m.IsRegular() {
			out = append(out, m)
		}
	}
	return out
}

func teamIDsOf(teams []domain.Team) []int64 {
	ids := make([]int64, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

func matchIDsOf(matches []domain.Match) []int64 {
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}
