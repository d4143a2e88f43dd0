package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/matchstatus"
	"github.com/perfectballers/league/internal/repository/memory"
	"github.com/perfectballers/league/internal/scoring"
	"github.com/perfectballers/league/internal/standings"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// league seeds two divisions, two seasons and three d1 teams.
func league() *memory.Store {
	s := memory.New()
	s.AddDivision(domain.Division{ID: 2, Code: "d1", Name: "Division 1"})
	s.AddDivision(domain.Division{ID: 1, Code: "champion", Name: "Champion"})
	s.AddSeason(domain.Season{ID: 1, Code: "S1"})
	s.AddSeason(domain.Season{ID: 2, Code: "S2"})
	s.AddTeam(domain.Team{ID: 1, Name: "Alpha"})
	s.AddTeam(domain.Team{ID: 2, Name: "Bravo"})
	s.AddTeam(domain.Team{ID: 3, Name: "Charlie"})
	s.Assign(1, 1, 2)
	s.Assign(2, 1, 2)
	s.Assign(3, 2, 1)
	return s
}

func game(id, season int64, round int, home, away int64, hs, as *int) domain.Match {
	return domain.Match{
		ID:         id,
		SeasonID:   ptr(season),
		DivisionID: 2,
		Stage:      ptr(domain.StageRegular),
		RoundNo:    ptr(round),
		HomeTeamID: ptr(home),
		AwayTeamID: ptr(away),
		HomeScore:  hs,
		AwayScore:  as,
	}
}

func standingsService(s *memory.Store, maxTop int) *StandingsService {
	return NewStandingsService(nil, s.Leagues(), s.MatchRepo(), s.StatsRepo(),
		standings.GamesAscending, maxTop, nil, discardLogger())
}

// --- StandingsService Tests ---

func TestDivisions(t *testing.T) {
	divs, err := standingsService(league(), 50).Divisions(context.Background())
	require.NoError(t, err)
	require.Len(t, divs, 2)
	assert.Equal(t, "champion", divs[0].Code)
	assert.Equal(t, "d1", divs[1].Code)
}

func TestLadder(t *testing.T) {
	ctx := context.Background()

	t.Run("two team scenario", func(t *testing.T) {
		s := league()
		s.AddMatch(game(10, 1, 1, 1, 2, ptr(50), ptr(40)))

		res, err := standingsService(s, 50).Ladder(ctx, "d1", "S1", false)
		require.NoError(t, err)
		assert.Equal(t, "d1", res.Division)
		assert.Equal(t, "S1", *res.Season)
		assert.Nil(t, res.Debug)
		require.Len(t, res.Ladder, 2)

		a, b := res.Ladder[0], res.Ladder[1]
		assert.Equal(t, "Alpha", a.Name)
		assert.Equal(t, 1, a.Wins)
		assert.Equal(t, 3, a.Points)
		assert.Equal(t, 10, a.PointDiff)
		assert.Equal(t, 1, a.Rank)
		assert.Equal(t, "Bravo", b.Name)
		assert.Equal(t, 1, b.Losses)
		assert.Equal(t, 1, b.Points)
		assert.Equal(t, -10, b.PointDiff)
		assert.Equal(t, 2, b.Rank)
	})

	t.Run("division alias", func(t *testing.T) {
		s := league()
		res, err := standingsService(s, 50).Ladder(ctx, "Division 1", "S1", false)
		require.NoError(t, err)
		assert.Equal(t, "d1", res.Division)
		assert.Len(t, res.Ladder, 2)
	})

	t.Run("falls back to box score points", func(t *testing.T) {
		s := league()
		s.AddMatch(game(10, 1, 1, 1, 2, nil, nil))
		s.AddLine(domain.StatLine{MatchID: 10, PlayerID: 7, TeamID: 2, StatCounts: domain.StatCounts{Points: 9}})

		res, err := standingsService(s, 50).Ladder(ctx, "d1", "S1", false)
		require.NoError(t, err)
		assert.Equal(t, "Bravo", res.Ladder[0].Name)
		assert.Equal(t, 9, res.Ladder[0].PointsFor)
	})

	t.Run("auto picks latest regular season and keeps unassigned matches", func(t *testing.T) {
		s := league()
		s.AddMatch(game(10, 1, 1, 1, 2, ptr(50), ptr(40)))
		playoff := game(11, 2, 1, 1, 2, ptr(10), ptr(60))
		playoff.Stage = ptr(domain.StagePlayoff)
		s.AddMatch(playoff)
		loose := game(12, 0, 2, 2, 1, ptr(70), ptr(20))
		loose.SeasonID = nil
		s.AddMatch(loose)

		res, err := standingsService(s, 50).Ladder(ctx, "d1", "", true)
		require.NoError(t, err)
		assert.Equal(t, "S1", *res.Season)
		require.NotNil(t, res.Debug)
		assert.True(t, res.Debug.AutoMode)
		assert.Equal(t, int64(1), *res.Debug.SeasonID)
		assert.Equal(t, 2, res.Debug.MatchCount)
		assert.Equal(t, 2, res.Debug.RoundsTotal)
		assert.Equal(t, []int64{1, 2}, res.Debug.TeamIDs)

		explicit, err := standingsService(s, 50).Ladder(ctx, "d1", "S1", true)
		require.NoError(t, err)
		assert.Equal(t, 1, explicit.Debug.MatchCount)
	})

	t.Run("all seasons", func(t *testing.T) {
		s := league()
		s.Assign(1, 2, 2)
		s.AddMatch(game(10, 1, 1, 1, 2, ptr(50), ptr(40)))
		s.AddMatch(game(11, 2, 1, 1, 2, ptr(30), ptr(40)))

		res, err := standingsService(s, 50).Ladder(ctx, "d1", "ALL", true)
		require.NoError(t, err)
		assert.Equal(t, "all", *res.Season)
		assert.True(t, res.Debug.SeasonAll)
		assert.Nil(t, res.Debug.SeasonID)
		require.Len(t, res.Ladder, 2)
		assert.Equal(t, 1, res.Ladder[0].Wins)
		assert.Equal(t, 1, res.Ladder[0].Losses)
	})

	t.Run("empty division", func(t *testing.T) {
		res, err := standingsService(league(), 50).Ladder(ctx, "champion", "S1", false)
		require.NoError(t, err)
		assert.Empty(t, res.Ladder)
	})

	t.Run("errors", func(t *testing.T) {
		svc := standingsService(league(), 50)

		_, err := svc.Ladder(ctx, "d9", "", false)
		assert.True(t, domain.IsNotFound(err))

		_, err = svc.Ladder(ctx, "d1", "S9", false)
		assert.True(t, domain.IsNotFound(err))

		_, err = svc.Ladder(ctx, "", "", false)
		var appErr *domain.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "division", appErr.Field)
	})
}

func TestPlayerRankings(t *testing.T) {
	ctx := context.Background()

	champion := func() *memory.Store {
		s := league()
		s.AddPlayer(domain.Player{ID: 30, TeamID: 3, Name: "Pat"})
		for i, pts := range []int{10, 12, 14} {
			m := game(int64(20+i), 2, i+1, 3, 1, nil, nil)
			m.DivisionID = 1
			s.AddMatch(m)
			s.AddLine(domain.StatLine{MatchID: m.ID, PlayerID: 30, TeamID: 3, StatCounts: domain.StatCounts{Points: pts, Rebounds: 2}})
		}
		playoff := game(29, 2, 9, 3, 1, nil, nil)
		playoff.DivisionID = 1
		playoff.Stage = ptr("Playoff")
		s.AddMatch(playoff)
		s.AddLine(domain.StatLine{MatchID: 29, PlayerID: 30, TeamID: 3, StatCounts: domain.StatCounts{Points: 40}})
		return s
	}

	t.Run("averages across matches", func(t *testing.T) {
		res, err := standingsService(champion(), 50).PlayerRankings(ctx, "champ", "", 0, true)
		require.NoError(t, err)
		assert.Equal(t, "champion", res.Division)
		assert.Equal(t, "S2", *res.Season)

		require.Len(t, res.Top.Points, 1)
		row := res.Top.Points[0]
		assert.Equal(t, "Pat", row.Player)
		assert.Equal(t, "Charlie", row.Team)
		assert.Equal(t, 36, row.Total)
		assert.Equal(t, 3, row.Games)
		assert.InDelta(t, 12.0, row.Avg, 1e-9)
		assert.Equal(t, 1, row.Rank)
		assert.Len(t, res.Top.Rebounds, 1)

		assert.Equal(t, 3, res.Debug.MatchesCount)
		assert.Equal(t, 3, res.Debug.RowCount)
		assert.Equal(t, 1, res.Debug.TeamsInDivision)
	})

	t.Run("lower tiers publish points only", func(t *testing.T) {
		s := league()
		s.AddPlayer(domain.Player{ID: 40, TeamID: 1, Name: "Lee"})
		s.AddMatch(game(10, 1, 1, 1, 2, nil, nil))
		s.AddLine(domain.StatLine{MatchID: 10, PlayerID: 40, TeamID: 1, StatCounts: domain.StatCounts{Points: 8, Assists: 4}})

		res, err := standingsService(s, 50).PlayerRankings(ctx, "d1", "S1", 5, false)
		require.NoError(t, err)
		assert.Len(t, res.Top.Points, 1)
		assert.Empty(t, res.Top.Assists)
		assert.NotNil(t, res.Top.Assists)
	})

	t.Run("top clamped to max", func(t *testing.T) {
		s := league()
		for i := int64(0); i < 5; i++ {
			s.AddLine(domain.StatLine{MatchID: 10, PlayerID: 50 + i, TeamID: 1, StatCounts: domain.StatCounts{Points: int(i) + 1}})
		}
		s.AddMatch(game(10, 1, 1, 1, 2, nil, nil))

		res, err := standingsService(s, 3).PlayerRankings(ctx, "d1", "S1", 100, false)
		require.NoError(t, err)
		require.Len(t, res.Top.Points, 3)
		assert.Equal(t, 5, res.Top.Points[0].Total)
		assert.Equal(t, "Player #54", res.Top.Points[0].Player)
	})

	t.Run("auto falls back to any match season", func(t *testing.T) {
		s := league()
		m := game(10, 2, 1, 1, 2, nil, nil)
		m.Stage = ptr(domain.StagePlayoff)
		s.AddMatch(m)

		res, err := standingsService(s, 50).PlayerRankings(ctx, "d1", "", 0, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), *res.Debug.SeasonID)
		assert.Empty(t, res.Top.Points)
	})
}

// --- ScoreService Tests ---

func scoreFixture() (*ScoreService, *memory.Store, *memory.DB) {
	s := league()
	s.AddPlayer(domain.Player{ID: 10, TeamID: 1, Name: "Ace"})
	s.AddPlayer(domain.Player{ID: 20, TeamID: 2, Name: "Bo"})
	s.AddMatch(game(100, 1, 1, 1, 2, nil, nil))

	db := &memory.DB{}
	engine := scoring.NewEngine(s.MatchRepo(), s.StatsRepo(), s.PlayerRepo(), s.OutboxRepo())
	return NewScoreService(db, engine, s.MatchRepo(), nil, discardLogger()), s, db
}

func TestScoreService_IncrementStat(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and recomputes", func(t *testing.T) {
		svc, s, db := scoreFixture()
		res, err := svc.IncrementStat(ctx, scoring.IncrementParams{
			MatchID: 100, PlayerID: 10, Field: domain.FieldTwoPtMade, Delta: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Value)
		assert.Equal(t, 2, res.Line.Points)
		assert.Equal(t, 2, res.Totals.Home.Points)
		assert.Equal(t, 2, *s.Match(100).HomeScore)
		require.Len(t, db.Txs, 1)
		assert.True(t, db.Last().Committed)
	})

	t.Run("invalid delta rolls back", func(t *testing.T) {
		svc, _, db := scoreFixture()
		_, err := svc.IncrementStat(ctx, scoring.IncrementParams{
			MatchID: 100, PlayerID: 10, Field: domain.FieldFouls, Delta: 0,
		})
		var appErr *domain.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_INPUT", appErr.Code)
		assert.Equal(t, "delta", appErr.Field)
		assert.True(t, db.Last().RolledBack)
	})

	t.Run("unknown match", func(t *testing.T) {
		svc, _, _ := scoreFixture()
		_, err := svc.IncrementStat(ctx, scoring.IncrementParams{
			MatchID: 404, PlayerID: 10, Field: domain.FieldFouls, Delta: 1,
		})
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestScoreService_Upserts(t *testing.T) {
	ctx := context.Background()

	t.Run("single upsert syncs profile", func(t *testing.T) {
		svc, s, _ := scoreFixture()
		res, err := svc.UpsertStat(ctx, 100, domain.StatLineInput{
			PlayerID: 20,
			Counts:   domain.StatCounts{Points: 11, Fouls: 2},
			Profile:  domain.PlayerProfileUpdate{Number: ptr(23)},
		})
		require.NoError(t, err)
		assert.Equal(t, 11, res.Line.Points)
		assert.Equal(t, 11, res.Totals.Away.Points)
		assert.Equal(t, 23, *s.Players[20].Number)
	})

	t.Run("batch skips incomplete items", func(t *testing.T) {
		svc, s, db := scoreFixture()
		res, err := svc.BatchUpsert(ctx, 100, []domain.StatLineInput{
			{PlayerID: 10, TeamID: 1, Counts: domain.StatCounts{Points: 6}},
			{PlayerID: 20, TeamID: 2, Counts: domain.StatCounts{Points: 4}},
			{PlayerID: 21},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Written)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 6, *s.Match(100).HomeScore)
		assert.Equal(t, 4, *s.Match(100).AwayScore)
		assert.Len(t, db.Txs, 1)
	})
}

func TestScoreService_Recompute(t *testing.T) {
	ctx := context.Background()

	svc, s, db := scoreFixture()
	done := game(101, 1, 2, 2, 1, nil, nil)
	done.Status = ptr("FINISHED")
	s.AddMatch(done)
	s.AddLine(domain.StatLine{MatchID: 101, PlayerID: 20, TeamID: 2, StatCounts: domain.StatCounts{Points: 17}})

	n, err := svc.RecomputeAllFinished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 17, *s.Match(101).HomeScore)
	assert.Nil(t, s.Match(100).HomeScore)
	assert.True(t, db.Last().Committed)

	totals, err := svc.RecomputeMatchScore(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, totals)

	checks, err := svc.Verify(ctx, 101)
	require.NoError(t, err)
	assert.True(t, scoring.AllPassed(checks))
}

// --- MatchService Tests ---

func TestMatchService(t *testing.T) {
	ctx := context.Background()
	tipoff := time.Date(2026, 3, 7, 18, 0, 0, 0, time.FixedZone("league", 8*3600))

	setup := func(now time.Time) (*MatchService, *memory.Store) {
		s := league()
		s.AddPlayer(domain.Player{ID: 10, TeamID: 1, Name: "Ace", Number: ptr(9)})
		s.AddPlayer(domain.Player{ID: 11, TeamID: 1, Name: "Ben", Number: ptr(4)})
		s.AddPlayer(domain.Player{ID: 12, TeamID: 1, Name: "Cal"})
		m := game(100, 1, 1, 1, 2, nil, nil)
		m.Date = ptr("2026-03-07")
		m.Time = ptr("18:00:00")
		s.AddMatch(m)
		s.AddLine(domain.StatLine{MatchID: 100, PlayerID: 10, TeamID: 1, StatCounts: domain.StatCounts{Points: 5, Fouls: 1}})
		s.AddLine(domain.StatLine{MatchID: 100, PlayerID: 99, TeamID: 2, StatCounts: domain.StatCounts{Points: 3}})
		svc := NewMatchService(nil, s.Leagues(), s.MatchRepo(), s.StatsRepo(), s.PlayerRepo(),
			matchstatus.FixedClock(now), discardLogger())
		return svc, s
	}

	t.Run("lineup", func(t *testing.T) {
		svc, _ := setup(tipoff.Add(30 * time.Minute))
		lu, err := svc.Lineup(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, matchstatus.Ongoing, lu.Match.Status)
		assert.Equal(t, "Alpha", lu.Home.Team.Name)

		require.Len(t, lu.Home.Players, 3)
		assert.Equal(t, "Ben", lu.Home.Players[0].Name)
		assert.Equal(t, "Ace", lu.Home.Players[1].Name)
		assert.Equal(t, 5, lu.Home.Players[1].Points)
		assert.Equal(t, "Cal", lu.Home.Players[2].Name)
		assert.Zero(t, lu.Home.Players[2].Points)

		assert.Equal(t, domain.SideTotals{Points: 5, Fouls: 1}, lu.Home.Totals)
		assert.Equal(t, 3, lu.Away.Totals.Points)
		assert.Empty(t, lu.Away.Players)
	})

	t.Run("boxscore", func(t *testing.T) {
		svc, _ := setup(tipoff.Add(2 * time.Hour))
		bs, err := svc.Boxscore(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, matchstatus.Finished, bs.Match.Status)
		require.Len(t, bs.Lines, 2)
		assert.Equal(t, "Ace", bs.Lines[0].Player)
		assert.Equal(t, "Player #99", bs.Lines[1].Player)
		assert.Equal(t, "Bravo", bs.Lines[1].Team)
		assert.Equal(t, 5, bs.Totals.Home.Points)
	})

	t.Run("stored status wins", func(t *testing.T) {
		svc, s := setup(tipoff.Add(-24 * time.Hour))
		s.Match(100).Status = ptr("Final")
		lu, err := svc.Lineup(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, matchstatus.Finished, lu.Match.Status)
		assert.Equal(t, "Final", *lu.Match.RawStatus)
	})

	t.Run("missing match", func(t *testing.T) {
		svc, _ := setup(tipoff)
		_, err := svc.Boxscore(ctx, 5)
		assert.True(t, domain.IsNotFound(err))
		_, err = svc.Lineup(ctx, 0)
		assert.Error(t, err)
	})
}
