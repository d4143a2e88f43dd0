//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectballers/league/test/integration/testutil"
)

type ladderResponse struct {
	Division string  `json:"division"`
	Season   *string `json:"season"`
	Ladder   []struct {
		TeamID    int64  `json:"team_id"`
		Name      string `json:"name"`
		Wins      int    `json:"wins"`
		Draws     int    `json:"draws"`
		Losses    int    `json:"losses"`
		Points    int    `json:"points"`
		PointDiff int    `json:"point_diff"`
		Rank      int    `json:"rank"`
	} `json:"ladder"`
	Debug *struct {
		MatchCount  int  `json:"match_count"`
		RoundsTotal int  `json:"rounds_total"`
		AutoMode    bool `json:"auto_mode"`
	} `json:"debug"`
}

// seedDivision creates d1 in S1 with three teams and returns their ids.
func seedDivision(env *testutil.TestEnv) (divID, seasonID int64, teams [3]int64) {
	divID = env.SeedDivision("d1", "Division 1")
	seasonID = env.SeedSeason("S1")
	for i, name := range []string{"Alpha", "Bravo", "Charlie"} {
		teams[i] = env.SeedTeam(name)
		env.Assign(teams[i], seasonID, divID)
	}
	return divID, seasonID, teams
}

func TestLadder_ScoresByesAndRanks(t *testing.T) {
	env := testutil.NewTestEnv(t)
	divID, seasonID, teams := seedDivision(env)
	regular := testutil.Ptr("regular")

	// Round 1: Alpha beats Bravo, Charlie sits out.
	env.SeedMatch(testutil.MatchSeed{
		SeasonID: &seasonID, DivisionID: divID, Stage: regular, RoundNo: testutil.Ptr(1),
		HomeTeamID: &teams[0], AwayTeamID: &teams[1],
		HomeScore: testutil.Ptr(60), AwayScore: testutil.Ptr(50),
	})
	// Round 2: Charlie and Alpha draw, Bravo sits out.
	env.SeedMatch(testutil.MatchSeed{
		SeasonID: &seasonID, DivisionID: divID, Stage: regular, RoundNo: testutil.Ptr(2),
		HomeTeamID: &teams[2], AwayTeamID: &teams[0],
		HomeScore: testutil.Ptr(40), AwayScore: testutil.Ptr(40),
	})
	// Playoffs never count.
	env.SeedMatch(testutil.MatchSeed{
		SeasonID: &seasonID, DivisionID: divID, Stage: testutil.Ptr("playoff"), RoundNo: testutil.Ptr(3),
		HomeTeamID: &teams[1], AwayTeamID: &teams[2],
		HomeScore: testutil.Ptr(99), AwayScore: testutil.Ptr(1),
	})

	resp := env.GET("/api/divisions/d1/ladder?season=S1&debug=1")
	testutil.AssertStatus(t, resp, http.StatusOK)
	var res ladderResponse
	testutil.DecodeJSON(t, resp, &res)

	assert.Equal(t, "d1", res.Division)
	require.NotNil(t, res.Season)
	assert.Equal(t, "S1", *res.Season)
	require.NotNil(t, res.Debug)
	assert.Equal(t, 2, res.Debug.MatchCount)
	assert.Equal(t, 2, res.Debug.RoundsTotal)
	assert.False(t, res.Debug.AutoMode)

	require.Len(t, res.Ladder, 3)
	alpha := res.Ladder[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, 1, alpha.Wins)
	assert.Equal(t, 1, alpha.Draws)
	assert.Equal(t, 1, alpha.Rank)
	assert.Equal(t, 10, alpha.PointDiff)

	for i, row := range res.Ladder {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestLadder_UnknownDivisionAndSeason(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seedDivision(env)

	resp := env.GET("/api/divisions/d9/ladder")
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")

	resp = env.GET("/api/divisions/d1/ladder?season=S7")
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestLadder_AliasAndAutoSeason(t *testing.T) {
	env := testutil.NewTestEnv(t)
	divID, seasonID, teams := seedDivision(env)
	env.SeedMatch(testutil.MatchSeed{
		SeasonID: &seasonID, DivisionID: divID, RoundNo: testutil.Ptr(1),
		HomeTeamID: &teams[1], AwayTeamID: &teams[2],
		HomeScore: testutil.Ptr(30), AwayScore: testutil.Ptr(31),
	})

	resp := env.GET("/api/divisions/Division%201/ladder?debug=true")
	testutil.AssertStatus(t, resp, http.StatusOK)
	var res ladderResponse
	testutil.DecodeJSON(t, resp, &res)

	assert.Equal(t, "d1", res.Division)
	require.NotNil(t, res.Season)
	assert.Equal(t, "S1", *res.Season)
	require.NotNil(t, res.Debug)
	assert.True(t, res.Debug.AutoMode)
	assert.Equal(t, "Charlie", res.Ladder[0].Name)
}

func TestPlayerRankings_AveragesAcrossMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	divID := env.SeedDivision("champion", "Champion")
	seasonID := env.SeedSeason("S1")
	home := env.SeedTeam("Alpha")
	away := env.SeedTeam("Bravo")
	env.Assign(home, seasonID, divID)
	env.Assign(away, seasonID, divID)
	ace := env.SeedPlayer(home, "Ace", 9)
	bo := env.SeedPlayer(away, "Bo", 4)

	for round := 1; round <= 3; round++ {
		matchID := env.SeedMatch(testutil.MatchSeed{
			SeasonID: &seasonID, DivisionID: divID, RoundNo: testutil.Ptr(round),
			HomeTeamID: &home, AwayTeamID: &away,
		})
		resp := env.POST("/api/matches/"+itoa(matchID)+"/stats/batch-upsert", map[string]interface{}{
			"items": []map[string]interface{}{
				{"player_id": ace, "team_id": home, "pts": 12, "reb": 3},
				{"player_id": bo, "team_id": away, "two_pt_made": round, "ast": 5},
			},
		})
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	resp := env.GET("/api/divisions/champion/player-rankings?season=S1&top=1")
	testutil.AssertStatus(t, resp, http.StatusOK)
	var res struct {
		Top map[string][]struct {
			Player string  `json:"player"`
			Total  int     `json:"total"`
			Games  int     `json:"games"`
			Avg    float64 `json:"avg"`
			Rank   int     `json:"rank"`
		} `json:"top"`
	}
	testutil.DecodeJSON(t, resp, &res)

	require.Len(t, res.Top["points"], 1)
	leader := res.Top["points"][0]
	assert.Equal(t, "Ace", leader.Player)
	assert.Equal(t, 36, leader.Total)
	assert.Equal(t, 3, leader.Games)
	assert.Equal(t, 12.0, leader.Avg)
	assert.Equal(t, 1, leader.Rank)

	require.Len(t, res.Top["assists"], 1)
	assert.Equal(t, "Bo", res.Top["assists"][0].Player)
	assert.Equal(t, 5.0, res.Top["assists"][0].Avg)
}
