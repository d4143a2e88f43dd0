//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// MatchSeed describes one inserted match. Nil pointers become NULL.
type MatchSeed struct {
	SeasonID   *int64
	DivisionID int64
	Stage      *string
	RoundNo    *int
	Date       *string
	Time       *string
	Status     *string
	HomeTeamID *int64
	AwayTeamID *int64
	HomeScore  *int
	AwayScore  *int
}

func (env *TestEnv) insertID(query string, args ...interface{}) int64 {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		env.t.Fatalf("seed: %v", err)
	}
	return id
}

// SeedDivision inserts a division and returns its id.
func (env *TestEnv) SeedDivision(code, name string) int64 {
	return env.insertID("INSERT INTO divisions (code, name) VALUES ($1, $2) RETURNING id", code, name)
}

// SeedSeason inserts a season and returns its id.
func (env *TestEnv) SeedSeason(code string) int64 {
	return env.insertID("INSERT INTO seasons (code, name) VALUES ($1, $1) RETURNING id", code)
}

// SeedTeam inserts a team and returns its id.
func (env *TestEnv) SeedTeam(name string) int64 {
	return env.insertID("INSERT INTO teams (name) VALUES ($1) RETURNING id", name)
}

// SeedPlayer inserts a player on a team and returns its id.
func (env *TestEnv) SeedPlayer(teamID int64, name string, number int) int64 {
	return env.insertID("INSERT INTO players (team_id, name, number) VALUES ($1, $2, $3) RETURNING id",
		teamID, name, number)
}

// Assign places a team in a division for a season.
func (env *TestEnv) Assign(teamID, seasonID, divisionID int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"INSERT INTO team_season_division (team_id, season_id, division_id) VALUES ($1, $2, $3)",
		teamID, seasonID, divisionID)
	if err != nil {
		env.t.Fatalf("Assign: %v", err)
	}
}

// SeedMatch inserts a match and returns its id.
func (env *TestEnv) SeedMatch(m MatchSeed) int64 {
	return env.insertID(`
		INSERT INTO matches (season_id, division_id, stage, round_no, match_date, match_time, status,
			home_team_id, away_team_id, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7, $8, $9, $10, $11)
		RETURNING id`,
		m.SeasonID, m.DivisionID, m.Stage, m.RoundNo, m.Date, m.Time, m.Status,
		m.HomeTeamID, m.AwayTeamID, m.HomeScore, m.AwayScore)
}

// GET performs a GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with a JSON body.
func (env *TestEnv) POST(path string, body interface{}) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	resp, err := http.Post(env.Server.URL+path, "application/json", &buf)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
