//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertScore reads the stored score of a match.
func AssertScore(t *testing.T, env *TestEnv, matchID int64, home, away int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var h, a *int
	err := env.Pool.QueryRow(ctx,
		"SELECT home_score, away_score FROM matches WHERE id = $1", matchID).Scan(&h, &a)
	if err != nil {
		t.Fatalf("AssertScore: query: %v", err)
	}
	if h == nil || *h != home {
		t.Errorf("home_score: expected %d, got %v", home, h)
	}
	if a == nil || *a != away {
		t.Errorf("away_score: expected %d, got %v", away, a)
	}
}

// StatValue reads one counter of a player's line.
func StatValue(t *testing.T, env *TestEnv, matchID, playerID int64, column string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var v int
	err := env.Pool.QueryRow(ctx,
		"SELECT "+column+" FROM match_player_stats WHERE match_id = $1 AND player_id = $2",
		matchID, playerID).Scan(&v)
	if err != nil {
		t.Fatalf("StatValue %s: %v", column, err)
	}
	return v
}

// CountOutboxEvents returns the number of outbox events for a match.
func CountOutboxEvents(t *testing.T, env *TestEnv, matchID int64) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1", strconv.FormatInt(matchID, 10)).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
