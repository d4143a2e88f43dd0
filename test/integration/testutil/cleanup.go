//go:build integration

package testutil

import (
	"context"
	"strings"
	"time"
)

// CleanAll truncates every league table and resets their id sequences.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"match_player_stats",
		"matches",
		"team_season_division",
		"players",
		"teams",
		"seasons",
		"divisions",
	}

	_, err := env.Pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	if err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
