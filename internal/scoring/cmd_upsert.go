package scoring

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

// UpsertResult is the stored line plus the new match totals.
type UpsertResult struct {
	Line   *domain.StatLine   `json:"saved"`
	Totals domain.MatchTotals `json:"totals"`
}

// ExecuteUpsert replaces a player's line for the match and syncs optional
// roster fields back onto the player.
// Pattern: Lock → Upsert → profile sync → RecomputeTotals
func (e *Engine) ExecuteUpsert(ctx context.Context, tx pgx.Tx, matchID int64, in domain.StatLineInput) (*UpsertResult, error) {
	if err := domain.ValidatePositiveID(in.PlayerID); err != nil {
		return nil, domain.ErrInvalidInput("player_id", err.Error())
	}

	m, err := e.LockMatchForUpdate(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}

	in.TeamID, err = e.resolveTeam(ctx, tx, in.PlayerID, in.TeamID)
	if err != nil {
		return nil, err
	}

	line, err := e.stats.Upsert(ctx, tx, matchID, in)
	if err != nil {
		return nil, fmt.Errorf("upsert stat line: %w", err)
	}

	if !in.Profile.Empty() {
		if err := e.players.UpdateProfile(ctx, tx, in.PlayerID, in.Profile); err != nil {
			return nil, fmt.Errorf("sync player profile: %w", err)
		}
	}

	totals, err := e.RecomputeTotals(ctx, tx, m)
	if err != nil {
		return nil, fmt.Errorf("upsert recompute: %w", err)
	}
	return &UpsertResult{Line: line, Totals: totals}, nil
}

// BatchResult counts the written and skipped items of a batch upsert.
type BatchResult struct {
	Written int                `json:"written"`
	Skipped int                `json:"skipped"`
	Totals  domain.MatchTotals `json:"totals"`
}

// ExecuteBatchUpsert writes every item that names both a player and a team,
// then recomputes the match score once.
func (e *Engine) ExecuteBatchUpsert(ctx context.Context, tx pgx.Tx, matchID int64, items []domain.StatLineInput) (*BatchResult, error) {
	m, err := e.LockMatchForUpdate(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("batch upsert: %w", err)
	}

	res := &BatchResult{}
	for _, it := range items {
		if it.PlayerID <= 0 || it.TeamID <= 0 {
			res.Skipped++
			continue
		}
		if _, err := e.stats.Upsert(ctx, tx, matchID, it); err != nil {
			return nil, fmt.Errorf("batch upsert player %d: %w", it.PlayerID, err)
		}
		res.Written++
	}

	res.Totals, err = e.RecomputeTotals(ctx, tx, m)
	if err != nil {
		return nil, fmt.Errorf("batch recompute: %w", err)
	}
	return res, nil
}
