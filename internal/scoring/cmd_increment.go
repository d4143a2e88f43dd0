package scoring

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

// IncrementParams is a single scorer-pad tap.
type IncrementParams struct {
	MatchID  int64
	PlayerID int64
	TeamID   int64 // zero means the player's own team
	Field    domain.StatField
	Delta    int
}

// IncrementResult is the counter after the change plus the new match totals.
type IncrementResult struct {
	Value  int                `json:"value"`
	Line   *domain.StatLine   `json:"line"`
	Totals domain.MatchTotals `json:"totals"`
}

// ExecuteIncrement applies delta to one counter of a player's line, creating
// the line on first use, then recomputes the match score.
// Pattern: Lock → EnsureRow → atomic Increment → RecomputeTotals
func (e *Engine) ExecuteIncrement(ctx context.Context, tx pgx.Tx, p IncrementParams) (*IncrementResult, error) {
	if err := domain.ValidatePositiveID(p.PlayerID); err != nil {
		return nil, domain.ErrInvalidInput("player_id", err.Error())
	}
	if !p.Field.Valid() {
		return nil, domain.ErrInvalidInput("field", fmt.Sprintf("unknown stat field %q", p.Field))
	}
	if err := domain.ValidateDelta(p.Delta); err != nil {
		return nil, domain.ErrInvalidInput("delta", err.Error())
	}

	m, err := e.LockMatchForUpdate(ctx, tx, p.MatchID)
	if err != nil {
		return nil, fmt.Errorf("increment: %w", err)
	}

	existing, err := e.stats.Find(ctx, tx, p.MatchID, p.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("find stat line: %w", err)
	}
	if existing == nil {
		teamID, err := e.resolveTeam(ctx, tx, p.PlayerID, p.TeamID)
		if err != nil {
			return nil, err
		}
		if err := e.stats.EnsureRow(ctx, tx, p.MatchID, p.PlayerID, teamID); err != nil {
			return nil, fmt.Errorf("create stat line: %w", err)
		}
	}

	line, err := e.stats.Increment(ctx, tx, p.MatchID, p.PlayerID, p.Field, p.Delta)
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", p.Field, err)
	}
	if line == nil {
		return nil, domain.ErrInternal("stat line vanished during increment", nil)
	}

	totals, err := e.RecomputeTotals(ctx, tx, m)
	if err != nil {
		return nil, fmt.Errorf("increment recompute: %w", err)
	}

	return &IncrementResult{Value: line.Get(p.Field), Line: line, Totals: totals}, nil
}
