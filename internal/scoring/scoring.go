// Package scoring holds the transactional write primitives behind stat entry
// and the score aggregator. Every method runs inside the caller's transaction.
package scoring

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/repository"
)

// Engine provides the foundational scoring operations:
//  1. LockMatchForUpdate: row-level pessimistic lock on the match
//  2. RecomputeTotals: sum box score rows back onto the match score
//  3. the stat commands (increment, upsert, batch upsert), each ending in 2
type Engine struct {
	matches repository.MatchRepository
	stats   repository.StatsRepository
	players repository.PlayerRepository
	outbox  repository.OutboxRepository
}

// NewEngine creates a scoring engine with the given repositories.
func NewEngine(
	matches repository.MatchRepository,
	stats repository.StatsRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		matches: matches,
		stats:   stats,
		players: players,
		outbox:  outbox,
	}
}

// LockMatchForUpdate acquires a row-level lock and returns the match.
// Must be called within a transaction.
func (e *Engine) LockMatchForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (*domain.Match, error) {
	m, err := e.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("lock match: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", strconv.FormatInt(matchID, 10))
	}
	return m, nil
}

// RecomputeMatch locks the match and rewrites its score from the box score.
func (e *Engine) RecomputeMatch(ctx context.Context, tx pgx.Tx, matchID int64) (domain.MatchTotals, error) {
	m, err := e.LockMatchForUpdate(ctx, tx, matchID)
	if err != nil {
		return domain.MatchTotals{}, err
	}
	return e.RecomputeTotals(ctx, tx, m)
}

// RecomputeTotals sums points and fouls per side for a locked match and
// writes the points onto home_score and away_score. Sides without rows
// score zero. The score_updated outbox event is written in the same
// transaction.
func (e *Engine) RecomputeTotals(ctx context.Context, tx pgx.Tx, m *domain.Match) (domain.MatchTotals, error) {
	rows, err := e.stats.TeamTotals(ctx, tx, m.ID)
	if err != nil {
		return domain.MatchTotals{}, fmt.Errorf("team totals: %w", err)
	}
	totals := domain.TotalsFor(*m, rows)

	if err := e.matches.UpdateScore(ctx, tx, m.ID, totals.Home.Points, totals.Away.Points); err != nil {
		return domain.MatchTotals{}, fmt.Errorf("write score: %w", err)
	}

	event := domain.NewScoreUpdatedEvent(m.ID, totals)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return domain.MatchTotals{}, fmt.Errorf("insert outbox event: %w", err)
	}
	return totals, nil
}

// resolveTeam returns teamID when set, otherwise the player's own team.
func (e *Engine) resolveTeam(ctx context.Context, tx pgx.Tx, playerID, teamID int64) (int64, error) {
	if teamID > 0 {
		return teamID, nil
	}
	p, err := e.players.FindByID(ctx, tx, playerID)
	if err != nil {
		return 0, fmt.Errorf("find player: %w", err)
	}
	if p == nil {
		return 0, domain.ErrNotFound("player", strconv.FormatInt(playerID, 10))
	}
	return p.TeamID, nil
}
