package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/infra"
	"github.com/perfectballers/league/internal/repository"
	"github.com/perfectballers/league/internal/scoring"
)

// Store is a database handle that can open transactions. *pgxpool.Pool
// satisfies it.
type Store interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScoreService runs stat entry and the score aggregator, one transaction
// per operation.
type ScoreService struct {
	db      Store
	engine  *scoring.Engine
	matches repository.MatchRepository
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewScoreService creates a ScoreService.
func NewScoreService(
	db Store,
	engine *scoring.Engine,
	matches repository.MatchRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *ScoreService {
	return &ScoreService{
		db:      db,
		engine:  engine,
		matches: matches,
		metrics: metrics,
		logger:  logger,
	}
}

// RecomputeMatchScore rewrites one match score from its box score.
func (s *ScoreService) RecomputeMatchScore(ctx context.Context, matchID int64) (domain.MatchTotals, error) {
	var totals domain.MatchTotals
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		totals, err = s.engine.RecomputeMatch(ctx, tx, matchID)
		return err
	})
	if err != nil {
		return domain.MatchTotals{}, appError("recompute match score", err)
	}
	s.metrics.ScoreRecomputed(1)
	s.logger.Info("match score recomputed", "match_id", matchID,
		"home", totals.Home.Points, "away", totals.Away.Points)
	return totals, nil
}

// RecomputeAllFinished rewrites the score of every finished match and
// returns how many were touched. Each match commits on its own.
func (s *ScoreService) RecomputeAllFinished(ctx context.Context) (int, error) {
	ids, err := s.matches.ListFinishedIDs(ctx, s.db)
	if err != nil {
		return 0, domain.ErrInternal("list finished matches", err)
	}

	touched := 0
	for _, id := range ids {
		err := s.withTx(ctx, func(tx pgx.Tx) error {
			_, err := s.engine.RecomputeMatch(ctx, tx, id)
			return err
		})
		if err != nil {
			s.metrics.ScoreRecomputed(touched)
			return touched, appError("recompute finished match", err)
		}
		touched++
	}

	s.metrics.ScoreRecomputed(touched)
	s.logger.Info("finished match scores recomputed", "count", touched)
	return touched, nil
}

// IncrementStat applies one counter change and recomputes the match score.
func (s *ScoreService) IncrementStat(ctx context.Context, p scoring.IncrementParams) (*scoring.IncrementResult, error) {
	var res *scoring.IncrementResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		res, err = s.engine.ExecuteIncrement(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, appError("increment stat", err)
	}

	s.metrics.StatWrite("increment")
	s.logger.Info("stat incremented",
		"match_id", p.MatchID,
		"player_id", p.PlayerID,
		"field", p.Field,
		"delta", p.Delta,
		"value", res.Value,
	)
	return res, nil
}

// UpsertStat replaces one player's line and recomputes the match score.
func (s *ScoreService) UpsertStat(ctx context.Context, matchID int64, in domain.StatLineInput) (*scoring.UpsertResult, error) {
	var res *scoring.UpsertResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		res, err = s.engine.ExecuteUpsert(ctx, tx, matchID, in)
		return err
	})
	if err != nil {
		return nil, appError("upsert stat line", err)
	}

	s.metrics.StatWrite("upsert")
	s.logger.Info("stat line saved", "match_id", matchID, "player_id", in.PlayerID, "points", res.Line.Points)
	return res, nil
}

// BatchUpsert writes many lines in one transaction.
func (s *ScoreService) BatchUpsert(ctx context.Context, matchID int64, items []domain.StatLineInput) (*scoring.BatchResult, error) {
	var res *scoring.BatchResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		res, err = s.engine.ExecuteBatchUpsert(ctx, tx, matchID, items)
		return err
	})
	if err != nil {
		return nil, appError("batch upsert", err)
	}

	s.metrics.StatWrite("batch_upsert")
	s.logger.Info("stat batch saved", "match_id", matchID, "written", res.Written, "skipped", res.Skipped)
	return res, nil
}

// Verify checks the stored state of a match against the box score.
func (s *ScoreService) Verify(ctx context.Context, matchID int64) ([]scoring.InvariantCheck, error) {
	checks, err := s.engine.CheckMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, appError("verify match", err)
	}
	return checks, nil
}

func (s *ScoreService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}
