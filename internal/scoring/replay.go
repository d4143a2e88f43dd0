package scoring

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/repository"
)

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// AllPassed reports whether every check passed.
func AllPassed(checks []InvariantCheck) bool {
	for _, c := range checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// CheckMatch validates the stored state of one match:
//  1. Counter non-negativity: no box score field below zero
//  2. Score consistency: each stored side equals the sum of its players' points
func (e *Engine) CheckMatch(ctx context.Context, db repository.DBTX, matchID int64) ([]InvariantCheck, error) {
	m, err := e.matches.FindByID(ctx, db, matchID)
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", strconv.FormatInt(matchID, 10))
	}
	lines, err := e.stats.ListForMatches(ctx, db, []int64{matchID})
	if err != nil {
		return nil, fmt.Errorf("list stat lines: %w", err)
	}
	return validateInvariants(*m, lines), nil
}

func validateInvariants(m domain.Match, lines []domain.StatLine) []InvariantCheck {
	checks := make([]InvariantCheck, 0, 2)

	negatives := 0
	for _, l := range lines {
		for _, f := range domain.StatFields {
			if l.Get(f) < 0 {
				negatives++
			}
		}
	}
	checks = append(checks, InvariantCheck{
		Name:   "counters_non_negative",
		Passed: negatives == 0,
		Detail: fmt.Sprintf("rows=%d negative_fields=%d", len(lines), negatives),
	})

	var sums []domain.TeamTotal
	byTeam := make(map[int64]int)
	for _, l := range lines {
		if _, ok := byTeam[l.TeamID]; !ok {
			byTeam[l.TeamID] = len(sums)
			sums = append(sums, domain.TeamTotal{TeamID: l.TeamID})
		}
		sums[byTeam[l.TeamID]].Points += l.Points
	}
	want := domain.TotalsFor(m, sums)
	home, away := deref(m.HomeScore), deref(m.AwayScore)
	checks = append(checks, InvariantCheck{
		Name:   "score_consistency",
		Passed: home == want.Home.Points && away == want.Away.Points,
		Detail: fmt.Sprintf("stored=%d-%d summed=%d-%d", home, away, want.Home.Points, want.Away.Points),
	})
	return checks
}

// ReplayCommand is a single stat command in a replay sequence.
type ReplayCommand struct {
	Type   string // "increment", "upsert", "batch_upsert"
	Params interface{}
}

// ReplayResult holds the outcome of a deterministic replay run.
type ReplayResult struct {
	MatchID      int64
	CommandCount int
	FinalTotals  domain.MatchTotals
	Invariants   []InvariantCheck
	AllPassed    bool
}

// TxStarter is satisfied by *pgxpool.Pool.
type TxStarter interface {
	repository.DBTX
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// ReplayHarness executes a deterministic sequence of stat commands against a
// match, one transaction each, then validates the stored state plus:
//  3. Idempotent recompute: recomputing twice yields the same totals
type ReplayHarness struct {
	engine *Engine
	pool   TxStarter
}

// NewReplayHarness creates a replay harness.
func NewReplayHarness(engine *Engine, pool TxStarter) *ReplayHarness {
	return &ReplayHarness{engine: engine, pool: pool}
}

// Execute runs commands in order and validates invariants on the final state.
func (h *ReplayHarness) Execute(ctx context.Context, matchID int64, commands []ReplayCommand) (*ReplayResult, error) {
	for i, cmd := range commands {
		if err := h.executeCommand(ctx, matchID, cmd); err != nil {
			return nil, fmt.Errorf("replay command %d (%s): %w", i, cmd.Type, err)
		}
	}

	var first, second domain.MatchTotals
	err := pgx.BeginTxFunc(ctx, h.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		var err error
		if first, err = h.engine.RecomputeMatch(ctx, tx, matchID); err != nil {
			return err
		}
		second, err = h.engine.RecomputeMatch(ctx, tx, matchID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("replay recompute: %w", err)
	}

	checks, err := h.engine.CheckMatch(ctx, h.pool, matchID)
	if err != nil {
		return nil, fmt.Errorf("replay check: %w", err)
	}
	checks = append(checks, InvariantCheck{
		Name:   "idempotent_recompute",
		Passed: first == second,
		Detail: fmt.Sprintf("first=%+v second=%+v", first, second),
	})

	return &ReplayResult{
		MatchID:      matchID,
		CommandCount: len(commands),
		FinalTotals:  second,
		Invariants:   checks,
		AllPassed:    AllPassed(checks),
	}, nil
}

func (h *ReplayHarness) executeCommand(ctx context.Context, matchID int64, cmd ReplayCommand) error {
	return pgx.BeginTxFunc(ctx, h.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		var err error
		switch cmd.Type {
		case "increment":
			p := cmd.Params.(IncrementParams)
			p.MatchID = matchID
			_, err = h.engine.ExecuteIncrement(ctx, tx, p)
		case "upsert":
			_, err = h.engine.ExecuteUpsert(ctx, tx, matchID, cmd.Params.(domain.StatLineInput))
		case "batch_upsert":
			_, err = h.engine.ExecuteBatchUpsert(ctx, tx, matchID, cmd.Params.([]domain.StatLineInput))
		default:
			return fmt.Errorf("unknown command type: %s", cmd.Type)
		}
		return err
	})
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
