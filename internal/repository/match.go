package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

const matchColumns = `
	id, season_id, division_id, stage, round_no,
	to_char(match_date, 'YYYY-MM-DD'), to_char(match_time, 'HH24:MI:SS'),
	venue, status, home_team_id, away_team_id, home_score, away_score`

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Match, error) {
	row := db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Match, error) {
	row := tx.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
	return scanMatch(row)
}

func (r *matchRepo) ListInvolving(ctx context.Context, db DBTX, teamIDs []int64, scope SeasonScope) ([]domain.Match, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE (home_team_id = ANY($1) OR away_team_id = ANY($1))` + seasonClause(scope, 2) + `
		ORDER BY id`
	return r.list(ctx, db, query, teamIDs, scope.ID)
}

func (r *matchRepo) ListInDivisionScope(ctx context.Context, db DBTX, divisionID int64, teamIDs []int64, scope SeasonScope) ([]domain.Match, error) {
	if teamIDs == nil {
		teamIDs = []int64{}
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE (division_id = $1 OR home_team_id = ANY($2) OR away_team_id = ANY($2))` + seasonClause(scope, 3) + `
		ORDER BY id`
	return r.list(ctx, db, query, divisionID, teamIDs, scope.ID)
}

func (r *matchRepo) UpdateScore(ctx context.Context, tx pgx.Tx, id int64, home, away int) error {
	_, err := tx.Exec(ctx, `UPDATE matches SET home_score = $2, away_score = $3 WHERE id = $1`, id, home, away)
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	return nil
}

func (r *matchRepo) ListFinishedIDs(ctx context.Context, db DBTX) ([]int64, error) {
	rows, err := db.Query(ctx, `SELECT id FROM matches WHERE lower(status) = 'finished' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *matchRepo) list(ctx context.Context, db DBTX, query string, args ...interface{}) ([]domain.Match, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// seasonClause filters on the season argument at position idx. The argument
// is always bound so placeholders stay stable; a nil ID disables the filter.
func seasonClause(scope SeasonScope, idx int) string {
	if scope.IncludeUnassigned {
		return fmt.Sprintf(` AND ($%[1]d::bigint IS NULL OR season_id = $%[1]d OR season_id IS NULL)`, idx)
	}
	return fmt.Sprintf(` AND ($%[1]d::bigint IS NULL OR season_id = $%[1]d)`, idx)
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.SeasonID, &m.DivisionID, &m.Stage, &m.RoundNo,
		&m.Date, &m.Time, &m.Venue, &m.Status,
		&m.HomeTeamID, &m.AwayTeamID, &m.HomeScore, &m.AwayScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}
