package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

type leagueRepo struct{}

// NewLeagueRepository returns a pgx-backed LeagueRepository.
func NewLeagueRepository() LeagueRepository {
	return &leagueRepo{}
}

func (r *leagueRepo) FindDivisionByCode(ctx context.Context, db DBTX, code string) (*domain.Division, error) {
	var d domain.Division
	err := db.QueryRow(ctx, `
		SELECT id, code, name FROM divisions
		WHERE lower(code) = lower($1)
		ORDER BY id LIMIT 1`, code).Scan(&d.ID, &d.Code, &d.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find division: %w", err)
	}
	return &d, nil
}

func (r *leagueRepo) ListDivisions(ctx context.Context, db DBTX) ([]domain.Division, error) {
	rows, err := db.Query(ctx, `SELECT id, code, name FROM divisions`)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	defer rows.Close()

	var divs []domain.Division
	for rows.Next() {
		var d domain.Division
		if err := rows.Scan(&d.ID, &d.Code, &d.Name); err != nil {
			return nil, fmt.Errorf("scan division: %w", err)
		}
		divs = append(divs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortDivisions(divs)
	return divs, nil
}

func (r *leagueRepo) FindSeasonByCode(ctx context.Context, db DBTX, code string) (*domain.Season, error) {
	row := db.QueryRow(ctx, `SELECT id, code, name FROM seasons WHERE code = $1`, code)
	return scanSeason(row)
}

func (r *leagueRepo) FindSeasonByID(ctx context.Context, db DBTX, id int64) (*domain.Season, error) {
	row := db.QueryRow(ctx, `SELECT id, code, name FROM seasons WHERE id = $1`, id)
	return scanSeason(row)
}

func (r *leagueRepo) LatestMatchSeasonID(ctx context.Context, db DBTX, divisionID int64, regularOnly bool) (*int64, error) {
	query := `SELECT max(season_id) FROM matches WHERE division_id = $1`
	if regularOnly {
		query += ` AND lower(trim(coalesce(stage, 'regular'))) IN ('regular', '')`
	}
	var id *int64
	if err := db.QueryRow(ctx, query, divisionID).Scan(&id); err != nil {
		return nil, fmt.Errorf("latest match season: %w", err)
	}
	return id, nil
}

func (r *leagueRepo) LatestMembershipSeasonID(ctx context.Context, db DBTX, divisionID int64) (*int64, error) {
	var id *int64
	err := db.QueryRow(ctx, `
		SELECT max(season_id) FROM team_season_division WHERE division_id = $1`, divisionID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("latest membership season: %w", err)
	}
	return id, nil
}

func (r *leagueRepo) ListDivisionTeams(ctx context.Context, db DBTX, divisionID int64, seasonID *int64) ([]domain.Team, error) {
	rows, err := db.Query(ctx, `
		SELECT DISTINCT t.id, t.name, t.logo_url
		FROM teams t
		JOIN team_season_division tsd ON tsd.team_id = t.id
		WHERE tsd.division_id = $1
		  AND ($2::bigint IS NULL OR tsd.season_id = $2)
		ORDER BY t.id`, divisionID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list division teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.LogoURL); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *leagueRepo) FindTeamByID(ctx context.Context, db DBTX, id int64) (*domain.Team, error) {
	var t domain.Team
	err := db.QueryRow(ctx, `SELECT id, name, logo_url FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.LogoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &t, nil
}

func scanSeason(row pgx.Row) (*domain.Season, error) {
	var s domain.Season
	if err := row.Scan(&s.ID, &s.Code, &s.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan season: %w", err)
	}
	return &s, nil
}
