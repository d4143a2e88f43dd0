package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Player, error) {
	row := db.QueryRow(ctx, `
		SELECT id, team_id, name, number
		FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) ListByTeam(ctx context.Context, db DBTX, teamID int64) ([]domain.Player, error) {
	rows, err := db.Query(ctx, `
		SELECT id, team_id, name, number
		FROM players
		WHERE team_id = $1
		ORDER BY number ASC NULLS LAST, id ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Number); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdateProfile builds the SET clause from the fields present in upd.
func (r *playerRepo) UpdateProfile(ctx context.Context, db DBTX, id int64, upd domain.PlayerProfileUpdate) error {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, strings.TrimSpace(*upd.Name))
		argIdx++
	}
	if upd.Number != nil {
		setClauses = append(setClauses, fmt.Sprintf("number = $%d", argIdx))
		args = append(args, *upd.Number)
		argIdx++
	}
	if len(setClauses) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE players SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argIdx)
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update player profile: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}
