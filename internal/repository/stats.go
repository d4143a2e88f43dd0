package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
)

const statColumns = `id, match_id, player_id, team_id,
	points, rebounds, assists, steals, blocks, fouls,
	one_pt_made, two_pt_made, three_pt_made`

type statsRepo struct{}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository() StatsRepository {
	return &statsRepo{}
}

func (r *statsRepo) SumPointsByMatchTeam(ctx context.Context, db DBTX, matchIDs []int64) (map[domain.MatchTeamKey]int, error) {
	out := make(map[domain.MatchTeamKey]int)
	if len(matchIDs) == 0 {
		return out, nil
	}
	rows, err := db.Query(ctx, `
		SELECT match_id, team_id, coalesce(sum(points), 0)
		FROM match_player_stats
		WHERE match_id = ANY($1)
		GROUP BY match_id, team_id`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("sum match points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k domain.MatchTeamKey
		var pts int
		if err := rows.Scan(&k.MatchID, &k.TeamID, &pts); err != nil {
			return nil, fmt.Errorf("scan match points: %w", err)
		}
		out[k] = pts
	}
	return out, rows.Err()
}

func (r *statsRepo) TeamTotals(ctx context.Context, db DBTX, matchID int64) ([]domain.TeamTotal, error) {
	rows, err := db.Query(ctx, `
		SELECT team_id, coalesce(sum(points), 0), coalesce(sum(fouls), 0)
		FROM match_player_stats
		WHERE match_id = $1
		GROUP BY team_id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("team totals: %w", err)
	}
	defer rows.Close()

	var totals []domain.TeamTotal
	for rows.Next() {
		var t domain.TeamTotal
		if err := rows.Scan(&t.TeamID, &t.Points, &t.Fouls); err != nil {
			return nil, fmt.Errorf("scan team total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *statsRepo) ListForMatches(ctx context.Context, db DBTX, matchIDs []int64) ([]domain.StatLine, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT s.id, s.match_id, s.player_id, s.team_id,
		       s.points, s.rebounds, s.assists, s.steals, s.blocks, s.fouls,
		       s.one_pt_made, s.two_pt_made, s.three_pt_made,
		       p.name, t.name, t.logo_url
		FROM match_player_stats s
		LEFT JOIN players p ON p.id = s.player_id
		LEFT JOIN teams t ON t.id = s.team_id
		WHERE s.match_id = ANY($1)
		ORDER BY s.match_id, s.team_id, s.player_id`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list stat lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.StatLine
	for rows.Next() {
		var l domain.StatLine
		err := rows.Scan(&l.ID, &l.MatchID, &l.PlayerID, &l.TeamID,
			&l.Points, &l.Rebounds, &l.Assists, &l.Steals, &l.Blocks, &l.Fouls,
			&l.OnePtMade, &l.TwoPtMade, &l.ThreePtMade,
			&l.PlayerName, &l.TeamName, &l.TeamLogo)
		if err != nil {
			return nil, fmt.Errorf("scan stat line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *statsRepo) Find(ctx context.Context, db DBTX, matchID, playerID int64) (*domain.StatLine, error) {
	row := db.QueryRow(ctx, `SELECT `+statColumns+`
		FROM match_player_stats WHERE match_id = $1 AND player_id = $2`, matchID, playerID)
	return scanStatLine(row)
}

func (r *statsRepo) EnsureRow(ctx context.Context, db DBTX, matchID, playerID, teamID int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO match_player_stats (match_id, player_id, team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id, player_id) DO NOTHING`, matchID, playerID, teamID)
	if err != nil {
		return fmt.Errorf("ensure stat row: %w", err)
	}
	return nil
}

// Increment runs as one UPDATE so concurrent increments on the same row
// serialize on the row lock.
func (r *statsRepo) Increment(ctx context.Context, db DBTX, matchID, playerID int64, field domain.StatField, delta int) (*domain.StatLine, error) {
	query, err := incrementSQL(field)
	if err != nil {
		return nil, err
	}
	return scanStatLine(db.QueryRow(ctx, query, matchID, playerID, delta))
}

// incrementSQL builds the clamped update for one counter. Postgres evaluates
// every SET expression against the old row, so the derived points expression
// repeats the clamped counter.
func incrementSQL(field domain.StatField) (string, error) {
	if !field.Valid() {
		return "", fmt.Errorf("unknown stat field %q", field)
	}
	col := string(field)
	next := fmt.Sprintf("GREATEST(0, %s + $3)", col)
	setClauses := []string{fmt.Sprintf("%s = %s", col, next)}

	if field.IsMadeShot() {
		made := map[domain.StatField]string{
			domain.FieldOnePtMade:   string(domain.FieldOnePtMade),
			domain.FieldTwoPtMade:   string(domain.FieldTwoPtMade),
			domain.FieldThreePtMade: string(domain.FieldThreePtMade),
		}
		made[field] = next
		setClauses = append(setClauses, fmt.Sprintf("points = %s + 2 * %s + 3 * %s",
			made[domain.FieldOnePtMade], made[domain.FieldTwoPtMade], made[domain.FieldThreePtMade]))
	}

	return fmt.Sprintf(`
		UPDATE match_player_stats SET %s
		WHERE match_id = $1 AND player_id = $2
		RETURNING %s`, strings.Join(setClauses, ", "), statColumns), nil
}

func (r *statsRepo) Upsert(ctx context.Context, db DBTX, matchID int64, in domain.StatLineInput) (*domain.StatLine, error) {
	c := in.Counts.Clamped()
	row := db.QueryRow(ctx, `
		INSERT INTO match_player_stats
		  (match_id, player_id, team_id, points, rebounds, assists, steals, blocks, fouls,
		   one_pt_made, two_pt_made, three_pt_made)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_id, player_id) DO UPDATE SET
		  team_id = EXCLUDED.team_id,
		  points = EXCLUDED.points,
		  rebounds = EXCLUDED.rebounds,
		  assists = EXCLUDED.assists,
		  steals = EXCLUDED.steals,
		  blocks = EXCLUDED.blocks,
		  fouls = EXCLUDED.fouls,
		  one_pt_made = EXCLUDED.one_pt_made,
		  two_pt_made = EXCLUDED.two_pt_made,
		  three_pt_made = EXCLUDED.three_pt_made
		RETURNING `+statColumns,
		matchID, in.PlayerID, in.TeamID,
		c.Points, c.Rebounds, c.Assists, c.Steals, c.Blocks, c.Fouls,
		c.OnePtMade, c.TwoPtMade, c.ThreePtMade,
	)
	return scanStatLine(row)
}

func scanStatLine(row pgx.Row) (*domain.StatLine, error) {
	var l domain.StatLine
	err := row.Scan(&l.ID, &l.MatchID, &l.PlayerID, &l.TeamID,
		&l.Points, &l.Rebounds, &l.Assists, &l.Steals, &l.Blocks, &l.Fouls,
		&l.OnePtMade, &l.TwoPtMade, &l.ThreePtMade)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan stat line: %w", err)
	}
	return &l, nil
}
