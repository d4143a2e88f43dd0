package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/perfectballers/league/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// SeasonScope restricts match queries to a season. A nil ID means every
// season. IncludeUnassigned also accepts matches with no season.
type SeasonScope struct {
	ID                *int64
	IncludeUnassigned bool
}

// LeagueRepository provides access to divisions, seasons, teams and
// team_season_division.
type LeagueRepository interface {
	// FindDivisionByCode matches the code case-insensitively.
	FindDivisionByCode(ctx context.Context, db DBTX, code string) (*domain.Division, error)

	// ListDivisions returns every division in canonical display order.
	ListDivisions(ctx context.Context, db DBTX) ([]domain.Division, error)

	FindSeasonByCode(ctx context.Context, db DBTX, code string) (*domain.Season, error)
	FindSeasonByID(ctx context.Context, db DBTX, id int64) (*domain.Season, error)

	// LatestMatchSeasonID returns the highest season id among the division's
	// matches, optionally only regular season ones. Nil when there are none.
	LatestMatchSeasonID(ctx context.Context, db DBTX, divisionID int64, regularOnly bool) (*int64, error)

	// LatestMembershipSeasonID returns the highest season id any team was
	// assigned to the division in.
	LatestMembershipSeasonID(ctx context.Context, db DBTX, divisionID int64) (*int64, error)

	// ListDivisionTeams returns the distinct member teams of a division,
	// for one season or, with a nil season, for all of them.
	ListDivisionTeams(ctx context.Context, db DBTX, divisionID int64, seasonID *int64) ([]domain.Team, error)

	FindTeamByID(ctx context.Context, db DBTX, id int64) (*domain.Team, error)
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Match, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the match.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Match, error)

	// ListInvolving returns matches where either side is one of teamIDs.
	ListInvolving(ctx context.Context, db DBTX, teamIDs []int64, scope SeasonScope) ([]domain.Match, error)

	// ListInDivisionScope returns matches tagged with the division or
	// involving one of teamIDs.
	ListInDivisionScope(ctx context.Context, db DBTX, divisionID int64, teamIDs []int64, scope SeasonScope) ([]domain.Match, error)

	// UpdateScore writes the authoritative score columns.
	UpdateScore(ctx context.Context, tx pgx.Tx, id int64, home, away int) error

	// ListFinishedIDs returns matches whose stored status is finished, any case.
	ListFinishedIDs(ctx context.Context, db DBTX) ([]int64, error)
}

// StatsRepository provides access to match_player_stats.
type StatsRepository interface {
	// SumPointsByMatchTeam sums player points per match side.
	SumPointsByMatchTeam(ctx context.Context, db DBTX, matchIDs []int64) (map[domain.MatchTeamKey]int, error)

	// TeamTotals sums points and fouls per team for one match.
	TeamTotals(ctx context.Context, db DBTX, matchID int64) ([]domain.TeamTotal, error)

	// ListForMatches returns rows joined with player and team display data.
	ListForMatches(ctx context.Context, db DBTX, matchIDs []int64) ([]domain.StatLine, error)

	Find(ctx context.Context, db DBTX, matchID, playerID int64) (*domain.StatLine, error)

	// EnsureRow creates an all-zero row when none exists for the pair.
	EnsureRow(ctx context.Context, db DBTX, matchID, playerID, teamID int64) error

	// Increment atomically applies delta to one counter, clamped at zero, and
	// re-derives points when a made-shot counter changes. Nil when no row exists.
	Increment(ctx context.Context, db DBTX, matchID, playerID int64, field domain.StatField, delta int) (*domain.StatLine, error)

	// Upsert writes a full stat line keyed by (match, player).
	Upsert(ctx context.Context, db DBTX, matchID int64, in domain.StatLineInput) (*domain.StatLine, error)
}

// PlayerRepository provides access to players.
type PlayerRepository interface {
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Player, error)

	// ListByTeam orders by shirt number, unnumbered last, then id.
	ListByTeam(ctx context.Context, db DBTX, teamID int64) ([]domain.Player, error)

	// UpdateProfile writes the non-empty fields of upd.
	UpdateProfile(ctx context.Context, db DBTX, id int64, upd domain.PlayerProfileUpdate) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the score update).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps published_at on the given events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
