// Package memory implements the repository interfaces over in-process maps.
// It backs service and handler tests; writes apply immediately and are not
// undone by a rollback.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/repository"
)

// Membership is one team_season_division row.
type Membership struct {
	TeamID     int64
	SeasonID   int64
	DivisionID int64
}

// Store is the shared state behind every memory repository.
type Store struct {
	mu sync.Mutex

	Divisions   []domain.Division
	Seasons     []domain.Season
	Teams       map[int64]domain.Team
	Memberships []Membership
	Matches     map[int64]*domain.Match
	Players     map[int64]*domain.Player
	Stats       []*domain.StatLine
	Outbox      []domain.OutboxDraft

	nextID int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Teams:   make(map[int64]domain.Team),
		Matches: make(map[int64]*domain.Match),
		Players: make(map[int64]*domain.Player),
	}
}

func (s *Store) AddDivision(d domain.Division) { s.Divisions = append(s.Divisions, d) }
func (s *Store) AddSeason(se domain.Season) { s.Seasons = append(s.Seasons, se) }
func (s *Store) AddTeam(t domain.Team) { s.Teams[t.ID] = t }
func (s *Store) AddPlayer(p domain.Player) { s.Players[p.ID] = &p }
func (s *Store) AddMatch(m domain.Match) { s.Matches[m.ID] = &m }

// Assign records a team membership for a season.
func (s *Store) Assign(teamID, seasonID, divisionID int64) {
	s.Memberships = append(s.Memberships, Membership{TeamID: teamID, SeasonID: seasonID, DivisionID: divisionID})
}

// AddLine stores a stat line, assigning an id.
func (s *Store) AddLine(l domain.StatLine) {
	s.nextID++
	l.ID = s.nextID
	s.Stats = append(s.Stats, &l)
}

func (s *Store) Leagues() repository.LeagueRepository { return leagueRepo{s} }
func (s *Store) MatchRepo() repository.MatchRepository { return matchRepo{s} }
func (s *Store) StatsRepo() repository.StatsRepository { return statsRepo{s} }
func (s *Store) PlayerRepo() repository.PlayerRepository { return playerRepo{s} }
func (s *Store) OutboxRepo() repository.OutboxRepository { return outboxRepo{s} }

// Match returns the live stored match for assertions.
func (s *Store) Match(id int64) *domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Matches[id]
}

// Line returns the stored line for a pair, or nil.
func (s *Store) Line(matchID, playerID int64) *domain.StatLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLine(matchID, playerID)
}

func (s *Store) findLine(matchID, playerID int64) *domain.StatLine {
	for _, l := range s.Stats {
		if l.MatchID == matchID && l.PlayerID == playerID {
			return l
		}
	}
	return nil
}

// --- league ---

type leagueRepo struct{ s *Store }

func (r leagueRepo) FindDivisionByCode(_ context.Context, _ repository.DBTX, code string) (*domain.Division, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.Divisions {
		if strings.EqualFold(d.Code, code) {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (r leagueRepo) ListDivisions(context.Context, repository.DBTX) ([]domain.Division, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]domain.Division(nil), r.s.Divisions...)
	domain.SortDivisions(out)
	return out, nil
}

func (r leagueRepo) FindSeasonByCode(_ context.Context, _ repository.DBTX, code string) (*domain.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, se := range r.s.Seasons {
		if se.Code == code {
			se := se
			return &se, nil
		}
	}
	return nil, nil
}

func (r leagueRepo) FindSeasonByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, se := range r.s.Seasons {
		if se.ID == id {
			se := se
			return &se, nil
		}
	}
	return nil, nil
}

func (r leagueRepo) LatestMatchSeasonID(_ context.Context, _ repository.DBTX, divisionID int64, regularOnly bool) (*int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *int64
	for _, m := range r.s.Matches {
		if m.DivisionID != divisionID || m.SeasonID == nil {
			continue
		}
		if regularOnly && !m.IsRegular() {
			continue
		}
		if best == nil || *m.SeasonID > *best {
			v := *m.SeasonID
			best = &v
		}
	}
	return best, nil
}

func (r leagueRepo) LatestMembershipSeasonID(_ context.Context, _ repository.DBTX, divisionID int64) (*int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *int64
	for _, ms := range r.s.Memberships {
		if ms.DivisionID == divisionID && (best == nil || ms.SeasonID > *best) {
			v := ms.SeasonID
			best = &v
		}
	}
	return best, nil
}

func (r leagueRepo) ListDivisionTeams(_ context.Context, _ repository.DBTX, divisionID int64, seasonID *int64) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[int64]bool)
	var out []domain.Team
	for _, ms := range r.s.Memberships {
		if ms.DivisionID != divisionID || (seasonID != nil && ms.SeasonID != *seasonID) || seen[ms.TeamID] {
			continue
		}
		if t, ok := r.s.Teams[ms.TeamID]; ok {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r leagueRepo) FindTeamByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.Teams[id]; ok {
		return &t, nil
	}
	return nil, nil
}

// --- matches ---

type matchRepo struct{ s *Store }

func (r matchRepo) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.Matches[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (r matchRepo) LockForUpdate(ctx context.Context, _ pgx.Tx, id int64) (*domain.Match, error) {
	return r.FindByID(ctx, nil, id)
}

func (r matchRepo) ListInvolving(_ context.Context, _ repository.DBTX, teamIDs []int64, scope repository.SeasonScope) ([]domain.Match, error) {
	set := idSet(teamIDs)
	return r.filter(func(m *domain.Match) bool {
		return m.Involves(set) && inSeason(m, scope)
	}), nil
}

func (r matchRepo) ListInDivisionScope(_ context.Context, _ repository.DBTX, divisionID int64, teamIDs []int64, scope repository.SeasonScope) ([]domain.Match, error) {
	set := idSet(teamIDs)
	return r.filter(func(m *domain.Match) bool {
		return (m.DivisionID == divisionID || m.Involves(set)) && inSeason(m, scope)
	}), nil
}

func (r matchRepo) UpdateScore(_ context.Context, _ pgx.Tx, id int64, home, away int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.Matches[id]; ok {
		m.HomeScore, m.AwayScore = &home, &away
	}
	return nil
}

func (r matchRepo) ListFinishedIDs(context.Context, repository.DBTX) ([]int64, error) {
	var ids []int64
	for _, m := range r.filter(func(m *domain.Match) bool {
		return m.Status != nil && strings.ToLower(*m.Status) == "finished"
	}) {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (r matchRepo) filter(keep func(*domain.Match) bool) []domain.Match {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Match
	for _, m := range r.s.Matches {
		if keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func inSeason(m *domain.Match, scope repository.SeasonScope) bool {
	if scope.ID == nil {
		return true
	}
	if m.SeasonID == nil {
		return scope.IncludeUnassigned
	}
	return *m.SeasonID == *scope.ID
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
