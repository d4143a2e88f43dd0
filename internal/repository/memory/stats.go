package memory

import (
	"context"
	"sort"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/repository"
)

type statsRepo struct{ s *Store }

func (r statsRepo) SumPointsByMatchTeam(_ context.Context, _ repository.DBTX, matchIDs []int64) (map[domain.MatchTeamKey]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := idSet(matchIDs)
	out := make(map[domain.MatchTeamKey]int)
	for _, l := range r.s.Stats {
		if set[l.MatchID] {
			out[domain.MatchTeamKey{MatchID: l.MatchID, TeamID: l.TeamID}] += l.Points
		}
	}
	return out, nil
}

func (r statsRepo) TeamTotals(_ context.Context, _ repository.DBTX, matchID int64) ([]domain.TeamTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := make(map[int64]int)
	var out []domain.TeamTotal
	for _, l := range r.s.Stats {
		if l.MatchID != matchID {
			continue
		}
		i, ok := idx[l.TeamID]
		if !ok {
			i = len(out)
			idx[l.TeamID] = i
			out = append(out, domain.TeamTotal{TeamID: l.TeamID})
		}
		out[i].Points += l.Points
		out[i].Fouls += l.Fouls
	}
	return out, nil
}

func (r statsRepo) ListForMatches(_ context.Context, _ repository.DBTX, matchIDs []int64) ([]domain.StatLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := idSet(matchIDs)
	var out []domain.StatLine
	for _, l := range r.s.Stats {
		if !set[l.MatchID] {
			continue
		}
		c := *l
		if p, ok := r.s.Players[l.PlayerID]; ok {
			name := p.Name
			c.PlayerName = &name
		}
		if t, ok := r.s.Teams[l.TeamID]; ok {
			name := t.Name
			c.TeamName = &name
			c.TeamLogo = t.LogoURL
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MatchID != b.MatchID {
			return a.MatchID < b.MatchID
		}
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		return a.PlayerID < b.PlayerID
	})
	return out, nil
}

func (r statsRepo) Find(_ context.Context, _ repository.DBTX, matchID, playerID int64) (*domain.StatLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l := r.s.findLine(matchID, playerID); l != nil {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r statsRepo) EnsureRow(_ context.Context, _ repository.DBTX, matchID, playerID, teamID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findLine(matchID, playerID) == nil {
		r.s.nextID++
		r.s.Stats = append(r.s.Stats, &domain.StatLine{ID: r.s.nextID, MatchID: matchID, PlayerID: playerID, TeamID: teamID})
	}
	return nil
}

func (r statsRepo) Increment(_ context.Context, _ repository.DBTX, matchID, playerID int64, field domain.StatField, delta int) (*domain.StatLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l := r.s.findLine(matchID, playerID)
	if l == nil {
		return nil, nil
	}
	c := &l.StatCounts
	switch field {
	case domain.FieldPoints:
		c.Points = domain.ClampAdd(c.Points, delta)
	case domain.FieldRebounds:
		c.Rebounds = domain.ClampAdd(c.Rebounds, delta)
	case domain.FieldAssists:
		c.Assists = domain.ClampAdd(c.Assists, delta)
	case domain.FieldSteals:
		c.Steals = domain.ClampAdd(c.Steals, delta)
	case domain.FieldBlocks:
		c.Blocks = domain.ClampAdd(c.Blocks, delta)
	case domain.FieldFouls:
		c.Fouls = domain.ClampAdd(c.Fouls, delta)
	case domain.FieldOnePtMade:
		c.OnePtMade = domain.ClampAdd(c.OnePtMade, delta)
	case domain.FieldTwoPtMade:
		c.TwoPtMade = domain.ClampAdd(c.TwoPtMade, delta)
	case domain.FieldThreePtMade:
		c.ThreePtMade = domain.ClampAdd(c.ThreePtMade, delta)
	}
	if field.IsMadeShot() {
		c.Points = domain.DerivePoints(c.OnePtMade, c.TwoPtMade, c.ThreePtMade)
	}
	out := *l
	return &out, nil
}

func (r statsRepo) Upsert(_ context.Context, _ repository.DBTX, matchID int64, in domain.StatLineInput) (*domain.StatLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l := r.s.findLine(matchID, in.PlayerID)
	if l == nil {
		r.s.nextID++
		l = &domain.StatLine{ID: r.s.nextID, MatchID: matchID, PlayerID: in.PlayerID}
		r.s.Stats = append(r.s.Stats, l)
	}
	l.TeamID = in.TeamID
	l.StatCounts = in.Counts.Clamped()
	out := *l
	return &out, nil
}
