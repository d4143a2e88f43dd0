package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/repository"
)

type playerRepo struct{ s *Store }

func (r playerRepo) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Players[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r playerRepo) ListByTeam(_ context.Context, _ repository.DBTX, teamID int64) ([]domain.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Player
	for _, p := range r.s.Players {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Number != nil && b.Number != nil && *a.Number != *b.Number:
			return *a.Number < *b.Number
		case (a.Number == nil) != (b.Number == nil):
			return a.Number != nil
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r playerRepo) UpdateProfile(_ context.Context, _ repository.DBTX, id int64, upd domain.PlayerProfileUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Players[id]
	if !ok {
		return nil
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Number != nil {
		n := *upd.Number
		p.Number = &n
	}
	return nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	draft.SeqID = r.s.nextID
	r.s.Outbox = append(r.s.Outbox, draft)
	return nil
}

func (r outboxRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := min(limit, len(r.s.Outbox))
	return append([]domain.OutboxDraft(nil), r.s.Outbox[:n]...), nil
}

func (r outboxRepo) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	done := idSet(ids)
	kept := r.s.Outbox[:0]
	for _, d := range r.s.Outbox {
		if !done[d.SeqID] {
			kept = append(kept, d)
		}
	}
	r.s.Outbox = kept
	return nil
}
