package handler

import (
	"net/http"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/scoring"
	"github.com/perfectballers/league/internal/service"
)

// StatsHandler serves stat entry and score maintenance.
type StatsHandler struct {
	scores *service.ScoreService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(scores *service.ScoreService) *StatsHandler {
	return &StatsHandler{scores: scores}
}

// incrementRequest is the body of the increment endpoints.
type incrementRequest struct {
	PlayerID int64  `json:"player_id"`
	TeamID   int64  `json:"team_id"`
	Field    string `json:"field"`
	Delta    *int   `json:"delta"`
}

// Increment handles POST /api/matches/{id}/stats/incr. delta is required.
func (h *StatsHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, 0)
}

// Tap handles POST /api/matches/{id}/stat, the scorer pad endpoint. delta
// defaults to +1.
func (h *StatsHandler) Tap(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, 1)
}

func (h *StatsHandler) increment(w http.ResponseWriter, r *http.Request, defaultDelta int) {
	matchID, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}

	var req incrementRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrInvalidInput("body", "invalid request body"))
		return
	}
	field, err := domain.ParseStatField(req.Field)
	if err != nil {
		RespondError(w, domain.ErrInvalidInput("field", err.Error()))
		return
	}
	delta := defaultDelta
	if req.Delta != nil {
		delta = *req.Delta
	}

	res, err := h.scores.IncrementStat(r.Context(), scoring.IncrementParams{
		MatchID:  matchID,
		PlayerID: req.PlayerID,
		TeamID:   req.TeamID,
		Field:    field,
		Delta:    delta,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// UpsertPlayerStats handles POST /api/matches/{id}/player-stats. The body
// may use any accepted alias for each counter.
func (h *StatsHandler) UpsertPlayerStats(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}

	var body statPayload
	if err := DecodeJSON(r, &body); err != nil {
		RespondError(w, domain.ErrInvalidInput("body", "invalid request body"))
		return
	}

	res, err := h.scores.UpsertStat(r.Context(), matchID, body.input())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Items []statPayload `json:"items"`
}

// BatchUpsert handles POST /api/matches/{id}/stats/batch-upsert.
func (h *StatsHandler) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}

	var req batchRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrInvalidInput("items", "items must be a list of stat lines"))
		return
	}

	items := make([]domain.StatLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.input())
	}

	res, err := h.scores.BatchUpsert(r.Context(), matchID, items)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// RecomputeAll handles POST /api/admin/recompute-scores.
func (h *StatsHandler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.scores.RecomputeAllFinished(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "updated": n})
}

// RecomputeMatch handles POST /api/admin/matches/{id}/recompute.
func (h *StatsHandler) RecomputeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	totals, err := h.scores.RecomputeMatchScore(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"match_id": matchID, "totals": totals})
}

// VerifyMatch handles GET /api/admin/matches/{id}/verify.
func (h *StatsHandler) VerifyMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	checks, err := h.scores.Verify(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"match_id":   matchID,
		"checks":     checks,
		"all_passed": scoring.AllPassed(checks),
	})
}
