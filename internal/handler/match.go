package handler

import (
	"net/http"

	"github.com/perfectballers/league/internal/service"
)

// MatchHandler serves the read views of a single match.
type MatchHandler struct {
	matches *service.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// GetLineup handles GET /api/matches/{id} and GET /api/matches/{id}/lineup.
func (h *MatchHandler) GetLineup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	lineup, err := h.matches.Lineup(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, lineup)
}

// GetBoxscore handles GET /api/matches/{id}/boxscore.
func (h *MatchHandler) GetBoxscore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "match_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	box, err := h.matches.Boxscore(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, box)
}
