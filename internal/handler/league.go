package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/service"
)

// LeagueHandler serves divisions, ladders and player rankings.
type LeagueHandler struct {
	standings *service.StandingsService
}

// NewLeagueHandler creates a new LeagueHandler.
func NewLeagueHandler(standings *service.StandingsService) *LeagueHandler {
	return &LeagueHandler{standings: standings}
}

// ListDivisions handles GET /api/divisions.
func (h *LeagueHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	divs, err := h.standings.Divisions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, divs)
}

// GetLadder handles GET /api/divisions/{code}/ladder?season=&debug=.
func (h *LeagueHandler) GetLadder(w http.ResponseWriter, r *http.Request) {
	res, err := h.standings.Ladder(r.Context(),
		chi.URLParam(r, "code"),
		r.URL.Query().Get("season"),
		queryFlag(r, "debug"),
	)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// GetPlayerRankings handles GET /api/divisions/{code}/player-rankings?season=&top=&debug=.
func (h *LeagueHandler) GetPlayerRankings(w http.ResponseWriter, r *http.Request) {
	top := 0
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			RespondError(w, domain.ErrInvalidInput("top", "top must be an integer"))
			return
		}
		top = n
	}

	res, err := h.standings.PlayerRankings(r.Context(),
		chi.URLParam(r, "code"),
		r.URL.Query().Get("season"),
		top,
		queryFlag(r, "debug"),
	)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}
