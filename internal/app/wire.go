package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/perfectballers/league/internal/handler"
	"github.com/perfectballers/league/internal/infra"
	"github.com/perfectballers/league/internal/repository"
	"github.com/perfectballers/league/internal/scoring"
	"github.com/perfectballers/league/internal/service"
)

// Repositories bundles the store interfaces the services run on.
type Repositories struct {
	Leagues repository.LeagueRepository
	Matches repository.MatchRepository
	Stats   repository.StatsRepository
	Players repository.PlayerRepository
	Outbox  repository.OutboxRepository
}

// PostgresRepositories returns the pgx-backed repositories.
func PostgresRepositories() Repositories {
	return Repositories{
		Leagues: repository.NewLeagueRepository(),
		Matches: repository.NewMatchRepository(),
		Stats:   repository.NewStatsRepository(),
		Players: repository.NewPlayerRepository(),
		Outbox:  repository.NewOutboxRepository(),
	}
}

// Services are the application services behind the HTTP surface and the CLI.
type Services struct {
	Standings *service.StandingsService
	Scores    *service.ScoreService
	Matches   *service.MatchService
}

// NewServices wires the services over db.
func NewServices(db service.Store, repos Repositories, cfg *infra.Config, metrics *infra.Metrics, logger *slog.Logger) Services {
	engine := scoring.NewEngine(repos.Matches, repos.Stats, repos.Players, repos.Outbox)
	standingsSvc := service.NewStandingsService(db, repos.Leagues, repos.Matches, repos.Stats,
		cfg.GamesOrder(), cfg.RankingMaxTop, metrics, logger)
	scoreSvc := service.NewScoreService(db, engine, repos.Matches, metrics, logger)
	matchSvc := service.NewMatchService(db, repos.Leagues, repos.Matches, repos.Stats, repos.Players,
		cfg.Clock(), logger)

	return Services{
		Standings: standingsSvc,
		Scores:    scoreSvc,
		Matches:   matchSvc,
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Services Services
	Health   infra.Pinger
	Config   *infra.Config
	Metrics  *infra.Metrics
	Logger   *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	cfg := deps.Config
	logger := deps.Logger

	// Handlers
	leagueHandler := handler.NewLeagueHandler(deps.Services.Standings)
	matchHandler := handler.NewMatchHandler(deps.Services.Matches)
	statsHandler := handler.NewStatsHandler(deps.Services.Scores)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(middleware.RealIP)
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Metrics(deps.Metrics))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Compress(5))

	// Operational endpoints
	r.Handle("/metrics", deps.Metrics.Handler())
	health := handler.HealthHandler(deps.Health)
	r.With(handler.JSONContentType).Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", health)

		r.Get("/divisions", leagueHandler.ListDivisions)
		r.Route("/divisions/{code}", func(r chi.Router) {
			r.Get("/ladder", leagueHandler.GetLadder)
			r.Get("/player-rankings", leagueHandler.GetPlayerRankings)
		})

		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", matchHandler.GetLineup)
			r.Get("/lineup", matchHandler.GetLineup)
			r.Get("/boxscore", matchHandler.GetBoxscore)

			// Stat entry (throttled per client)
			r.Group(func(r chi.Router) {
				r.Use(handler.RateLimit(cfg.StatWriteRatePerSec, cfg.StatWriteBurst))
				r.Post("/stat", statsHandler.Tap)
				r.Post("/stats/incr", statsHandler.Increment)
				r.Post("/stats/batch-upsert", statsHandler.BatchUpsert)
				r.Post("/player-stats", statsHandler.UpsertPlayerStats)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/recompute-scores", statsHandler.RecomputeAll)
			r.Post("/matches/{id}/recompute", statsHandler.RecomputeMatch)
			r.Get("/matches/{id}/verify", statsHandler.VerifyMatch)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler.RespondJSON(w, http.StatusNotFound, map[string]string{
			"code":    "NOT_FOUND",
			"message": "route not found",
		})
	})

	return r
}
