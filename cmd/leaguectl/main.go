// Command leaguectl is the league operator CLI.
//
// Usage:
//
//	leaguectl migrate up
//	leaguectl migrate down --steps 1
//	leaguectl recompute-scores [--match 42]
//	leaguectl ladder d1 --season S1 --debug
//	leaguectl rankings champion --season all --top 5
//	leaguectl status 42
//	leaguectl status --raw "" --date 2026-03-07 --time 18:00
//	leaguectl verify 42
//	leaguectl watch-scores
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/perfectballers/league/internal/app"
	"github.com/perfectballers/league/internal/domain"
	"github.com/perfectballers/league/internal/infra"
	"github.com/perfectballers/league/internal/matchstatus"
	"github.com/perfectballers/league/internal/repository"
	"github.com/perfectballers/league/internal/scoring"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "leaguectl",
		Short:         "League operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(recomputeCmd())
	root.AddCommand(ladderCmd())
	root.AddCommand(rankingsCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(watchScoresCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return infra.RunMigrations(cfg.DSN(), logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return infra.RollbackMigrations(cfg.DSN(), steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

// --------------------------------------------------------------------------
// score commands
// --------------------------------------------------------------------------

func recomputeCmd() *cobra.Command {
	var matchID int64
	cmd := &cobra.Command{
		Use:   "recompute-scores",
		Short: "Rewrite stored match scores from the box score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc app.Services, _ *pgxpool.Pool) error {
				start := time.Now()
				if matchID > 0 {
					totals, err := svc.Scores.RecomputeMatchScore(ctx, matchID)
					if err != nil {
						return err
					}
					return printJSON(map[string]interface{}{"match_id": matchID, "totals": totals})
				}
				n, err := svc.Scores.RecomputeAllFinished(ctx)
				if err != nil {
					return err
				}
				logger.Info("recompute finished", "updated", n, "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "Recompute a single match instead of every finished one")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <match-id>",
		Short: "Check a match's stored score and counters against its box score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			return withServices(func(ctx context.Context, svc app.Services, _ *pgxpool.Pool) error {
				checks, err := svc.Scores.Verify(ctx, matchID)
				if err != nil {
					return err
				}
				if err := printJSON(checks); err != nil {
					return err
				}
				if !scoring.AllPassed(checks) {
					return fmt.Errorf("match %d failed verification", matchID)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// standings commands
// --------------------------------------------------------------------------

func ladderCmd() *cobra.Command {
	var (
		season string
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "ladder <division>",
		Short: "Print a division ladder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc app.Services, _ *pgxpool.Pool) error {
				res, err := svc.Standings.Ladder(ctx, args[0], season, debug)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season code, or all; empty picks the latest")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include the debug payload")
	return cmd
}

func rankingsCmd() *cobra.Command {
	var (
		season string
		top    int
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "rankings <division>",
		Short: "Print the player leaderboards of a division",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc app.Services, _ *pgxpool.Pool) error {
				res, err := svc.Standings.PlayerRankings(ctx, args[0], season, top, debug)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season code, or all; empty picks the latest")
	cmd.Flags().IntVar(&top, "top", 0, "Rows per board (0 means the default)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include the debug payload")
	return cmd
}

// --------------------------------------------------------------------------
// status command
// --------------------------------------------------------------------------

func statusCmd() *cobra.Command {
	var raw, date, clock string
	cmd := &cobra.Command{
		Use:   "status [match-id]",
		Short: "Resolve a match status against the league clock",
		Long: "With a match id the stored match is resolved. Without one the\n" +
			"--raw, --date and --time flags are resolved directly.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				now := cfg.Clock().Now()
				fmt.Println(matchstatus.Resolve(raw, date, clock, now))
				return nil
			}

			matchID, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			return withServices(func(ctx context.Context, svc app.Services, pool *pgxpool.Pool) error {
				m, err := repository.NewMatchRepository().FindByID(ctx, pool, matchID)
				if err != nil {
					return err
				}
				if m == nil {
					return domain.ErrNotFound("match", args[0])
				}
				return printJSON(svc.Matches.Resolve(*m))
			})
		},
	}
	cmd.Flags().StringVar(&raw, "raw", "", "Stored status value")
	cmd.Flags().StringVar(&date, "date", "", "Match date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "", "Tip-off time (HH:MM or HH:MM:SS)")
	return cmd
}

// --------------------------------------------------------------------------
// watch-scores command
// --------------------------------------------------------------------------

func watchScoresCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "watch-scores",
		Short: "Tail score updates published by the outbox relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			topic := domain.OutboxDraft{AggregateType: domain.AggregateMatch, EventType: domain.EventMatchScoreUpdated}.Topic()
			consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, group, cfg.KafkaEnabled, logger)
			if !consumer.Enabled() {
				return fmt.Errorf("kafka is disabled; set KAFKA_ENABLED=true and KAFKA_BROKERS")
			}
			defer consumer.Close()

			logger.Info("watching score updates", "topic", topic, "group", group)
			for {
				msg, err := consumer.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("read message: %w", err)
				}
				fmt.Printf("%s %s\n", msg.Key, msg.Value)
			}
		},
	}
	cmd.Flags().StringVar(&group, "group", "leaguectl-watch", "Consumer group id")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func loadConfig() (*infra.Config, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withServices handles config loading, DB connection, and context cancellation.
func withServices(fn func(ctx context.Context, svc app.Services, pool *pgxpool.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, app.NewServices(pool, app.PostgresRepositories(), cfg, nil, logger), pool)
}

func parseMatchID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("match id must be a positive integer, got %q", s)
	}
	return id, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
