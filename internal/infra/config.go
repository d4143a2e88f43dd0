package infra

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/perfectballers/league/internal/matchstatus"
	"github.com/perfectballers/league/internal/standings"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"league"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"league"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"league"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`

	// Server
	APIPort  int    `env:"API_PORT" envDefault:"3001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// League rules
	LeagueTZOffsetMin    string `env:"LEAGUE_TZ_OFFSET_MIN"`
	RankingGamesTiebreak string `env:"RANKING_GAMES_TIEBREAK" envDefault:"asc"`
	RankingMaxTop        int    `env:"RANKING_MAX_TOP" envDefault:"50"`

	// Stat entry throttling, per client
	StatWriteRatePerSec float64 `env:"STAT_WRITE_RATE_PER_SEC" envDefault:"20"`
	StatWriteBurst      int     `env:"STAT_WRITE_BURST" envDefault:"40"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Outbox relay
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	RelayMetricsPort   int           `env:"RELAY_METRICS_PORT" envDefault:"9091"`

	// Broker circuit breaker, per topic
	BreakerFailures int           `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	if v := strings.TrimSpace(c.LeagueTZOffsetMin); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEAGUE_TZ_OFFSET_MIN must be whole minutes, got %q", c.LeagueTZOffsetMin)
		}
		if n < -14*60 || n > 14*60 {
			return fmt.Errorf("LEAGUE_TZ_OFFSET_MIN out of range: %d", n)
		}
	}
	if _, err := standings.ParseGamesOrder(c.RankingGamesTiebreak); err != nil {
		return fmt.Errorf("RANKING_GAMES_TIEBREAK: %w", err)
	}
	if c.RankingMaxTop < 1 {
		return fmt.Errorf("RANKING_MAX_TOP must be positive, got %d", c.RankingMaxTop)
	}
	if c.StatWriteRatePerSec <= 0 || c.StatWriteBurst < 1 {
		return fmt.Errorf("stat write rate limit must be positive (rate=%v burst=%d)", c.StatWriteRatePerSec, c.StatWriteBurst)
	}
	if c.OutboxBatchSize < 1 || c.OutboxPollInterval <= 0 {
		return fmt.Errorf("outbox poll interval and batch size must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Clock returns the league clock for LEAGUE_TZ_OFFSET_MIN.
func (c *Config) Clock() matchstatus.Clock {
	return matchstatus.NewClock(c.LeagueTZOffsetMin)
}

// GamesOrder returns the ranking games tie-break policy. Call after Validate.
func (c *Config) GamesOrder() standings.GamesOrder {
	o, _ := standings.ParseGamesOrder(c.RankingGamesTiebreak)
	return o
}

// SlogLevel parses LOG_LEVEL; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
