// Package config defines the top-level configuration for trendsonar and
// provides validation helpers.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by TRENDSONAR_* environment variables.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Economy    EconomyConfig    `toml:"economy"`
	State      StateConfig      `toml:"state"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// SimulationConfig holds the engine cadence and randomness.
type SimulationConfig struct {
	// Seed fixes the random source. Zero seeds from the clock.
	Seed                 uint64   `toml:"seed"`
	SeedSamples          bool     `toml:"seed_samples"`
	HeatInterval         duration `toml:"heat_interval"`
	HeatSample           int      `toml:"heat_sample"`
	HeatDeltaMin         int      `toml:"heat_delta_min"`
	HeatDeltaMax         int      `toml:"heat_delta_max"`
	CommunityInterval    duration `toml:"community_interval"`
	CommunityProbability float64  `toml:"community_probability"`
	SettleDelay          duration `toml:"settle_delay"`
	ReviewDelayMin       duration `toml:"review_delay_min"`
	ReviewDelayMax       duration `toml:"review_delay_max"`
	PromoteDelayMin      duration `toml:"promote_delay_min"`
	PromoteDelayMax      duration `toml:"promote_delay_max"`
	EventBuffer          int      `toml:"event_buffer"`
	// LockTTL bounds how long a crashed simulation owner keeps the redis lock.
	LockTTL duration `toml:"lock_ttl"`
}

// EconomyConfig holds the coin amounts granted at startup.
type EconomyConfig struct {
	StartingBalance   int `toml:"starting_balance"`
	NewUserBonus      int `toml:"new_user_bonus"`
	DailyReward       int `toml:"daily_reward"`
	LoyaltyBonus      int `toml:"loyalty_bonus"`
	LoyaltyStreakDays int `toml:"loyalty_streak_days"`
	MinBet            int `toml:"min_bet"`
}

// StateConfig selects where the balance and profile survive restarts.
type StateConfig struct {
	Backend   string `toml:"backend"`
	Namespace string `toml:"namespace"`
}

// PostgresConfig holds PostgreSQL connection parameters. An empty DSN and
// host disables the history and audit tables.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a connection target is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || p.Host != ""
}

// RedisConfig holds Redis connection parameters. An empty addr keeps the
// event bus in process.
type RedisConfig struct {
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"pool_size"`
	MaxRetries   int    `toml:"max_retries"`
	TLSEnabled   bool   `toml:"tls_enabled"`
	KeyPrefix    string `toml:"key_prefix"`
	StreamMaxLen int64  `toml:"stream_max_len"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3Config holds S3-compatible object storage parameters. An empty bucket
// disables snapshot archiving.
type S3Config struct {
	Endpoint        string   `toml:"endpoint"`
	Region          string   `toml:"region"`
	Bucket          string   `toml:"bucket"`
	AccessKey       string   `toml:"access_key"`
	SecretKey       string   `toml:"secret_key"`
	UseSSL          bool     `toml:"use_ssl"`
	ForcePathStyle  bool     `toml:"force_path_style"`
	Prefix          string   `toml:"prefix"`
	ArchiveInterval duration `toml:"archive_interval"`
	PartSize        int64    `toml:"part_size"`
}

// Enabled reports whether a bucket is configured.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// ServerConfig holds HTTP API server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials and the event types
// that trigger a message.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the reference simulation and an
// all-in-memory deployment.
func Defaults() Config {
	return Config{
		Simulation: SimulationConfig{
			SeedSamples:          true,
			HeatInterval:         duration{15 * time.Second},
			HeatSample:           3,
			HeatDeltaMin:         -5,
			HeatDeltaMax:         8,
			CommunityInterval:    duration{20 * time.Second},
			CommunityProbability: 0.25,
			SettleDelay:          duration{2 * time.Second},
			ReviewDelayMin:       duration{10 * time.Second},
			ReviewDelayMax:       duration{30 * time.Second},
			PromoteDelayMin:      duration{30 * time.Second},
			PromoteDelayMax:      duration{60 * time.Second},
			EventBuffer:          256,
			LockTTL:              duration{30 * time.Second},
		},
		Economy: EconomyConfig{
			StartingBalance:   100,
			NewUserBonus:      50,
			DailyReward:       20,
			LoyaltyBonus:      50,
			LoyaltyStreakDays: 7,
			MinBet:            5,
		},
		State: StateConfig{
			Backend:   "memory",
			Namespace: "default",
		},
		Postgres: PostgresConfig{
			Port:          5432,
			Database:      "trendsonar",
			User:          "trendsonar",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MaxRetries:   3,
			KeyPrefix:    "trendsonar",
			StreamMaxLen: 10_000,
		},
		S3: S3Config{
			Region:          "us-east-1",
			UseSSL:          true,
			Prefix:          "snapshots",
			ArchiveInterval: duration{time.Hour},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"prediction.settled", "submission.promoted"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"headless": true,
	"server":   true,
	"full":     true,
}

// logLevels maps the accepted values for Config.LogLevel.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level, info when unrecognised.
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// validBackends enumerates the accepted values for StateConfig.Backend.
var validBackends = map[string]bool{
	"memory":   true,
	"redis":    true,
	"postgres": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: headless, server, full)", c.Mode))
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Simulation
	s := c.Simulation
	if s.HeatInterval.Duration <= 0 {
		errs = append(errs, "simulation: heat_interval must be > 0")
	}
	if s.CommunityInterval.Duration <= 0 {
		errs = append(errs, "simulation: community_interval must be > 0")
	}
	if s.CommunityProbability < 0 || s.CommunityProbability > 1 {
		errs = append(errs, fmt.Sprintf("simulation: community_probability must be 0-1, got %g", s.CommunityProbability))
	}
	if s.HeatDeltaMin > s.HeatDeltaMax {
		errs = append(errs, "simulation: heat_delta_min must not exceed heat_delta_max")
	}
	if s.ReviewDelayMin.Duration > s.ReviewDelayMax.Duration {
		errs = append(errs, "simulation: review_delay_min must not exceed review_delay_max")
	}
	if s.PromoteDelayMin.Duration > s.PromoteDelayMax.Duration {
		errs = append(errs, "simulation: promote_delay_min must not exceed promote_delay_max")
	}

	// Economy
	e := c.Economy
	if e.StartingBalance < 0 || e.NewUserBonus < 0 || e.DailyReward < 0 || e.LoyaltyBonus < 0 {
		errs = append(errs, "economy: amounts must be >= 0")
	}
	if e.LoyaltyStreakDays < 1 {
		errs = append(errs, "economy: loyalty_streak_days must be >= 1")
	}
	if e.MinBet < 5 {
		errs = append(errs, fmt.Sprintf("economy: min_bet must be >= 5, got %d", e.MinBet))
	}

	// State
	switch backend := strings.ToLower(c.State.Backend); {
	case !validBackends[backend]:
		errs = append(errs, fmt.Sprintf("state: unknown backend %q (valid: memory, redis, postgres)", c.State.Backend))
	case backend == "redis" && !c.Redis.Enabled():
		errs = append(errs, "state: backend redis requires redis.addr")
	case backend == "postgres" && !c.Postgres.Enabled():
		errs = append(errs, "state: backend postgres requires postgres.dsn or postgres.host")
	}

	// Postgres
	if c.Postgres.Enabled() {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled() && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled() {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.ArchiveInterval.Duration <= 0 {
			errs = append(errs, "s3: archive_interval must be > 0")
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, "s3: access_key and secret_key must be set together")
		}
	}

	// Server
	if c.Mode != "headless" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
	}

	// Notify
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
