package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRENDSONAR_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRENDSONAR_* environment variables and
// overwrites the corresponding Config fields when a variable is set and not
// empty.
func applyEnvOverrides(cfg *Config) {
	// ── Simulation ──
	setUint64(&cfg.Simulation.Seed, "TRENDSONAR_SIMULATION_SEED")
	setBool(&cfg.Simulation.SeedSamples, "TRENDSONAR_SIMULATION_SEED_SAMPLES")
	setDuration(&cfg.Simulation.HeatInterval, "TRENDSONAR_SIMULATION_HEAT_INTERVAL")
	setDuration(&cfg.Simulation.CommunityInterval, "TRENDSONAR_SIMULATION_COMMUNITY_INTERVAL")
	setFloat64(&cfg.Simulation.CommunityProbability, "TRENDSONAR_SIMULATION_COMMUNITY_PROBABILITY")
	setDuration(&cfg.Simulation.SettleDelay, "TRENDSONAR_SIMULATION_SETTLE_DELAY")
	setInt(&cfg.Simulation.EventBuffer, "TRENDSONAR_SIMULATION_EVENT_BUFFER")

	// ── Economy ──
	setInt(&cfg.Economy.StartingBalance, "TRENDSONAR_ECONOMY_STARTING_BALANCE")
	setInt(&cfg.Economy.NewUserBonus, "TRENDSONAR_ECONOMY_NEW_USER_BONUS")
	setInt(&cfg.Economy.DailyReward, "TRENDSONAR_ECONOMY_DAILY_REWARD")
	setInt(&cfg.Economy.LoyaltyBonus, "TRENDSONAR_ECONOMY_LOYALTY_BONUS")
	setInt(&cfg.Economy.MinBet, "TRENDSONAR_ECONOMY_MIN_BET")

	// ── State ──
	setStr(&cfg.State.Backend, "TRENDSONAR_STATE_BACKEND")
	setStr(&cfg.State.Namespace, "TRENDSONAR_STATE_NAMESPACE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "TRENDSONAR_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "TRENDSONAR_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TRENDSONAR_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TRENDSONAR_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TRENDSONAR_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TRENDSONAR_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TRENDSONAR_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "TRENDSONAR_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TRENDSONAR_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "TRENDSONAR_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRENDSONAR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRENDSONAR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRENDSONAR_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRENDSONAR_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "TRENDSONAR_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "TRENDSONAR_REDIS_KEY_PREFIX")
	setInt64(&cfg.Redis.StreamMaxLen, "TRENDSONAR_REDIS_STREAM_MAX_LEN")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "TRENDSONAR_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRENDSONAR_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRENDSONAR_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRENDSONAR_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRENDSONAR_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRENDSONAR_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRENDSONAR_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "TRENDSONAR_S3_PREFIX")
	setDuration(&cfg.S3.ArchiveInterval, "TRENDSONAR_S3_ARCHIVE_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "TRENDSONAR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRENDSONAR_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "TRENDSONAR_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "TRENDSONAR_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "TRENDSONAR_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "TRENDSONAR_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRENDSONAR_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRENDSONAR_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRENDSONAR_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "TRENDSONAR_MODE")
	setStr(&cfg.LogLevel, "TRENDSONAR_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
