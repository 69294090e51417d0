package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alanyoungcy/trendsonar/internal/blob/s3"
	"github.com/alanyoungcy/trendsonar/internal/cache/memory"
	"github.com/alanyoungcy/trendsonar/internal/cache/redis"
	"github.com/alanyoungcy/trendsonar/internal/config"
	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/notify"
	"github.com/alanyoungcy/trendsonar/internal/server/handler"
	memstore "github.com/alanyoungcy/trendsonar/internal/store/memory"
	"github.com/alanyoungcy/trendsonar/internal/store/postgres"
)

// Dependencies bundles every port the run modes need. It is constructed by
// Wire and torn down by the returned cleanup function. Optional ports are nil
// when their backend is not configured.
type Dependencies struct {
	// Backend names the StateStore implementation in use.
	Backend string

	State   domain.StateStore
	History domain.HistoryStore
	Audit   domain.AuditStore
	Bus     domain.SignalBus

	Limiter domain.RateLimiter // nil without redis
	Lock    domain.LockManager // nil without redis
	Blob    domain.BlobWriter  // nil without s3

	Notifier *notify.Notifier

	// Checks are run by the health endpoint.
	Checks map[string]handler.Check
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Backend: strings.ToLower(cfg.State.Backend),
		Checks:  make(map[string]handler.Check),
	}

	// --- PostgreSQL ---
	var pg postgres.DB
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		pg = pool
		deps.Checks["postgres"] = pool.Ping
		deps.History = postgres.NewHistoryStore(pool)
		deps.Audit = postgres.NewAuditStore(pool)
	} else {
		deps.History = memstore.NewHistoryStore()
		deps.Audit = memstore.NewAuditStore(0)
	}

	// --- Redis ---
	var rc *redis.Client
	if cfg.Redis.Enabled() {
		var err error
		rc, err = redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = rc.Close() })

		deps.Checks["redis"] = rc.Ping
		deps.Bus = redis.NewSignalBus(rc, cfg.Redis.StreamMaxLen)
		deps.Limiter = redis.NewRateLimiter(rc)
		deps.Lock = redis.NewLockManager(rc)
	} else {
		deps.Bus = memory.NewSignalBus(int(cfg.Redis.StreamMaxLen))
	}

	// --- State ---
	switch deps.Backend {
	case "redis":
		deps.State = redis.NewStateStore(rc, cfg.State.Namespace)
	case "postgres":
		deps.State = postgres.NewStateStore(pg, cfg.State.Namespace)
	default:
		deps.Backend = "memory"
		deps.State = memstore.NewStateStore()
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Checks["s3"] = s3Client.Health
		deps.Blob = s3blob.NewWriter(s3Client, cfg.S3.Prefix, cfg.S3.PartSize)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	logger.InfoContext(ctx, "wire: dependencies ready",
		slog.String("state_backend", deps.Backend),
		slog.Bool("postgres", cfg.Postgres.Enabled()),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Bool("s3", cfg.S3.Enabled()),
		slog.Bool("notify", deps.Notifier.Enabled()),
	)
	return deps, cleanup, nil
}
