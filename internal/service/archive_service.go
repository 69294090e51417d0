package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

// Snapshotter copies the engine state.
type Snapshotter interface {
	Snapshot(ctx context.Context) (engine.Snapshot, error)
}

// ArchiveService periodically uploads a JSON snapshot of the engine to blob
// storage under <prefix>/YYYY/MM/DD/snapshot-HHMMSS.json.
type ArchiveService struct {
	source   Snapshotter
	blob     domain.BlobWriter
	lock     domain.LockManager
	prefix   string
	interval time.Duration
	logger   *slog.Logger
}

// NewArchiveService creates an ArchiveService.
func NewArchiveService(source Snapshotter, blob domain.BlobWriter, prefix string, interval time.Duration, logger *slog.Logger) *ArchiveService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ArchiveService{
		source:   source,
		blob:     blob,
		prefix:   prefix,
		interval: interval,
		logger:   logger.With(slog.String("component", "archive_service")),
	}
}

// WithLock makes every tick take the archive:<prefix> lock first, so only
// one of several instances sharing the bucket uploads.
func (a *ArchiveService) WithLock(lock domain.LockManager) *ArchiveService {
	a.lock = lock
	return a
}

// Run archives on every interval until ctx is cancelled. A failed upload is
// logged and retried on the next tick.
func (a *ArchiveService) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.InfoContext(ctx, "archive_service: started", slog.Duration("interval", a.interval))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *ArchiveService) tick(ctx context.Context) {
	if a.lock != nil {
		unlock, err := a.lock.Acquire(ctx, "archive:"+a.prefix, a.interval/2)
		if errors.Is(err, domain.ErrLockHeld) {
			a.logger.DebugContext(ctx, "archive_service: another instance is archiving")
			return
		}
		if err != nil {
			a.logger.WarnContext(ctx, "archive_service: lock failed", slog.String("error", err.Error()))
			return
		}
		defer unlock()
	}
	if _, err := a.ArchiveOnce(ctx); err != nil {
		a.logger.WarnContext(ctx, "archive_service: archive failed", slog.String("error", err.Error()))
	}
}

// ArchiveOnce uploads one snapshot and returns its object key.
func (a *ArchiveService) ArchiveOnce(ctx context.Context) (string, error) {
	snap, err := a.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("archive_service: snapshot: %w", err)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("archive_service: marshal snapshot: %w", err)
	}

	taken := snap.TakenAt.UTC()
	key := path.Join(a.prefix, taken.Format("2006/01/02"), "snapshot-"+taken.Format("150405")+".json")
	if err := a.blob.Put(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		return "", fmt.Errorf("archive_service: upload %s: %w", key, err)
	}

	a.logger.InfoContext(ctx, "archive_service: snapshot archived",
		slog.String("key", key),
		slog.Int("bytes", len(body)),
		slog.Int("predictions", len(snap.Predictions)),
	)
	return key, nil
}
