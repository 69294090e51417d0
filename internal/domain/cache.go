package domain

import (
	"context"
	"time"
)

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking. Both methods return ErrLockHeld
// when another holder owns the key.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
	// Hold keeps the lock until ctx is cancelled or the lock is lost.
	Hold(ctx context.Context, key string, ttl time.Duration) error
}

// StreamMessage represents a single entry from a stream.
type StreamMessage struct {
	ID      string `json:"id"`
	Payload []byte `json:"payload"`
}

// SignalBus provides pub/sub and durable streams.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// Engine event channel and stream names.
const (
	ChannelEngine = "ch:engine"
	StreamEngine  = "stream:engine"
)
