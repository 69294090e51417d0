package domain

import (
	"context"
	"io"
)

// BlobWriter stores engine snapshots under a key relative to the writer's
// prefix.
type BlobWriter interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}
