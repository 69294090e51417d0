package s3blob

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// minPartSize is the S3 multipart minimum (5 MiB).
const minPartSize int64 = 5 * 1024 * 1024

// Writer implements domain.BlobWriter. Uploads go through the transfer
// manager, so bodies of unknown length are streamed in parts.
type Writer struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewWriter creates a Writer for c's bucket. Every key is placed under
// prefix. partSize below the S3 minimum is raised to it.
func NewWriter(c *Client, prefix string, partSize int64) *Writer {
	if partSize < minPartSize {
		partSize = minPartSize
	}
	return &Writer{
		uploader: manager.NewUploader(c.s3, func(u *manager.Uploader) {
			u.PartSize = partSize
		}),
		bucket: c.bucket,
		prefix: prefix,
	}
}

var _ domain.BlobWriter = (*Writer)(nil)

// Put uploads data to key.
func (w *Writer) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	full := w.objectKey(key)
	_, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(full),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: upload %s: %w", full, err)
	}
	return nil
}

func (w *Writer) objectKey(key string) string {
	if w.prefix == "" {
		return key
	}
	return path.Join(w.prefix, key)
}
