package media

import (
	"context"
	"io"
)

// FileStorage uploads media files and returns their public URL. Uploads
// are not retried; a failed upload surfaces immediately to the caller.
type FileStorage interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}
