package port

import (
	"context"
	"io"
)

// ClipStorage moves source videos and rendered artifacts between the worker
// and object storage.
type ClipStorage interface {
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
	UploadClip(ctx context.Context, objectKey string, reader io.Reader, size int64) error
	UploadPoster(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
