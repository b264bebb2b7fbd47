package policies

import (
	"context"
	"io"
)

// UploaderPort stores binary content and returns a public URL.
type UploaderPort interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
