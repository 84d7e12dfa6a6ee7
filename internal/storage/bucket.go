// Package storage wraps the object storage service: validated uploads with
// progress reporting, prefix listing, deletion and metadata patches.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Updated     time.Time         `json:"updated,omitempty"`
}

// Bucket is the capability interface over one storage bucket. Implemented by
// the Cloud Storage adapter, an in-memory bucket for tests and an inert stub.
type Bucket interface {
	// Upload streams r into the object at path. progress, when non-nil, is
	// called with cumulative bytes written.
	Upload(ctx context.Context, path, contentType string, r io.Reader, progress func(written int64)) error
	// DownloadURL resolves a fetchable URL for the object.
	DownloadURL(ctx context.Context, path string) (string, error)
	// List enumerates every object under the prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, path string) error
	// UpdateMetadata applies the patch and returns the object's new metadata.
	UpdateMetadata(ctx context.Context, path string, patch map[string]string) (map[string]string, error)
}

// progressWriter counts bytes flowing to the underlying writer.
type progressWriter struct {
	w       io.Writer
	written int64
	report  func(written int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.report != nil && n > 0 {
		p.report(p.written)
	}
	return n, err
}
