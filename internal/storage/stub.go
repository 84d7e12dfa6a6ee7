package storage

import (
	"context"
	"io"
)

// NewStubBucket returns an inert Bucket for unconfigured environments.
// Uploads drain their reader and report completion; reads are empty.
func NewStubBucket() Bucket {
	return stubBucket{}
}

type stubBucket struct{}

func (stubBucket) Upload(_ context.Context, _, _ string, r io.Reader, progress func(int64)) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	if progress != nil {
		progress(n)
	}
	return nil
}

func (stubBucket) DownloadURL(context.Context, string) (string, error) { return "", nil }

func (stubBucket) List(context.Context, string) ([]ObjectInfo, error) {
	return []ObjectInfo{}, nil
}

func (stubBucket) Delete(context.Context, string) error { return nil }

func (stubBucket) UpdateMetadata(_ context.Context, _ string, patch map[string]string) (map[string]string, error) {
	return patch, nil
}
