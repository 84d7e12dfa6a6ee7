package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSBucket adapts one Cloud Storage bucket to the Bucket interface.
// When a signer service account is configured, download URLs are V4 signed
// GET URLs; otherwise the plain public object URL is returned.
type GCSBucket struct {
	client       *gcs.Client
	bucket       string
	signerEmail  string
	iam          *credentials.IamCredentialsClient
	urlExpiresIn time.Duration
}

func NewGCSBucket(client *gcs.Client, bucket, signerEmail string) *GCSBucket {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	return &GCSBucket{
		client:       client,
		bucket:       bucket,
		signerEmail:  signerEmail,
		iam:          iamClient,
		urlExpiresIn: 24 * time.Hour,
	}
}

func (b *GCSBucket) Upload(ctx context.Context, path, contentType string, r io.Reader, progress func(int64)) error {
	w := b.client.Bucket(b.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	// Small chunks so progress reporting stays granular on slow links.
	w.ChunkSize = 256 * 1024

	pw := &progressWriter{w: w, report: progress}
	if _, err := io.Copy(pw, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *GCSBucket) DownloadURL(ctx context.Context, path string) (string, error) {
	if b.signerEmail == "" || b.iam == nil {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, path), nil
	}
	opts := &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(b.urlExpiresIn),
		GoogleAccessID: b.signerEmail,
		SignBytes: func(p []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", b.signerEmail)
			resp, err := b.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: p,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}
	url, err := gcs.SignedURL(b.bucket, path, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return url, nil
}

func (b *GCSBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	out := []ObjectInfo{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ObjectInfo{
			Path:        attrs.Name,
			Name:        baseName(attrs.Name),
			ContentType: attrs.ContentType,
			Size:        attrs.Size,
			Metadata:    attrs.Metadata,
			Updated:     attrs.Updated,
		})
	}
	return out, nil
}

func (b *GCSBucket) Delete(ctx context.Context, path string) error {
	return b.client.Bucket(b.bucket).Object(path).Delete(ctx)
}

func (b *GCSBucket) UpdateMetadata(ctx context.Context, path string, patch map[string]string) (map[string]string, error) {
	obj := b.client.Bucket(b.bucket).Object(path)
	// The backend replaces the whole metadata map, so merge to keep patch
	// semantics.
	cur, err := obj.Attrs(ctx)
	if err != nil {
		return nil, err
	}
	merged := map[string]string{}
	for k, v := range cur.Metadata {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	attrs, err := obj.Update(ctx, gcs.ObjectAttrsToUpdate{Metadata: merged})
	if err != nil {
		return nil, err
	}
	return attrs.Metadata, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
