package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"church-site/backend/internal/utils"
)

// ErrValidation marks client-side pre-check failures; the backend is never
// contacted for these.
var ErrValidation = errors.New("validation")

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// UploadResult is the durable outcome of one upload. Path is the handle for
// later delete/metadata operations, URL an ephemeral download link.
type UploadResult struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithAcceptedTypes restricts uploads to the given MIME types.
func WithAcceptedTypes(types ...string) FacadeOption {
	return func(f *Facade) { f.acceptedTypes = types }
}

// WithMaxSize caps upload size in bytes.
func WithMaxSize(maxBytes int64) FacadeOption {
	return func(f *Facade) { f.maxBytes = maxBytes }
}

// WithOnProgress installs an observer of integer upload percentages.
func WithOnProgress(fn func(percent int)) FacadeOption {
	return func(f *Facade) { f.onProgress = fn }
}

// Facade validates and uploads files into one bucket prefix, tracking this
// session's uploads, the latest progress percentage and at most one error at
// a time.
type Facade struct {
	bucket        Bucket
	basePath      string
	acceptedTypes []string
	maxBytes      int64
	onProgress    func(int)

	mu       sync.Mutex
	uploads  []UploadResult
	progress int
	errMsg   string

	now func() time.Time
}

func NewFacade(bucket Bucket, basePath string, opts ...FacadeOption) *Facade {
	f := &Facade{
		bucket:   bucket,
		basePath: strings.Trim(basePath, "/"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Uploads returns this session's upload results.
func (f *Facade) Uploads() []UploadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]UploadResult, len(f.uploads))
	copy(out, f.uploads)
	return out
}

// Progress returns the latest upload percentage.
func (f *Facade) Progress() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

// ErrMessage returns the current error message, empty when the last
// operation succeeded. A new operation clears it before proceeding.
func (f *Facade) ErrMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

func (f *Facade) clearError() {
	f.mu.Lock()
	f.errMsg = ""
	f.mu.Unlock()
}

func (f *Facade) fail(err error) error {
	f.mu.Lock()
	f.errMsg = err.Error()
	f.mu.Unlock()
	return err
}

// UploadFile validates the declared content type and size, then streams the
// file up, reporting integer progress percentages. Rejections are
// synchronous and side-effect-free: the backend is not contacted and the
// session's upload list is unchanged.
func (f *Facade) UploadFile(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	f.clearError()

	if len(f.acceptedTypes) > 0 && !f.typeAccepted(contentType) {
		return nil, f.fail(fmt.Errorf("%w: Type de fichier non supporté: %s. Types acceptés: %s",
			ErrValidation, contentType, strings.Join(f.acceptedTypes, ", ")))
	}
	if f.maxBytes > 0 && size > f.maxBytes {
		return nil, f.fail(fmt.Errorf("%w: Le fichier est trop volumineux (%d octets, maximum %d)",
			ErrValidation, size, f.maxBytes))
	}

	path := f.objectPath(fileName)
	f.setProgress(0)
	err := f.bucket.Upload(ctx, path, contentType, r, func(written int64) {
		if size > 0 {
			f.setProgress(int(written * 100 / size))
		}
	})
	if err != nil {
		return nil, f.fail(err)
	}
	f.setProgress(100)

	url, err := f.bucket.DownloadURL(ctx, path)
	if err != nil {
		return nil, f.fail(err)
	}

	res := UploadResult{
		URL:         url,
		Path:        path,
		FileName:    fileName,
		ContentType: contentType,
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, res)
	f.mu.Unlock()
	return &res, nil
}

// DeleteFile removes an object and prunes it from the session's upload list.
func (f *Facade) DeleteFile(ctx context.Context, path string) error {
	f.clearError()
	if err := f.bucket.Delete(ctx, path); err != nil {
		return f.fail(err)
	}
	f.mu.Lock()
	kept := f.uploads[:0]
	for _, u := range f.uploads {
		if u.Path != path {
			kept = append(kept, u)
		}
	}
	f.uploads = kept
	f.mu.Unlock()
	return nil
}

// ListFiles enumerates a prefix under the facade's base path, resolving a
// download URL for every entry.
func (f *Facade) ListFiles(ctx context.Context, prefix string) ([]UploadResult, error) {
	f.clearError()
	full := f.basePath
	if prefix != "" {
		full = full + "/" + strings.Trim(prefix, "/")
	}
	infos, err := f.bucket.List(ctx, full)
	if err != nil {
		f.fail(err)
		return nil, err
	}
	out := make([]UploadResult, 0, len(infos))
	for _, info := range infos {
		url, err := f.bucket.DownloadURL(ctx, info.Path)
		if err != nil {
			f.fail(err)
			return nil, err
		}
		out = append(out, UploadResult{
			URL:         url,
			Path:        info.Path,
			FileName:    info.Name,
			ContentType: info.ContentType,
		})
	}
	return out, nil
}

// UpdateFileMetadata applies a metadata patch and returns the updated
// metadata.
func (f *Facade) UpdateFileMetadata(ctx context.Context, path string, patch map[string]string) (map[string]string, error) {
	f.clearError()
	meta, err := f.bucket.UpdateMetadata(ctx, path, patch)
	if err != nil {
		f.fail(err)
		return nil, err
	}
	return meta, nil
}

func (f *Facade) typeAccepted(contentType string) bool {
	for _, t := range f.acceptedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

func (f *Facade) setProgress(p int) {
	f.mu.Lock()
	f.progress = p
	f.mu.Unlock()
	if f.onProgress != nil {
		f.onProgress(p)
	}
}

// objectPath builds a collision-resistant name: millisecond timestamp prefix
// plus the sanitized original name.
func (f *Facade) objectPath(fileName string) string {
	name := fmt.Sprintf("%d-%s", f.now().UnixMilli(), utils.SanitizeFileName(fileName))
	if f.basePath == "" {
		return name
	}
	return f.basePath + "/" + name
}
