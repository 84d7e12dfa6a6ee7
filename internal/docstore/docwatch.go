package docstore

import (
	"context"
	"sync"
)

// WatchOption configures a DocumentWatch or CollectionWatch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	idField  string
	disabled bool
	onError  func(error)
}

// WatchIDField overrides the record field the document id is attached to.
func WatchIDField(name string) WatchOption {
	return func(c *watchConfig) { c.idField = name }
}

// Disabled keeps the watch idle until an explicit Subscribe call.
func Disabled() WatchOption {
	return func(c *watchConfig) { c.disabled = true }
}

// WatchOnError installs a callback invoked with the raw backend error.
func WatchOnError(fn func(error)) WatchOption {
	return func(c *watchConfig) { c.onError = fn }
}

// DocumentWatch maintains a live subscription to a single document,
// re-entrant on document-id change, with imperative fetch/save/update/delete
// alongside the feed. A snapshot reporting a missing document is a success
// with nil data: deletion by another actor is not a fault.
type DocumentWatch[T any] struct {
	facade *Facade[T]
	cfg    watchConfig
	onData func(*T)

	mu     sync.Mutex
	id     string
	status Status
	data   *T
	err    error
	stop   func()
}

func NewDocumentWatch[T any](store Store, collection, id string, opts ...WatchOption) *DocumentWatch[T] {
	cfg := watchConfig{idField: "id"}
	for _, o := range opts {
		o(&cfg)
	}
	fopts := []FacadeOption{WithIDField(cfg.idField)}
	if cfg.onError != nil {
		fopts = append(fopts, WithOnError(cfg.onError))
	}
	return &DocumentWatch[T]{
		facade: NewFacade[T](store, collection, fopts...),
		cfg:    cfg,
		id:     id,
		status: StatusIdle,
	}
}

// OnData registers a callback invoked with each decoded snapshot. Must be set
// before Start.
func (w *DocumentWatch[T]) OnData(fn func(*T)) { w.onData = fn }

func (w *DocumentWatch[T]) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *DocumentWatch[T]) Data() *T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

func (w *DocumentWatch[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Start opens the live listener for the current id. Disabled watches and
// watches without an id stay idle.
func (w *DocumentWatch[T]) Start(ctx context.Context) error {
	if w.cfg.disabled {
		return nil
	}
	return w.Subscribe(ctx)
}

// Subscribe opens the listener regardless of the disabled flag. Any previous
// listener is torn down first.
func (w *DocumentWatch[T]) Subscribe(ctx context.Context) error {
	w.mu.Lock()
	id := w.id
	prev := w.stop
	w.stop = nil
	if id == "" {
		w.status = StatusIdle
		w.mu.Unlock()
		if prev != nil {
			prev()
		}
		return nil
	}
	w.status = StatusLoading
	w.err = nil
	w.mu.Unlock()
	if prev != nil {
		prev()
	}

	stop, err := w.facade.SubscribeToDocument(ctx, id, func(rec *T, err error) {
		w.mu.Lock()
		if err != nil {
			w.status = StatusError
			w.err = err
			w.mu.Unlock()
			return
		}
		w.status = StatusSuccess
		w.err = nil
		w.data = rec
		w.mu.Unlock()
		if w.onData != nil {
			w.onData(rec)
		}
	})
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()
	return nil
}

// SetID retargets the watch. If a listener is active it is torn down and a
// new one opened for the new id.
func (w *DocumentWatch[T]) SetID(ctx context.Context, id string) error {
	w.mu.Lock()
	if w.id == id {
		w.mu.Unlock()
		return nil
	}
	w.id = id
	active := w.stop != nil
	w.mu.Unlock()
	if !active {
		return nil
	}
	return w.Subscribe(ctx)
}

// Stop tears the listener down. Idempotent.
func (w *DocumentWatch[T]) Stop() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// resolveID picks the explicit override over the stored default.
func (w *DocumentWatch[T]) resolveID(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.id == "" {
		return "", ErrNoDocumentID
	}
	return w.id, nil
}

// Fetch performs a one-shot read bypassing the live listener. Pass "" to use
// the stored id.
func (w *DocumentWatch[T]) Fetch(ctx context.Context, override string) (*T, error) {
	id, err := w.resolveID(override)
	if err != nil {
		return nil, err
	}
	rec, err := w.facade.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.data = rec
	w.status = StatusSuccess
	w.mu.Unlock()
	return rec, nil
}

// Save writes the full payload (or merges it). When a live listener is
// active, local state refreshes through it; otherwise an explicit re-read
// runs.
func (w *DocumentWatch[T]) Save(ctx context.Context, override string, fields Fields, merge bool) (*T, error) {
	id, err := w.resolveID(override)
	if err != nil {
		return nil, err
	}
	rec, err := w.facade.SetDocument(ctx, id, fields, merge)
	if err != nil {
		return nil, err
	}
	return w.afterWrite(ctx, id, rec)
}

// Update merges a partial payload, stamping only the update timestamp.
func (w *DocumentWatch[T]) Update(ctx context.Context, override string, patch Fields) (*T, error) {
	id, err := w.resolveID(override)
	if err != nil {
		return nil, err
	}
	rec, err := w.facade.UpdateDocument(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return w.afterWrite(ctx, id, rec)
}

// Delete removes the document.
func (w *DocumentWatch[T]) Delete(ctx context.Context, override string) error {
	id, err := w.resolveID(override)
	if err != nil {
		return err
	}
	if err := w.facade.DeleteDocument(ctx, id); err != nil {
		return err
	}
	w.mu.Lock()
	if w.stop == nil {
		w.data = nil
	}
	w.mu.Unlock()
	return nil
}

func (w *DocumentWatch[T]) afterWrite(ctx context.Context, id string, rec *T) (*T, error) {
	w.mu.Lock()
	live := w.stop != nil
	w.mu.Unlock()
	if live {
		// The listener delivers the committed snapshot.
		return rec, nil
	}
	fresh, err := w.facade.GetDocument(ctx, id)
	if err != nil {
		return rec, nil
	}
	w.mu.Lock()
	w.data = fresh
	w.status = StatusSuccess
	w.mu.Unlock()
	if fresh != nil {
		return fresh, nil
	}
	return rec, nil
}
