package docstore

import (
	"context"
	"sync"
)

// CollectionWatch maintains a live subscription over a filtered/ordered view
// of one collection. Replacing the constraint set tears the old listener down
// before the new one attaches; there is never a window with two live
// listeners for the same watch.
type CollectionWatch[T any] struct {
	facade *Facade[T]
	cfg    watchConfig
	onData func([]T)

	mu          sync.Mutex
	constraints []Constraint
	status      Status
	data        []T
	err         error
	stop        func()
}

func NewCollectionWatch[T any](store Store, collection string, cs []Constraint, opts ...WatchOption) *CollectionWatch[T] {
	cfg := watchConfig{idField: "id"}
	for _, o := range opts {
		o(&cfg)
	}
	fopts := []FacadeOption{WithIDField(cfg.idField)}
	if cfg.onError != nil {
		fopts = append(fopts, WithOnError(cfg.onError))
	}
	return &CollectionWatch[T]{
		facade:      NewFacade[T](store, collection, fopts...),
		cfg:         cfg,
		constraints: cs,
		status:      StatusIdle,
	}
}

// OnData registers a callback invoked with each decoded result set. Must be
// set before Start.
func (w *CollectionWatch[T]) OnData(fn func([]T)) { w.onData = fn }

func (w *CollectionWatch[T]) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *CollectionWatch[T]) Data() []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

func (w *CollectionWatch[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Start opens the listener unless the watch is disabled.
func (w *CollectionWatch[T]) Start(ctx context.Context) {
	if w.cfg.disabled {
		return
	}
	w.Subscribe(ctx)
}

// Subscribe opens the listener regardless of the disabled flag, tearing down
// any previous one first.
func (w *CollectionWatch[T]) Subscribe(ctx context.Context) {
	w.mu.Lock()
	cs := w.constraints
	prev := w.stop
	w.stop = nil
	w.status = StatusLoading
	w.err = nil
	w.mu.Unlock()
	if prev != nil {
		prev()
	}

	stop := w.facade.SubscribeToCollection(ctx, cs, func(recs []T, err error) {
		w.mu.Lock()
		if err != nil {
			w.status = StatusError
			w.err = err
			w.mu.Unlock()
			return
		}
		w.status = StatusSuccess
		w.err = nil
		w.data = recs
		w.mu.Unlock()
		if w.onData != nil {
			w.onData(recs)
		}
	})
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()
}

// UpdateQueryConstraints replaces the constraint set. Sets are compared by
// value, so passing a freshly built but identical set does not thrash the
// subscription; only an actually different set re-subscribes.
func (w *CollectionWatch[T]) UpdateQueryConstraints(ctx context.Context, cs []Constraint) {
	w.mu.Lock()
	if ConstraintsEqual(w.constraints, cs) {
		w.mu.Unlock()
		return
	}
	w.constraints = cs
	active := w.stop != nil
	w.mu.Unlock()
	if active {
		w.Subscribe(ctx)
	}
}

// GetDocumentByID looks up a record in the last-received result set. No
// network round-trip.
func (w *CollectionWatch[T]) GetDocumentByID(id string) *T {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.data {
		rec := w.data[i]
		if recordID(&rec, w.cfg.idField) == id {
			return &rec
		}
	}
	return nil
}

// Stop tears the listener down and returns the watch to idle. Idempotent.
func (w *CollectionWatch[T]) Stop() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.status = StatusIdle
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
}
