package docstore

import (
	"context"
	"sync"
)

// FacadeOption configures a Facade.
type FacadeOption func(*facadeConfig)

type facadeConfig struct {
	idField string
	onError func(error)
}

// WithIDField overrides the record field the document id is attached to.
func WithIDField(name string) FacadeOption {
	return func(c *facadeConfig) { c.idField = name }
}

// WithOnError installs a callback invoked with the raw backend error whenever
// an operation fails, so callers can branch on backend error codes.
func WithOnError(fn func(error)) FacadeOption {
	return func(c *facadeConfig) { c.onError = fn }
}

// Facade exposes generic CRUD over one collection. Every operation moves the
// facade's shared status through loading then success or error; concurrent
// calls on one instance share that status, last call to settle wins. Callers
// needing independent status per call instantiate separate facades.
type Facade[T any] struct {
	col  Collection
	name string
	cfg  facadeConfig

	mu      sync.Mutex
	status  Status
	err     error
	current *T
}

func NewFacade[T any](store Store, collection string, opts ...FacadeOption) *Facade[T] {
	cfg := facadeConfig{idField: "id"}
	for _, o := range opts {
		o(&cfg)
	}
	return &Facade[T]{
		col:    store.Collection(collection),
		name:   collection,
		cfg:    cfg,
		status: StatusIdle,
	}
}

func (f *Facade[T]) CollectionName() string { return f.name }

func (f *Facade[T]) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *Facade[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Current returns the facade's last single-record result.
func (f *Facade[T]) Current() *T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Facade[T]) begin() {
	f.mu.Lock()
	f.status = StatusLoading
	f.err = nil
	f.mu.Unlock()
}

func (f *Facade[T]) settle(err error) {
	f.mu.Lock()
	if err != nil {
		f.status = StatusError
		f.err = err
	} else {
		f.status = StatusSuccess
		f.err = nil
	}
	f.mu.Unlock()
	if err != nil && f.cfg.onError != nil {
		f.cfg.onError(err)
	}
}

func (f *Facade[T]) setCurrent(rec *T) {
	f.mu.Lock()
	f.current = rec
	f.mu.Unlock()
}

// GetDocument reads one document. A missing document is a successful nil
// result, not an error.
func (f *Facade[T]) GetDocument(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrNoDocumentID
	}
	f.begin()
	snap, err := f.col.Doc(id).Get(ctx)
	if err != nil {
		f.settle(err)
		return nil, err
	}
	rec, err := f.decode(snap)
	f.settle(err)
	if err != nil {
		return nil, err
	}
	f.setCurrent(rec)
	return rec, nil
}

// GetDocuments reads all documents matching the constraint set. On failure it
// returns an empty list with the error state set.
func (f *Facade[T]) GetDocuments(ctx context.Context, cs []Constraint) ([]T, error) {
	f.begin()
	snaps, err := f.col.Query(ctx, cs)
	if err != nil {
		f.settle(err)
		return []T{}, err
	}
	out, err := f.decodeAll(snaps)
	f.settle(err)
	if err != nil {
		return []T{}, err
	}
	return out, nil
}

// SetDocument writes at an explicit id, replacing or merging per the merge
// flag. Both timestamps are stamped regardless of merge: the flag is a
// storage instruction, not a timestamp instruction.
func (f *Facade[T]) SetDocument(ctx context.Context, id string, fields Fields, merge bool) (*T, error) {
	if id == "" {
		return nil, ErrNoDocumentID
	}
	f.begin()
	err := f.col.Doc(id).Set(ctx, f.stampBoth(fields), merge)
	f.settle(err)
	if err != nil {
		return nil, err
	}
	rec, err := recordFrom[T](f.cleanPayload(fields), f.cfg.idField, id)
	if err != nil {
		return nil, err
	}
	f.setCurrent(rec)
	return rec, nil
}

// AddDocument writes at a backend-generated id and stamps both timestamps.
func (f *Facade[T]) AddDocument(ctx context.Context, fields Fields) (*T, error) {
	f.begin()
	doc := f.col.NewDoc()
	err := doc.Set(ctx, f.stampBoth(fields), false)
	f.settle(err)
	if err != nil {
		return nil, err
	}
	rec, err := recordFrom[T](f.cleanPayload(fields), f.cfg.idField, doc.ID())
	if err != nil {
		return nil, err
	}
	f.setCurrent(rec)
	return rec, nil
}

// UpdateDocument merges a partial payload, stamping only updatedAt, then
// re-reads so the returned record reflects the backend's post-write state.
func (f *Facade[T]) UpdateDocument(ctx context.Context, id string, patch Fields) (*T, error) {
	if id == "" {
		return nil, ErrNoDocumentID
	}
	f.begin()
	doc := f.col.Doc(id)
	if err := doc.Set(ctx, f.stampUpdated(patch), true); err != nil {
		f.settle(err)
		return nil, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		f.settle(err)
		return nil, err
	}
	rec, err := f.decode(snap)
	f.settle(err)
	if err != nil {
		return nil, err
	}
	f.setCurrent(rec)
	return rec, nil
}

// DeleteDocument removes the document and clears the facade's single-record
// state on success.
func (f *Facade[T]) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoDocumentID
	}
	f.begin()
	err := f.col.Doc(id).Delete(ctx)
	f.settle(err)
	if err != nil {
		return err
	}
	f.setCurrent(nil)
	return nil
}

// SubscribeToDocument opens a live listener on one document. The callback
// receives nil data for an absent document. The returned stop function is
// idempotent.
func (f *Facade[T]) SubscribeToDocument(ctx context.Context, id string, fn func(*T, error)) (func(), error) {
	if id == "" {
		return nil, ErrNoDocumentID
	}
	stop := f.col.Doc(id).Watch(ctx, func(snap Snapshot, err error) {
		if err != nil {
			f.settle(err)
			fn(nil, err)
			return
		}
		rec, derr := f.decode(snap)
		f.settle(derr)
		if derr != nil {
			fn(nil, derr)
			return
		}
		f.setCurrent(rec)
		fn(rec, nil)
	})
	return stop, nil
}

// SubscribeToCollection opens a live listener over the constraint set.
func (f *Facade[T]) SubscribeToCollection(ctx context.Context, cs []Constraint, fn func([]T, error)) func() {
	return f.col.Watch(ctx, cs, func(snaps []Snapshot, err error) {
		if err != nil {
			f.settle(err)
			fn(nil, err)
			return
		}
		out, derr := f.decodeAll(snaps)
		f.settle(derr)
		if derr != nil {
			fn(nil, derr)
			return
		}
		fn(out, nil)
	})
}

func (f *Facade[T]) decode(snap Snapshot) (*T, error) {
	if !snap.Exists {
		return nil, nil
	}
	rec := new(T)
	if err := snap.DataTo(rec); err != nil {
		return nil, err
	}
	attachID(rec, f.cfg.idField, snap.ID)
	return rec, nil
}

func (f *Facade[T]) decodeAll(snaps []Snapshot) ([]T, error) {
	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		rec, err := f.decode(s)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *Facade[T]) stampBoth(fields Fields) Fields {
	out := f.cleanPayload(fields)
	out["createdAt"] = ServerTimestamp
	out["updatedAt"] = ServerTimestamp
	return out
}

func (f *Facade[T]) stampUpdated(fields Fields) Fields {
	out := f.cleanPayload(fields)
	out["updatedAt"] = ServerTimestamp
	return out
}

// cleanPayload copies the payload, dropping the id field and any caller
// attempt to supply the server-stamped timestamps.
func (f *Facade[T]) cleanPayload(fields Fields) Fields {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		if k == f.cfg.idField || k == "createdAt" || k == "updatedAt" {
			continue
		}
		out[k] = v
	}
	return out
}

// recordFrom builds the convenience return value of a write from its payload
// plus the document id. The backend-resolved timestamps are not included;
// callers needing post-write state use UpdateDocument or a live listener.
func recordFrom[T any](fields Fields, idField, id string) (*T, error) {
	snap := Snapshot{ID: id, Exists: true, Data: fields}
	rec := new(T)
	if err := snap.DataTo(rec); err != nil {
		return nil, err
	}
	attachID(rec, idField, id)
	return rec, nil
}
