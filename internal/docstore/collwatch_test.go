package docstore

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingStore wraps a Store and tracks listener attach/detach ordering.
type countingStore struct {
	inner Store

	mu       sync.Mutex
	attached int
	active   int
	maxLive  int
	events   []string
}

func (s *countingStore) Collection(name string) Collection {
	return &countingCollection{s: s, inner: s.inner.Collection(name)}
}

func (s *countingStore) liveListeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *countingStore) maxLiveListeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxLive
}

type countingCollection struct {
	s     *countingStore
	inner Collection
}

func (c *countingCollection) Doc(id string) Document { return c.inner.Doc(id) }
func (c *countingCollection) NewDoc() Document       { return c.inner.NewDoc() }

func (c *countingCollection) Query(ctx context.Context, cs []Constraint) ([]Snapshot, error) {
	return c.inner.Query(ctx, cs)
}

func (c *countingCollection) Watch(ctx context.Context, cs []Constraint, fn func([]Snapshot, error)) func() {
	c.s.mu.Lock()
	c.s.attached++
	c.s.active++
	if c.s.active > c.s.maxLive {
		c.s.maxLive = c.s.active
	}
	c.s.events = append(c.s.events, "attach")
	c.s.mu.Unlock()

	stop := c.inner.Watch(ctx, cs, fn)
	var once sync.Once
	return func() {
		once.Do(func() {
			c.s.mu.Lock()
			c.s.active--
			c.s.events = append(c.s.events, "detach")
			c.s.mu.Unlock()
		})
		stop()
	}
}

type annonce struct {
	ID     string `firestore:"id" json:"id"`
	Title  string `firestore:"title" json:"title"`
	Status string `firestore:"status" json:"status"`
}

func TestCollectionWatchReceivesData(t *testing.T) {
	store := NewMemory()
	seedDocs(t, store, "annonces", map[string]Fields{
		"a": {"title": "Concert", "status": "published"},
		"b": {"title": "Brouillon", "status": "draft"},
	})

	w := NewCollectionWatch[annonce](store, "annonces", []Constraint{Where("status", "==", "published")})
	w.Start(context.Background())
	defer w.Stop()

	want := []annonce{{ID: "a", Title: "Concert", Status: "published"}}
	if diff := cmp.Diff(want, w.Data()); diff != "" {
		t.Errorf("Data() mismatch (-want +got):\n%s", diff)
	}
	if w.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want success", w.Status())
	}
}

func TestCollectionWatchUpdateConstraintsReplacesView(t *testing.T) {
	mem := NewMemory()
	store := &countingStore{inner: mem}
	ctx := context.Background()
	seedDocs(t, mem, "annonces", map[string]Fields{
		"a": {"title": "A", "status": "published"},
		"b": {"title": "B", "status": "draft"},
	})

	w := NewCollectionWatch[annonce](store, "annonces", []Constraint{Where("status", "==", "published")})
	w.Start(ctx)
	defer w.Stop()

	if got := w.Data(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("initial Data() = %v", got)
	}

	w.UpdateQueryConstraints(ctx, []Constraint{Where("status", "==", "draft")})

	// Old item replaced, not merged.
	want := []annonce{{ID: "b", Title: "B", Status: "draft"}}
	if diff := cmp.Diff(want, w.Data()); diff != "" {
		t.Errorf("Data() after constraint swap (-want +got):\n%s", diff)
	}
	if n := store.liveListeners(); n != 1 {
		t.Errorf("live listeners = %d, want exactly 1", n)
	}
	if n := store.maxLiveListeners(); n != 1 {
		t.Errorf("max simultaneous listeners = %d, want 1 (old must detach before new attaches)", n)
	}
	store.mu.Lock()
	events := append([]string(nil), store.events...)
	store.mu.Unlock()
	wantEvents := []string{"attach", "detach", "attach"}
	if diff := cmp.Diff(wantEvents, events); diff != "" {
		t.Errorf("listener events (-want +got):\n%s", diff)
	}
}

func TestCollectionWatchEqualConstraintsDoNotResubscribe(t *testing.T) {
	store := &countingStore{inner: NewMemory()}
	ctx := context.Background()

	w := NewCollectionWatch[annonce](store, "annonces", []Constraint{
		Where("status", "==", "published"),
		OrderBy("title", Asc),
		Limit(10),
	})
	w.Start(ctx)
	defer w.Stop()

	// A freshly built but structurally identical set must not thrash the
	// subscription.
	w.UpdateQueryConstraints(ctx, []Constraint{
		Where("status", "==", "published"),
		OrderBy("title", Asc),
		Limit(10),
	})

	store.mu.Lock()
	attached := store.attached
	store.mu.Unlock()
	if attached != 1 {
		t.Errorf("attach count = %d, want 1", attached)
	}
}

func TestCollectionWatchDisabledStaysIdle(t *testing.T) {
	store := &countingStore{inner: NewMemory()}
	ctx := context.Background()

	w := NewCollectionWatch[annonce](store, "annonces", nil, Disabled())
	w.Start(ctx)

	if w.Status() != StatusIdle {
		t.Errorf("Status() = %q, want idle", w.Status())
	}
	if n := store.liveListeners(); n != 0 {
		t.Errorf("live listeners = %d, want 0", n)
	}

	// Manual subscribe forces a listener regardless of the flag.
	w.Subscribe(ctx)
	defer w.Stop()
	if n := store.liveListeners(); n != 1 {
		t.Errorf("live listeners after Subscribe = %d, want 1", n)
	}
	if w.Status() != StatusSuccess {
		t.Errorf("Status() after Subscribe = %q, want success", w.Status())
	}
}

func TestCollectionWatchGetDocumentByID(t *testing.T) {
	store := NewMemory()
	seedDocs(t, store, "annonces", map[string]Fields{
		"a": {"title": "A", "status": "published"},
		"b": {"title": "B", "status": "published"},
	})

	w := NewCollectionWatch[annonce](store, "annonces", nil)
	w.Start(context.Background())
	defer w.Stop()

	if got := w.GetDocumentByID("b"); got == nil || got.Title != "B" {
		t.Errorf("GetDocumentByID(b) = %v", got)
	}
	if got := w.GetDocumentByID("zzz"); got != nil {
		t.Errorf("GetDocumentByID(zzz) = %v, want nil", got)
	}
}

func TestCollectionWatchStopIsIdempotent(t *testing.T) {
	store := &countingStore{inner: NewMemory()}
	w := NewCollectionWatch[annonce](store, "annonces", nil)
	w.Start(context.Background())

	w.Stop()
	w.Stop()
	if n := store.liveListeners(); n != 0 {
		t.Errorf("live listeners = %d after double Stop, want 0", n)
	}
	if w.Status() != StatusIdle {
		t.Errorf("Status() = %q after Stop, want idle", w.Status())
	}
}
