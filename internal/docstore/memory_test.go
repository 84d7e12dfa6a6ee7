package docstore

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func seedDocs(t *testing.T, store Store, collection string, docs map[string]Fields) {
	t.Helper()
	ctx := context.Background()
	for id, fields := range docs {
		if err := store.Collection(collection).Doc(id).Set(ctx, fields, false); err != nil {
			t.Fatalf("seed %s/%s: %v", collection, id, err)
		}
	}
}

func queryIDs(t *testing.T, store Store, collection string, cs []Constraint) []string {
	t.Helper()
	snaps, err := store.Collection(collection).Query(context.Background(), cs)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	ids := make([]string, 0, len(snaps))
	for _, s := range snaps {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestMemoryQueryConstraints(t *testing.T) {
	store := NewMemory()
	seedDocs(t, store, "messages", map[string]Fields{
		"a": {"title": "Genèse", "views": 10, "published": true, "tag": "enseignement"},
		"b": {"title": "Exode", "views": 25, "published": true, "tag": "louange"},
		"c": {"title": "Psaumes", "views": 5, "published": false, "tag": "louange"},
		"d": {"title": "Actes", "views": 40, "published": true, "tag": "jeunesse"},
	})

	tests := []struct {
		name string
		cs   []Constraint
		want []string
	}{
		{
			name: "no constraints returns all by id",
			cs:   nil,
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "equality filter",
			cs:   []Constraint{Where("published", "==", true)},
			want: []string{"a", "b", "d"},
		},
		{
			name: "inequality filter",
			cs:   []Constraint{Where("tag", "!=", "louange")},
			want: []string{"a", "d"},
		},
		{
			name: "range filter",
			cs:   []Constraint{Where("views", ">=", 10)},
			want: []string{"a", "b", "d"},
		},
		{
			name: "membership filter",
			cs:   []Constraint{Where("tag", "in", []any{"louange", "jeunesse"})},
			want: []string{"b", "c", "d"},
		},
		{
			name: "order by descending",
			cs:   []Constraint{OrderBy("views", Desc)},
			want: []string{"d", "b", "a", "c"},
		},
		{
			name: "filter order limit",
			cs: []Constraint{
				Where("published", "==", true),
				OrderBy("views", Desc),
				Limit(2),
			},
			want: []string{"d", "b"},
		},
		{
			name: "missing field never matches",
			cs:   []Constraint{Where("speaker", "==", "x")},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queryIDs(t, store, "messages", tt.cs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryWatchDeliversMutations(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	col := store.Collection("annonces")

	var got [][]string
	stop := col.Watch(ctx, []Constraint{Where("pinned", "==", true)}, func(snaps []Snapshot, err error) {
		if err != nil {
			t.Fatalf("watch error: %v", err)
		}
		ids := []string{}
		for _, s := range snaps {
			ids = append(ids, s.ID)
		}
		got = append(got, ids)
	})
	defer stop()

	if err := col.Doc("x").Set(ctx, Fields{"pinned": true}, false); err != nil {
		t.Fatal(err)
	}
	if err := col.Doc("y").Set(ctx, Fields{"pinned": false}, false); err != nil {
		t.Fatal(err)
	}
	if err := col.Doc("x").Delete(ctx); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{},    // initial empty snapshot
		{"x"}, // x created
		{"x"}, // y created, filtered out
		{},    // x deleted
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryWatchStopIsIdempotent(t *testing.T) {
	store := NewMemory()
	col := store.Collection("c").(*memCollection)
	stop := col.Watch(context.Background(), nil, func([]Snapshot, error) {})
	stop()
	stop()
	if n := col.WatcherCount(); n != 0 {
		t.Errorf("WatcherCount() = %d after double stop, want 0", n)
	}
}

func TestMemoryMergeSet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	doc := store.Collection("contacts").Doc("c1")

	if err := doc.Set(ctx, Fields{"name": "Durand", "member": true}, false); err != nil {
		t.Fatal(err)
	}
	if err := doc.Set(ctx, Fields{"email": "durand@example.org"}, true); err != nil {
		t.Fatal(err)
	}

	snap, err := doc.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Data["name"] != "Durand" || snap.Data["email"] != "durand@example.org" {
		t.Errorf("merge lost fields: %v", snap.Data)
	}

	// Full replace drops unmentioned fields.
	if err := doc.Set(ctx, Fields{"name": "Petit"}, false); err != nil {
		t.Fatal(err)
	}
	snap, err = doc.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Data["email"]; ok {
		t.Errorf("replace kept stale field: %v", snap.Data)
	}
}

func TestMemoryWatchStopReleasesGoroutine(t *testing.T) {
	store := NewMemory()
	col := store.Collection("articles")
	ctx := context.Background()

	before := runtime.NumGoroutine()
	stops := make([]func(), 0, 20)
	for i := 0; i < 20; i++ {
		stops = append(stops, col.Watch(ctx, nil, func([]Snapshot, error) {}))
	}
	for _, stop := range stops {
		stop()
	}

	// Stopping must not rely on context cancellation to reap the watcher
	// goroutine; ctx here is never cancelled.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("%d goroutines alive, want at most %d", runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
