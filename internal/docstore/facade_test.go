package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type note struct {
	ID        string    `firestore:"id" json:"id"`
	Title     string    `firestore:"title" json:"title"`
	Body      string    `firestore:"body,omitempty" json:"body,omitempty"`
	Pinned    bool      `firestore:"pinned" json:"pinned"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func rawDoc(t *testing.T, store Store, collection, id string) Fields {
	t.Helper()
	snap, err := store.Collection(collection).Doc(id).Get(context.Background())
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if !snap.Exists {
		t.Fatalf("raw get: %s/%s does not exist", collection, id)
	}
	return snap.Data
}

func TestFacadeAddDocumentStampsTimestamps(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")

	rec, err := f.AddDocument(context.Background(), Fields{"title": "X"})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("AddDocument returned record without id")
	}
	if rec.Title != "X" {
		t.Errorf("Title = %q, want %q", rec.Title, "X")
	}

	data := rawDoc(t, store, "notes", rec.ID)
	created, ok := data["createdAt"].(time.Time)
	if !ok {
		t.Fatalf("createdAt not stamped: %v", data)
	}
	updated, ok := data["updatedAt"].(time.Time)
	if !ok {
		t.Fatalf("updatedAt not stamped: %v", data)
	}
	if !created.Equal(updated) {
		t.Errorf("createdAt %v != updatedAt %v on create", created, updated)
	}
	if _, ok := data["id"]; ok {
		t.Error("id field leaked into stored payload")
	}
	if f.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want success", f.Status())
	}
}

func TestFacadeCallerCannotSupplyTimestampsOrID(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")

	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	rec, err := f.AddDocument(context.Background(), Fields{
		"title":     "X",
		"id":        "forged",
		"createdAt": past,
		"updatedAt": past,
	})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if rec.ID == "forged" {
		t.Error("caller-supplied id was honored")
	}
	data := rawDoc(t, store, "notes", rec.ID)
	if ts, _ := data["createdAt"].(time.Time); ts.Equal(past) {
		t.Error("caller-supplied createdAt was honored")
	}
}

func TestFacadeWriteReturnOmitsForgedFields(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")

	// The stripped fields must not echo back in the convenience return
	// either: what the caller gets mirrors what was written.
	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	rec, err := f.AddDocument(context.Background(), Fields{
		"title":     "X",
		"createdAt": past,
		"updatedAt": past,
	})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if rec.CreatedAt.Equal(past) || rec.UpdatedAt.Equal(past) {
		t.Errorf("forged timestamps echoed in returned record: %+v", rec)
	}

	rec, err = f.SetDocument(context.Background(), "n1", Fields{
		"title":     "Y",
		"id":        "forged",
		"createdAt": past,
	}, false)
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if rec.ID != "n1" {
		t.Errorf("returned id = %q, want %q", rec.ID, "n1")
	}
	if rec.CreatedAt.Equal(past) {
		t.Error("forged createdAt echoed in returned record")
	}
}

func TestFacadeUpdateDocumentStampsOnlyUpdatedAt(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")
	ctx := context.Background()

	rec, err := f.AddDocument(ctx, Fields{"title": "X"})
	if err != nil {
		t.Fatal(err)
	}
	created := rawDoc(t, store, "notes", rec.ID)["createdAt"].(time.Time)

	time.Sleep(5 * time.Millisecond)
	fresh, err := f.UpdateDocument(ctx, rec.ID, Fields{"body": "corps"})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if fresh.Body != "corps" || fresh.Title != "X" {
		t.Errorf("post-write record = %+v", fresh)
	}

	data := rawDoc(t, store, "notes", rec.ID)
	if got := data["createdAt"].(time.Time); !got.Equal(created) {
		t.Errorf("createdAt changed on update: %v -> %v", created, got)
	}
	if got := data["updatedAt"].(time.Time); !got.After(created) {
		t.Errorf("updatedAt not advanced: %v", got)
	}
}

func TestFacadeSetDocumentMergeFlag(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")
	ctx := context.Background()

	if _, err := f.SetDocument(ctx, "n1", Fields{"title": "A", "body": "b"}, false); err != nil {
		t.Fatal(err)
	}
	// Merge keeps unmentioned fields, replace drops them. Both stamp both
	// timestamps.
	if _, err := f.SetDocument(ctx, "n1", Fields{"title": "B"}, true); err != nil {
		t.Fatal(err)
	}
	data := rawDoc(t, store, "notes", "n1")
	if data["body"] != "b" {
		t.Errorf("merge dropped field: %v", data)
	}
	if _, err := f.SetDocument(ctx, "n1", Fields{"title": "C"}, false); err != nil {
		t.Fatal(err)
	}
	data = rawDoc(t, store, "notes", "n1")
	if _, ok := data["body"]; ok {
		t.Errorf("replace kept field: %v", data)
	}
	if _, ok := data["createdAt"]; !ok {
		t.Error("set did not stamp createdAt")
	}
}

func TestFacadeNotFoundIsSuccess(t *testing.T) {
	f := NewFacade[note](NewMemory(), "notes")

	rec, err := f.GetDocument(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if rec != nil {
		t.Errorf("record = %+v, want nil", rec)
	}
	if f.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want success", f.Status())
	}
	if f.Err() != nil {
		t.Errorf("Err() = %v, want nil", f.Err())
	}
}

func TestFacadeGetDocumentsOrderAndIDs(t *testing.T) {
	store := NewMemory()
	seedDocs(t, store, "notes", map[string]Fields{
		"a": {"title": "一", "pinned": true},
		"b": {"title": "二", "pinned": false},
	})
	f := NewFacade[note](store, "notes")

	recs, err := f.GetDocuments(context.Background(), []Constraint{Where("pinned", "==", true)})
	if err != nil {
		t.Fatal(err)
	}
	want := []note{{ID: "a", Title: "一", Pinned: true}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestFacadeDeleteClearsCurrent(t *testing.T) {
	store := NewMemory()
	f := NewFacade[note](store, "notes")
	ctx := context.Background()

	rec, err := f.AddDocument(ctx, Fields{"title": "X"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Current() == nil {
		t.Fatal("Current() nil after add")
	}
	if err := f.DeleteDocument(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if f.Current() != nil {
		t.Error("Current() not cleared after delete")
	}
	got, err := f.GetDocument(ctx, rec.ID)
	if err != nil || got != nil {
		t.Errorf("GetDocument after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestFacadeEmptyIDRejected(t *testing.T) {
	f := NewFacade[note](NewMemory(), "notes")
	ctx := context.Background()

	if _, err := f.GetDocument(ctx, ""); !errors.Is(err, ErrNoDocumentID) {
		t.Errorf("GetDocument(\"\") err = %v, want ErrNoDocumentID", err)
	}
	if _, err := f.SetDocument(ctx, "", nil, false); !errors.Is(err, ErrNoDocumentID) {
		t.Errorf("SetDocument(\"\") err = %v, want ErrNoDocumentID", err)
	}
	if err := f.DeleteDocument(ctx, ""); !errors.Is(err, ErrNoDocumentID) {
		t.Errorf("DeleteDocument(\"\") err = %v, want ErrNoDocumentID", err)
	}
}

func TestFacadeSubscribeToDocumentAbsentIsNil(t *testing.T) {
	f := NewFacade[note](NewMemory(), "notes")

	var gotRec *note
	var gotErr error
	calls := 0
	stop, err := f.SubscribeToDocument(context.Background(), "missing", func(rec *note, err error) {
		calls++
		gotRec, gotErr = rec, err
	})
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	if calls != 1 {
		t.Fatalf("callback calls = %d, want 1", calls)
	}
	if gotRec != nil || gotErr != nil {
		t.Errorf("callback got (%v, %v), want (nil, nil)", gotRec, gotErr)
	}
	if f.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want success", f.Status())
	}
}
