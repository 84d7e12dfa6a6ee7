package missionary

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"church-site/backend/internal/docstore"
	"church-site/backend/internal/storage"
)

// fakeBucket records deletions so tests can assert the cascade.
type fakeBucket struct {
	deleted []string
}

func (b *fakeBucket) Upload(ctx context.Context, path, contentType string, r io.Reader, progress func(int64)) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func (b *fakeBucket) DownloadURL(ctx context.Context, path string) (string, error) {
	return "https://files.test/" + path, nil
}

func (b *fakeBucket) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (b *fakeBucket) Delete(ctx context.Context, path string) error {
	b.deleted = append(b.deleted, path)
	return nil
}

func (b *fakeBucket) UpdateMetadata(ctx context.Context, path string, patch map[string]string) (map[string]string, error) {
	return patch, nil
}

func newTestService(t *testing.T) (*Service, *Repo, *fakeBucket) {
	t.Helper()
	repo := NewRepo(docstore.NewMemory())
	bucket := &fakeBucket{}
	svc := NewService(repo, storage.NewFacade(bucket, "newsletters"))
	return svc, repo, bucket
}

func TestCreateDerivesSlugAndSearchName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "  Jean-Marc Dupré ", Location: "Sénégal", Active: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := svc.GetBySlug(ctx, "jean-marc-dupre")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("GetBySlug returned %s, want %s", got.ID, m.ID)
	}
	if got.NameLower != "jean-marc dupré" {
		t.Errorf("nameLower = %q", got.NameLower)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateInput{Name: "   "}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestListActiveOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "Claire Martin", Active: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Bernard Ancien", Active: false}); err != nil {
		t.Fatal(err)
	}

	active, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	names := []string{}
	for _, m := range active {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"Claire Martin"}, names); diff != "" {
		t.Errorf("active list mismatch (-want +got):\n%s", diff)
	}

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(all))
	}
}

func TestRemoveNewsletterDeletesFile(t *testing.T) {
	svc, _, bucket := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "Anne Dubois", Active: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddNewsletter(ctx, m.ID, AddNewsletterInput{Title: "Janvier", Path: "newsletters/a.pdf", URL: "u1", Month: 1, Year: 2026}); err != nil {
		t.Fatalf("AddNewsletter: %v", err)
	}
	if _, err := svc.AddNewsletter(ctx, m.ID, AddNewsletterInput{Title: "Février", Path: "newsletters/b.pdf", URL: "u2", Month: 2, Year: 2026}); err != nil {
		t.Fatalf("AddNewsletter: %v", err)
	}

	got, err := svc.RemoveNewsletter(ctx, m.ID, "newsletters/a.pdf")
	if err != nil {
		t.Fatalf("RemoveNewsletter: %v", err)
	}
	if len(got.Newsletters) != 1 || got.Newsletters[0].Path != "newsletters/b.pdf" {
		t.Errorf("unexpected newsletters after removal: %+v", got.Newsletters)
	}
	if diff := cmp.Diff([]string{"newsletters/a.pdf"}, bucket.deleted); diff != "" {
		t.Errorf("deleted files mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.RemoveNewsletter(ctx, m.ID, "newsletters/missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown path, got %v", err)
	}
}

func TestDeleteCascadesNewsletterFiles(t *testing.T) {
	svc, repo, bucket := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "Paul Leroy", Active: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddNewsletter(ctx, m.ID, AddNewsletterInput{Title: "Mars", Path: "newsletters/mars.pdf", URL: "u"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddNewsletter(ctx, m.ID, AddNewsletterInput{Title: "Avril", Path: "newsletters/avril.pdf", URL: "u"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if diff := cmp.Diff([]string{"newsletters/mars.pdf", "newsletters/avril.pdf"}, bucket.deleted); diff != "" {
		t.Errorf("cascade mismatch (-want +got):\n%s", diff)
	}

	gone, err := repo.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if gone != nil {
		t.Error("profile still present after delete")
	}
}
