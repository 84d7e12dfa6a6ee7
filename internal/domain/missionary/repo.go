package missionary

import (
	"context"

	"church-site/backend/internal/docstore"
)

const collectionName = "missionaries"

type Repo struct {
	docs *docstore.Facade[Missionary]
}

func NewRepo(store docstore.Store) *Repo {
	return &Repo{docs: docstore.NewFacade[Missionary](store, collectionName)}
}

func (r *Repo) Create(ctx context.Context, fields docstore.Fields) (*Missionary, error) {
	return r.docs.AddDocument(ctx, fields)
}

func (r *Repo) Get(ctx context.Context, id string) (*Missionary, error) {
	return r.docs.GetDocument(ctx, id)
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*Missionary, error) {
	out, err := r.docs.GetDocuments(ctx, []docstore.Constraint{
		docstore.Where("slug", "==", slug),
		docstore.Limit(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Missionary, error) {
	cs := []docstore.Constraint{docstore.OrderBy("nameLower", docstore.Asc)}
	if onlyActive {
		cs = append([]docstore.Constraint{docstore.Where("active", "==", true)}, cs...)
	}
	return r.docs.GetDocuments(ctx, cs)
}

func (r *Repo) Update(ctx context.Context, id string, patch docstore.Fields) (*Missionary, error) {
	return r.docs.UpdateDocument(ctx, id, patch)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.docs.DeleteDocument(ctx, id)
}
