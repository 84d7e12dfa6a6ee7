package message

import (
	"context"
	"errors"
	"fmt"

	"church-site/backend/internal/docstore"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

const collectionName = "messages"

type Service struct {
	docs  *docstore.Facade[Message]
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{
		docs:  docstore.NewFacade[Message](store, collectionName),
		store: store,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Message, error) {
	in.Trim()
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if in.VideoID == "" {
		return nil, fmt.Errorf("%w: videoId is required", ErrBadRequest)
	}
	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	fields["views"] = int64(0)
	return s.docs.AddDocument(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Message, error) {
	m, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: message %s", ErrNotFound, id)
	}
	return m, nil
}

// List returns entries newest first. Public callers see only published
// active ones.
func (s *Service) List(ctx context.Context, publicOnly bool, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	cs := []docstore.Constraint{}
	if publicOnly {
		cs = append(cs,
			docstore.Where("published", "==", true),
			docstore.Where("active", "==", true),
		)
	}
	cs = append(cs, docstore.OrderBy("date", docstore.Desc), docstore.Limit(limit))
	return s.docs.GetDocuments(ctx, cs)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Message, error) {
	patch := docstore.Fields{}
	if in.VideoID != nil {
		patch["videoId"] = *in.VideoID
	}
	if in.Title != nil {
		patch["title"] = *in.Title
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Speaker != nil {
		patch["speaker"] = *in.Speaker
	}
	if in.Date != nil {
		patch["date"] = *in.Date
	}
	if in.Tag != nil {
		patch["tag"] = *in.Tag
	}
	if in.TagColor != nil {
		patch["tagColor"] = *in.TagColor
	}
	if in.Active != nil {
		patch["active"] = *in.Active
	}
	if in.Published != nil {
		patch["published"] = *in.Published
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	return s.docs.UpdateDocument(ctx, id, patch)
}

// RecordView bumps the view counter. Lost updates between concurrent viewers
// are acceptable for a display counter.
func (s *Service) RecordView(ctx context.Context, id string) (*Message, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.docs.UpdateDocument(ctx, id, docstore.Fields{"views": m.Views + 1})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.docs.DeleteDocument(ctx, id)
}

// WatchPublished opens a live view over the published entries, for the
// public stream endpoint.
func (s *Service) WatchPublished(limit int) *docstore.CollectionWatch[Message] {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return docstore.NewCollectionWatch[Message](s.store, collectionName, []docstore.Constraint{
		docstore.Where("published", "==", true),
		docstore.Where("active", "==", true),
		docstore.OrderBy("date", docstore.Desc),
		docstore.Limit(limit),
	})
}
