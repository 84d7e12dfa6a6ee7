// Package partner manages the partner-site directory (missions, churches,
// associations linked from the public site).
package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"church-site/backend/internal/docstore"
	"church-site/backend/internal/utils"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

const collectionName = "partners"

type Partner struct {
	ID          string `firestore:"id" json:"id"`
	Name        string `firestore:"name" json:"name"`
	Slug        string `firestore:"slug" json:"slug"`
	Category    string `firestore:"category,omitempty" json:"category,omitempty"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
	URL         string `firestore:"url" json:"url"`
	LogoPath    string `firestore:"logoPath,omitempty" json:"logoPath,omitempty"`
	SortOrder   int    `firestore:"sortOrder" json:"sortOrder"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type CreateInput struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	LogoPath    string `json:"logoPath,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}

type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
	LogoPath    *string `json:"logoPath,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
}

type Service struct {
	docs *docstore.Facade[Partner]
}

func NewService(store docstore.Store) *Service {
	return &Service{docs: docstore.NewFacade[Partner](store, collectionName)}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Partner, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrBadRequest)
	}
	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	fields["slug"] = utils.Slugify(in.Name)
	fields["sortOrder"] = in.SortOrder
	return s.docs.AddDocument(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Partner, error) {
	p, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: partner %s", ErrNotFound, id)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, category string) ([]Partner, error) {
	cs := []docstore.Constraint{}
	if category != "" {
		cs = append(cs, docstore.Where("category", "==", category))
	}
	cs = append(cs, docstore.OrderBy("sortOrder", docstore.Asc))
	return s.docs.GetDocuments(ctx, cs)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Partner, error) {
	patch := docstore.Fields{}
	if in.Name != nil {
		patch["name"] = *in.Name
		patch["slug"] = utils.Slugify(*in.Name)
	}
	if in.Category != nil {
		patch["category"] = *in.Category
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.URL != nil {
		patch["url"] = *in.URL
	}
	if in.LogoPath != nil {
		patch["logoPath"] = *in.LogoPath
	}
	if in.SortOrder != nil {
		patch["sortOrder"] = *in.SortOrder
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	return s.docs.UpdateDocument(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.docs.DeleteDocument(ctx, id)
}
