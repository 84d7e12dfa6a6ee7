// Package planning manages the monthly service plannings shown on the
// public calendar page.
package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"church-site/backend/internal/docstore"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

const collectionName = "plannings"

// Planning is one month's service schedule.
type Planning struct {
	ID    string `firestore:"id" json:"id"`
	Title string `firestore:"title" json:"title"`
	Month int    `firestore:"month" json:"month"`
	Year  int    `firestore:"year" json:"year"`

	Rows []Row `firestore:"rows,omitempty" json:"rows,omitempty"`

	Active    bool `firestore:"active" json:"active"`
	Published bool `firestore:"published" json:"published"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Row is one line of the schedule: a dated service and who serves.
type Row struct {
	Date    time.Time `firestore:"date" json:"date"`
	Label   string    `firestore:"label" json:"label"`
	Details string    `firestore:"details,omitempty" json:"details,omitempty"`
}

type CreateInput struct {
	Title     string `json:"title"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	Rows      []Row  `json:"rows,omitempty"`
	Active    bool   `json:"active"`
	Published bool   `json:"published"`
}

type UpdateInput struct {
	Title     *string `json:"title,omitempty"`
	Month     *int    `json:"month,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Rows      *[]Row  `json:"rows,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

type Service struct {
	docs *docstore.Facade[Planning]
}

func NewService(store docstore.Store) *Service {
	return &Service{docs: docstore.NewFacade[Planning](store, collectionName)}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Planning, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("%w: month must be 1-12", ErrBadRequest)
	}
	if in.Year < 2000 {
		return nil, fmt.Errorf("%w: year is invalid", ErrBadRequest)
	}
	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	return s.docs.AddDocument(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Planning, error) {
	p, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: planning %s", ErrNotFound, id)
	}
	return p, nil
}

// List returns plannings for a year, most recent month first. Public callers
// see only published active ones.
func (s *Service) List(ctx context.Context, year int, publicOnly bool) ([]Planning, error) {
	cs := []docstore.Constraint{}
	if year > 0 {
		cs = append(cs, docstore.Where("year", "==", year))
	}
	if publicOnly {
		cs = append(cs,
			docstore.Where("published", "==", true),
			docstore.Where("active", "==", true),
		)
	}
	cs = append(cs, docstore.OrderBy("month", docstore.Desc))
	return s.docs.GetDocuments(ctx, cs)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Planning, error) {
	patch := docstore.Fields{}
	if in.Title != nil {
		patch["title"] = *in.Title
	}
	if in.Month != nil {
		if *in.Month < 1 || *in.Month > 12 {
			return nil, fmt.Errorf("%w: month must be 1-12", ErrBadRequest)
		}
		patch["month"] = *in.Month
	}
	if in.Year != nil {
		patch["year"] = *in.Year
	}
	if in.Rows != nil {
		patch["rows"] = *in.Rows
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

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.docs.DeleteDocument(ctx, id)
}
