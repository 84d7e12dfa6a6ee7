package missionary

import (
	"context"
	"fmt"
	"log"

	"church-site/backend/internal/docstore"
	"church-site/backend/internal/storage"
	"church-site/backend/internal/utils"
)

type Service struct {
	repo  *Repo
	files *storage.Facade
}

func NewService(repo *Repo, files *storage.Facade) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Missionary, error) {
	in.Trim()
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	slug := in.Slug
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}

	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	fields["nameLower"] = utils.NormalizeNameLower(in.Name)
	fields["slug"] = slug
	fields["active"] = in.Active
	return s.repo.Create(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Missionary, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: missionary %s", ErrNotFound, id)
	}
	return m, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Missionary, error) {
	m, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: missionary %s", ErrNotFound, slug)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]Missionary, error) {
	return s.repo.List(ctx, onlyActive)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Missionary, error) {
	patch := docstore.Fields{}
	if in.Name != nil {
		patch["name"] = *in.Name
		patch["nameLower"] = utils.NormalizeNameLower(*in.Name)
	}
	if in.Location != nil {
		patch["location"] = *in.Location
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Activities != nil {
		patch["activities"] = *in.Activities
	}
	if in.ImageZoneID != nil {
		patch["imageZoneId"] = *in.ImageZoneID
	}
	if in.VideoURL != nil {
		patch["videoUrl"] = *in.VideoURL
	}
	if in.Active != nil {
		patch["active"] = *in.Active
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	return s.repo.Update(ctx, id, patch)
}

// AddNewsletter appends an uploaded newsletter to the profile.
func (s *Service) AddNewsletter(ctx context.Context, id string, in AddNewsletterInput) (*Missionary, error) {
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrBadRequest)
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	newsletters := append(m.Newsletters, Newsletter(in))
	return s.repo.Update(ctx, id, docstore.Fields{"newsletters": newsletters})
}

// RemoveNewsletter detaches a newsletter from the profile and deletes its
// file from object storage.
func (s *Service) RemoveNewsletter(ctx context.Context, id, path string) (*Missionary, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := make([]Newsletter, 0, len(m.Newsletters))
	for _, n := range m.Newsletters {
		if n.Path != path {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(m.Newsletters) {
		return nil, fmt.Errorf("%w: newsletter %s", ErrNotFound, path)
	}
	if err := s.files.DeleteFile(ctx, path); err != nil {
		log.Printf("WARN: delete newsletter file %s: %v", path, err)
	}
	return s.repo.Update(ctx, id, docstore.Fields{"newsletters": kept})
}

// Delete removes the profile. Its newsletter files are deleted from object
// storage first so no orphaned PDFs remain.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, n := range m.Newsletters {
		if n.Path == "" {
			continue
		}
		if err := s.files.DeleteFile(ctx, n.Path); err != nil {
			log.Printf("WARN: delete newsletter file %s: %v", n.Path, err)
		}
	}
	return s.repo.Delete(ctx, id)
}
