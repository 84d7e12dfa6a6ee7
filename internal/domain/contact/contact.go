// Package contact manages the address book used by the back-office.
package contact

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

const collectionName = "contacts"

// maxAddressLen caps free-text postal addresses.
const maxAddressLen = 500

type Contact struct {
	ID        string `firestore:"id" json:"id"`
	FirstName string `firestore:"firstName" json:"firstName"`
	LastName  string `firestore:"lastName" json:"lastName"`
	NameLower string `firestore:"nameLower" json:"-"`

	// SearchTokens backs token lookup (array-contains) in the back-office.
	SearchTokens []string `firestore:"searchTokens,omitempty" json:"-"`

	Phones  []string `firestore:"phones,omitempty" json:"phones,omitempty"`
	Email   string   `firestore:"email,omitempty" json:"email,omitempty"`
	Address string   `firestore:"address,omitempty" json:"address,omitempty"`

	BirthDate *time.Time `firestore:"birthDate,omitempty" json:"birthDate,omitempty"`
	Member    bool       `firestore:"member" json:"member"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type CreateInput struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phones    []string   `json:"phones,omitempty"`
	Email     string     `json:"email,omitempty"`
	Address   string     `json:"address,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Member    bool       `json:"member"`
}

type UpdateInput struct {
	FirstName *string    `json:"firstName,omitempty"`
	LastName  *string    `json:"lastName,omitempty"`
	Phones    *[]string  `json:"phones,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Address   *string    `json:"address,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Member    *bool      `json:"member,omitempty"`
}

type Service struct {
	docs *docstore.Facade[Contact]
}

func NewService(store docstore.Store) *Service {
	return &Service{docs: docstore.NewFacade[Contact](store, collectionName)}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Contact, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = utils.TrimMax(in.Address, maxAddressLen)
	if in.FirstName == "" && in.LastName == "" {
		return nil, fmt.Errorf("%w: a name is required", ErrBadRequest)
	}
	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	fields["nameLower"] = utils.NormalizeNameLower(in.LastName + " " + in.FirstName)
	fields["searchTokens"] = utils.SearchTokens(in.FirstName, in.LastName, in.Email)
	return s.docs.AddDocument(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Contact, error) {
	c, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: contact %s", ErrNotFound, id)
	}
	return c, nil
}

// List returns contacts ordered by name. membersOnly restricts to declared
// members.
func (s *Service) List(ctx context.Context, membersOnly bool) ([]Contact, error) {
	cs := []docstore.Constraint{}
	if membersOnly {
		cs = append(cs, docstore.Where("member", "==", true))
	}
	cs = append(cs, docstore.OrderBy("nameLower", docstore.Asc))
	return s.docs.GetDocuments(ctx, cs)
}

// Search finds contacts carrying the query's first word as a search token.
func (s *Service) Search(ctx context.Context, q string) ([]Contact, error) {
	tok := strings.ToLower(strings.TrimSpace(q))
	if parts := strings.Fields(tok); len(parts) > 0 {
		tok = parts[0]
	}
	if tok == "" {
		return s.List(ctx, false)
	}
	return s.docs.GetDocuments(ctx, []docstore.Constraint{
		docstore.Where("searchTokens", "array-contains", tok),
		docstore.OrderBy("nameLower", docstore.Asc),
	})
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Contact, error) {
	patch := docstore.Fields{}
	if in.FirstName != nil {
		patch["firstName"] = *in.FirstName
	}
	if in.LastName != nil {
		patch["lastName"] = *in.LastName
	}
	if in.FirstName != nil || in.LastName != nil || in.Email != nil {
		cur, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		first, last, email := cur.FirstName, cur.LastName, cur.Email
		if in.FirstName != nil {
			first = *in.FirstName
		}
		if in.LastName != nil {
			last = *in.LastName
		}
		if in.Email != nil {
			email = *in.Email
		}
		patch["nameLower"] = utils.NormalizeNameLower(last + " " + first)
		patch["searchTokens"] = utils.SearchTokens(first, last, email)
	}
	if in.Phones != nil {
		patch["phones"] = *in.Phones
	}
	if in.Email != nil {
		patch["email"] = *in.Email
	}
	if in.Address != nil {
		patch["address"] = utils.TrimMax(*in.Address, maxAddressLen)
	}
	if in.BirthDate != nil {
		patch["birthDate"] = *in.BirthDate
	}
	if in.Member != nil {
		patch["member"] = *in.Member
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	return s.docs.UpdateDocument(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.docs.DeleteDocument(ctx, id)
}
