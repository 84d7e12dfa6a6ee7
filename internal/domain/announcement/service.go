package announcement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"firebase.google.com/go/v4/messaging"

	"church-site/backend/internal/docstore"
	"church-site/backend/internal/domain/payments"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

const collectionName = "annonces"

// Pusher sends one FCM message. *messaging.Client satisfies it.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Service struct {
	docs  *docstore.Facade[Announcement]
	store docstore.Store

	linker payments.Linker
	pusher Pusher
	topic  string
}

// NewService wires the announcement board. linker and pusher may be nil;
// publishing then skips payment links and push fanout.
func NewService(store docstore.Store, linker payments.Linker, pusher Pusher, topic string) *Service {
	return &Service{
		docs:   docstore.NewFacade[Announcement](store, collectionName),
		store:  store,
		linker: linker,
		pusher: pusher,
		topic:  topic,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Announcement, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	for i, t := range in.PricingTiers {
		if t.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: tier %d amount must be positive", ErrBadRequest, i)
		}
	}
	fields, err := docstore.FieldsOf(in)
	if err != nil {
		return nil, err
	}
	fields["published"] = false
	fields["pinned"] = in.Pinned
	fields["priority"] = in.Priority
	fields["active"] = in.Active
	return s.docs.AddDocument(ctx, fields)
}

func (s *Service) Get(ctx context.Context, id string) (*Announcement, error) {
	a, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: announcement %s", ErrNotFound, id)
	}
	return a, nil
}

// List returns announcements, pinned and highest priority first. Public
// callers see only published active ones.
func (s *Service) List(ctx context.Context, publicOnly bool, limit int) ([]Announcement, error) {
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
	cs = append(cs,
		docstore.OrderBy("pinned", docstore.Desc),
		docstore.OrderBy("priority", docstore.Desc),
		docstore.Limit(limit),
	)
	return s.docs.GetDocuments(ctx, cs)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Announcement, error) {
	patch := docstore.Fields{}
	if in.Title != nil {
		patch["title"] = *in.Title
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Date != nil {
		patch["date"] = *in.Date
	}
	if in.Time != nil {
		patch["time"] = *in.Time
	}
	if in.Location != nil {
		patch["location"] = *in.Location
	}
	if in.Tag != nil {
		patch["tag"] = *in.Tag
	}
	if in.TagColor != nil {
		patch["tagColor"] = *in.TagColor
	}
	if in.Pinned != nil {
		patch["pinned"] = *in.Pinned
	}
	if in.Priority != nil {
		patch["priority"] = *in.Priority
	}
	if in.ExpiresAt != nil {
		patch["expiresAt"] = *in.ExpiresAt
	}
	if in.PricingTiers != nil {
		for i, t := range *in.PricingTiers {
			if t.AmountCents <= 0 {
				return nil, fmt.Errorf("%w: tier %d amount must be positive", ErrBadRequest, i)
			}
		}
		patch["pricingTiers"] = *in.PricingTiers
	}
	if in.Active != nil {
		patch["active"] = *in.Active
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	return s.docs.UpdateDocument(ctx, id, patch)
}

// Publish makes the announcement visible. Tiers without a payment link get
// one if Stripe is configured, then subscribers of the push topic are
// notified. Push failure does not roll the publish back.
func (s *Service) Publish(ctx context.Context, id string) (*Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := docstore.Fields{"published": true}

	if s.linker != nil && len(a.PricingTiers) > 0 {
		tiers := make([]PricingTier, len(a.PricingTiers))
		copy(tiers, a.PricingTiers)
		changed := false
		for i, t := range tiers {
			if t.PaymentURL != "" {
				continue
			}
			url, err := s.linker.PaymentLink(ctx, a.Title, payments.Tier{
				Label:       t.Label,
				AmountCents: t.AmountCents,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create payment link for tier %q: %w", t.Label, err)
			}
			tiers[i].PaymentURL = url
			changed = true
		}
		if changed {
			patch["pricingTiers"] = tiers
		}
	}

	out, err := s.docs.UpdateDocument(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if s.pusher != nil && s.topic != "" {
		msg := &messaging.Message{
			Topic: s.topic,
			Notification: &messaging.Notification{
				Title: "Nouvelle annonce",
				Body:  a.Title,
			},
			Data: map[string]string{"announcementId": id},
		}
		if _, err := s.pusher.Send(ctx, msg); err != nil {
			log.Printf("WARN: push for announcement %s failed: %v", id, err)
		}
	}

	return out, nil
}

// Unpublish hides the announcement without touching its payment links.
func (s *Service) Unpublish(ctx context.Context, id string) (*Announcement, error) {
	return s.docs.UpdateDocument(ctx, id, docstore.Fields{"published": false})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.docs.DeleteDocument(ctx, id)
}

// WatchPublished opens a live view over the published entries, for the
// public stream endpoint.
func (s *Service) WatchPublished(limit int) *docstore.CollectionWatch[Announcement] {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return docstore.NewCollectionWatch[Announcement](s.store, collectionName, []docstore.Constraint{
		docstore.Where("published", "==", true),
		docstore.Where("active", "==", true),
		docstore.OrderBy("pinned", docstore.Desc),
		docstore.OrderBy("priority", docstore.Desc),
		docstore.Limit(limit),
	})
}
