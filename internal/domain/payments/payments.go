// Package payments creates Stripe payment links for priced announcements
// (event tickets, seminar fees). Links are created once at publish time and
// stored on the announcement document.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentlink"
	"github.com/stripe/stripe-go/v78/price"
)

var ErrBadRequest = errors.New("bad request")

// Tier is one pricing level of an event (plein tarif, tarif réduit...).
type Tier struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amountCents"`
}

// Linker turns a pricing tier into a shareable payment URL.
type Linker interface {
	PaymentLink(ctx context.Context, eventTitle string, tier Tier) (string, error)
}

// StripeLinker creates a Stripe price and a payment link per tier.
type StripeLinker struct {
	currency string
}

// NewStripeLinker sets the account key and returns a linker charging in EUR.
func NewStripeLinker(secretKey string) *StripeLinker {
	stripe.Key = secretKey
	return &StripeLinker{currency: string(stripe.CurrencyEUR)}
}

func (l *StripeLinker) PaymentLink(ctx context.Context, eventTitle string, tier Tier) (string, error) {
	eventTitle = strings.TrimSpace(eventTitle)
	tier.Label = strings.TrimSpace(tier.Label)
	if eventTitle == "" {
		return "", fmt.Errorf("%w: event title is required", ErrBadRequest)
	}
	if tier.AmountCents <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}

	productName := eventTitle
	if tier.Label != "" {
		productName = fmt.Sprintf("%s - %s", eventTitle, tier.Label)
	}

	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(l.currency),
		UnitAmount: stripe.Int64(tier.AmountCents),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(productName),
		},
	}
	priceParams.Context = ctx
	p, err := price.New(priceParams)
	if err != nil {
		return "", fmt.Errorf("failed to create price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(p.ID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	linkParams.Context = ctx
	link, err := paymentlink.New(linkParams)
	if err != nil {
		return "", fmt.Errorf("failed to create payment link: %w", err)
	}
	return link.URL, nil
}
