package announcement

import "time"

// Announcement is one annonce shown on the public board: an event, a notice
// or a recurring activity. Priced events carry pricing tiers that gain a
// payment link when the announcement is published.
type Announcement struct {
	ID          string `firestore:"id" json:"id"`
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`

	Date     *time.Time `firestore:"date,omitempty" json:"date,omitempty"`
	Time     string     `firestore:"time,omitempty" json:"time,omitempty"`
	Location string     `firestore:"location,omitempty" json:"location,omitempty"`

	Tag      string `firestore:"tag,omitempty" json:"tag,omitempty"`
	TagColor string `firestore:"tagColor,omitempty" json:"tagColor,omitempty"`

	Pinned   bool `firestore:"pinned" json:"pinned"`
	Priority int  `firestore:"priority" json:"priority"`

	ExpiresAt *time.Time `firestore:"expiresAt,omitempty" json:"expiresAt,omitempty"`

	PricingTiers []PricingTier `firestore:"pricingTiers,omitempty" json:"pricingTiers,omitempty"`

	Active    bool `firestore:"active" json:"active"`
	Published bool `firestore:"published" json:"published"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// PricingTier is a stored tier. PaymentURL stays empty until publish.
type PricingTier struct {
	Label       string `firestore:"label" json:"label"`
	AmountCents int64  `firestore:"amountCents" json:"amountCents"`
	PaymentURL  string `firestore:"paymentUrl,omitempty" json:"paymentUrl,omitempty"`
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Date     *time.Time `json:"date,omitempty"`
	Time     string     `json:"time,omitempty"`
	Location string     `json:"location,omitempty"`

	Tag      string `json:"tag,omitempty"`
	TagColor string `json:"tagColor,omitempty"`

	Pinned   bool `json:"pinned"`
	Priority int  `json:"priority"`

	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	PricingTiers []PricingTier `json:"pricingTiers,omitempty"`

	Active bool `json:"active"`
}

type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`

	Date     *time.Time `json:"date,omitempty"`
	Time     *string    `json:"time,omitempty"`
	Location *string    `json:"location,omitempty"`

	Tag      *string `json:"tag,omitempty"`
	TagColor *string `json:"tagColor,omitempty"`

	Pinned   *bool `json:"pinned,omitempty"`
	Priority *int  `json:"priority,omitempty"`

	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	PricingTiers *[]PricingTier `json:"pricingTiers,omitempty"`

	Active *bool `json:"active,omitempty"`
}
