package missionary

import (
	"strings"
	"time"
)

// Missionary is a published missionary profile.
type Missionary struct {
	ID          string   `firestore:"id" json:"id"`
	Name        string   `firestore:"name" json:"name"`
	NameLower   string   `firestore:"nameLower" json:"-"`
	Slug        string   `firestore:"slug" json:"slug"`
	Location    string   `firestore:"location,omitempty" json:"location,omitempty"`
	Description string   `firestore:"description,omitempty" json:"description,omitempty"`
	Activities  []string `firestore:"activities,omitempty" json:"activities,omitempty"`
	ImageZoneID string   `firestore:"imageZoneId,omitempty" json:"imageZoneId,omitempty"`
	VideoURL    string   `firestore:"videoUrl,omitempty" json:"videoUrl,omitempty"`

	Newsletters []Newsletter `firestore:"newsletters,omitempty" json:"newsletters,omitempty"`

	Active bool `firestore:"active" json:"active"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Newsletter is one uploaded newsletter PDF attached to a profile. Path is
// the storage handle, URL the download link resolved at upload time.
type Newsletter struct {
	Title string `firestore:"title" json:"title"`
	Path  string `firestore:"path" json:"path"`
	URL   string `firestore:"url" json:"url"`
	Month int    `firestore:"month,omitempty" json:"month,omitempty"`
	Year  int    `firestore:"year,omitempty" json:"year,omitempty"`
}

type CreateInput struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	ImageZoneID string   `json:"imageZoneId,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	Active      bool     `json:"active"`
}

func (in *CreateInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
}

type UpdateInput struct {
	Name        *string   `json:"name,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Activities  *[]string `json:"activities,omitempty"`
	ImageZoneID *string   `json:"imageZoneId,omitempty"`
	VideoURL    *string   `json:"videoUrl,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

type AddNewsletterInput struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	URL   string `json:"url"`
	Month int    `json:"month,omitempty"`
	Year  int    `json:"year,omitempty"`
}
