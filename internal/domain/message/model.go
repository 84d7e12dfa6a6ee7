package message

import (
	"strings"
	"time"
)

// Message is one sermon/teaching video entry.
type Message struct {
	ID          string    `firestore:"id" json:"id"`
	VideoID     string    `firestore:"videoId" json:"videoId"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description,omitempty" json:"description,omitempty"`
	Speaker     string    `firestore:"speaker,omitempty" json:"speaker,omitempty"`
	Date        time.Time `firestore:"date" json:"date"`

	Tag      string `firestore:"tag,omitempty" json:"tag,omitempty"`
	TagColor string `firestore:"tagColor,omitempty" json:"tagColor,omitempty"`

	Active    bool  `firestore:"active" json:"active"`
	Published bool  `firestore:"published" json:"published"`
	Views     int64 `firestore:"views" json:"views"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type CreateInput struct {
	VideoID     string    `json:"videoId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Speaker     string    `json:"speaker,omitempty"`
	Date        time.Time `json:"date"`
	Tag         string    `json:"tag,omitempty"`
	TagColor    string    `json:"tagColor,omitempty"`
	Active      bool      `json:"active"`
	Published   bool      `json:"published"`
}

func (in *CreateInput) Trim() {
	in.VideoID = strings.TrimSpace(in.VideoID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Speaker = strings.TrimSpace(in.Speaker)
	in.Tag = strings.TrimSpace(in.Tag)
}

type UpdateInput struct {
	VideoID     *string    `json:"videoId,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Speaker     *string    `json:"speaker,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Tag         *string    `json:"tag,omitempty"`
	TagColor    *string    `json:"tagColor,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	Published   *bool      `json:"published,omitempty"`
}
