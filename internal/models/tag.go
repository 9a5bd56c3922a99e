package models

import (
	"time"
)

// Tag is a named bilingual category. Tags and documents are many-to-many;
// a tag outlives individual content and vice versa.
type Tag struct {
	ID       string `json:"id"` // tag_<uuid>
	NameAr   string `json:"name_ar"`
	NameEn   string `json:"name_en"`
	IsActive bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Name returns the label in the requested language, falling back to the
// other language when empty.
func (t *Tag) Name(language string) string {
	if language == "en" {
		if t.NameEn != "" {
			return t.NameEn
		}
		return t.NameAr
	}
	if t.NameAr != "" {
		return t.NameAr
	}
	return t.NameEn
}

// TagSummary is a tag with its live content count, as returned by tag search.
type TagSummary struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	ContentCount int    `json:"content_count"`
}
