package models

import (
	"time"
)

// Indexed field names. Each maps to a weight tier in the search config.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTranscript  = "transcript"
	FieldBody        = "body" // notes + extracted book content
	FieldTags        = "tags" // tag label tokens, no positional weighting
)

// Language tags attached to a search representation.
const (
	LangArabic  = "ar"
	LangEnglish = "en"
	LangNeutral = "neutral"
)

// FieldVector is the tokenized form of one indexed field: term
// frequencies plus the total token count used for length normalization.
type FieldVector struct {
	Terms  map[string]int `json:"terms"`
	Length int            `json:"length"`
}

// SearchDocument is the persisted search representation of one record.
// It is immutable per version: the builder always writes a complete
// replacement, and readers never observe a partially updated vector.
// Fingerprint is a hash of the source field values so staleness is
// detectable and rebuilds from identical inputs are no-ops.
type SearchDocument struct {
	DocumentID string                 `json:"document_id"`
	Language   string                 `json:"language"` // dominant script: ar, en, neutral
	Fields     map[string]FieldVector `json:"fields"`   // keyed by Field* constants
	Weights    map[string]float64     `json:"weights"`  // weight tier snapshot at build time

	// Denormalized for hard post-filters and ordering, so query
	// evaluation never has to join back to the document store.
	ContentType string    `json:"content_type"`
	TagIDs      []string  `json:"tag_ids"`
	Active      bool      `json:"active"`
	TitleAr     string    `json:"title_ar"`
	TitleEn     string    `json:"title_en"`
	CreatedAt   time.Time `json:"created_at"`

	Fingerprint string    `json:"fingerprint"`
	BuiltAt     time.Time `json:"built_at"`
}

// TermFrequency returns the frequency of term within the named field.
func (s *SearchDocument) TermFrequency(field, term string) int {
	fv, ok := s.Fields[field]
	if !ok {
		return 0
	}
	return fv.Terms[term]
}

// Title returns the denormalized title in the requested language with fallback.
func (s *SearchDocument) Title(language string) string {
	if language == "en" {
		if s.TitleEn != "" {
			return s.TitleEn
		}
		return s.TitleAr
	}
	if s.TitleAr != "" {
		return s.TitleAr
	}
	return s.TitleEn
}
