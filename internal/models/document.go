package models

import (
	"time"
)

// Content types. Only PDF drives text extraction; the others are indexed
// through their textual metadata.
const (
	ContentTypeVideo  = "video"
	ContentTypeAudio  = "audio"
	ContentTypePDF    = "pdf"
	ContentTypeStatic = "static"
)

// Extraction lifecycle states for a document.
const (
	ExtractionPending       = "pending"
	ExtractionCompleted     = "completed"
	ExtractionFailed        = "failed"
	ExtractionLowConfidence = "low_confidence"
)

// Extraction methods recorded on the document after a run.
const (
	MethodStructured = "structured"
	MethodFallback   = "fallback"
	MethodOCR        = "ocr"
	MethodNone       = "none"
)

// Document is a single content record: the extraction unit and the source
// of every indexed field. Content-type specifics are carried by the
// ContentType discriminant rather than subtyping.
type Document struct {
	// Identity
	ID          string `json:"id"` // doc_<uuid>
	ContentType string `json:"content_type"`

	// Bilingual metadata
	TitleAr       string `json:"title_ar"`
	TitleEn       string `json:"title_en"`
	DescriptionAr string `json:"description_ar"`
	DescriptionEn string `json:"description_en"`

	// Free-text fields
	Transcript string `json:"transcript"` // speech transcript for audio/video
	Notes      string `json:"notes"`

	// Extraction source and result
	SourceRef   string `json:"source_ref"` // byte source reference (file path or storage key)
	PageCount   int    `json:"page_count"`
	BookContent string `json:"book_content"` // extracted, normalized body text

	// Extraction state
	ExtractionStatus string  `json:"extraction_status"`
	ExtractionMethod string  `json:"extraction_method"`
	Confidence       float64 `json:"confidence"`       // 0.0-1.0
	ExtractionError  string  `json:"extraction_error"` // last failure message, if any

	// Classification
	TagIDs   []string `json:"tag_ids"`
	IsActive bool     `json:"is_active"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Title returns the title in the requested language, falling back to the
// other language when empty.
func (d *Document) Title(language string) string {
	if language == "en" {
		if d.TitleEn != "" {
			return d.TitleEn
		}
		return d.TitleAr
	}
	if d.TitleAr != "" {
		return d.TitleAr
	}
	return d.TitleEn
}

// Description returns the description in the requested language with fallback.
func (d *Document) Description(language string) string {
	if language == "en" {
		if d.DescriptionEn != "" {
			return d.DescriptionEn
		}
		return d.DescriptionAr
	}
	if d.DescriptionAr != "" {
		return d.DescriptionAr
	}
	return d.DescriptionEn
}

// IsPDF reports whether the document participates in text extraction.
func (d *Document) IsPDF() bool {
	return d.ContentType == ContentTypePDF
}

// HasTag reports whether the document carries the given tag.
func (d *Document) HasTag(tagID string) bool {
	for _, id := range d.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// DocumentStats summarizes the corpus for the status endpoint.
type DocumentStats struct {
	TotalDocuments int            `json:"total_documents"`
	ByContentType  map[string]int `json:"by_content_type"`
	ByStatus       map[string]int `json:"by_status"`
	ActiveCount    int            `json:"active_count"`
	TagCount       int            `json:"tag_count"`
	LastUpdated    time.Time      `json:"last_updated"`
}
