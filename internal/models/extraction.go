package models

// ExtractionJob is the input contract of one background extraction run.
type ExtractionJob struct {
	DocumentID string `json:"document_id"`
	SourceRef  string `json:"source_ref"`
	PageCount  int    `json:"page_count"`
}

// ExtractionResult is the output contract of one extraction run.
// Zero-length text is a valid terminal state (flagged low_confidence),
// not an error.
type ExtractionResult struct {
	Text       string  `json:"extracted_text"`
	Method     string  `json:"method_used"` // structured, fallback, ocr, none
	Confidence float64 `json:"confidence_score"`
	Status     string  `json:"status"`  // completed, failed, low_confidence
	Partial    bool    `json:"partial"` // some pages were skipped during OCR
	Error      string  `json:"error,omitempty"`
}
