package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewTagID generates a unique tag ID with the "tag_" prefix
// Format: tag_<uuid>
func NewTagID() string {
	return "tag_" + uuid.New().String()
}
