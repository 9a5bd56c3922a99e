package models

// Sort orders accepted by the query interface. Relevance is the default
// for text queries; an explicit title sort overrides it (user intent wins
// only on explicit request, never implicitly).
const (
	SortRelevance = "relevance"
	SortTitle     = "title"
	SortCreatedAt = "created_at"
)

// SearchQuery is the ephemeral query value object. A query with all
// filters empty degrades to "all active records, newest first" - it is
// never invalid.
type SearchQuery struct {
	Text        string `json:"text"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=video audio pdf static"`
	TagID       string `json:"tag_id"`
	Language    string `json:"language" validate:"omitempty,oneof=ar en"`
	SortBy      string `json:"sort_by" validate:"omitempty,oneof=relevance title created_at"`
	Page        int    `json:"page" validate:"omitempty,min=1"`
	PageSize    int    `json:"page_size" validate:"omitempty,min=1"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	RecordID string  `json:"record_id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
}

// PageInfo carries pagination metadata for a result page.
type PageInfo struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// SearchPage is a complete, ordered, paginated query response.
type SearchPage struct {
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
	PageInfo   PageInfo       `json:"page_info"`
}
