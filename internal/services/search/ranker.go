package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
	"github.com/sahemlabs/maktaba/internal/services/index"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
)

// Service evaluates ranked queries against the persisted search
// representations. Evaluation never touches the document store; every
// value it needs is denormalized onto the representation.
type Service struct {
	index      interfaces.IndexStorage
	documents  interfaces.DocumentStorage
	tags       interfaces.TagStorage
	normalizer *normalize.Normalizer
	config     *common.SearchConfig
	validate   *validator.Validate
	logger     arbor.ILogger
}

var _ interfaces.SearchService = (*Service)(nil)

// NewService creates a search service.
func NewService(storage interfaces.StorageManager, normalizer *normalize.Normalizer, config *common.SearchConfig, logger arbor.ILogger) *Service {
	return &Service{
		index:      storage.IndexStorage(),
		documents:  storage.DocumentStorage(),
		tags:       storage.TagStorage(),
		normalizer: normalizer,
		config:     config,
		validate:   validator.New(),
		logger:     logger,
	}
}

// candidate pairs a representation with its computed score.
type candidate struct {
	sd    *models.SearchDocument
	score float64
}

// Search evaluates a query. An empty text with or without filters is the
// browse path: all matching active records, newest first. Text queries
// are scored and cut at the relevance threshold.
func (s *Service) Search(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(query); err != nil {
		return nil, fmt.Errorf("invalid search query: %w", err)
	}

	page, pageSize := s.pagination(query)

	sds, err := s.index.ListSearchDocuments(true)
	if err != nil {
		return nil, fmt.Errorf("failed to load search documents: %w", err)
	}

	filtered := sds[:0]
	for _, sd := range sds {
		if query.ContentType != "" && sd.ContentType != query.ContentType {
			continue
		}
		if query.TagID != "" && !containsString(sd.TagIDs, query.TagID) {
			continue
		}
		filtered = append(filtered, sd)
	}

	text := strings.TrimSpace(query.Text)
	var candidates []candidate
	if text == "" {
		candidates = make([]candidate, 0, len(filtered))
		for _, sd := range filtered {
			candidates = append(candidates, candidate{sd: sd})
		}
	} else {
		terms := index.Tokenize(s.normalizer.NormalizeQuery(text))
		candidates = s.score(filtered, terms)
	}

	s.order(candidates, query, text)

	total := len(candidates)
	results := paginate(candidates, page, pageSize, query.Language)

	s.logger.Debug().
		Str("text", text).
		Int("total", total).
		Int("page", page).
		Msg("Search evaluated")

	totalPages := (total + pageSize - 1) / pageSize
	return &models.SearchPage{
		Results:    results,
		TotalCount: total,
		PageInfo: models.PageInfo{
			Page:        page,
			PageSize:    pageSize,
			TotalPages:  totalPages,
			HasPrevious: page > 1,
			HasNext:     page < totalPages,
		},
	}, nil
}

// score computes relevance scores and applies the cutoff. Per field the
// matched fraction of the field's tokens is taken times the field
// weight; the sum is then scaled by the fraction of distinct query
// terms the record matched at all. A record whose title is exactly the
// query scores the full title weight; a record sharing only a stopword
// with a longer query is pushed under the threshold.
func (s *Service) score(sds []*models.SearchDocument, terms []string) []candidate {
	unique := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		unique[t] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}

	candidates := make([]candidate, 0, len(sds))
	for _, sd := range sds {
		var fieldScore float64
		matched := 0
		for term := range unique {
			hit := false
			for field, fv := range sd.Fields {
				if fv.Length == 0 {
					continue
				}
				tf := fv.Terms[term]
				if tf == 0 {
					continue
				}
				hit = true
				fieldScore += sd.Weights[field] * float64(tf) / float64(fv.Length)
			}
			if hit {
				matched++
			}
		}
		score := fieldScore * float64(matched) / float64(len(unique))
		if score < s.config.RelevanceThreshold {
			continue
		}
		candidates = append(candidates, candidate{sd: sd, score: score})
	}
	return candidates
}

// order sorts candidates. Relevance ordering applies only to text
// queries; browse results and explicit created_at sorts are newest
// first, and an explicit title sort wins over relevance.
func (s *Service) order(candidates []candidate, query models.SearchQuery, text string) {
	sortBy := query.SortBy
	if sortBy == "" || sortBy == models.SortRelevance {
		if text == "" {
			sortBy = models.SortCreatedAt
		} else {
			sortBy = models.SortRelevance
		}
	}

	switch sortBy {
	case models.SortTitle:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].sd.Title(query.Language) < candidates[j].sd.Title(query.Language)
		})
	case models.SortCreatedAt:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].sd.CreatedAt.After(candidates[j].sd.CreatedAt)
		})
	default: // relevance, newest first on ties
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].sd.CreatedAt.After(candidates[j].sd.CreatedAt)
		})
	}
}

// pagination resolves page and page size against configured bounds.
func (s *Service) pagination(query models.SearchQuery) (int, int) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = s.config.DefaultPageSize
	}
	if pageSize > s.config.MaxPageSize {
		pageSize = s.config.MaxPageSize
	}
	return page, pageSize
}

func paginate(candidates []candidate, page, pageSize int, language string) []models.SearchResult {
	start := (page - 1) * pageSize
	if start >= len(candidates) {
		return []models.SearchResult{}
	}
	end := start + pageSize
	if end > len(candidates) {
		end = len(candidates)
	}

	results := make([]models.SearchResult, 0, end-start)
	for _, c := range candidates[start:end] {
		results = append(results, models.SearchResult{
			RecordID: c.sd.DocumentID,
			Score:    c.score,
			Title:    c.sd.Title(language),
		})
	}
	return results
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
