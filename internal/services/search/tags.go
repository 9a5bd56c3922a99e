package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// minTagPrefixLen is the shortest prefix tag completion answers for.
// Shorter prefixes return an empty set rather than the whole taxonomy.
const minTagPrefixLen = 2

// SearchTags returns active tags whose label starts with the given
// prefix, with live content counts, ordered by count then label.
func (s *Service) SearchTags(ctx context.Context, prefix, language string) ([]models.TagSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix = s.normalizer.NormalizeQuery(strings.TrimSpace(prefix))
	if utf8.RuneCountInString(prefix) < minTagPrefixLen {
		return []models.TagSummary{}, nil
	}

	tags, err := s.tags.ListTags(true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	summaries := make([]models.TagSummary, 0, len(tags))
	for _, tag := range tags {
		if !s.tagMatches(tag, prefix) {
			continue
		}
		count, err := s.documents.CountDocuments(&interfaces.ListOptions{
			TagID:      tag.ID,
			ActiveOnly: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count content for tag %s: %w", tag.ID, err)
		}
		summaries = append(summaries, models.TagSummary{
			ID:           tag.ID,
			Label:        tag.Name(language),
			ContentCount: count,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].ContentCount != summaries[j].ContentCount {
			return summaries[i].ContentCount > summaries[j].ContentCount
		}
		return summaries[i].Label < summaries[j].Label
	})
	return summaries, nil
}

// tagMatches tests the prefix against both label languages in
// normalized form, so a diacritic-free query matches a voweled label.
func (s *Service) tagMatches(tag *models.Tag, prefix string) bool {
	for _, label := range []string{tag.NameAr, tag.NameEn} {
		if label == "" {
			continue
		}
		if strings.HasPrefix(s.normalizer.NormalizeQuery(label), prefix) {
			return true
		}
	}
	return false
}
