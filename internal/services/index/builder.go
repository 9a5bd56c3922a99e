package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
)

// Builder constructs search representations from content records. Each
// build writes a complete replacement document; a build from unchanged
// inputs is detected by fingerprint and skipped.
type Builder struct {
	documents  interfaces.DocumentStorage
	tags       interfaces.TagStorage
	index      interfaces.IndexStorage
	normalizer *normalize.Normalizer
	config     *common.SearchConfig
	logger     arbor.ILogger
}

var _ interfaces.IndexService = (*Builder)(nil)

// NewBuilder creates an index builder.
func NewBuilder(storage interfaces.StorageManager, normalizer *normalize.Normalizer, config *common.SearchConfig, logger arbor.ILogger) *Builder {
	return &Builder{
		documents:  storage.DocumentStorage(),
		tags:       storage.TagStorage(),
		index:      storage.IndexStorage(),
		normalizer: normalizer,
		config:     config,
		logger:     logger,
	}
}

// Rebuild regenerates the search representation for one record. A record
// that no longer exists has its representation removed instead.
func (b *Builder) Rebuild(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := b.documents.GetDocument(documentID)
	if err != nil {
		b.logger.Debug().Str("document_id", documentID).Msg("Document gone, removing search representation")
		return b.index.DeleteSearchDocument(documentID)
	}

	sd, err := b.build(doc)
	if err != nil {
		return fmt.Errorf("failed to build search document for %s: %w", documentID, err)
	}

	if existing, err := b.index.GetSearchDocument(documentID); err == nil && existing.Fingerprint == sd.Fingerprint {
		b.logger.Debug().Str("document_id", documentID).Msg("Search representation unchanged, skipping write")
		return nil
	}

	if err := b.index.SaveSearchDocument(sd); err != nil {
		return err
	}
	b.logger.Debug().
		Str("document_id", documentID).
		Str("language", sd.Language).
		Msg("Search representation rebuilt")
	return nil
}

// RebuildAll regenerates every record's representation and prunes
// representations whose record is gone. Returns the number rebuilt.
func (b *Builder) RebuildAll(ctx context.Context) (int, error) {
	docs, err := b.documents.ListDocuments(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents for reindex: %w", err)
	}

	live := make(map[string]struct{}, len(docs))
	count := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		live[doc.ID] = struct{}{}
		if err := b.Rebuild(ctx, doc.ID); err != nil {
			b.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Reindex failed for document")
			continue
		}
		count++
	}

	// Prune orphaned representations.
	sds, err := b.index.ListSearchDocuments(false)
	if err != nil {
		return count, err
	}
	for _, sd := range sds {
		if _, ok := live[sd.DocumentID]; !ok {
			if err := b.index.DeleteSearchDocument(sd.DocumentID); err != nil {
				b.logger.Warn().Err(err).Str("document_id", sd.DocumentID).Msg("Failed to prune orphaned search document")
			}
		}
	}

	b.logger.Info().Int("count", count).Msg("Full reindex complete")
	return count, nil
}

// build assembles the weighted field vectors for one record.
func (b *Builder) build(doc *models.Document) (*models.SearchDocument, error) {
	title := b.normalizer.Normalize(doc.TitleAr + " " + doc.TitleEn)
	description := b.normalizer.Normalize(doc.DescriptionAr + " " + doc.DescriptionEn)
	transcript := b.normalizer.Normalize(doc.Transcript)
	body := b.normalizer.Normalize(doc.Notes + " " + doc.BookContent)

	tagLabels, err := b.tagLabels(doc.TagIDs)
	if err != nil {
		return nil, err
	}
	tagText := b.normalizer.Normalize(strings.Join(tagLabels, " "))

	fields := map[string]models.FieldVector{
		models.FieldTitle:       BuildVector(title),
		models.FieldDescription: BuildVector(description),
		models.FieldTranscript:  BuildVector(transcript),
		models.FieldBody:        BuildVector(body),
		models.FieldTags:        BuildVector(tagText),
	}

	weights := map[string]float64{
		models.FieldTitle:       b.config.TitleWeight,
		models.FieldDescription: b.config.DescriptionWeight,
		models.FieldTranscript:  b.config.TranscriptWeight,
		models.FieldBody:        b.config.BodyWeight,
		// Tag labels rank alongside descriptions.
		models.FieldTags: b.config.DescriptionWeight,
	}

	return &models.SearchDocument{
		DocumentID:  doc.ID,
		Language:    DetectLanguage(title + " " + description + " " + body),
		Fields:      fields,
		Weights:     weights,
		ContentType: doc.ContentType,
		TagIDs:      append([]string(nil), doc.TagIDs...),
		Active:      doc.IsActive,
		TitleAr:     doc.TitleAr,
		TitleEn:     doc.TitleEn,
		CreatedAt:   doc.CreatedAt,
		Fingerprint: fingerprint(doc, tagLabels, weights),
		BuiltAt:     time.Now(),
	}, nil
}

// tagLabels resolves tag IDs to their bilingual labels. Unknown tags are
// skipped rather than failing the build.
func (b *Builder) tagLabels(tagIDs []string) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(tagIDs)*2)
	for _, id := range tagIDs {
		tag, err := b.tags.GetTag(id)
		if err != nil {
			b.logger.Debug().Str("tag_id", id).Msg("Tag not found during index build, skipping")
			continue
		}
		if tag.NameAr != "" {
			labels = append(labels, tag.NameAr)
		}
		if tag.NameEn != "" {
			labels = append(labels, tag.NameEn)
		}
	}
	return labels, nil
}

// fingerprint hashes every input that feeds the representation so
// staleness is detectable and identical rebuilds become no-ops.
func fingerprint(doc *models.Document, tagLabels []string, weights map[string]float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s|%s|%t|",
		doc.TitleAr, doc.TitleEn,
		doc.DescriptionAr, doc.DescriptionEn,
		doc.Transcript, doc.Notes, doc.BookContent,
		doc.ContentType, doc.IsActive)
	for _, label := range tagLabels {
		fmt.Fprintf(h, "%s|", label)
	}
	for _, field := range []string{models.FieldTitle, models.FieldDescription, models.FieldTranscript, models.FieldBody, models.FieldTags} {
		fmt.Fprintf(h, "%s=%g|", field, weights[field])
	}
	return hex.EncodeToString(h.Sum(nil))
}
