package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// Service owns the background schedules: a periodic scan that dispatches
// pending extractions, and the throttled bulk reindex used by the
// reindex endpoint. The scan makes extraction self-healing; a job lost
// to a crash is picked up on the next tick because the record is still
// pending.
type Service struct {
	config     *common.SchedulerConfig
	documents  interfaces.DocumentStorage
	extraction interfaces.ExtractionService
	index      interfaces.IndexService
	logger     arbor.ILogger

	cron *cron.Cron
}

// NewService creates the scheduler.
func NewService(config *common.SchedulerConfig, storage interfaces.StorageManager, extraction interfaces.ExtractionService, index interfaces.IndexService, logger arbor.ILogger) *Service {
	return &Service{
		config:     config,
		documents:  storage.DocumentStorage(),
		extraction: extraction,
		index:      index,
		logger:     logger,
	}
}

// Start registers the pending-document scan and starts the cron runner.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())
	if _, err := s.cron.AddFunc(s.config.Schedule, s.ScanPending); err != nil {
		return fmt.Errorf("invalid scheduler expression %q: %w", s.config.Schedule, err)
	}
	s.cron.Start()

	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// ScanPending dispatches extraction for PDF records still waiting on
// text. Enqueue is idempotent per document, so rescanning a record whose
// job is already queued is harmless.
func (s *Service) ScanPending() {
	docs, err := s.documents.ListDocuments(&interfaces.ListOptions{
		ContentType: models.ContentTypePDF,
		Status:      models.ExtractionPending,
		Limit:       s.config.ScanLimit,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Pending-document scan failed")
		return
	}
	if len(docs) == 0 {
		return
	}

	s.logger.Info().Int("count", len(docs)).Msg("Dispatching pending extractions")
	for _, doc := range docs {
		if doc.SourceRef == "" {
			continue
		}
		if err := s.extraction.Enqueue(models.ExtractionJob{
			DocumentID: doc.ID,
			SourceRef:  doc.SourceRef,
			PageCount:  doc.PageCount,
		}); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to enqueue extraction")
		}
	}
}

// ReindexAll rebuilds every search representation at a bounded rate so a
// full reindex cannot starve live queries. Returns the number rebuilt.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	docs, err := s.documents.ListDocuments(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents for reindex: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(s.config.ReindexRate), s.config.ReindexBurst)
	count := 0
	for _, doc := range docs {
		if err := limiter.Wait(ctx); err != nil {
			return count, err
		}
		if err := s.index.Rebuild(ctx, doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Reindex failed for document")
			continue
		}
		count++
	}

	s.logger.Info().Int("count", count).Msg("Throttled reindex complete")
	return count, nil
}
