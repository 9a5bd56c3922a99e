package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/handlers"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/services/documents"
	"github.com/sahemlabs/maktaba/internal/services/extract"
	"github.com/sahemlabs/maktaba/internal/services/index"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
	"github.com/sahemlabs/maktaba/internal/services/ocr"
	"github.com/sahemlabs/maktaba/internal/services/scheduler"
	"github.com/sahemlabs/maktaba/internal/services/search"
	badgerstore "github.com/sahemlabs/maktaba/internal/storage/badger"
)

// App bundles the wired application: storage, services, and handlers.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage    interfaces.StorageManager
	Normalizer *normalize.Normalizer
	Index      interfaces.IndexService
	Search     interfaces.SearchService
	Extraction interfaces.ExtractionService
	Documents  interfaces.DocumentService
	Scheduler  *scheduler.Service

	SearchHandler   *handlers.SearchHandler
	DocumentHandler *handlers.DocumentHandler
	TagHandler      *handlers.TagHandler
	StatusHandler   *handlers.StatusHandler
}

// New wires the application from configuration. Services are constructed
// bottom-up: storage, normalization, indexing, search, extraction, then
// the mutation boundary that ties extraction back to the index.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	lexicon, err := normalize.LoadLexicon(config.Normalize.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load normalization lexicon: %w", err)
	}
	normalizer := normalize.New(lexicon, logger)

	builder := index.NewBuilder(storage, normalizer, &config.Search, logger)
	searchService := search.NewService(storage, normalizer, &config.Search, logger)

	recognizer := ocr.NewService(&config.OCR, logger)
	if !recognizer.Available() {
		logger.Warn().
			Str("binary", config.OCR.TesseractPath).
			Msg("Tesseract not found; scanned documents will be indexed from metadata only")
	}

	extractor := extract.NewPDFExtractor(&config.Extraction, logger)
	source := extract.NewFileSource(config.Storage.SourceDir)
	extraction, err := extract.NewService(source, extractor, recognizer, normalizer, &config.Extraction, config.ExtractionWorkers(), logger)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to initialize extraction: %w", err)
	}

	documentService := documents.NewService(storage, builder, extraction, logger)
	extraction.SetApplier(documentService)

	schedulerService := scheduler.NewService(&config.Scheduler, storage, extraction, builder, logger)

	app := &App{
		Config:     config,
		Logger:     logger,
		Storage:    storage,
		Normalizer: normalizer,
		Index:      builder,
		Search:     searchService,
		Extraction: extraction,
		Documents:  documentService,
		Scheduler:  schedulerService,
	}

	app.SearchHandler = handlers.NewSearchHandler(searchService, logger)
	app.DocumentHandler = handlers.NewDocumentHandler(documentService, extraction, logger)
	app.TagHandler = handlers.NewTagHandler(storage.TagStorage(), logger)
	app.StatusHandler = handlers.NewStatusHandler(storage, schedulerService, logger)

	return app, nil
}

// Start launches the background scheduler.
func (a *App) Start() error {
	return a.Scheduler.Start()
}

// Close shuts down background work and storage, in dependency order.
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.Extraction.Shutdown()
	return a.Storage.Close()
}
