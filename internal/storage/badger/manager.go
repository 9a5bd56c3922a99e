package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
)

// Manager bundles the Badger-backed storage implementations behind the
// StorageManager interface.
type Manager struct {
	db        *BadgerDB
	documents interfaces.DocumentStorage
	tags      interfaces.TagStorage
	index     interfaces.IndexStorage
	logger    arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires the storage implementations.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		tags:      NewTagStorage(db, logger),
		index:     NewIndexStorage(db, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

func (m *Manager) TagStorage() interfaces.TagStorage {
	return m.tags
}

func (m *Manager) IndexStorage() interfaces.IndexStorage {
	return m.index
}

func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage")
	return m.db.Close()
}
