// Package services orchestrates a migration run: extraction, then loading.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Summary reports one extract-then-load run.
type Summary struct {
	RunID        string
	InputPath    string
	Encoding     string
	Stats        prodmig.ExtractStats
	Records      int
	RowsAffected int64
	NothingToDo  bool
	Duration     time.Duration
}

// Migrator runs the extractor and hands its records to the loader.
type Migrator struct {
	extractor prodmig.Extractor
	loader    prodmig.Loader
	logger    prodmig.Logger
	now       func() time.Time
}

// NewMigrator wires an extractor and a loader. It panics on nil dependencies.
func NewMigrator(extractor prodmig.Extractor, loader prodmig.Loader, logger prodmig.Logger) *Migrator {
	if extractor == nil {
		panic("extractor cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Migrator{
		extractor: extractor,
		loader:    loader,
		logger:    logger,
		now:       time.Now,
	}
}

// Run validates config, extracts every record from the input, and loads them.
// The store is not contacted when extraction fails or yields no records.
// A positive config.Timeout bounds the whole run.
func (m *Migrator) Run(ctx context.Context, config prodmig.MigrationConfig) (Summary, error) {
	if err := config.Validate(); err != nil {
		return Summary{}, err
	}

	start := m.now()
	runID := uuid.NewString()
	summary := Summary{RunID: runID, InputPath: config.InputPath}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	conn := *config.Connection
	if conn.AppName == "" {
		conn.AppName = "prodmig-" + runID[:8]
	}
	config.Connection = &conn

	m.logger.Verbose("Run %s: %s -> %s table %s", runID, config.InputPath, conn.Driver, config.Table)

	extracted, err := m.extractor.Extract(ctx, config.InputPath)
	if err != nil {
		return summary, err
	}
	summary.Encoding = extracted.Encoding
	summary.Stats = extracted.Stats
	summary.Records = len(extracted.Records)
	m.logger.Info("Found %d products to insert.", len(extracted.Records))

	loaded, err := m.loader.Load(ctx, config, extracted.Records)
	if err != nil {
		return summary, err
	}
	summary.RowsAffected = loaded.RowsAffected
	summary.NothingToDo = loaded.NothingToDo
	summary.Duration = m.now().Sub(start)

	m.logger.Verbose("Run %s finished in %v", runID, summary.Duration.Round(time.Millisecond))
	return summary, nil
}
