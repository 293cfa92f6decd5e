package services

import (
	"context"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

type mockStore struct {
	ensureErr error
	upsertErr error
	affected  int64
	closeErr  error

	upserted []prodmig.Record
	closed   int
}

func (m *mockStore) EnsureTable(_ context.Context) error {
	return m.ensureErr
}

func (m *mockStore) UpsertBatch(_ context.Context, records []prodmig.Record) (int64, error) {
	m.upserted = records
	return m.affected, m.upsertErr
}

func (m *mockStore) Close() error {
	m.closed++
	return m.closeErr
}

type mockConnector struct {
	store *mockStore
	err   error
}

func (m *mockConnector) Connect(_ context.Context) (prodmig.Store, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.store, nil
}

// connectorFactory returns a factory that records how often it was called.
func connectorFactory(connector prodmig.Connector, factoryErr error, calls *int) prodmig.ConnectorFactory {
	return func(_ *prodmig.ConnectionConfig, _ string, _ prodmig.Logger) (prodmig.Connector, error) {
		*calls++
		if factoryErr != nil {
			return nil, factoryErr
		}
		return connector, nil
	}
}

type mockExtractor struct {
	result prodmig.ExtractResult
	err    error
	path   string
}

func (m *mockExtractor) Extract(_ context.Context, path string) (prodmig.ExtractResult, error) {
	m.path = path
	return m.result, m.err
}

type mockLoader struct {
	result  prodmig.LoadResult
	err     error
	config  prodmig.MigrationConfig
	records []prodmig.Record
	calls   int

	hadDeadline bool
}

func (m *mockLoader) Load(ctx context.Context, config prodmig.MigrationConfig, records []prodmig.Record) (prodmig.LoadResult, error) {
	m.calls++
	m.config = config
	m.records = records
	_, m.hadDeadline = ctx.Deadline()
	return m.result, m.err
}
