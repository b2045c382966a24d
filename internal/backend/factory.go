package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/cache"
	"budgetbook/internal/sheets/memory"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/aztables"
	"budgetbook/internal/storage/bolt"
	"budgetbook/internal/storage/mongo"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the configured store. Remote and on-disk stores are
// wrapped in the read cache unless CacheSize is 0.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config), nil
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MongoBackend:
		res, err = f.createMongoBackend(ctx, config)
	case BoltBackend:
		res, err = f.createBoltBackend(config)
	case AzTablesBackend:
		res, err = f.createAzTablesBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize > 0 {
		res.Store = cache.NewStore(res.Store, config.CacheSize, config.CacheTTL)
		f.logger.Info("Document cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL)
	}
	return res, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	store := memory.New()
	if config.DataDirectory != "" {
		store = memory.NewFromFiles(config.DataDirectory, config.User)
	}
	f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)
	return &BackendResult{Store: store}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Exports: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMongoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := mongo.Connect(ctx, config.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB backend: %w", err)
	}
	store := mongo.NewStore(mongo.NewMongoProvider(client, config.MongoDatabase))
	f.logger.Info("Initialized MongoDB backend", "database", config.MongoDatabase)
	return &BackendResult{
		Store:   store,
		Cleanup: func() error { return client.Disconnect(context.Background()) },
	}, nil
}

func (f *DefaultFactory) createBoltBackend(config Config) (*BackendResult, error) {
	store, err := bolt.Open(config.BoltDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bolt backend: %w", err)
	}
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createAzTablesBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := aztables.New(ctx, config.TableServiceURL, config.SnapshotTable)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize table backend: %w", err)
	}
	return &BackendResult{Store: store}, nil
}
