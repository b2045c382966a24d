package backend

import (
	"context"
	"time"

	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the document store and optional cleanup function.
type BackendResult struct {
	Store sheets.DocumentStore
	// Exports is set only by backends that track export state (sqlite).
	Exports services.PendingExportStore
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType
	User string

	// Memory backend seeds from <DataDirectory>/*.json
	DataDirectory string

	SQLiteDBPath string

	MongoURI      string
	MongoDatabase string

	BoltDBPath string

	TableServiceURL string
	SnapshotTable   string

	// CacheSize 0 disables the read cache.
	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	MongoBackend    BackendType = "mongo"
	BoltBackend     BackendType = "bolt"
	AzTablesBackend BackendType = "aztables"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, MongoBackend, BoltBackend, AzTablesBackend:
		return true
	default:
		return false
	}
}
