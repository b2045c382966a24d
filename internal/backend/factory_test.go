package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/config"
	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{DataBackend: "bolt", BoltDBPath: "x.bolt", UserID: "u1", CacheSize: 4}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != BoltBackend || cfg.User != "u1" || cfg.CacheSize != 4 {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("unknown backend should be rejected")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should be rejected")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg Config
		ok  bool
	}{
		{Config{Type: MemoryBackend}, true},
		{Config{Type: SQLiteBackend}, false},
		{Config{Type: MongoBackend, MongoURI: "mongodb://x"}, false},
		{Config{Type: BoltBackend, BoltDBPath: "b"}, true},
		{Config{Type: AzTablesBackend}, false},
		{Config{Type: "nope"}, false},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err == nil) != tc.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tc.cfg.Type, err, tc.ok)
		}
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, CacheSize: 8})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Store.(*cache.Store); ok {
		t.Error("memory backend should not be cached")
	}
	if res.Exports != nil {
		t.Error("memory backend does not track exports")
	}
}

func TestCreateSQLiteBackendIsCached(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "budget.db"),
		CacheSize:    8,
		CacheTTL:     time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Store.(*cache.Store); !ok {
		t.Errorf("expected cached store, got %T", res.Store)
	}
	if _, ok := res.Exports.(*storage.SQLiteRepository); !ok {
		t.Errorf("expected export tracking from sqlite, got %T", res.Exports)
	}

	if err := res.Store.Save(ctx, "u1", core.NewDocument("2024-02", core.EmptySnapshot())); err != nil {
		t.Fatalf("save: %v", err)
	}
	months, err := res.Store.Months(ctx, "u1")
	if err != nil || len(months) != 1 {
		t.Errorf("unexpected months %v err=%v", months, err)
	}
}

func TestCreateBoltBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:       BoltBackend,
		BoltDBPath: filepath.Join(t.TempDir(), "budget.bolt"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if err := res.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
