package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// ExportProcessorConfig holds configuration for the export sweep.
type ExportProcessorConfig struct {
	// PollInterval is how often to check for pending exports (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of months exported per poll (default: 10)
	BatchSize int
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// PendingExportStore is the export bookkeeping kept by the SQLite repository.
type PendingExportStore interface {
	PendingExports(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExported(ctx context.Context, user string, month core.MonthKey, version int64) error
	MarkExportError(ctx context.Context, user string, month core.MonthKey, version int64) error
}

// ExportProcessor periodically exports months whose latest version has not
// reached the export destinations yet. It backs up the message bus: a
// lost message only delays an export until the next poll.
type ExportProcessor struct {
	store    PendingExportStore
	exporter *ExportService
	config   ExportProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(store PendingExportStore, exporter *ExportService, config ExportProcessorConfig) *ExportProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultExportProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultExportProcessorConfig().BatchSize
	}
	return &ExportProcessor{store: store, exporter: exporter, config: config}
}

// Start begins the processing loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ProcessBatch(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch exports one batch of pending months and returns how many
// succeeded.
func (p *ExportProcessor) ProcessBatch(ctx context.Context) int {
	items, err := p.store.PendingExports(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending exports", "error", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}
	slog.DebugContext(ctx, "Processing export batch", "count", len(items))

	done := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return done
		}
		if err := p.exporter.Export(ctx, item.Document); err != nil {
			slog.WarnContext(ctx, "Export failed",
				"user", item.UserID,
				"month", item.Month,
				"version", item.Version,
				"error", err)
			if err := p.store.MarkExportError(ctx, item.UserID, item.Month, item.Version); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "month", item.Month, "error", err)
			}
			continue
		}
		if err := p.store.MarkExported(ctx, item.UserID, item.Month, item.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to mark exported", "month", item.Month, "error", err)
			continue
		}
		done++
	}
	return done
}
