package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

// MonthService persists month documents and announces every successful save
// on the message bus. It satisfies sheets.DocumentStore so the autosaver can
// use it directly as its backend.
type MonthService struct {
	store     sheets.DocumentStore
	publisher amqp.Publisher
}

var _ sheets.DocumentStore = (*MonthService)(nil)

// NewMonthService wraps store. publisher may be nil when no broker is
// configured.
func NewMonthService(store sheets.DocumentStore, publisher amqp.Publisher) *MonthService {
	return &MonthService{store: store, publisher: publisher}
}

// Save writes the document first. A failed publish is logged and never fails
// the save: the export sweep picks up anything the bus missed.
func (s *MonthService) Save(ctx context.Context, user string, doc core.Document) error {
	var version int64
	if vs, ok := s.store.(sheets.VersionedSaver); ok {
		v, err := vs.SaveVersioned(ctx, user, doc)
		if err != nil {
			return fmt.Errorf("save month %s: %w", doc.MonthKey, err)
		}
		version = v
	} else if err := s.store.Save(ctx, user, doc); err != nil {
		return fmt.Errorf("save month %s: %w", doc.MonthKey, err)
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishMonthSaved(ctx, user, doc.MonthKey, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish month saved message",
			"user", user,
			"month", doc.MonthKey,
			"version", version,
			"error", err)
	}
	return nil
}

func (s *MonthService) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	return s.store.Load(ctx, user, month)
}

func (s *MonthService) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	return s.store.Months(ctx, user)
}
