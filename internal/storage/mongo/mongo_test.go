package mongo_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
	mstore "budgetbook/internal/storage/mongo"
)

// Mock for DataStore interface.
type mockDataStore struct {
	updateOneFunc func(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	findOneFunc   func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	distinctFunc  func(ctx context.Context, field string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
}

func (m *mockDataStore) UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if m.updateOneFunc != nil {
		return m.updateOneFunc(ctx, filter, update, opts...)
	}
	return &mongo.UpdateResult{}, nil
}

func (m *mockDataStore) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	if m.findOneFunc != nil {
		return m.findOneFunc(ctx, filter, opts...)
	}
	return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
}

func (m *mockDataStore) Distinct(ctx context.Context, field string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
	if m.distinctFunc != nil {
		return m.distinctFunc(ctx, field, filter, opts...)
	}
	return nil, nil
}

// Mock for CollectionProvider interface.
type mockCollectionProvider struct {
	collectionFunc func(name string) mstore.DataStore
}

func (m *mockCollectionProvider) Collection(name string) mstore.DataStore {
	if m.collectionFunc != nil {
		return m.collectionFunc(name)
	}
	return &mockDataStore{}
}

func providerFor(t *testing.T, ds *mockDataStore) *mockCollectionProvider {
	return &mockCollectionProvider{collectionFunc: func(name string) mstore.DataStore {
		if name != mstore.SnapshotsCollection {
			t.Errorf("unexpected collection %s", name)
		}
		return ds
	}}
}

func TestSave_UpsertsByUserAndMonth(t *testing.T) {
	var gotFilter bson.M
	var upsert bool
	ds := &mockDataStore{
		updateOneFunc: func(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			gotFilter = filter.(bson.M)
			if len(opts) == 1 && opts[0].Upsert != nil {
				upsert = *opts[0].Upsert
			}
			return &mongo.UpdateResult{UpsertedCount: 1}, nil
		},
	}
	s := mstore.NewStore(providerFor(t, ds))

	if err := s.Save(context.Background(), "u1", core.NewDocument("2024-03", core.EmptySnapshot())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotFilter["user_id"] != "u1" || gotFilter["month_key"] != "2024-03" {
		t.Errorf("unexpected filter %v", gotFilter)
	}
	if !upsert {
		t.Error("expected upsert option")
	}
}

func TestSave_PropagatesError(t *testing.T) {
	ds := &mockDataStore{
		updateOneFunc: func(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			return nil, errors.New("boom")
		},
	}
	s := mstore.NewStore(providerFor(t, ds))
	if err := s.Save(context.Background(), "u1", core.NewDocument("2024-03", core.EmptySnapshot())); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad(t *testing.T) {
	doc := core.NewDocument("2024-03", core.Snapshot{Income: []core.Category{{Name: "Salary", Budgeted: core.AmountFromInt(5000)}}})
	data, _ := doc.Encode()

	ds := &mockDataStore{
		findOneFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
			f := filter.(bson.M)
			if f["month_key"] == "2024-03" {
				return mongo.NewSingleResultFromDocument(bson.M{"user_id": "u1", "month_key": "2024-03", "document": string(data)}, nil, nil)
			}
			return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
		},
	}
	s := mstore.NewStore(providerFor(t, ds))

	got, err := s.Load(context.Background(), "u1", "2024-03")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Income) != 1 || got.Income[0].Name != "Salary" {
		t.Errorf("unexpected document %+v", got)
	}

	if _, err := s.Load(context.Background(), "u1", "2024-04"); !errors.Is(err, sheets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMonthsSorted(t *testing.T) {
	ds := &mockDataStore{
		distinctFunc: func(ctx context.Context, field string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
			if field != "month_key" {
				t.Errorf("unexpected field %s", field)
			}
			return []interface{}{"2024-03", "2023-12", 42}, nil
		},
	}
	s := mstore.NewStore(providerFor(t, ds))
	months, err := s.Months(context.Background(), "u1")
	if err != nil || len(months) != 2 || months[0] != "2023-12" {
		t.Fatalf("unexpected months %v err=%v", months, err)
	}
}
