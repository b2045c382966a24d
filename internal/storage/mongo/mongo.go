// Package mongo stores month documents in a MongoDB collection, one record
// per (user, month).
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

const SnapshotsCollection = "month_snapshots"

// ---- Abstractions for Testability ----

// DataStore is the subset of *mongo.Collection the store uses.
type DataStore interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
}

// CollectionProvider defines the interface for obtaining a collection.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoProvider adapts *mongo.Client to CollectionProvider.
type MongoProvider struct {
	client   *mongo.Client
	database string
}

func NewMongoProvider(client *mongo.Client, database string) *MongoProvider {
	return &MongoProvider{client: client, database: database}
}

func (p *MongoProvider) Collection(name string) DataStore {
	return p.client.Database(p.database).Collection(name)
}

// Connect establishes a connection to MongoDB and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	slog.DebugContext(ctx, "Attempting to connect to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	slog.InfoContext(ctx, "Successfully established connection to MongoDB")
	return client, nil
}

// record is the stored shape. The document is kept as its JSON encoding so
// amounts round-trip exactly.
type record struct {
	UserID    string    `bson:"user_id"`
	MonthKey  string    `bson:"month_key"`
	Document  string    `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements sheets.DocumentStore on MongoDB.
type Store struct {
	provider CollectionProvider
}

var _ sheets.DocumentStore = (*Store)(nil)

func NewStore(provider CollectionProvider) *Store {
	return &Store{provider: provider}
}

func (s *Store) collection() DataStore {
	return s.provider.Collection(SnapshotsCollection)
}

// Save upserts the document keyed by {user_id, month_key}.
func (s *Store) Save(ctx context.Context, user string, doc core.Document) error {
	if !doc.MonthKey.Valid() {
		return core.ErrInvalidMonthKey
	}
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	filter := bson.M{"user_id": user, "month_key": doc.MonthKey.String()}
	update := bson.M{"$set": record{
		UserID:    user,
		MonthKey:  doc.MonthKey.String(),
		Document:  string(data),
		UpdatedAt: time.Now().UTC(),
	}}
	if _, err := s.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.MonthKey, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	var rec record
	err := s.collection().FindOne(ctx, bson.M{"user_id": user, "month_key": month.String()}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Document{}, sheets.ErrNotFound
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("find %s: %w", month, err)
	}
	return core.DecodeDocument([]byte(rec.Document))
}

func (s *Store) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	vals, err := s.collection().Distinct(ctx, "month_key", bson.M{"user_id": user})
	if err != nil {
		return nil, fmt.Errorf("distinct month_key: %w", err)
	}
	out := make([]core.MonthKey, 0, len(vals))
	for _, v := range vals {
		if k, ok := v.(string); ok {
			out = append(out, core.MonthKey(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
