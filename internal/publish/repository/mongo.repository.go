package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resumecms/internal/publish/model"
	"resumecms/pkg/bsonjson"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type snapshotRecord struct {
	ID          string    `bson:"_id"`
	Content     bson.Raw  `bson:"content"`
	Label       *string   `bson:"label"`
	PublishedAt time.Time `bson:"publishedAt"`
}

// MongoLedger stores snapshots in the version_snapshots collection. content
// is an ordered BSON document so section order round-trips.
type MongoLedger struct {
	coll store.MongoCollection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{coll: db.Collection(snapshotTable)}
}

// EnsureIndexes indexes publishedAt for MostRecent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	index := mongo.IndexModel{Keys: bson.D{{Key: "publishedAt", Value: -1}}}
	if _, err := db.Collection(snapshotTable).Indexes().CreateOne(ctx, index); err != nil {
		logger.Sugar.Errorf("Failed to create %s index: %v", snapshotTable, err)
		return fmt.Errorf("create %s index: %w", snapshotTable, err)
	}
	return nil
}

func (r *MongoLedger) Append(ctx context.Context, snap *model.Snapshot) (string, error) {
	raw, err := json.Marshal(snap.Content)
	if err != nil {
		return "", fmt.Errorf("encode snapshot content: %w", err)
	}
	content, err := bsonjson.FromJSON(raw)
	if err != nil {
		return "", err
	}
	id := snap.ID
	if id == "" {
		id = uuid.New().String()
	}

	record := bson.D{
		{Key: "_id", Value: id},
		{Key: "content", Value: content},
		{Key: "label", Value: snap.Label},
		{Key: "publishedAt", Value: snap.PublishedAt},
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		logger.Sugar.Errorf("Failed to append snapshot: %v", err)
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

func (r *MongoLedger) MostRecent(ctx context.Context) (*model.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	var rec snapshotRecord
	err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read latest snapshot: %v", err)
		return nil, fmt.Errorf("find latest snapshot: %w", err)
	}

	raw, err := bsonjson.ToJSON(rec.Content)
	if err != nil {
		return nil, err
	}
	snap := &model.Snapshot{
		ID:          rec.ID,
		Content:     model.NewSnapshotContent(),
		Label:       rec.Label,
		PublishedAt: rec.PublishedAt.UTC(),
	}
	if err := json.Unmarshal(raw, snap.Content); err != nil {
		logger.Sugar.Errorf("Failed to decode snapshot %s: %v", rec.ID, err)
		return nil, err
	}
	return snap, nil
}

func (r *MongoLedger) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		logger.Sugar.Errorf("Failed to count snapshots: %v", err)
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
