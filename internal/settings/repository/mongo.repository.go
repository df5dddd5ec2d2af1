package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resumecms/internal/settings/model"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type settingsRecord struct {
	ID                   string          `bson:"_id"`
	SupportedLocales     []string        `bson:"supportedLocales"`
	DefaultLocale        string          `bson:"defaultLocale"`
	PdfSectionVisibility map[string]bool `bson:"pdfSectionVisibility"`
	CreatedAt            time.Time       `bson:"createdAt"`
	UpdatedAt            time.Time       `bson:"updatedAt"`
}

// MongoStore keeps the settings document in the site_settings collection.
type MongoStore struct {
	coll store.MongoCollection
	now  func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(settingsTable), now: time.Now}
}

func (r *MongoStore) Find(ctx context.Context) (*model.SiteSettings, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	var rec settingsRecord
	err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read settings: %v", err)
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return &model.SiteSettings{
		ID:                   rec.ID,
		SupportedLocales:     rec.SupportedLocales,
		DefaultLocale:        rec.DefaultLocale,
		PdfSectionVisibility: rec.PdfSectionVisibility,
		CreatedAt:            rec.CreatedAt.UTC(),
		UpdatedAt:            rec.UpdatedAt.UTC(),
	}, nil
}

func (r *MongoStore) Save(ctx context.Context, settings *model.SiteSettings) (*model.SiteSettings, error) {
	out := *settings
	now := r.now().UTC()

	if out.ID == "" {
		out.ID = uuid.New().String()
		out.CreatedAt = now
		out.UpdatedAt = now
		record := settingsRecord{
			ID:                   out.ID,
			SupportedLocales:     out.SupportedLocales,
			DefaultLocale:        out.DefaultLocale,
			PdfSectionVisibility: out.PdfSectionVisibility,
			CreatedAt:            out.CreatedAt,
			UpdatedAt:            out.UpdatedAt,
		}
		if _, err := r.coll.InsertOne(ctx, record); err != nil {
			logger.Sugar.Errorf("Failed to insert settings: %v", err)
			return nil, fmt.Errorf("insert settings: %w", err)
		}
		return &out, nil
	}

	out.UpdatedAt = now
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "supportedLocales", Value: out.SupportedLocales},
		{Key: "defaultLocale", Value: out.DefaultLocale},
		{Key: "pdfSectionVisibility", Value: out.PdfSectionVisibility},
		{Key: "updatedAt", Value: out.UpdatedAt},
	}}}
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: out.ID}}, update)
	if err != nil {
		logger.Sugar.Errorf("Failed to update settings %s: %v", out.ID, err)
		return nil, fmt.Errorf("update settings: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update settings %s: not found", out.ID)
	}
	return &out, nil
}
