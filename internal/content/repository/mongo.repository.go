package repository

import (
	"context"
	"fmt"
	"time"

	"resumecms/internal/content/model"
	"resumecms/pkg/bsonjson"
	"resumecms/pkg/logger"
	"resumecms/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type sectionRecord struct {
	ID           string    `bson:"_id"`
	ContentState string    `bson:"contentState"`
	Payload      bson.Raw  `bson:"payload"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// MongoStore keeps one section per collection with a unique index on
// contentState.
type MongoStore[P any] struct {
	coll    store.MongoCollection
	section model.Section
	now     func() time.Time
}

func NewMongoStore[P any](db *mongo.Database, section model.Section) *MongoStore[P] {
	return &MongoStore[P]{coll: db.Collection(CollectionName(section)), section: section, now: time.Now}
}

func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Hero:           NewMongoStore[model.Hero](db, model.SectionHero),
		Experiences:    NewMongoStore[model.Experiences](db, model.SectionExperiences),
		Projects:       NewMongoStore[model.Projects](db, model.SectionProjects),
		Education:      NewMongoStore[model.Educations](db, model.SectionEducation),
		Skills:         NewMongoStore[model.Skills](db, model.SectionSkills),
		Certifications: NewMongoStore[model.Certifications](db, model.SectionCertifications),
		SocialLinks:    NewMongoStore[model.SocialLinks](db, model.SectionSocialLinks),
	}
}

// EnsureIndexes creates the unique contentState index on every section collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, section := range model.SectionOrder {
		index := mongo.IndexModel{
			Keys:    bson.D{{Key: "contentState", Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(CollectionName(section)).Indexes().CreateOne(ctx, index); err != nil {
			logger.Sugar.Errorf("Failed to create index for %s: %v", section, err)
			return fmt.Errorf("create %s index: %w", section, err)
		}
	}
	return nil
}

func (r *MongoStore[P]) FindByState(ctx context.Context, state model.ContentState) (*model.Document[P], error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "contentState", Value: string(state)}}, opts)
	if err != nil {
		logger.Sugar.Errorf("Failed to find %s %s: %v", r.section, state, err)
		return nil, fmt.Errorf("find %s %s: %w", r.section, state, err)
	}
	var records []sectionRecord
	if err := cursor.All(ctx, &records); err != nil {
		logger.Sugar.Errorf("Failed to read %s %s: %v", r.section, state, err)
		return nil, fmt.Errorf("read %s %s: %w", r.section, state, err)
	}

	docs := make([]*model.Document[P], 0, len(records))
	for _, rec := range records {
		doc := &model.Document[P]{
			ID:           rec.ID,
			ContentState: model.ContentState(rec.ContentState),
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		}
		if err := bsonjson.Decode(rec.Payload, &doc.Payload); err != nil {
			logger.Sugar.Errorf("Failed to decode %s payload %s: %v", r.section, rec.ID, err)
			return nil, fmt.Errorf("decode %s payload: %w", r.section, err)
		}
		docs = append(docs, doc)
	}
	return pickLatest(r.section, state, docs), nil
}

func (r *MongoStore[P]) Save(ctx context.Context, doc *model.Document[P]) (*model.Document[P], error) {
	payload, err := bsonjson.FromValue(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", r.section, err)
	}
	out := *doc
	now := r.now().UTC()

	if out.ID == "" {
		out.ID = uuid.New().String()
		out.CreatedAt = now
		out.UpdatedAt = now
		record := bson.D{
			{Key: "_id", Value: out.ID},
			{Key: "contentState", Value: string(out.ContentState)},
			{Key: "payload", Value: payload},
			{Key: "createdAt", Value: out.CreatedAt},
			{Key: "updatedAt", Value: out.UpdatedAt},
		}
		if _, err := r.coll.InsertOne(ctx, record); err != nil {
			logger.Sugar.Errorf("Failed to insert %s %s: %v", r.section, out.ContentState, err)
			return nil, fmt.Errorf("insert %s: %w", r.section, err)
		}
		return &out, nil
	}

	out.UpdatedAt = now
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "payload", Value: payload},
		{Key: "updatedAt", Value: out.UpdatedAt},
	}}}
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: out.ID}}, update)
	if err != nil {
		logger.Sugar.Errorf("Failed to update %s %s: %v", r.section, out.ID, err)
		return nil, fmt.Errorf("update %s: %w", r.section, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update %s document %s: not found", r.section, out.ID)
	}
	return &out, nil
}

func (r *MongoStore[P]) Delete(ctx context.Context, doc *model.Document[P]) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}); err != nil {
		logger.Sugar.Errorf("Failed to delete %s %s: %v", r.section, doc.ID, err)
		return fmt.Errorf("delete %s: %w", r.section, err)
	}
	return nil
}
