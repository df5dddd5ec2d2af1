// Package storetest provides an in-process stand-in for a Mongo collection.
package storetest

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrNoSession = errors.New("storetest: sessions are not supported")

// Update is one recorded UpdateOne call.
type Update struct {
	Filter any
	Update any
}

// Collection records writes and serves preloaded documents to reads. Docs
// is returned by Find and its first element by FindOne, regardless of
// filter. Err, when set, fails every call.
type Collection struct {
	mu sync.Mutex

	Docs    []any
	Matched int64
	Err     error

	Inserted []any
	Updates  []Update
	Deleted  []any
}

func (c *Collection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return mongo.NewCursorFromDocuments(c.Docs, nil, nil)
}

func (c *Collection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	if c.Err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.Err, nil)
	}
	if len(c.Docs) == 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(c.Docs[0], nil, nil)
}

func (c *Collection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Inserted = append(c.Inserted, document)
	return &mongo.InsertOneResult{Acknowledged: true}, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Updates = append(c.Updates, Update{Filter: filter, Update: update})
	return &mongo.UpdateResult{MatchedCount: c.Matched, ModifiedCount: c.Matched, Acknowledged: true}, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, filter)
	return &mongo.DeleteResult{DeletedCount: 1, Acknowledged: true}, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return int64(len(c.Docs)), nil
}

// Sessions is a SessionStarter that always fails.
type Sessions struct {
	Calls int
}

func (s *Sessions) StartSession(opts ...options.Lister[options.SessionOptions]) (*mongo.Session, error) {
	s.Calls++
	return nil, ErrNoSession
}
