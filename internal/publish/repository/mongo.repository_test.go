package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"resumecms/pkg/bsonjson"
	"resumecms/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMongoLedgerAppendBuildsOrderedRecord(t *testing.T) {
	coll := &storetest.Collection{}
	l := &MongoLedger{coll: coll}
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	id, err := l.Append(context.Background(), snapshotAt(at, strPtr("first")))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, coll.Inserted, 1)
	record := coll.Inserted[0].(bson.D)
	assert.Equal(t, "_id", record[0].Key)
	assert.Equal(t, id, record[0].Value)
	assert.Equal(t, "label", record[2].Key)
	assert.Equal(t, "first", *record[2].Value.(*string))
	assert.Equal(t, at, record[3].Value)

	content := record[1].Value.(bson.D)
	require.Len(t, content, 2)
	assert.Equal(t, "hero", content[0].Key)
	assert.Equal(t, "experiences", content[1].Key)
	raw, err := bsonjson.ToJSON(content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hero":{"tagline":{"en":"Developer"}},"experiences":{"items":[]}}`, string(raw))
}

func TestMongoLedgerAppendKeepsGivenID(t *testing.T) {
	coll := &storetest.Collection{}
	snap := snapshotAt(time.Now(), nil)
	snap.ID = "fixed-id"

	id, err := (&MongoLedger{coll: coll}).Append(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestMongoLedgerAppendFailure(t *testing.T) {
	l := &MongoLedger{coll: &storetest.Collection{Err: errors.New("write concern")}}
	_, err := l.Append(context.Background(), snapshotAt(time.Now(), nil))
	assert.ErrorContains(t, err, "write concern")
}

func TestMongoLedgerMostRecent(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	content, err := bsonjson.FromJSON([]byte(`{"skills":{"categories":[]},"hero":{}}`))
	require.NoError(t, err)
	coll := &storetest.Collection{Docs: []any{bson.D{
		{Key: "_id", Value: "s1"},
		{Key: "content", Value: content},
		{Key: "label", Value: nil},
		{Key: "publishedAt", Value: at},
	}}}

	snap, err := (&MongoLedger{coll: coll}).MostRecent(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "s1", snap.ID)
	assert.Nil(t, snap.Label)
	assert.Equal(t, at, snap.PublishedAt)
	assert.Equal(t, []string{"skills", "hero"}, snap.Content.Keys())
}

func TestMongoLedgerMostRecentEmpty(t *testing.T) {
	snap, err := (&MongoLedger{coll: &storetest.Collection{}}).MostRecent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestMongoLedgerCount(t *testing.T) {
	coll := &storetest.Collection{Docs: []any{bson.D{}, bson.D{}, bson.D{}}}
	n, err := (&MongoLedger{coll: coll}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
