package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// draftRecord keeps the JSON text rather than a BSON mirror of the document
// so a damaged record is handled the same way as in every other backend.
type draftRecord struct {
	Key       string    `bson:"_id"`
	Raw       string    `bson:"raw"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoCache upserts the draft into one document of a collection.
type MongoCache struct {
	col *mongo.Collection
	key string
	log *logger.Entry
}

func NewMongoCache(col *mongo.Collection, key string) *MongoCache {
	if key == "" {
		key = DefaultKey
	}
	return &MongoCache{col: col, key: key, log: logger.With("cmp", "cache.mongo", "key", key)}
}

func (m *MongoCache) Load(ctx context.Context) (*intake.Document, error) {
	var rec draftRecord
	if err := m.col.FindOne(ctx, bson.M{"_id": m.key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return decodeRecord(m.log, []byte(rec.Raw)), nil
}

func (m *MongoCache) Save(ctx context.Context, doc intake.Document) error {
	b, err := intake.Encode(doc)
	if err != nil {
		return err
	}
	rec := draftRecord{Key: m.key, Raw: string(b), UpdatedAt: time.Now().UTC()}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, bson.M{"_id": m.key}, bson.M{"$set": rec}, opts); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (m *MongoCache) Clear(ctx context.Context) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": m.key})
	return err
}
