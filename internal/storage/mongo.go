package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"newscrawl/internal/article"
)

// Mongo stores records in one collection per media code, with a unique index
// on the article id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

func NewMongo(ctx context.Context, uri, dbName string, log *zap.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Mongo{
		client: client,
		db:     client.Database(dbName),
		log:    log,
	}, nil
}

func (m *Mongo) EnsurePartition(ctx context.Context, mediaCode string) error {
	_, err := m.db.Collection(mediaCode).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "news_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure unique index on %s: %w", mediaCode, err)
	}
	return nil
}

func (m *Mongo) KnownIDs(ctx context.Context, mediaCode string) (map[string]struct{}, error) {
	cur, err := m.db.Collection(mediaCode).Find(ctx, bson.D{},
		options.Find().SetProjection(bson.D{{Key: "news_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load known ids for %s: %w", mediaCode, err)
	}
	defer cur.Close(ctx)

	ids := make(map[string]struct{})
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"news_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode known id: %w", err)
		}
		ids[row.ID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("load known ids for %s: %w", mediaCode, err)
	}
	return ids, nil
}

func (m *Mongo) Put(ctx context.Context, rec *article.Record) (PutResult, error) {
	_, err := m.db.Collection(rec.MediaCode).InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return DuplicateIgnored, nil
	}
	if err != nil {
		return Stored, fmt.Errorf("insert article %s/%s: %w", rec.MediaCode, rec.ArticleID, err)
	}
	return Stored, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
