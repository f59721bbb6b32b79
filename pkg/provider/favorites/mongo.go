package favorites

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig locates the favorites collection.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "piemenu"
	DefaultMongoCollection = "favorites"
)

// MongoStore keeps one document per favorite, keyed by path.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects and pings the server.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Load returns all favorites ordered by position.
func (s *MongoStore) Load(ctx context.Context) ([]Favorite, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var favs []Favorite
	if err := cur.All(ctx, &favs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return favs, nil
}

// Save upserts every favorite and deletes documents no longer listed.
func (s *MongoStore) Save(ctx context.Context, favs []Favorite) error {
	paths := make(bson.A, 0, len(favs))
	for _, f := range favs {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.Path}, f, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("mongo upsert %s: %w", f.Path, err)
		}
		paths = append(paths, f.Path)
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": paths}}); err != nil {
		return fmt.Errorf("mongo prune: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
