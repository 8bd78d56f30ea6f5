package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products: one catalog entry per provider price
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "price_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_price_id_unique"),
		},
	},
	// Products: storefront listing
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetName("idx_active_name"),
		},
	},

	// Checkout sessions
	{
		CollectionName: sessionsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_session_id_unique"),
		},
	},
	{
		CollectionName: sessionsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_session_created"),
		},
	},
}

// EnsureIndexes creates the indexes the store relies on. Creating an
// index that already exists is a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) ([]string, error) {
	var names []string
	for _, idx := range requiredIndexes {
		name, err := s.collection(idx.CollectionName).Indexes().CreateOne(ctx, idx.IndexModel)
		if err != nil {
			return names, fmt.Errorf("create index on %s: %w", idx.CollectionName, err)
		}
		names = append(names, name)
	}
	return names, nil
}
