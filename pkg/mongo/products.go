package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

var ErrProductNotFound = errors.New("product not found")

// ListProducts returns the active catalog sorted by name.
func (s *Store) ListProducts(ctx context.Context) ([]*models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.collection(productsCollection).Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProductByPriceID(ctx context.Context, priceID string) (*models.Product, error) {
	var product models.Product
	err := s.collection(productsCollection).FindOne(ctx, bson.M{"price_id": priceID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// UpsertProducts inserts or replaces catalog entries keyed by price ID.
// Every product is validated before anything is written.
func (s *Store) UpsertProducts(ctx context.Context, products []*models.Product) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid product %s: %w", p.PriceID, err)
		}
	}

	coll := s.collection(productsCollection)
	for _, p := range products {
		p.SetTimestamps()
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}

		update := bson.M{
			"$set": bson.M{
				"name":        p.Name,
				"description": p.Description,
				"unit_amount": p.UnitAmount,
				"currency":    p.Currency,
				"images":      p.Images,
				"active":      p.Active,
				"updated_at":  p.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        p.ID,
				"created_at": p.CreatedAt,
			},
		}
		opts := options.UpdateOne().SetUpsert(true)
		if _, err := coll.UpdateOne(ctx, bson.M{"price_id": p.PriceID}, update, opts); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.PriceID, err)
		}
	}
	return nil
}
