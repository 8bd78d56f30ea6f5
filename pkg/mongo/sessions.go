package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

func (s *Store) RecordCheckoutSession(ctx context.Context, rec *models.CheckoutSessionRecord) error {
	if _, err := s.collection(sessionsCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to record checkout session %s: %w", rec.SessionID, err)
	}
	return nil
}

// RecentCheckoutSessions returns the latest sessions, newest first.
func (s *Store) RecentCheckoutSessions(ctx context.Context, limit int64) ([]*models.CheckoutSessionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := s.collection(sessionsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout sessions: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*models.CheckoutSessionRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode checkout sessions: %w", err)
	}
	return records, nil
}
