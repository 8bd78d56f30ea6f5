package models

import "time"

// CheckoutItem is one cart line on the wire. Only the price identifier
// and quantity travel; the provider resolves the actual price.
type CheckoutItem struct {
	PriceID  string `json:"priceId" bson:"price_id"`
	Quantity int64  `json:"quantity" bson:"quantity"`
}

// CheckoutRequest is the body posted to the checkout endpoint.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

// SessionResponse is returned when a checkout session was created.
type SessionResponse struct {
	URL string `json:"url"`
}

// ErrorBody is the failure body of the checkout endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// CheckoutSessionRecord is the audit entry written for every session
// the provider created.
type CheckoutSessionRecord struct {
	SessionID string         `json:"session_id" bson:"session_id"`
	URL       string         `json:"url" bson:"url"`
	Items     []CheckoutItem `json:"items" bson:"items"`
	Origin    string         `json:"origin,omitempty" bson:"origin,omitempty"`
	RequestID string         `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}
