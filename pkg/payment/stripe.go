// Package payment talks to the payment provider.
package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/checkout"
)

// StripeProvider creates Stripe Checkout sessions. The API version is
// the one pinned by stripe-go/v76 (2023-10-16).
type StripeProvider struct {
	sessions session.Client
}

type StripeOptions struct {
	// APIURL overrides the Stripe API base URL, e.g. for stripe-mock.
	APIURL     string
	HTTPClient *http.Client
}

func NewStripeProvider(secretKey string, opts StripeOptions) *StripeProvider {
	cfg := &stripe.BackendConfig{
		// a failed session is reported to the shopper, never retried
		MaxNetworkRetries: stripe.Int64(0),
		HTTPClient:        opts.HTTPClient,
	}
	if opts.APIURL != "" {
		cfg.URL = stripe.String(opts.APIURL)
	}

	return &StripeProvider{
		sessions: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: secretKey,
		},
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, params checkout.SessionParams) (*checkout.Session, error) {
	sp := sessionParams(params)
	sp.Context = ctx

	s, err := p.sessions.New(sp)
	if err != nil {
		return nil, providerError(err)
	}
	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

func sessionParams(params checkout.SessionParams) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.LineItems))
	for i, item := range params.LineItems {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.Price),
			Quantity: stripe.Int64(item.Quantity),
		}
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(params.Mode),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(params.AllowedCountries),
		},
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(params.AutomaticTax),
		},
	}
	if params.ShippingRateID != "" {
		sp.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(params.ShippingRateID)},
		}
	}
	return sp
}

// providerError reduces a Stripe API error to its human readable
// message; stripe.Error.Error() would otherwise return the raw JSON.
func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &APIError{Message: stripeErr.Msg, StatusCode: stripeErr.HTTPStatusCode, Cause: err}
	}
	return err
}

// APIError is a provider-side rejection, e.g. an unknown price.
type APIError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
