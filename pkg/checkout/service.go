// Package checkout turns a posted cart into a hosted payment session.
//
// Service.Handle is the single request handler shared by the standalone
// server, the Netlify function and the Cloud Function; each of those only
// translates its platform request into a Request and writes back the
// returned global.Response.
package checkout

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

const (
	ModePayment   = "payment"
	recordTimeout = 5 * time.Second
)

// LineItem references a provider price; the provider owns the amount.
type LineItem struct {
	Price    string
	Quantity int64
}

// SessionParams is everything the provider needs to open a session.
type SessionParams struct {
	Mode             string
	LineItems        []LineItem
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	ShippingRateID   string
	AutomaticTax     bool
}

// Session is the provider's answer.
type Session struct {
	ID  string
	URL string
}

// SessionCreator creates hosted checkout sessions.
type SessionCreator interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}

// SessionRecorder stores created sessions. Recording is best effort.
type SessionRecorder interface {
	RecordCheckoutSession(ctx context.Context, rec *models.CheckoutSessionRecord) error
}

type Options struct {
	AllowedPriceIDs   []string
	ClientURL         string
	ReturnPath        string
	ShippingCountries []string
	ShippingRateID    string
	// ProviderTimeout bounds the provider call; zero means no extra bound.
	ProviderTimeout time.Duration
}

// Request is the platform-neutral view of an incoming call.
type Request struct {
	Method    string
	Body      []byte
	Origin    string
	RequestID string
}

type Service struct {
	provider SessionCreator
	recorder SessionRecorder
	logger   *zap.Logger

	allowed    map[string]struct{}
	successURL string
	cancelURL  string
	countries  []string
	shipping   string
	timeout    time.Duration
}

func NewService(provider SessionCreator, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[string]struct{}, len(opts.AllowedPriceIDs))
	for _, id := range opts.AllowedPriceIDs {
		allowed[id] = struct{}{}
	}

	countries := opts.ShippingCountries
	if len(countries) == 0 {
		countries = []string{"US"}
	}

	base := opts.ClientURL + opts.ReturnPath
	return &Service{
		provider:   provider,
		logger:     logger,
		allowed:    allowed,
		successURL: base + "?success=true",
		cancelURL:  base + "?canceled=true",
		countries:  append([]string(nil), countries...),
		shipping:   opts.ShippingRateID,
		timeout:    opts.ProviderTimeout,
	}
}

// WithRecorder enables the session log.
func (s *Service) WithRecorder(r SessionRecorder) *Service {
	s.recorder = r
	return s
}

// Handle runs one checkout request: validate, call the provider, respond.
func (s *Service) Handle(ctx context.Context, req Request) *global.Response {
	if req.Method == http.MethodOptions {
		return global.EmptyResponse(http.StatusOK)
	}

	url, err := s.createCheckoutSession(ctx, req)
	if err != nil {
		return global.JSONResponse(StatusFor(err), models.ErrorBody{Error: err.Error()})
	}
	return global.JSONResponse(http.StatusOK, models.SessionResponse{URL: url})
}

func (s *Service) createCheckoutSession(ctx context.Context, req Request) (string, error) {
	if req.Method != http.MethodPost {
		return "", ErrMethodNotAllowed
	}

	items, err := decodeItems(req.Body)
	if err != nil {
		return "", err
	}
	if err := s.validatePriceIDs(items); err != nil {
		return "", err
	}

	params := s.sessionParams(items)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	session, err := s.provider.CreateSession(callCtx, params)
	if err != nil {
		s.logger.Error("checkout session creation failed",
			zap.String("request_id", req.RequestID),
			zap.Int("items", len(items)),
			zap.Error(err))
		return "", &ProviderError{Err: err}
	}

	s.logger.Info("checkout session created",
		zap.String("request_id", req.RequestID),
		zap.String("session_id", session.ID),
		zap.Int("items", len(items)))

	s.record(ctx, req, session, items)
	return session.URL, nil
}

// decodeItems accepts only a JSON object whose "items" is a non-empty
// array; anything else reads as an empty cart. Elements are read
// leniently: an unreadable priceId becomes "" and an unreadable quantity
// becomes 0, leaving the allow-list or the provider to reject them.
func decodeItems(body []byte) ([]models.CheckoutItem, error) {
	var payload struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrEmptyCart
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(payload.Items, &elems); err != nil || len(elems) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.CheckoutItem, len(elems))
	for i, elem := range elems {
		var raw struct {
			PriceID  json.RawMessage `json:"priceId"`
			Quantity json.RawMessage `json:"quantity"`
		}
		// non-object elements leave both fields empty
		_ = json.Unmarshal(elem, &raw)
		items[i] = models.CheckoutItem{
			PriceID:  decodePriceID(raw.PriceID),
			Quantity: decodeQuantity(raw.Quantity),
		}
	}
	return items, nil
}

func decodePriceID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// decodeQuantity accepts integral JSON numbers and numeric strings
// ("2", 2.0).
func decodeQuantity(raw json.RawMessage) int64 {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if q, err := n.Int64(); err == nil {
		return q
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func (s *Service) validatePriceIDs(items []models.CheckoutItem) error {
	if len(s.allowed) == 0 {
		return nil
	}
	for _, item := range items {
		if _, ok := s.allowed[item.PriceID]; !ok {
			return ErrInvalidPriceID
		}
	}
	return nil
}

func (s *Service) sessionParams(items []models.CheckoutItem) SessionParams {
	lineItems := make([]LineItem, len(items))
	for i, item := range items {
		lineItems[i] = LineItem{Price: item.PriceID, Quantity: item.Quantity}
	}
	return SessionParams{
		Mode:             ModePayment,
		LineItems:        lineItems,
		SuccessURL:       s.successURL,
		CancelURL:        s.cancelURL,
		AllowedCountries: s.countries,
		ShippingRateID:   s.shipping,
		AutomaticTax:     true,
	}
}

func (s *Service) record(ctx context.Context, req Request, session *Session, items []models.CheckoutItem) {
	if s.recorder == nil {
		return
	}

	rec := &models.CheckoutSessionRecord{
		SessionID: session.ID,
		URL:       session.URL,
		Items:     items,
		Origin:    req.Origin,
		RequestID: req.RequestID,
		CreatedAt: time.Now().UTC(),
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.recorder.RecordCheckoutSession(recCtx, rec); err != nil {
		// the session exists at the provider; the caller still gets its URL
		s.logger.Warn("failed to record checkout session",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}
