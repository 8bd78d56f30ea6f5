// Package storefront is the shopper side of checkout: it owns the cart
// for one browsing session and submits it to the checkout endpoint.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

const (
	LocalEndpoint  = "http://localhost:4242/create-checkout-session"
	NetlifyPath    = "/.netlify/functions/create-checkout-session"
	defaultMessage = "Unable to create checkout session."
)

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNoCheckoutClient   = errors.New("no checkout endpoint configured")
)

// ResolveEndpoint picks the checkout endpoint for the site the shopper
// is on: the local server during development, the Netlify function
// otherwise.
func ResolveEndpoint(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL %q: %w", siteURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid site URL %q: must be absolute", siteURL)
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return LocalEndpoint, nil
	}
	return u.Scheme + "://" + u.Host + NetlifyPath, nil
}

// CheckoutError is a failed checkout as the shopper should see it.
type CheckoutError struct {
	StatusCode int
	Message    string
}

func (e *CheckoutError) Error() string {
	return e.Message
}

// Client submits checkout requests. Only one submission may be in
// flight at a time; the guard is released when the call returns so a
// failed checkout can be retried.
type Client struct {
	endpoint   string
	httpClient *http.Client
	inFlight   atomic.Bool
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Busy reports whether a checkout is currently in flight.
func (c *Client) Busy() bool {
	return c.inFlight.Load()
}

// Checkout posts req and returns the hosted checkout URL to navigate to.
func (c *Client) Checkout(ctx context.Context, req models.CheckoutRequest) (string, error) {
	if !c.acquire() {
		return "", ErrCheckoutInProgress
	}
	defer c.release()

	return c.submit(ctx, req)
}

func (c *Client) acquire() bool {
	return c.inFlight.CompareAndSwap(false, true)
}

func (c *Client) release() {
	c.inFlight.Store(false)
}

// submit performs the request. Callers hold the in-flight guard.
func (c *Client) submit(ctx context.Context, req models.CheckoutRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode checkout response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.Error
		if msg == "" {
			msg = defaultMessage
		}
		return "", &CheckoutError{StatusCode: resp.StatusCode, Message: msg}
	}
	if body.URL == "" {
		return "", &CheckoutError{StatusCode: resp.StatusCode, Message: defaultMessage}
	}
	return body.URL, nil
}
