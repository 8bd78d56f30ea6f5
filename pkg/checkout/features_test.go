package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/cart"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/checkout"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

type stubProvider struct {
	url string
	err error
}

func (s *stubProvider) CreateSession(ctx context.Context, params checkout.SessionParams) (*checkout.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &checkout.Session{ID: "cs_test", URL: s.url}, nil
}

type checkoutTestContext struct {
	store    *cart.Store
	provider *stubProvider
	service  *checkout.Service
	resp     *global.Response
}

func (c *checkoutTestContext) reset() {
	c.store = cart.NewStore()
	c.provider = &stubProvider{}
	c.service = nil
	c.resp = nil
}

func (c *checkoutTestContext) anEmptyCart() error {
	c.store = cart.NewStore()
	return nil
}

func (c *checkoutTestContext) iAddNamedAt(priceID, name, amount string) error {
	unit, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	return c.store.Add(priceID, name, unit)
}

func (c *checkoutTestContext) theCartTotalIs(want string) error {
	if got := cart.Render(c.store, cart.USD).FormattedTotal; got != want {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutPayloadIs(doc *godog.DocString) error {
	req, err := cart.BuildRequest(c.store)
	if err != nil {
		return err
	}
	got, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return jsonEqual(doc.Content, string(got))
}

func (c *checkoutTestContext) aCheckoutHandlerWithNoAllowList() error {
	c.service = checkout.NewService(c.provider, checkout.Options{ClientURL: "http://localhost:5500", ReturnPath: "/store.html"}, nil)
	return nil
}

func (c *checkoutTestContext) aCheckoutHandlerAllowing(priceID string) error {
	c.service = checkout.NewService(c.provider, checkout.Options{
		AllowedPriceIDs: []string{priceID},
		ClientURL:       "http://localhost:5500",
		ReturnPath:      "/store.html",
	}, nil)
	return nil
}

func (c *checkoutTestContext) theProviderReturnsTheSessionURL(url string) error {
	c.provider.url = url
	return nil
}

func (c *checkoutTestContext) theProviderFailsWith(msg string) error {
	c.provider.err = errors.New(msg)
	return nil
}

func (c *checkoutTestContext) iPOST(doc *godog.DocString) error {
	c.resp = c.service.Handle(context.Background(), checkout.Request{Method: http.MethodPost, Body: []byte(doc.Content)})
	return nil
}

func (c *checkoutTestContext) iSendARequest(method string) error {
	c.resp = c.service.Handle(context.Background(), checkout.Request{Method: method})
	return nil
}

func (c *checkoutTestContext) theResponseStatusIs(status int) error {
	if c.resp.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d (%s)", status, c.resp.StatusCode, c.resp.Body)
	}
	return nil
}

func (c *checkoutTestContext) theResponseBodyIs(doc *godog.DocString) error {
	return jsonEqual(doc.Content, string(c.resp.Body))
}

func jsonEqual(want, got string) error {
	var w, g interface{}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		return fmt.Errorf("bad expected JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		return fmt.Errorf("bad actual JSON %q: %w", got, err)
	}
	wb, _ := json.Marshal(w)
	gb, _ := json.Marshal(g)
	if string(wb) != string(gb) {
		return fmt.Errorf("expected %s, got %s", wb, gb)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^a checkout handler with no allow-list$`, tc.aCheckoutHandlerWithNoAllowList)
	ctx.Step(`^a checkout handler allowing "([^"]*)"$`, tc.aCheckoutHandlerAllowing)
	ctx.Step(`^the provider returns the session URL "([^"]*)"$`, tc.theProviderReturnsTheSessionURL)
	ctx.Step(`^the provider fails with "([^"]*)"$`, tc.theProviderFailsWith)

	// When steps
	ctx.Step(`^I add "([^"]*)" named "([^"]*)" at "([^"]*)"$`, tc.iAddNamedAt)
	ctx.Step(`^I POST:$`, tc.iPOST)
	ctx.Step(`^I send a (GET|PUT|DELETE|PATCH) request$`, tc.iSendARequest)

	// Then steps
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the checkout payload is:$`, tc.theCheckoutPayloadIs)
	ctx.Step(`^the response status is (\d+)$`, tc.theResponseStatusIs)
	ctx.Step(`^the response body is:$`, tc.theResponseBodyIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
