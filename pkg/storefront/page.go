package storefront

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/cart"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

// Page drives one storefront session: every cart action mutates the
// store and re-renders through OnRender.
type Page struct {
	store     *cart.Store
	formatter *cart.CurrencyFormatter
	client    *Client

	// OnRender receives the fresh view model after every change.
	OnRender func(cart.ViewModel)
}

func NewPage(client *Client, formatter *cart.CurrencyFormatter) *Page {
	if formatter == nil {
		formatter = cart.USD
	}
	return &Page{
		store:     cart.NewStore(),
		formatter: formatter,
		client:    client,
	}
}

func (p *Page) Store() *cart.Store {
	return p.store
}

// View renders the current cart. CanCheckout is false while a checkout
// is in flight.
func (p *Page) View() cart.ViewModel {
	vm := cart.Render(p.store, p.formatter)
	if p.client != nil && p.client.Busy() {
		vm.CanCheckout = false
	}
	return vm
}

func (p *Page) render() {
	if p.OnRender != nil {
		p.OnRender(p.View())
	}
}

func (p *Page) AddToCart(priceID, name string, unitPrice decimal.Decimal) error {
	if err := p.store.Add(priceID, name, unitPrice); err != nil {
		return err
	}
	p.render()
	return nil
}

func (p *Page) Increase(priceID string) {
	p.store.Increase(priceID)
	p.render()
}

func (p *Page) Decrease(priceID string) {
	p.store.Decrease(priceID)
	p.render()
}

func (p *Page) Remove(priceID string) {
	p.store.Remove(priceID)
	p.render()
}

// AddProduct adds a catalog product to the cart. Inactive products and
// products priced in another currency than the page displays are refused.
func (p *Page) AddProduct(product *models.Product) error {
	if product == nil || !product.IsAvailable() {
		return &global.ValidationError{Field: "product", Message: "This product is not available.", Code: "unavailable"}
	}
	if product.CurrencyCode() != p.formatter.Currency() {
		return &global.ValidationError{
			Field:   "currency",
			Message: fmt.Sprintf("Product is priced in %s, this store displays %s.", product.CurrencyCode(), p.formatter.Currency()),
			Code:    "currency_mismatch",
		}
	}
	return p.AddToCart(product.PriceID, product.Name, product.UnitPrice())
}

// Checkout submits the cart and returns the URL to navigate to. An empty
// cart is refused before any request is made. The page renders once the
// submission is under way, with checkout disabled, and again when it
// settles.
func (p *Page) Checkout(ctx context.Context) (string, error) {
	if p.client == nil {
		return "", ErrNoCheckoutClient
	}

	req, err := cart.BuildRequest(p.store)
	if err != nil {
		return "", err
	}

	if !p.client.acquire() {
		return "", ErrCheckoutInProgress
	}
	p.render()

	url, err := p.client.submit(ctx, req)
	p.client.release()
	p.render()
	return url, err
}
