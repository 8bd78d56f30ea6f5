package cart

import "julianmorley.ca/con-plar/storefront-checkout/pkg/models"

// BuildRequest snapshots the cart into the checkout payload. Names and
// prices are dropped: the server never trusts client pricing.
func BuildRequest(store *Store) (models.CheckoutRequest, error) {
	if store.IsEmpty() {
		return models.CheckoutRequest{}, ErrEmptyCart
	}

	items := store.Items()
	req := models.CheckoutRequest{Items: make([]models.CheckoutItem, 0, len(items))}
	for _, item := range items {
		req.Items = append(req.Items, models.CheckoutItem{
			PriceID:  item.PriceID,
			Quantity: item.Quantity,
		})
	}
	return req, nil
}
