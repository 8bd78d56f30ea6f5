// Package cart holds the shopper's cart: an ordered set of line items
// keyed by price identifier, a renderer producing a display model, and
// the builder for the checkout request.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

var ErrEmptyCart = errors.New("cart is empty")

// LineItem is one product in the cart. Quantity is always at least 1
// while the item is stored.
type LineItem struct {
	PriceID   string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Subtotal returns UnitPrice * Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// Store is the cart state owned by a single shopper session. It is not
// safe for concurrent use; callers serialize mutations the way a UI
// event loop does.
type Store struct {
	items map[string]*LineItem
	order []string
}

func NewStore() *Store {
	return &Store{items: make(map[string]*LineItem)}
}

// Add puts one unit of the product in the cart. Adding a price ID that
// is already present increments its quantity.
func (s *Store) Add(priceID, name string, unitPrice decimal.Decimal) error {
	if priceID == "" {
		return &global.ValidationError{Field: "priceId", Message: "Missing price ID for this product.", Code: "required"}
	}
	if unitPrice.IsNegative() {
		return &global.ValidationError{Field: "unitPrice", Message: "Unit price must not be negative.", Code: "invalid_value"}
	}

	if existing, ok := s.items[priceID]; ok {
		existing.Quantity++
		return nil
	}

	s.items[priceID] = &LineItem{
		PriceID:   priceID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  1,
	}
	s.order = append(s.order, priceID)
	return nil
}

// ChangeQuantity adds delta to the item's quantity. An item whose
// quantity drops to zero or below is removed. Unknown IDs are ignored.
func (s *Store) ChangeQuantity(priceID string, delta int64) {
	item, ok := s.items[priceID]
	if !ok {
		return
	}
	item.Quantity += delta
	if item.Quantity <= 0 {
		s.Remove(priceID)
	}
}

func (s *Store) Increase(priceID string) { s.ChangeQuantity(priceID, 1) }

func (s *Store) Decrease(priceID string) { s.ChangeQuantity(priceID, -1) }

// Remove deletes the item regardless of its quantity.
func (s *Store) Remove(priceID string) {
	if _, ok := s.items[priceID]; !ok {
		return
	}
	delete(s.items, priceID)
	for i, id := range s.order {
		if id == priceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Total is the exact sum of every line's subtotal.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range s.order {
		total = total.Add(s.items[id].Subtotal())
	}
	return total
}

func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Store) Len() int {
	return len(s.items)
}

// Get returns a copy of the item stored under priceID.
func (s *Store) Get(priceID string) (LineItem, bool) {
	item, ok := s.items[priceID]
	if !ok {
		return LineItem{}, false
	}
	return *item, true
}

// Items returns copies of the line items in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}
