package cart

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAdd_NewItem(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))

	item, ok := s.Get("price_A")
	require.True(t, ok)
	assert.Equal(t, int64(1), item.Quantity)
	assert.Equal(t, "Mug", item.Name)
	assert.False(t, s.IsEmpty())
}

func TestAdd_SamePriceIDIncrementsQuantity(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))
	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))

	assert.Equal(t, 1, s.Len())
	item, _ := s.Get("price_A")
	assert.Equal(t, int64(2), item.Quantity)
}

func TestAdd_MissingPriceID(t *testing.T) {
	s := NewStore()

	err := s.Add("", "Mug", price("10.00"))

	var verr *global.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "priceId", verr.Field)
	assert.Equal(t, "required", verr.Code)
	assert.True(t, s.IsEmpty())
}

func TestAdd_NegativePrice(t *testing.T) {
	s := NewStore()

	err := s.Add("price_A", "Mug", price("-1"))

	var verr *global.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "unitPrice", verr.Field)
	assert.True(t, s.IsEmpty())
}

func TestChangeQuantity(t *testing.T) {
	tests := []struct {
		name      string
		delta     int64
		wantQty   int64
		wantFound bool
	}{
		{name: "increase", delta: 3, wantQty: 5, wantFound: true},
		{name: "decrease", delta: -1, wantQty: 1, wantFound: true},
		{name: "to zero removes", delta: -2, wantFound: false},
		{name: "below zero removes", delta: -10, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.Add("price_A", "Mug", price("10.00")))
			s.Increase("price_A")

			s.ChangeQuantity("price_A", tt.delta)

			item, ok := s.Get("price_A")
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, tt.wantQty, item.Quantity)
			} else {
				assert.True(t, s.IsEmpty())
			}
		})
	}
}

func TestChangeQuantity_UnknownIsNoop(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))

	s.ChangeQuantity("price_missing", 5)
	s.Decrease("price_missing")

	assert.Equal(t, 1, s.Len())
}

func TestRemove(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))
	require.NoError(t, s.Add("price_B", "Tee", price("5.00")))
	s.ChangeQuantity("price_A", 4)

	s.Remove("price_A")
	s.Remove("price_A")

	_, ok := s.Get("price_A")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestItems_KeepInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"price_C", "price_A", "price_B"} {
		require.NoError(t, s.Add(id, id, price("1.00")))
	}
	require.NoError(t, s.Add("price_C", "price_C", price("1.00")))
	s.Remove("price_A")
	require.NoError(t, s.Add("price_A", "price_A", price("1.00")))

	var ids []string
	for _, item := range s.Items() {
		ids = append(ids, item.PriceID)
	}
	assert.Equal(t, []string{"price_C", "price_B", "price_A"}, ids)
}

func TestItems_ReturnsCopies(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("price_A", "Mug", price("10.00")))

	items := s.Items()
	items[0].Quantity = 99

	item, _ := s.Get("price_A")
	assert.Equal(t, int64(1), item.Quantity)
}

func TestTotal(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Total().Equal(decimal.Zero))

	require.NoError(t, s.Add("A", "A", price("10.00")))
	require.NoError(t, s.Add("A", "A", price("10.00")))
	require.NoError(t, s.Add("B", "B", price("5.00")))

	assert.Equal(t, "25.00", s.Total().StringFixed(2))
}

func TestTotal_NoFloatingPointDrift(t *testing.T) {
	s := NewStore()
	var wantCents int64

	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("price_%d", i%7)
		cents := int64(1 + (i%7)*3) // 0.01, 0.04, 0.07, ...
		require.NoError(t, s.Add(id, id, decimal.New(cents, -2)))
		wantCents += cents
	}

	assert.True(t, s.Total().Equal(decimal.New(wantCents, -2)), "got %s", s.Total())
}

func TestStore_QuantityNeverNonPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}
	s := NewStore()

	for i := 0; i < 1000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(4) {
		case 0:
			require.NoError(t, s.Add(id, id, price("1.99")))
		case 1:
			s.ChangeQuantity(id, int64(rng.Intn(7)-4))
		case 2:
			s.Decrease(id)
		case 3:
			if rng.Intn(5) == 0 {
				s.Remove(id)
			}
		}

		for _, item := range s.Items() {
			require.Greater(t, item.Quantity, int64(0), "op %d left %s at %d", i, item.PriceID, item.Quantity)
		}
		assert.Equal(t, s.Len(), len(s.Items()))
	}
}
