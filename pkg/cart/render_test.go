package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

func TestFormat_USD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"25.5", "$25.50"},
		{"1234.56", "$1,234.56"},
		{"1234567.891", "$1,234,567.89"},
		{"0.005", "$0.01"},
		{"-12.3", "-$12.30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, USD.Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormat_ZeroScaleCurrency(t *testing.T) {
	yen := NewCurrencyFormatter(language.Japanese, currency.JPY, "¥")

	assert.Equal(t, "¥1,235", yen.Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "JPY", yen.Currency())
}

func TestRender_Empty(t *testing.T) {
	vm := Render(NewStore(), USD)

	assert.True(t, vm.IsEmpty)
	assert.False(t, vm.CanCheckout)
	assert.Empty(t, vm.Lines)
	assert.Equal(t, "$0.00", vm.FormattedTotal)
}

func TestRender_Lines(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("price_A", "Mug", decimal.RequireFromString("10.00")))
	require.NoError(t, s.Add("price_B", "Tee", decimal.RequireFromString("1200")))
	s.Increase("price_A")

	vm := Render(s, nil)

	require.Len(t, vm.Lines, 2)
	assert.Equal(t, ViewLine{PriceID: "price_A", Name: "Mug", FormattedPrice: "$10.00", Quantity: 2, FormattedLineTotal: "$20.00"}, vm.Lines[0])
	assert.Equal(t, ViewLine{PriceID: "price_B", Name: "Tee", FormattedPrice: "$1,200.00", Quantity: 1, FormattedLineTotal: "$1,200.00"}, vm.Lines[1])
	assert.Equal(t, "$1,220.00", vm.FormattedTotal)
	assert.True(t, vm.CanCheckout)
}

func TestBuildRequest_Empty(t *testing.T) {
	_, err := BuildRequest(NewStore())

	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestBuildRequest_Scenario(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("A", "Mug", decimal.RequireFromString("10.00")))
	require.NoError(t, s.Add("B", "Tee", decimal.RequireFromString("5.00")))
	require.NoError(t, s.Add("A", "Mug", decimal.RequireFromString("10.00")))

	req, err := BuildRequest(s)
	require.NoError(t, err)

	assert.Equal(t, "$25.00", Render(s, USD).FormattedTotal)
	assert.Equal(t, []models.CheckoutItem{{PriceID: "A", Quantity: 2}, {PriceID: "B", Quantity: 1}}, req.Items)
}

func TestBuildRequest_IsSnapshot(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("A", "Mug", decimal.RequireFromString("10.00")))

	req, err := BuildRequest(s)
	require.NoError(t, err)
	s.ChangeQuantity("A", 5)
	s.Remove("A")

	assert.Equal(t, []models.CheckoutItem{{PriceID: "A", Quantity: 1}}, req.Items)
}
