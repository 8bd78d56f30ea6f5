package cart

type ViewLine struct {
	PriceID            string
	Name               string
	FormattedPrice     string
	Quantity           int64
	FormattedLineTotal string
}

// ViewModel is everything a rendering surface needs to draw the cart.
type ViewModel struct {
	Lines          []ViewLine
	FormattedTotal string
	IsEmpty        bool
	CanCheckout    bool
}

// Render derives the display model from the store. It is recomputed in
// full after every mutation.
func Render(store *Store, f *CurrencyFormatter) ViewModel {
	if f == nil {
		f = USD
	}

	items := store.Items()
	vm := ViewModel{
		Lines:          make([]ViewLine, 0, len(items)),
		FormattedTotal: f.Format(store.Total()),
		IsEmpty:        len(items) == 0,
		CanCheckout:    len(items) > 0,
	}
	for _, item := range items {
		vm.Lines = append(vm.Lines, ViewLine{
			PriceID:            item.PriceID,
			Name:               item.Name,
			FormattedPrice:     f.Format(item.UnitPrice),
			Quantity:           item.Quantity,
			FormattedLineTotal: f.Format(item.Subtotal()),
		})
	}
	return vm
}
