package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyFormatter renders decimal amounts as locale-grouped currency
// strings such as "$1,234.56".
type CurrencyFormatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
	scale   int32
}

// USD formats US dollars for the en-US locale.
var USD = NewCurrencyFormatter(language.AmericanEnglish, currency.USD, "$")

func NewCurrencyFormatter(tag language.Tag, unit currency.Unit, symbol string) *CurrencyFormatter {
	scale, _ := currency.Standard.Rounding(unit)
	return &CurrencyFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		symbol:  symbol,
		scale:   int32(scale),
	}
}

// Currency returns the ISO 4217 code of the formatted unit.
func (f *CurrencyFormatter) Currency() string {
	return f.unit.String()
}

// Format rounds amount half away from zero to the currency's scale and
// groups the integer digits per the locale.
func (f *CurrencyFormatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.scale)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	grouped := f.printer.Sprintf("%d", whole.IntPart())
	if f.scale <= 0 {
		return sign + f.symbol + grouped
	}

	fraction := rounded.Sub(whole).Shift(f.scale).IntPart()
	return fmt.Sprintf("%s%s%s.%0*d", sign, f.symbol, grouped, int(f.scale), fraction)
}
