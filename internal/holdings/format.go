package holdings

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatQuantity renders qty for display. Fiat currencies known to go-money
// are shown with their symbol and minor units ("$1,500.00"); anything else
// (tickers, crypto) is the plain decimal followed by the symbol.
func FormatQuantity(qty decimal.Decimal, symbol string) string {
	cur := money.GetCurrency(symbol)
	if cur == nil {
		return qty.String() + " " + symbol
	}
	minor := qty.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}
