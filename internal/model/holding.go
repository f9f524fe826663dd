package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Holding is a row in the holdings table: the net quantity of one symbol at
// one link. Holdings are derived from transactions and rebuilt wholesale.
type Holding struct {
	Link      string
	Symbol    string
	Quantity  decimal.Decimal
	Name      string
	CostBasis decimal.NullDecimal
	AssetLink string
}

// AssetLink returns the asset link for a symbol, e.g. "/asset/btc".
func AssetLink(symbol string) string {
	return "/asset/" + strings.ToLower(symbol)
}
