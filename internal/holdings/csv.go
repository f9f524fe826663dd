package holdings

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mistakia/finance-sub001/internal/model"
)

const (
	numFields    = 6
	colLink      = 0
	colSymbol    = 1
	colQuantity  = 2
	colName      = 3
	colCostBasis = 4
	colAssetLink = 5
)

// WriteHoldings writes holdings as CSV.
func WriteHoldings(w io.Writer, holdings []model.Holding) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"link", "symbol", "quantity", "name", "cost_basis", "asset_link"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, h := range holdings {
		if err := cw.Write(MarshalHolding(h)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalHolding converts a Holding to a CSV row.
func MarshalHolding(h model.Holding) []string {
	row := make([]string, numFields)
	row[colLink] = h.Link
	row[colSymbol] = h.Symbol
	row[colQuantity] = h.Quantity.String()
	row[colName] = h.Name
	if h.CostBasis.Valid {
		row[colCostBasis] = h.CostBasis.Decimal.String()
	}
	row[colAssetLink] = h.AssetLink
	return row
}
