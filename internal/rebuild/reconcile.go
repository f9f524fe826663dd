package rebuild

import (
	"sort"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// Discrepancy is a disagreement between the ledger and the latest balance
// assertion for one (link, symbol).
type Discrepancy struct {
	Link     string
	Symbol   string
	Computed decimal.Decimal
	Asserted decimal.Decimal
	Diff     decimal.Decimal // |Computed - Asserted|
}

// latestAssertions keeps the newest assertion per (to_link, to_symbol),
// ordering by transaction_date then transaction_unix.
func latestAssertions(assertions []model.Transaction) map[Key]model.Transaction {
	latest := make(map[Key]model.Transaction)
	for _, a := range assertions {
		if !a.IsAssertion() || a.To == nil {
			continue
		}
		k := Key{Link: a.To.Link, Symbol: a.To.Symbol}
		cur, ok := latest[k]
		if !ok || a.Date > cur.Date || (a.Date == cur.Date && a.Unix > cur.Unix) {
			latest[k] = a
		}
	}
	return latest
}

// Reconcile compares each key's latest assertion with the computed balance,
// which is zero for keys without ledger activity. It returns discrepancies
// above tolerance, sorted by key, and the number of keys checked. It never
// changes balances.
func Reconcile(balances Balances, assertions []model.Transaction, tolerance decimal.Decimal) ([]Discrepancy, int) {
	latest := latestAssertions(assertions)

	var out []Discrepancy
	for k, a := range latest {
		computed := balances[k]
		diff := computed.Sub(a.To.Amount).Abs()
		if diff.GreaterThan(tolerance) {
			out = append(out, Discrepancy{
				Link:     k.Link,
				Symbol:   k.Symbol,
				Computed: computed,
				Asserted: a.To.Amount,
				Diff:     diff,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Link != out[j].Link {
			return out[i].Link < out[j].Link
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, len(latest)
}
