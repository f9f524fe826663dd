package rebuild

import (
	"sort"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// Key identifies a balance: one symbol at one link.
type Key struct {
	Link   string
	Symbol string
}

func (k Key) String() string {
	return k.Link + "|" + k.Symbol
}

// Balances maps (link, symbol) to a net quantity.
type Balances map[Key]decimal.Decimal

// sumLegs totals leg amounts per (link, symbol). Legs without a link or
// symbol carry no attributable balance and are skipped.
func sumLegs(legs []*model.Leg) Balances {
	totals := make(Balances)
	for _, l := range legs {
		if l == nil || l.Link == "" || l.Symbol == "" {
			continue
		}
		k := Key{Link: l.Link, Symbol: l.Symbol}
		totals[k] = totals[k].Add(l.Amount)
	}
	return totals
}

// Aggregate replays movements into net balances: amounts received on to
// legs plus the (negative) amounts sent on from legs. Fee legs are charged
// against their link only when includeFees is set. Assertions are ignored.
func Aggregate(txns []model.Transaction, includeFees bool) Balances {
	var to, from, fees []*model.Leg
	for _, t := range txns {
		if t.IsAssertion() {
			continue
		}
		to = append(to, t.To)
		from = append(from, t.From)
		if includeFees && t.Fee != nil {
			fees = append(fees, &model.Leg{Link: t.Fee.Link, Amount: t.Fee.Amount.Abs().Neg(), Symbol: t.Fee.Symbol})
		}
	}

	balances := sumLegs(to)
	balances.merge(sumLegs(from))
	balances.merge(sumLegs(fees))
	return balances
}

func (b Balances) merge(other Balances) {
	for k, v := range other {
		b[k] = b[k].Add(v)
	}
}

// Holdings returns the balances whose magnitude exceeds dust, sorted by
// link then symbol.
func (b Balances) Holdings(dust decimal.Decimal) []model.Holding {
	holdings := make([]model.Holding, 0, len(b))
	for k, qty := range b {
		if qty.Abs().LessThanOrEqual(dust) {
			continue
		}
		holdings = append(holdings, model.Holding{
			Link:      k.Link,
			Symbol:    k.Symbol,
			Quantity:  qty,
			Name:      k.Symbol,
			AssetLink: model.AssetLink(k.Symbol),
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Link != holdings[j].Link {
			return holdings[i].Link < holdings[j].Link
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings
}
