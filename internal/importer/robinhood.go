package importer

import (
	"fmt"
	"strings"

	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
)

const robinhoodSource = "robinhood"

// RobinhoodAdapter normalizes Robinhood order history. Only filled orders
// become transactions.
type RobinhoodAdapter struct {
	id       field
	state    field
	symbol   field
	side     field
	quantity field
	price    field
	fees     field
	date     field
}

// NewRobinhoodAdapter returns a RobinhoodAdapter.
func NewRobinhoodAdapter() *RobinhoodAdapter {
	return &RobinhoodAdapter{
		id:       aliases("$.id", "$.order_id"),
		state:    aliases("$.state"),
		symbol:   aliases("$.symbol", "$.instrument_symbol", "$.chain_symbol"),
		side:     aliases("$.side"),
		quantity: aliases("$.cumulative_quantity", "$.quantity"),
		price:    aliases("$.average_price", "$.price"),
		fees:     aliases("$.fees"),
		date:     aliases("$.last_transaction_at", "$.updated_at", "$.created_at"),
	}
}

func (a *RobinhoodAdapter) Source() string { return robinhoodSource }

func (a *RobinhoodAdapter) Normalize(records []Record, owner string) ([]model.Transaction, error) {
	account := link.Account(owner, robinhoodSource, "brokerage", "default")
	dedupe := link.NewDeduper()
	var txns []model.Transaction

	for _, rec := range records {
		if !strings.EqualFold(a.state.str(rec), "filled") {
			continue
		}

		symbol := a.symbol.strOr(rec, "UNKNOWN")
		side := strings.ToLower(a.side.strOr(rec, "buy"))
		qty := a.quantity.decimalOr(rec)
		price := a.price.decimalOr(rec)
		total := qty.Mul(price)
		at := a.date.timeOr(rec)

		orderID := a.id.str(rec)
		id := orderID
		if id == "" {
			id = dedupe.Next(link.Synthetic(at.Format(compactDate), symbol, link.Ref(side), qty.String()))
		}
		id = link.Synthetic(robinhoodSource, id)

		txn := model.Transaction{
			Link:         link.Transaction(owner, robinhoodSource, id),
			Type:         model.TypeExchange,
			TxID:         orderID,
			Description:  fmt.Sprintf("%s %s %s @ %s", strings.ToUpper(side), qty, symbol, price),
			OriginalData: rec.raw(),
			SourceFile:   robinhoodSource + "-api",
		}
		txn.SetTime(at)

		// Only an explicit buy opens a position; every other side sells.
		if side == "buy" {
			txn.From, txn.To = buyLegs(account, symbol, total, qty)
		} else {
			txn.From, txn.To = sellLegs(account, symbol, total, qty)
		}
		txn.Fee = feeLeg(account, a.fees.decimalOr(rec))

		txns = append(txns, txn)
	}
	return txns, nil
}
