package importer

import (
	"strings"

	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
)

// ActivityAdapter normalizes custodian activity feeds (Schwab, Fidelity).
// Both expose the same logical fields under differently cased names, and
// differ only in classification rules and how transfers are booked.
type ActivityAdapter struct {
	source string
	rules  classifier

	// externalTransfers books transfers as arriving from the owner's
	// external bucket instead of as a currency movement.
	externalTransfers bool

	// zeroAmountMissing treats an amount of 0 like an absent one, so the
	// amount is derived from quantity and price.
	zeroAmountMissing bool

	account  field
	symbol   field
	quantity field
	price    field
	amount   field
	fees     field
	action   field
	date     field
	txID     field
}

// NewSchwabAdapter returns the adapter for Schwab activity.
func NewSchwabAdapter() *ActivityAdapter {
	return &ActivityAdapter{
		source:            "schwab",
		rules:             schwabRules,
		zeroAmountMissing: true,
		account:           aliases("$.account_number", `$["Account Number"]`),
		symbol:            aliases("$.Symbol", "$.symbol", "$.security"),
		quantity:          aliases("$.Quantity", "$.quantity", "$.shares"),
		price:             aliases("$.Price", "$.price", "$.trade_price"),
		amount:            aliases("$.Amount", "$.amount"),
		fees:              aliases(`$["Fees & Comm"]`, "$.fees"),
		action:            aliases("$.Action", "$.action"),
		date:              aliases("$.Date", "$.date"),
		txID:              aliases("$.transaction_id", "$.TransactionId"),
	}
}

// NewFidelityAdapter returns the adapter for Fidelity activity.
func NewFidelityAdapter() *ActivityAdapter {
	return &ActivityAdapter{
		source:            "fidelity",
		rules:             fidelityRules,
		externalTransfers: true,
		account:           aliases("$.account_number", `$["Account Number"]`),
		symbol:            aliases("$.symbol", "$.Symbol", "$.security"),
		quantity:          aliases("$.quantity", "$.Quantity", "$.shares"),
		price:             aliases("$.price", "$.Price", "$.trade_price"),
		amount:            aliases("$.amount", "$.Amount", `$["Amount ($)"]`),
		fees:              aliases("$.fees", `$["Fees ($)"]`, `$["Commission ($)"]`),
		action:            aliases("$.action", "$.Action"),
		date:              aliases("$.date", "$.Date", `$["Run Date"]`, `$["Settlement Date"]`),
		txID:              aliases("$.transaction_id"),
	}
}

func (a *ActivityAdapter) Source() string { return a.source }

func (a *ActivityAdapter) Normalize(records []Record, owner string) ([]model.Transaction, error) {
	dedupe := link.NewDeduper()
	txns := make([]model.Transaction, 0, len(records))

	for _, rec := range records {
		accountID := a.account.strOr(rec, "default")
		account := link.Account(owner, a.source, "brokerage", accountID)

		symbol := a.symbol.strOr(rec, cashSymbol)
		qty := a.quantity.decimalOr(rec)
		price := a.price.decimalOr(rec)
		amount, ok := a.amount.decimal(rec)
		if !ok || (a.zeroAmountMissing && amount.IsZero()) {
			amount = qty.Mul(price)
		}
		action := a.action.str(rec)
		typ := a.rules.classify(action)
		at := a.date.timeOr(rec)

		base := link.Synthetic(a.source, accountID, at.Format(compactDate), symbol, link.Ref(action), amount.String())
		id := dedupe.Next(base)

		txn := model.Transaction{
			Link:         link.Transaction(owner, a.source, id),
			Type:         typ,
			TxID:         a.txID.strOr(rec, id),
			Description:  activityDescription(action, symbol, qty.String(), price.String(), !qty.IsZero(), !price.IsZero()),
			OriginalData: rec.raw(),
			SourceFile:   a.source + "-api",
		}
		txn.SetTime(at)

		switch {
		case sideOf(action) == sideBuy:
			txn.From, txn.To = buyLegs(account, symbol, amount, qty)
		case sideOf(action) == sideSell:
			txn.From, txn.To = sellLegs(account, symbol, amount, qty)
		case typ == model.TypeIncome:
			txn.From, txn.To = incomeLegs(account, symbol, amount)
		case typ == model.TypeTransfer && a.externalTransfers:
			txn.From, txn.To = externalLegs(owner, account, symbol, amount)
		default:
			txn.From, txn.To = fallbackLegs(account, symbol, amount)
		}
		txn.Fee = feeLeg(account, a.fees.decimalOr(rec))

		txns = append(txns, txn)
	}
	return txns, nil
}

// activityDescription renders "BUY AAPL x10 @ 150".
func activityDescription(action, symbol, qty, price string, hasQty, hasPrice bool) string {
	parts := []string{strings.ToUpper(action), symbol}
	if hasQty {
		parts = append(parts, "x"+qty)
	}
	if hasPrice {
		parts = append(parts, "@ "+price)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
