package importer

import (
	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// cashSymbol is the settlement currency of brokerage accounts.
const cashSymbol = "USD"

// buyLegs moves cash out of the account and quantity into {account}/{symbol}.
func buyLegs(account, symbol string, cash, qty decimal.Decimal) (from, to *model.Leg) {
	from = &model.Leg{Link: account, Amount: cash.Abs().Neg(), Symbol: cashSymbol}
	to = &model.Leg{Link: link.Join(account, symbol), Amount: qty.Abs(), Symbol: symbol}
	return from, to
}

// sellLegs is the inverse of buyLegs.
func sellLegs(account, symbol string, cash, qty decimal.Decimal) (from, to *model.Leg) {
	from = &model.Leg{Link: link.Join(account, symbol), Amount: qty.Abs().Neg(), Symbol: symbol}
	to = &model.Leg{Link: account, Amount: cash.Abs(), Symbol: cashSymbol}
	return from, to
}

// incomeLegs books cash paid by symbol into the account from the income
// bucket for that symbol.
func incomeLegs(account, symbol string, amount decimal.Decimal) (from, to *model.Leg) {
	from = &model.Leg{Link: link.Join("income", "dividend", symbol), Amount: amount.Abs().Neg(), Symbol: cashSymbol}
	to = &model.Leg{Link: account, Amount: amount.Abs(), Symbol: cashSymbol}
	return from, to
}

// externalLegs books units of symbol arriving from outside the owner's
// tracked accounts.
func externalLegs(owner, account, symbol string, amount decimal.Decimal) (from, to *model.Leg) {
	from = &model.Leg{Link: link.Join(owner, "external", "transfer"), Amount: amount.Abs().Neg(), Symbol: symbol}
	to = &model.Leg{Link: account, Amount: amount.Abs(), Symbol: symbol}
	return from, to
}

// fallbackLegs books unclassified actions as cash leaving the account for
// its symbol sub-link, whatever the sign of the raw amount.
func fallbackLegs(account, symbol string, amount decimal.Decimal) (from, to *model.Leg) {
	from = &model.Leg{Link: account, Amount: amount.Abs().Neg(), Symbol: cashSymbol}
	to = &model.Leg{Link: link.Join(account, symbol), Amount: amount.Abs(), Symbol: symbol}
	return from, to
}

// feeLeg returns a fee leg only for a strictly positive magnitude.
func feeLeg(account string, fee decimal.Decimal) *model.Leg {
	fee = fee.Abs()
	if !fee.IsPositive() {
		return nil
	}
	return &model.Leg{Link: account, Amount: fee, Symbol: cashSymbol}
}

// compactDate formats t for synthetic ids.
const compactDate = "20060102"
