package importer

import (
	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const koinlySource = "koinly"

// koinlyIncomeLabels turn a crypto deposit into income.
var koinlyIncomeLabels = map[string]bool{
	"staking":       true,
	"other_income":  true,
	"airdrop":       true,
	"mining":        true,
	"loan_interest": true,
	"fork":          true,
}

// koinlySide resolves one of the from, to or fee objects of a Koinly
// transaction.
type koinlySide struct {
	amount field
	symbol field
	wallet field
}

func newKoinlySide(name string) koinlySide {
	return koinlySide{
		amount: aliases("$."+name+".amount", "$."+name+".value"),
		symbol: aliases("$."+name+".currency.symbol", "$."+name+".symbol"),
		wallet: aliases("$."+name+".wallet.name", "$."+name+".wallet"),
	}
}

// leg returns nil when the side is absent. Wallet names are slugged so
// "Coinbase Pro" and "coinbase pro" land in the same bucket.
func (s koinlySide) leg(rec Record, owner string) *model.Leg {
	symbol := s.symbol.str(rec)
	if symbol == "" {
		return nil
	}
	wallet := link.Slug(s.wallet.strOr(rec, "unknown"))
	return &model.Leg{
		Link:   link.Join(owner, wallet, symbol),
		Amount: s.amount.decimalOr(rec).Abs(),
		Symbol: symbol,
	}
}

// KoinlyAdapter normalizes Koinly transaction exports. Unlike the
// brokerage adapters it refuses types it does not know.
type KoinlyAdapter struct {
	id          field
	typ         field
	label       field
	date        field
	txHash      field
	txSrc       field
	txDest      field
	description field

	from koinlySide
	to   koinlySide
	fee  koinlySide
}

// NewKoinlyAdapter returns a KoinlyAdapter.
func NewKoinlyAdapter() *KoinlyAdapter {
	return &KoinlyAdapter{
		id:          aliases("$.id"),
		typ:         aliases("$.type"),
		label:       aliases("$.label"),
		date:        aliases("$.date", "$.created_at"),
		txHash:      aliases("$.txhash", "$.tx_hash"),
		txSrc:       aliases("$.txsrc", "$.tx_src"),
		txDest:      aliases("$.txdest", "$.tx_dest"),
		description: aliases("$.description"),
		from:        newKoinlySide("from"),
		to:          newKoinlySide("to"),
		fee:         newKoinlySide("fee"),
	}
}

func (a *KoinlyAdapter) Source() string { return koinlySource }

// classify maps a Koinly type and label to a transaction type.
func (a *KoinlyAdapter) classify(rec Record) (model.TransactionType, error) {
	t := a.typ.str(rec)
	switch t {
	case "crypto_withdrawal":
		return model.TypePurchase, nil
	case "crypto_deposit":
		if koinlyIncomeLabels[a.label.str(rec)] {
			return model.TypeIncome, nil
		}
		return model.TypeTransfer, nil
	case "fiat_deposit", "fiat_withdrawal", "transfer":
		return model.TypeTransfer, nil
	case "exchange", "buy", "sell":
		return model.TypeExchange, nil
	}
	return "", &UnrecognizedTypeError{Source: koinlySource, Type: t, ID: a.id.str(rec)}
}

// Normalize maps Koinly records to transactions. The whole batch fails on
// the first unrecognized type.
func (a *KoinlyAdapter) Normalize(records []Record, owner string) ([]model.Transaction, error) {
	dedupe := link.NewDeduper()
	txns := make([]model.Transaction, 0, len(records))

	for _, rec := range records {
		typ, err := a.classify(rec)
		if err != nil {
			return nil, err
		}

		at := a.date.timeOr(rec)
		txn := model.Transaction{
			Type:         typ,
			TxID:         a.txHash.str(rec),
			TxLabel:      a.label.str(rec),
			TxSrc:        a.txSrc.str(rec),
			TxDest:       a.txDest.str(rec),
			Description:  a.description.str(rec),
			OriginalData: rec.raw(),
			SourceFile:   koinlySource + "-api",
		}
		txn.SetTime(at)

		txn.From = a.from.leg(rec, owner)
		if txn.From != nil {
			txn.From.Amount = txn.From.Amount.Neg()
		}
		txn.To = a.to.leg(rec, owner)
		if fee := a.fee.leg(rec, owner); fee != nil && fee.Amount.IsPositive() {
			txn.Fee = fee
		}

		// A withdrawal to, or deposit from, an address outside any wallet
		// gets a zero-amount counterpart so the address stays visible.
		if txn.To == nil && txn.From != nil && txn.TxDest != "" {
			txn.To = &model.Leg{
				Link:   link.Join(owner, "self", txn.From.Symbol, txn.TxDest),
				Amount: decimal.Zero,
				Symbol: txn.From.Symbol,
			}
		}
		if txn.From == nil && txn.To != nil && txn.TxSrc != "" {
			txn.From = &model.Leg{
				Link:   link.Join(owner, "self", txn.To.Symbol, txn.TxSrc),
				Amount: decimal.Zero,
				Symbol: txn.To.Symbol,
			}
		}

		id := a.id.str(rec)
		if id == "" {
			var amount string
			if l := txn.To; l != nil {
				amount = l.Amount.String()
			} else if l := txn.From; l != nil {
				amount = l.Amount.String()
			}
			id = dedupe.Next(link.Synthetic(koinlySource, at.Format(compactDate+"150405"), string(typ), amount))
		}
		txn.Link = link.Transaction(owner, koinlySource, id)

		txns = append(txns, txn)
	}
	return txns, nil
}
