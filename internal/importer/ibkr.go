package importer

import (
	"strings"

	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
)

const ibkrSource = "interactive-brokers"

// InteractiveBrokersAdapter normalizes Flex query trade confirmations,
// including option trades.
type InteractiveBrokersAdapter struct {
	tradeID       field
	symbol        field
	quantity      field
	price         field
	proceeds      field
	commission    field
	date          field
	buySell       field
	currency      field
	assetCategory field
	strike        field
	expiry        field
	putCall       field
}

// NewInteractiveBrokersAdapter returns an InteractiveBrokersAdapter.
func NewInteractiveBrokersAdapter() *InteractiveBrokersAdapter {
	return &InteractiveBrokersAdapter{
		tradeID:       aliases("$.tradeID", "$.transactionID"),
		symbol:        aliases("$.symbol"),
		quantity:      aliases("$.quantity"),
		price:         aliases("$.tradePrice", "$.price"),
		proceeds:      aliases("$.proceeds"),
		commission:    aliases("$.ibCommission", "$.commission"),
		date:          aliases("$.dateTime", "$.tradeDate"),
		buySell:       aliases("$.buySell", "$.side"),
		currency:      aliases("$.currency"),
		assetCategory: aliases("$.assetCategory"),
		strike:        aliases("$.strike"),
		expiry:        aliases("$.expiry"),
		putCall:       aliases("$.putCall"),
	}
}

func (a *InteractiveBrokersAdapter) Source() string { return ibkrSource }

func (a *InteractiveBrokersAdapter) Normalize(records []Record, owner string) ([]model.Transaction, error) {
	account := link.Account(owner, ibkrSource, "brokerage", "default")
	dedupe := link.NewDeduper()
	txns := make([]model.Transaction, 0, len(records))

	for _, rec := range records {
		symbol := a.symbol.strOr(rec, "UNKNOWN")
		qty := a.quantity.decimalOr(rec)
		price := a.price.decimalOr(rec)
		proceeds, ok := a.proceeds.decimal(rec)
		if !ok {
			proceeds = qty.Mul(price)
		}
		buySell := strings.ToUpper(a.buySell.str(rec))
		at := a.date.timeOr(rec)

		nativeID := a.tradeID.str(rec)
		id := nativeID
		if id == "" {
			id = dedupe.Next(link.Synthetic(at.Format(compactDate+"150405"), symbol, qty.String(), price.String()))
		}
		id = link.Synthetic(ibkrSource, id)

		parts := []string{buySell, qty.Abs().String(), symbol}
		if strike := a.strike.str(rec); strike != "" {
			parts = append(parts, strings.TrimSpace(a.putCall.str(rec)+" "+strike+" "+a.expiry.str(rec)))
		}
		parts = append(parts, "@ "+price.String())

		txn := model.Transaction{
			Link:         link.Transaction(owner, ibkrSource, id),
			Type:         model.TypeExchange,
			TxID:         nativeID,
			Description:  strings.TrimSpace(strings.Join(parts, " ")),
			Info:         a.info(rec),
			OriginalData: rec.raw(),
			SourceFile:   ibkrSource + "-api",
		}
		txn.SetTime(at)

		if sideOf(buySell) == sideBuy {
			txn.From, txn.To = buyLegs(account, symbol, proceeds, qty)
		} else {
			txn.From, txn.To = sellLegs(account, symbol, proceeds, qty)
		}
		if cur := a.currency.str(rec); cur != "" && cur != cashSymbol {
			cashLeg(txn, account).Symbol = cur
		}
		txn.Fee = feeLeg(account, a.commission.decimalOr(rec))

		txns = append(txns, txn)
	}
	return txns, nil
}

// cashLeg returns the leg of a trade that settles in cash.
func cashLeg(txn model.Transaction, account string) *model.Leg {
	if txn.From.Link == account {
		return txn.From
	}
	return txn.To
}

// info keeps the option contract details that do not fit the leg columns.
func (a *InteractiveBrokersAdapter) info(rec Record) map[string]any {
	info := make(map[string]any)
	for key, f := range map[string]field{
		"asset_category": a.assetCategory,
		"strike":         a.strike,
		"expiry":         a.expiry,
		"put_call":       a.putCall,
	} {
		if v := f.str(rec); v != "" {
			info[key] = v
		}
	}
	if len(info) == 0 {
		return nil
	}
	return info
}
