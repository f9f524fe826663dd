package importer

import (
	"fmt"
	"time"

	"github.com/mistakia/finance-sub001/internal/link"
	"github.com/mistakia/finance-sub001/internal/model"
)

// positionFields are the aliases of a position snapshot row.
type positionFields struct {
	symbol      field
	quantity    field
	accountID   field
	accountType field
	costBasis   field
	marketValue field
	name        field
}

func newPositionFields() positionFields {
	return positionFields{
		symbol:      aliases("$.symbol", "$.Symbol"),
		quantity:    aliases("$.quantity", "$.balance", "$.Quantity"),
		accountID:   aliases("$.account_id", "$.address", "$.account_number"),
		accountType: aliases("$.account_type"),
		costBasis:   aliases("$.cost_basis"),
		marketValue: aliases("$.market_value", "$.value"),
		name:        aliases("$.name", "$.description"),
	}
}

// CreatePositionAssertions turns a position snapshot taken at at into
// balance_assertion transactions. Assertions are keyed by snapshot time, so
// re-importing the same snapshot is idempotent and a later snapshot adds a
// new checkpoint.
func CreatePositionAssertions(positions []Record, institution, owner string, at time.Time) []model.Transaction {
	f := newPositionFields()
	at = at.UTC()
	stamp := at.Format(compactDate + "150405")
	source := institution + "-api"

	txns := make([]model.Transaction, 0, len(positions))
	for _, rec := range positions {
		symbol := f.symbol.strOr(rec, cashSymbol)
		qty := f.quantity.decimalOr(rec)
		accountID := f.accountID.strOr(rec, "default")
		account := link.Account(owner, institution, f.accountType.strOr(rec, "brokerage"), accountID)
		id := link.Synthetic(institution, "assertion", stamp, symbol, accountID)

		info := map[string]any{
			"assertion_type": "position_snapshot",
			"institution":    institution,
			"account_link":   account,
		}
		if v, ok := f.costBasis.decimal(rec); ok {
			info["cost_basis"] = v.String()
		}
		if v, ok := f.marketValue.decimal(rec); ok {
			info["market_value"] = v.String()
		}
		if v := f.name.str(rec); v != "" {
			info["name"] = v
		}

		txn := model.Transaction{
			Link:         link.Join(owner, institution, "assertion", id),
			Type:         model.TypeBalanceAssertion,
			To:           &model.Leg{Link: account, Amount: qty, Symbol: symbol},
			TxID:         id,
			Description:  fmt.Sprintf("Balance assertion: %s %s at %s", qty, symbol, institution),
			Info:         info,
			OriginalData: rec.raw(),
			SourceFile:   source,
		}
		txn.SetTime(at)
		txns = append(txns, txn)
	}
	return txns
}

// AssertionAdapter exposes CreatePositionAssertions through the Adapter
// interface so snapshots go through the same ingestion pipeline as
// activity.
type AssertionAdapter struct {
	Institution string
	At          time.Time
}

// NewAssertionAdapter returns an AssertionAdapter for a snapshot of
// institution taken at at.
func NewAssertionAdapter(institution string, at time.Time) *AssertionAdapter {
	return &AssertionAdapter{Institution: institution, At: at}
}

func (a *AssertionAdapter) Source() string { return a.Institution }

func (a *AssertionAdapter) Normalize(records []Record, owner string) ([]model.Transaction, error) {
	if a.Institution == "" {
		return nil, fmt.Errorf("assertion adapter: institution is required")
	}
	return CreatePositionAssertions(records, a.Institution, owner, a.At), nil
}
