package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TypeExchange         TransactionType = "exchange"
	TypeTransfer         TransactionType = "transfer"
	TypeIncome           TransactionType = "income"
	TypeFee              TransactionType = "fee"
	TypePurchase         TransactionType = "purchase"
	TypeBalanceAssertion TransactionType = "balance_assertion"
)

// DateFormat is the layout of transaction_date.
const DateFormat = "2006-01-02"

// ParseDate parses a transaction_date or an as-of date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExchange, TypeTransfer, TypeIncome, TypeFee, TypePurchase, TypeBalanceAssertion:
		return true
	}
	return false
}

// Leg is one side (from, to or fee) of a transaction.
type Leg struct {
	Link   string
	Amount decimal.Decimal // negative on the from side, positive on to and fee
	Symbol string
}

// Transaction is a row in the transactions table. Link is both the primary
// key and the idempotency token.
type Transaction struct {
	Link string
	Type TransactionType

	From *Leg // nil for income arriving from outside any tracked account
	To   *Leg // nil for pure outflows
	Fee  *Leg

	Unix int64
	Date string // YYYY-MM-DD

	TxID    string
	TxLabel string
	TxSrc   string
	TxDest  string

	Description  string
	Info         map[string]any
	OriginalData json.RawMessage
	SourceFile   string
}

// SetTime sets Unix and Date from t. Dates are taken in UTC so the same
// record maps to the same day regardless of the importing machine.
func (t *Transaction) SetTime(at time.Time) {
	t.Unix = at.Unix()
	t.Date = at.UTC().Format(DateFormat)
}

// IsAssertion reports whether the transaction records an observed balance
// rather than a movement.
func (t Transaction) IsAssertion() bool {
	return t.Type == TypeBalanceAssertion
}

// Legs returns the non-nil legs in from, to, fee order.
func (t Transaction) Legs() []Leg {
	var legs []Leg
	for _, l := range []*Leg{t.From, t.To, t.Fee} {
		if l != nil {
			legs = append(legs, *l)
		}
	}
	return legs
}
