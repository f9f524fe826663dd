package ledger

import (
	"testing"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validTxn() model.Transaction {
	return model.Transaction{
		Link: "/alice/schwab/schwab_1",
		Type: model.TypeExchange,
		From: &model.Leg{Link: "/alice/schwab/brokerage/default", Amount: dec("-100"), Symbol: "USD"},
		To:   &model.Leg{Link: "/alice/schwab/brokerage/default/AAPL", Amount: dec("1"), Symbol: "AAPL"},
		Date: "2025-01-02",
	}
}

func rules(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate([]model.Transaction{validTxn()}, "alice"))
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Transaction)
		want   string
	}{
		{"unknown type", func(t *model.Transaction) { t.Type = "swap" }, RuleType},
		{"foreign owner", func(t *model.Transaction) { t.Link = "/bob/schwab/1" }, RuleRooted},
		{"unrooted", func(t *model.Transaction) { t.Link = "alice/schwab/1" }, RuleRooted},
		{"bad date", func(t *model.Transaction) { t.Date = "01/02/2025" }, RuleDate},
		{"leg without symbol", func(t *model.Transaction) { t.To.Symbol = "" }, RuleLeg},
		{"leg without link", func(t *model.Transaction) { t.From.Link = "" }, RuleLeg},
		{"negative fee", func(t *model.Transaction) {
			t.Fee = &model.Leg{Link: "/alice/x", Amount: dec("-1"), Symbol: "USD"}
		}, RuleFee},
		{"no legs", func(t *model.Transaction) { t.From, t.To = nil, nil }, RuleMovement},
		{"assertion without to", func(t *model.Transaction) {
			t.Type = model.TypeBalanceAssertion
			t.To = nil
		}, RuleAssertion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validTxn()
			tt.mutate(&txn)
			errs := Validate([]model.Transaction{txn}, "alice")
			assert.Contains(t, rules(errs), tt.want)
		})
	}
}

func TestValidate_DuplicateLinkInBatch(t *testing.T) {
	errs := Validate([]model.Transaction{validTxn(), validTxn()}, "alice")
	assert.Equal(t, []string{RuleDuplicate}, rules(errs))
}

func TestJoinErrors(t *testing.T) {
	err := joinErrors([]ValidationError{
		{Rule: RuleFee, Link: "/a/1", Description: "fee amount -1 is negative"},
		{Rule: RuleLeg, Link: "/a/2", Description: "to leg needs both link and symbol"},
	})
	assert.ErrorContains(t, err, "fee [/a/1]: fee amount -1 is negative")
	assert.ErrorContains(t, err, "leg [/a/2]")

	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}
