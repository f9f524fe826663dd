package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"alice", "schwab"}, "/alice/schwab"},
		{[]string{"/alice/", "schwab", "brokerage", "default"}, "/alice/schwab/brokerage/default"},
		{[]string{"alice", "", "BTC"}, "/alice/BTC"},
		{nil, "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Join(tt.parts...))
	}
}

func TestAccountAndTransaction(t *testing.T) {
	assert.Equal(t, "/alice/fidelity/brokerage/X123", Account("alice", "fidelity", "brokerage", "X123"))
	assert.Equal(t, "/alice/koinly/txn-123", Transaction("alice", "koinly", "txn-123"))
	assert.Equal(t, "/alice/schwab/", Prefix("alice", "schwab"))
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		link, prefix string
		want         bool
	}{
		{"/alice/ally/checking", "/alice/ally", true},
		{"/alice/ally/checking", "/alice/ally/", true},
		{"/alice/ally", "/alice/ally", true},
		{"/alice/ally-bank/checking", "/alice/ally", false},
		{"/bob/ally/checking", "/alice", false},
		{"/alice/x", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPrefix(tt.link, tt.prefix), "HasPrefix(%q, %q)", tt.link, tt.prefix)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "/alice/schwab", Truncate("/alice/schwab/brokerage/default", 2))
	assert.Equal(t, "/alice/schwab/brokerage/default", Truncate("/alice/schwab/brokerage/default", 9))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "my-ledger-wallet", Slug("My Ledger Wallet"))
	assert.Equal(t, "coinbase", Slug("  Coinbase "))
}

func TestRef(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Reinvest Dividend", "reinvestdi"},
		{"BUY", "buy"},
		{"Sell to close", "selltoclos"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ref(tt.in), "Ref(%q)", tt.in)
	}
}

func TestSynthetic(t *testing.T) {
	assert.Equal(t, "schwab_20250115_AAPL_buy_-1500", Synthetic("schwab", "20250115", "AAPL", "buy", "-1500"))
	assert.Equal(t, "a_c", Synthetic("a", "", "c"))
}

func TestDeduper(t *testing.T) {
	d := NewDeduper()
	assert.Equal(t, "x", d.Next("x"))
	assert.Equal(t, "y", d.Next("y"))
	assert.Equal(t, "x_2", d.Next("x"))
	assert.Equal(t, "x_3", d.Next("x"))

	// A fresh deduper reproduces the same sequence.
	d2 := NewDeduper()
	assert.Equal(t, []string{"x", "y", "x_2", "x_3"}, []string{d2.Next("x"), d2.Next("y"), d2.Next("x"), d2.Next("x")})
}
