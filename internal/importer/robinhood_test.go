package importer

import (
	"testing"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const robinhoodOrders = `[
  {"id": "ord-1", "state": "filled", "symbol": "AAPL", "side": "buy",
   "cumulative_quantity": "10.00000000", "average_price": "150.00",
   "last_transaction_at": "2025-01-15T14:30:00Z", "fees": "0.00"},
  {"id": "ord-2", "state": "cancelled", "symbol": "TSLA", "side": "buy",
   "quantity": "5", "price": "200", "updated_at": "2025-01-16T10:00:00Z"},
  {"id": "ord-3", "state": "filled", "instrument_symbol": "MSFT", "side": "sell",
   "quantity": "2", "price": "400.50", "updated_at": "2025-01-17T10:00:00Z", "fees": "0.02"}
]`

func TestRobinhood_Normalize(t *testing.T) {
	txns, err := NewRobinhoodAdapter().Normalize(mustRecords(t, robinhoodOrders), "alice")
	require.NoError(t, err)
	require.Len(t, txns, 2, "cancelled orders are skipped")

	buy := txns[0]
	assert.Equal(t, "/alice/robinhood/robinhood_ord-1", buy.Link)
	assert.Equal(t, model.TypeExchange, buy.Type)
	assert.Equal(t, "ord-1", buy.TxID)
	assert.Equal(t, "BUY 10 AAPL @ 150", buy.Description)
	assert.Equal(t, "2025-01-15", buy.Date)
	assert.Equal(t, "/alice/robinhood/brokerage/default", buy.From.Link)
	assert.Equal(t, "-1500", buy.From.Amount.String())
	assert.Equal(t, "USD", buy.From.Symbol)
	assert.Equal(t, "/alice/robinhood/brokerage/default/AAPL", buy.To.Link)
	assert.Equal(t, "10", buy.To.Amount.String())
	assert.Nil(t, buy.Fee)
	assert.Equal(t, "robinhood-api", buy.SourceFile)

	sell := txns[1]
	assert.Equal(t, "/alice/robinhood/brokerage/default/MSFT", sell.From.Link)
	assert.Equal(t, "-2", sell.From.Amount.String())
	assert.Equal(t, "MSFT", sell.From.Symbol)
	assert.Equal(t, "/alice/robinhood/brokerage/default", sell.To.Link)
	assert.Equal(t, "801", sell.To.Amount.String())
	require.NotNil(t, sell.Fee)
	assert.Equal(t, "0.02", sell.Fee.Amount.String())
	assert.Equal(t, "/alice/robinhood/brokerage/default", sell.Fee.Link)
}

func TestRobinhood_Defaults(t *testing.T) {
	txns, err := NewRobinhoodAdapter().Normalize(mustRecords(t, `[{"id": "x", "state": "filled"}]`), "alice")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "UNKNOWN", txns[0].To.Symbol)
	assert.True(t, txns[0].To.Amount.IsZero())
	assert.Equal(t, "1970-01-01", txns[0].Date)
}

func TestRobinhood_NonBuySidesSell(t *testing.T) {
	txns, err := NewRobinhoodAdapter().Normalize(mustRecords(t, `[
	  {"id": "s1", "state": "filled", "symbol": "GME", "side": "short", "quantity": "3", "price": "20"},
	  {"id": "s2", "state": "filled", "symbol": "GME", "side": "BUY", "quantity": "1", "price": "20"}
	]`), "alice")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	short := txns[0]
	assert.Equal(t, "/alice/robinhood/brokerage/default/GME", short.From.Link)
	assert.Equal(t, "-3", short.From.Amount.String())
	assert.Equal(t, "/alice/robinhood/brokerage/default", short.To.Link)
	assert.Equal(t, "60", short.To.Amount.String())

	buy := txns[1]
	assert.Equal(t, "/alice/robinhood/brokerage/default", buy.From.Link, "side is matched case-insensitively")
	assert.Equal(t, "GME", buy.To.Symbol)
}

func TestRobinhood_Idempotent(t *testing.T) {
	a := NewRobinhoodAdapter()
	first, err := a.Normalize(mustRecords(t, robinhoodOrders), "alice")
	require.NoError(t, err)
	second, err := a.Normalize(mustRecords(t, robinhoodOrders), "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
