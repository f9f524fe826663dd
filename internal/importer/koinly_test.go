package importer

import (
	"errors"
	"testing"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const koinlyBuyAndWithdraw = `{"items": [
  {
    "id": "k1",
    "type": "buy",
    "date": "2024-01-10T12:00:00.000Z",
    "from": {"amount": "100", "currency": {"symbol": "USD"}, "wallet": {"name": "Coinbase Pro"}},
    "to": {"amount": "0.5", "currency": {"symbol": "BTC"}, "wallet": {"name": "Coinbase Pro"}},
    "fee": null,
    "txhash": null
  },
  {
    "id": "k2",
    "type": "crypto_withdrawal",
    "date": "2024-01-11T08:30:00.000Z",
    "from": {"amount": "0.5", "currency": {"symbol": "BTC"}, "wallet": {"name": "Coinbase Pro"}},
    "to": null,
    "fee": {"amount": "0", "currency": {"symbol": "BTC"}, "wallet": {"name": "Coinbase Pro"}},
    "txhash": "0xabc",
    "txdest": "bc1qaddr"
  }
]}`

func TestKoinly_BuyAndWithdraw(t *testing.T) {
	txns, err := NewKoinlyAdapter().Normalize(mustRecords(t, koinlyBuyAndWithdraw), "alice")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	buy := txns[0]
	assert.Equal(t, "/alice/koinly/k1", buy.Link)
	assert.Equal(t, model.TypeExchange, buy.Type)
	assert.Equal(t, "2024-01-10", buy.Date)
	require.NotNil(t, buy.From)
	assert.Equal(t, "/alice/coinbase-pro/USD", buy.From.Link)
	assert.Equal(t, "-100", buy.From.Amount.String())
	require.NotNil(t, buy.To)
	assert.Equal(t, "/alice/coinbase-pro/BTC", buy.To.Link)
	assert.Equal(t, "0.5", buy.To.Amount.String())
	assert.Nil(t, buy.Fee)
	assert.Equal(t, "koinly-api", buy.SourceFile)
	assert.NotEmpty(t, buy.OriginalData)

	withdraw := txns[1]
	assert.Equal(t, model.TypePurchase, withdraw.Type)
	assert.Equal(t, "0xabc", withdraw.TxID)
	assert.Equal(t, "-0.5", withdraw.From.Amount.String())
	require.NotNil(t, withdraw.To)
	assert.Equal(t, "/alice/self/BTC/bc1qaddr", withdraw.To.Link)
	assert.True(t, withdraw.To.Amount.IsZero())
	assert.Nil(t, withdraw.Fee, "zero fee must not produce a leg")
}

func TestKoinly_Classification(t *testing.T) {
	tests := []struct {
		typ   string
		label string
		want  model.TransactionType
	}{
		{"crypto_withdrawal", "", model.TypePurchase},
		{"crypto_deposit", "staking", model.TypeIncome},
		{"crypto_deposit", "airdrop", model.TypeIncome},
		{"crypto_deposit", "", model.TypeTransfer},
		{"fiat_deposit", "", model.TypeTransfer},
		{"fiat_withdrawal", "", model.TypeTransfer},
		{"transfer", "", model.TypeTransfer},
		{"exchange", "", model.TypeExchange},
		{"sell", "", model.TypeExchange},
	}
	a := NewKoinlyAdapter()
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.label, func(t *testing.T) {
			rec := Record{"id": "x", "type": tt.typ, "label": tt.label}
			got, err := a.classify(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKoinly_UnrecognizedTypeAbortsBatch(t *testing.T) {
	recs := mustRecords(t, `[
	  {"id": "ok", "type": "buy", "date": "2024-01-01"},
	  {"id": "bad", "type": "margin_call", "date": "2024-01-02"}
	]`)

	txns, err := NewKoinlyAdapter().Normalize(recs, "alice")
	require.Error(t, err)
	assert.Nil(t, txns)
	assert.True(t, errors.Is(err, ErrUnrecognizedType))

	var typeErr *UnrecognizedTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "margin_call", typeErr.Type)
	assert.Equal(t, "bad", typeErr.ID)
}

func TestKoinly_DepositFromAddress(t *testing.T) {
	recs := mustRecords(t, `[{
	  "id": "k3", "type": "crypto_deposit", "label": "staking", "date": "2024-02-01T00:00:00Z",
	  "to": {"amount": "0.01", "currency": {"symbol": "ETH"}, "wallet": {"name": "Ledger"}},
	  "txsrc": "0xsrc"
	}]`)

	txns, err := NewKoinlyAdapter().Normalize(recs, "alice")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TypeIncome, txns[0].Type)
	assert.Equal(t, "staking", txns[0].TxLabel)
	require.NotNil(t, txns[0].From)
	assert.Equal(t, "/alice/self/ETH/0xsrc", txns[0].From.Link)
	assert.Equal(t, "/alice/ledger/ETH", txns[0].To.Link)
}

func TestKoinly_FeeLeg(t *testing.T) {
	recs := mustRecords(t, `[{
	  "id": "k4", "type": "exchange", "date": "2024-03-01T00:00:00Z",
	  "from": {"amount": "1", "currency": {"symbol": "ETH"}, "wallet": {"name": "Kraken"}},
	  "to": {"amount": "3000", "currency": {"symbol": "USD"}, "wallet": {"name": "Kraken"}},
	  "fee": {"amount": "2.5", "currency": {"symbol": "USD"}, "wallet": {"name": "Kraken"}}
	}]`)

	txns, err := NewKoinlyAdapter().Normalize(recs, "alice")
	require.NoError(t, err)
	require.NotNil(t, txns[0].Fee)
	assert.Equal(t, "/alice/kraken/USD", txns[0].Fee.Link)
	assert.Equal(t, "2.5", txns[0].Fee.Amount.String())
}

func TestKoinly_Idempotent(t *testing.T) {
	a := NewKoinlyAdapter()
	first, err := a.Normalize(mustRecords(t, koinlyBuyAndWithdraw), "alice")
	require.NoError(t, err)
	second, err := a.Normalize(mustRecords(t, koinlyBuyAndWithdraw), "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKoinly_MissingIDGetsStableSyntheticLinks(t *testing.T) {
	doc := `[
	  {"type": "fiat_deposit", "date": "2024-01-01T00:00:00Z", "to": {"amount": "10", "currency": {"symbol": "USD"}, "wallet": {"name": "Kraken"}}},
	  {"type": "fiat_deposit", "date": "2024-01-01T00:00:00Z", "to": {"amount": "10", "currency": {"symbol": "USD"}, "wallet": {"name": "Kraken"}}}
	]`
	txns, err := NewKoinlyAdapter().Normalize(mustRecords(t, doc), "alice")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "/alice/koinly/koinly_20240101000000_transfer_10", txns[0].Link)
	assert.Equal(t, "/alice/koinly/koinly_20240101000000_transfer_10_2", txns[1].Link)
}
