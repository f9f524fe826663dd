package ledger

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTransactions(t *testing.T) {
	income := model.Transaction{
		Link:        "/alice/fidelity/fidelity_x",
		Type:        model.TypeIncome,
		From:        &model.Leg{Link: "/income/dividend/FXAIX", Amount: dec("-5"), Symbol: "USD"},
		To:          &model.Leg{Link: "/alice/fidelity/brokerage/X", Amount: dec("5"), Symbol: "USD"},
		Unix:        1735776000,
		Date:        "2025-01-02",
		Description: "=HYPERLINK(\"x\")",
		SourceFile:  "fidelity-api",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{validTxn(), income}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, join(rows[0]))
	assert.Len(t, rows[1], numFields)

	assert.Equal(t, "/alice/fidelity/fidelity_x", rows[2][0])
	assert.Equal(t, "income", rows[2][1])
	assert.Equal(t, "-5", rows[2][5])
	assert.Equal(t, "", rows[2][10], "no fee leg")
	assert.Equal(t, `'=HYPERLINK("x")`, rows[2][14])
}

func join(cells []string) string {
	var buf bytes.Buffer
	for i, c := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(c)
	}
	return buf.String()
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BUY AAPL x10 @ 150", "BUY AAPL x10 @ 150"},
		{"<i>Dividend</i>  received", "Dividend received"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"line\nbreak\x07", "line break"},
		{"Sent to\nLedger", "Sent to Ledger"},
		{"Wire\r\nref\t42\x07", "Wire ref 42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}
}
