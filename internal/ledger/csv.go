package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mistakia/finance-sub001/internal/model"
)

// Header is the CSV header of a transaction export.
const Header = "link,transaction_type,transaction_date,transaction_unix,from_link,from_amount,from_symbol,to_link,to_amount,to_symbol,fee_link,fee_amount,fee_symbol,tx_id,description,source_file"

const numFields = 16

// WriteTransactions writes txns as CSV, header first.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row. Absent legs are
// empty cells.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, 0, numFields)
	row = append(row, t.Link, string(t.Type), t.Date, strconv.FormatInt(t.Unix, 10))
	for _, l := range []*model.Leg{t.From, t.To, t.Fee} {
		if l == nil {
			row = append(row, "", "", "")
			continue
		}
		row = append(row, l.Link, l.Amount.String(), l.Symbol)
	}
	row = append(row, t.TxID, csvSafe(t.Description), t.SourceFile)
	return row
}
