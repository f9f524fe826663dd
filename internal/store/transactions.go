package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mistakia/finance-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const upsertTransactionQuery = `
	INSERT INTO transactions (
		link, transaction_type,
		from_link, from_amount, from_symbol,
		to_link, to_amount, to_symbol,
		fee_link, fee_amount, fee_symbol,
		transaction_unix, transaction_date,
		tx_id, tx_label, tx_src, tx_dest,
		description, transaction_info, original_data, source_file
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (link) DO UPDATE SET
		transaction_type = excluded.transaction_type,
		from_link = excluded.from_link,
		from_amount = excluded.from_amount,
		from_symbol = excluded.from_symbol,
		to_link = excluded.to_link,
		to_amount = excluded.to_amount,
		to_symbol = excluded.to_symbol,
		fee_link = excluded.fee_link,
		fee_amount = excluded.fee_amount,
		fee_symbol = excluded.fee_symbol,
		transaction_unix = excluded.transaction_unix,
		transaction_date = excluded.transaction_date,
		tx_id = excluded.tx_id,
		tx_label = excluded.tx_label,
		tx_src = excluded.tx_src,
		tx_dest = excluded.tx_dest,
		description = excluded.description,
		transaction_info = excluded.transaction_info,
		original_data = excluded.original_data,
		source_file = excluded.source_file
`

const legColumns = `
	link, transaction_type,
	from_link, from_amount, from_symbol,
	to_link, to_amount, to_symbol,
	fee_link, fee_amount, fee_symbol,
	transaction_unix, transaction_date`

const transactionColumns = legColumns + `,
	tx_id, tx_label, tx_src, tx_dest,
	description, transaction_info, original_data, source_file`

// UpsertTransactions writes txns in one database transaction, merging rows
// whose link already exists. It returns the number of rows written.
func (db *DB) UpsertTransactions(ctx context.Context, txns []model.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.rebind(upsertTransactionQuery))
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		args, err := transactionArgs(t)
		if err != nil {
			return 0, fmt.Errorf("encoding %s: %w", t.Link, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("upserting %s: %w", t.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transactions: %w", err)
	}
	return len(txns), nil
}

func transactionArgs(t model.Transaction) ([]any, error) {
	var info any
	if len(t.Info) > 0 {
		b, err := json.Marshal(t.Info)
		if err != nil {
			return nil, fmt.Errorf("encoding transaction_info: %w", err)
		}
		info = string(b)
	}
	var original any
	if len(t.OriginalData) > 0 {
		original = string(t.OriginalData)
	}

	args := []any{t.Link, string(t.Type)}
	for _, l := range []*model.Leg{t.From, t.To, t.Fee} {
		args = append(args, legArgs(l)...)
	}
	args = append(args,
		t.Unix, t.Date,
		nullString(t.TxID), nullString(t.TxLabel), nullString(t.TxSrc), nullString(t.TxDest),
		nullString(t.Description), info, original, nullString(t.SourceFile),
	)
	return args, nil
}

func legArgs(l *model.Leg) []any {
	if l == nil {
		return []any{nil, nil, nil}
	}
	return []any{nullString(l.Link), l.Amount.String(), nullString(l.Symbol)}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Movements returns every non-assertion transaction, legs only, dated on
// or before asOf (YYYY-MM-DD). An empty asOf selects all.
func (db *DB) Movements(ctx context.Context, asOf string) ([]model.Transaction, error) {
	query := `SELECT ` + legColumns + ` FROM transactions WHERE transaction_type <> ?`
	args := []any{string(model.TypeBalanceAssertion)}
	if asOf != "" {
		query += ` AND transaction_date <= ?`
		args = append(args, asOf)
	}
	query += ` ORDER BY transaction_unix, link`
	return db.queryLegs(ctx, query, args...)
}

// Assertions returns every balance_assertion transaction, newest first.
// Assertions are not cut off by a rebuild's as-of date.
func (db *DB) Assertions(ctx context.Context) ([]model.Transaction, error) {
	return db.queryLegs(ctx,
		`SELECT `+legColumns+` FROM transactions WHERE transaction_type = ?
		ORDER BY transaction_date DESC, transaction_unix DESC, link`,
		string(model.TypeBalanceAssertion),
	)
}

func (db *DB) queryLegs(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		dest, finish := legDest(&t)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		finish()
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return txns, nil
}

// nullLeg holds the scanned columns of one leg.
type nullLeg struct {
	link   sql.NullString
	amount decimal.NullDecimal
	symbol sql.NullString
}

func (n nullLeg) leg() *model.Leg {
	if !n.link.Valid && !n.amount.Valid && !n.symbol.Valid {
		return nil
	}
	return &model.Leg{Link: n.link.String, Amount: n.amount.Decimal, Symbol: n.symbol.String}
}

// legDest returns scan destinations for legColumns and a func that copies
// them into t once scanned.
func legDest(t *model.Transaction) ([]any, func()) {
	var from, to, fee nullLeg
	var typ string
	dest := []any{
		&t.Link, &typ,
		&from.link, &from.amount, &from.symbol,
		&to.link, &to.amount, &to.symbol,
		&fee.link, &fee.amount, &fee.symbol,
		&t.Unix, &t.Date,
	}
	return dest, func() {
		t.Type = model.TransactionType(typ)
		t.From, t.To, t.Fee = from.leg(), to.leg(), fee.leg()
	}
}

// GetTransaction returns the transaction with the given link.
func (db *DB) GetTransaction(ctx context.Context, link string) (*model.Transaction, error) {
	var (
		t                                        model.Transaction
		txID, label, src, dest, desc, info, orig sql.NullString
		source                                   sql.NullString
	)
	legs, finish := legDest(&t)
	dests := append(legs, &txID, &label, &src, &dest, &desc, &info, &orig, &source)

	row := db.QueryRowContext(ctx, db.rebind(`SELECT `+transactionColumns+` FROM transactions WHERE link = ?`), link)
	if err := row.Scan(dests...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", link, ErrNotFound)
		}
		return nil, fmt.Errorf("getting transaction %s: %w", link, err)
	}
	finish()

	t.TxID, t.TxLabel, t.TxSrc, t.TxDest = txID.String, label.String, src.String, dest.String
	t.Description, t.SourceFile = desc.String, source.String
	if info.Valid {
		if err := json.Unmarshal([]byte(info.String), &t.Info); err != nil {
			return nil, fmt.Errorf("decoding transaction_info of %s: %w", link, err)
		}
	}
	if orig.Valid {
		t.OriginalData = json.RawMessage(orig.String)
	}
	return &t, nil
}

// CountTransactions counts transactions whose link starts with prefix. An
// empty prefix counts all.
func (db *DB) CountTransactions(ctx context.Context, prefix string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		db.rebind(`SELECT COUNT(*) FROM transactions WHERE link LIKE ? ESCAPE '\'`),
		likePrefix(prefix),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}

// DeleteTransactionsByPrefix removes every transaction whose link starts
// with prefix, e.g. "/alice/schwab/" before a full re-import. An empty
// prefix is refused.
func (db *DB) DeleteTransactionsByPrefix(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" || prefix == "/" {
		return 0, fmt.Errorf("refusing to delete transactions with empty prefix")
	}
	res, err := db.ExecContext(ctx,
		db.rebind(`DELETE FROM transactions WHERE link LIKE ? ESCAPE '\'`),
		likePrefix(prefix),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting transactions under %s: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting transactions under %s: %w", prefix, err)
	}
	return n, nil
}

// ListTransactions returns transactions whose link starts with prefix,
// oldest first, without original_data or transaction_info.
func (db *DB) ListTransactions(ctx context.Context, prefix string) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx, db.rebind(
		`SELECT `+legColumns+`, tx_id, description, source_file
		FROM transactions WHERE link LIKE ? ESCAPE '\'
		ORDER BY transaction_unix, link`),
		likePrefix(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t                   model.Transaction
			txID, desc, srcFile sql.NullString
		)
		dest, finish := legDest(&t)
		if err := rows.Scan(append(dest, &txID, &desc, &srcFile)...); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		finish()
		t.TxID, t.Description, t.SourceFile = txID.String, desc.String, srcFile.String
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return txns, nil
}
