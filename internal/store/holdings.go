package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mistakia/finance-sub001/internal/model"
)

const holdingColumns = `link, symbol, quantity, name, cost_basis, asset_link`

// ReplaceHoldings republishes the holdings table in a single transaction:
// rows are staged, the live table is cleared and refilled from staging.
// Readers see either the previous snapshot or the new one. If any step
// fails the transaction rolls back and the previous snapshot remains.
func (db *DB) ReplaceHoldings(ctx context.Context, holdings []model.Holding) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings_staging`); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, db.rebind(
		`INSERT INTO holdings_staging (`+holdingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing staging insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range holdings {
		var cost any
		if h.CostBasis.Valid {
			cost = h.CostBasis.Decimal.String()
		}
		_, err := stmt.ExecContext(ctx,
			h.Link, h.Symbol, h.Quantity.String(), nullString(h.Name), cost, nullString(h.AssetLink))
		if err != nil {
			return fmt.Errorf("staging holding %s %s: %w", h.Link, h.Symbol, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return fmt.Errorf("clearing holdings: %w", err)
	}

	// WHERE true keeps SQLite from parsing ON CONFLICT as a join clause.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO holdings (`+holdingColumns+`)
		SELECT `+holdingColumns+` FROM holdings_staging WHERE true
		ON CONFLICT (link, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			name = excluded.name,
			cost_basis = excluded.cost_basis,
			asset_link = excluded.asset_link`)
	if err != nil {
		return fmt.Errorf("publishing holdings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings_staging`); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing holdings: %w", err)
	}
	return nil
}

// ListHoldings returns holdings whose link starts with prefix, ordered by
// link and symbol. An empty prefix lists all.
func (db *DB) ListHoldings(ctx context.Context, prefix string) ([]model.Holding, error) {
	rows, err := db.QueryContext(ctx, db.rebind(
		`SELECT `+holdingColumns+` FROM holdings WHERE link LIKE ? ESCAPE '\' ORDER BY link, symbol`),
		likePrefix(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("querying holdings: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		var (
			h               model.Holding
			name, assetLink sql.NullString
		)
		if err := rows.Scan(&h.Link, &h.Symbol, &h.Quantity, &name, &h.CostBasis, &assetLink); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		h.Name, h.AssetLink = name.String, assetLink.String
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading holdings: %w", err)
	}
	return holdings, nil
}
