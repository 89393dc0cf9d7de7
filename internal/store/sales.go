package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
)

// Import describes one CSV import.
type Import struct {
	ID         string
	Source     string
	Rows       int
	ImportedAt time.Time
}

// ImportOptions controls ImportRecords.
type ImportOptions struct {
	// Replace drops every previously imported record first.
	Replace bool
	// Progress, when set, is called after each inserted record.
	Progress func(done int)
}

// ImportRecords stores recs in one transaction and returns the import entry.
func (s *Store) ImportRecords(ctx context.Context, source string, recs []model.Record, opts ImportOptions) (Import, error) {
	imp := Import{
		ID:         uuid.NewString(),
		Source:     source,
		Rows:       len(recs),
		ImportedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, err
	}
	defer rollback(tx)

	if opts.Replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sales`); err != nil {
			return Import{}, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM imports`); err != nil {
			return Import{}, err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, row_count, imported_at) VALUES (?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Rows, imp.ImportedAt.Format(time.RFC3339Nano),
	); err != nil {
		return Import{}, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sales (import_id, order_year, order_month, order_day, quarter, season, sku, category, size, style, ship_state, qty, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for i, r := range recs {
		var amount sql.NullString
		if r.Amount.Valid {
			amount = sql.NullString{String: r.Amount.Decimal.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, imp.ID, r.Year, int(r.Month), int(r.Day), r.Quarter, r.Season,
			r.SKU, r.Category, r.Size, r.Style, r.State, r.Quantity, amount); err != nil {
			return Import{}, fmt.Errorf("insert record %d: %w", i+1, err)
		}
		if opts.Progress != nil {
			opts.Progress(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return Import{}, err
	}
	return imp, nil
}

// LoadRecords returns every stored record in insertion order.
func (s *Store) LoadRecords(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_year, order_month, order_day, quarter, season, sku, category, size, style, ship_state, qty, amount
		 FROM sales ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []model.Record
	for rows.Next() {
		var (
			r          model.Record
			month, day int
			amount     sql.NullString
		)
		if err := rows.Scan(&r.Year, &month, &day, &r.Quarter, &r.Season, &r.SKU, &r.Category,
			&r.Size, &r.Style, &r.State, &r.Quantity, &amount); err != nil {
			return nil, err
		}
		r.Month = time.Month(month)
		r.Day = time.Weekday(day)
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, fmt.Errorf("stored amount %q: %w", amount.String, err)
			}
			r.Amount = decimal.NewNullDecimal(d)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListImports returns imports from newest to oldest.
func (s *Store) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, row_count, imported_at FROM imports ORDER BY imported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []Import
	for rows.Next() {
		var imp Import
		var importedAt string
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Rows, &importedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, err
		}
		imp.ImportedAt = parsed
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
