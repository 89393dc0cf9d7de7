package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/salesdash/internal/analytics"
)

// View is a named filter preset.
type View struct {
	ID        string
	Name      string
	Filters   []analytics.CriterionSpec
	CreatedAt time.Time
}

// Criteria decodes the stored filters.
func (v View) Criteria() (analytics.Criteria, error) {
	return analytics.CriteriaFromSpecs(v.Filters)
}

// SaveView stores c under name, replacing the filters of an existing view with that name.
func (s *Store) SaveView(ctx context.Context, name string, c analytics.Criteria) (View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, errors.New("view name is required")
	}
	filters := c.Specs()
	payload, err := json.Marshal(filters)
	if err != nil {
		return View{}, err
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO views (id, name, filters, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET filters = excluded.filters, created_at = excluded.created_at`,
		uuid.NewString(), name, string(payload), now.Format(time.RFC3339Nano),
	); err != nil {
		return View{}, err
	}
	return s.GetView(ctx, name)
}

// GetView returns the view called name.
func (s *Store) GetView(ctx context.Context, name string) (View, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, filters, created_at FROM views WHERE name = ?`, strings.TrimSpace(name))
	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return View{}, fmt.Errorf("view %q: %w", name, ErrNotFound)
	}
	return view, err
}

// ListViews returns every view ordered by name.
func (s *Store) ListViews(ctx context.Context) ([]View, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, filters, created_at FROM views ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var out []View
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteView removes the view called name.
func (s *Store) DeleteView(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("view %q: %w", name, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(row scanner) (View, error) {
	var (
		view      View
		filters   string
		createdAt string
	)
	if err := row.Scan(&view.ID, &view.Name, &filters, &createdAt); err != nil {
		return View{}, err
	}
	if err := json.Unmarshal([]byte(filters), &view.Filters); err != nil {
		return View{}, fmt.Errorf("view %q filters: %w", view.Name, err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return View{}, err
	}
	view.CreatedAt = parsed
	return view, nil
}
