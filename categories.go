package pubcms

import (
	"context"
	"database/sql"
	"strings"
)

// DefaultCategories are seeded on first start when SiteConfig leaves
// DefaultCategories empty.
var DefaultCategories = []string{"politics", "geopolitics", "history"}

// EnsureCategories inserts each name that is not already present. Safe to
// call on every startup.
func (s *Store) EnsureCategories(ctx context.Context, names ...string) error {
	for _, name := range FilterEmpty(names) {
		if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return err
		}
	}
	return nil
}

// ListCategories returns every category ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ResolveCategories maps the given names to category ids. Names without a
// matching category are dropped.
func (s *Store) ResolveCategories(ctx context.Context, names []string) (map[string]int64, error) {
	return resolveCategories(ctx, s.db, names)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func resolveCategories(ctx context.Context, q queryer, names []string) (map[string]int64, error) {
	out := make(map[string]int64)
	names = FilterEmpty(names)
	if len(names) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM categories WHERE name IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}
