package pubcms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// articleColumns selects an article row plus its comma-joined category names.
const articleColumns = `a.id, a.title, a.body, a.created_at, a.visible, a.author,
	COALESCE((SELECT group_concat(c.name, ',' ORDER BY c.id)
		FROM article_categories ac JOIN categories c ON c.id = ac.category_id
		WHERE ac.article_id = a.id), '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(sc rowScanner) (Article, error) {
	var (
		art       Article
		createdAt string
		visible   int
		cats      string
	)
	if err := sc.Scan(&art.ID, &art.Title, &art.Body, &createdAt, &visible, &art.Author, &cats); err != nil {
		return Article{}, err
	}
	t, err := time.ParseInLocation(timestampLayout, createdAt, time.Local)
	if err != nil {
		return Article{}, fmt.Errorf("article %d: parse created_at: %w", art.ID, err)
	}
	art.CreatedAt = t
	art.Visible = visible == 1
	art.Categories = ParseCategories(cats)
	return art, nil
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, art)
	}
	return articles, rows.Err()
}

func (s *Store) queryArticle(ctx context.Context, query string, args ...any) (Article, error) {
	art, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	return art, err
}

// ListVisibleArticles returns visible articles, newest first.
func (s *Store) ListVisibleArticles(ctx context.Context) ([]Article, error) {
	return s.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.visible = 1 ORDER BY a.id DESC`)
}

// ListAllArticles returns every article regardless of visibility, newest first.
func (s *Store) ListAllArticles(ctx context.Context) ([]Article, error) {
	return s.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles a ORDER BY a.id DESC`)
}

// ListArticlesByCategory returns visible articles filed under the named
// category, newest first.
func (s *Store) ListArticlesByCategory(ctx context.Context, name string) ([]Article, error) {
	return s.queryArticles(ctx, `SELECT `+articleColumns+`
		FROM articles a
		JOIN article_categories link ON link.article_id = a.id
		JOIN categories cat ON cat.id = link.category_id
		WHERE cat.name = ? AND a.visible = 1
		ORDER BY a.id DESC`, name)
}

// GetVisibleArticle returns a visible article by id. Missing and hidden
// articles both yield ErrNotFound.
func (s *Store) GetVisibleArticle(ctx context.Context, id int64) (Article, error) {
	return s.queryArticle(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id = ? AND a.visible = 1`, id)
}

// GetArticle returns an article by id regardless of visibility (for admin).
func (s *Store) GetArticle(ctx context.Context, id int64) (Article, error) {
	return s.queryArticle(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id = ?`, id)
}

// CreateArticle inserts the article and one category link per known category
// name in a single transaction. Unknown category names are ignored.
func (s *Store) CreateArticle(ctx context.Context, na NewArticle) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO articles (title, body, created_at, visible, author) VALUES (?, ?, ?, ?, ?)`,
			na.Title, na.Body, s.now().Format(timestampLayout), boolToInt(na.Visible), na.Author)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		ids, err := resolveCategories(ctx, tx, na.Categories)
		if err != nil {
			return err
		}
		for _, catID := range ids {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO article_categories (article_id, category_id) VALUES (?, ?)`, id, catID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateArticle overwrites title, body and visibility. Category links are
// left alone.
func (s *Store) UpdateArticle(ctx context.Context, id int64, title, body string, visible bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET title = ?, body = ?, visible = ? WHERE id = ?`,
		title, body, boolToInt(visible), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// AppendArticleBody concatenates markup onto the stored body.
func (s *Store) AppendArticleBody(ctx context.Context, id int64, markup string) error {
	if markup == "" {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET body = body || ? WHERE id = ?`, markup, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteArticle removes the article together with its category links and
// likes. Deleting a missing id is not an error.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM likes WHERE article_id = ?`,
			`DELETE FROM article_categories WHERE article_id = ?`,
			`DELETE FROM articles WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseCategories splits a comma-joined category string into names.
func ParseCategories(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
