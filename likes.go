package pubcms

import (
	"context"
	"database/sql"
	"errors"
)

// ToggleLike removes the (article, user) like if present, otherwise adds it.
// The composite primary key on likes keeps at most one row per pair even if
// the same user toggles concurrently.
func (s *Store) ToggleLike(ctx context.Context, articleID int64, username string) (LikeAction, error) {
	var action LikeAction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE article_id = ? AND username = ?`, articleID, username)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			action = LikeActionUnliked
			return nil
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO likes (article_id, username) VALUES (?, ?)`, articleID, username); err != nil {
			return err
		}
		action = LikeActionLiked
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// CountLikes returns how many users like the article.
func (s *Store) CountLikes(ctx context.Context, articleID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE article_id = ?`, articleID).Scan(&n)
	return n, err
}

// HasLiked reports whether username likes the article.
func (s *Store) HasLiked(ctx context.Context, articleID int64, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM likes WHERE article_id = ? AND username = ?`, articleID, username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
