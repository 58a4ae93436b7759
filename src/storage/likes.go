package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const likeColumns = `key, user_id, type, title, venue, payload, created_at`

// GetLike returns the like for (userID, key), or nil when absent
func GetLike(ctx context.Context, db Querier, userID, key string) (*Like, error) {
	query := `SELECT ` + likeColumns + ` FROM likes WHERE user_id = ? AND key = ?`
	var l Like
	err := sqlscan.Get(ctx, db, &l, query, userID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &l, nil
}

// AddLike records a like; liking the same key twice keeps the first record
func AddLike(ctx context.Context, db Execer, like *Like) error {
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO likes (` + likeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO NOTHING`
	_, err := db.ExecContext(ctx, query,
		like.Key,
		like.UserID,
		like.Type,
		like.Title,
		like.Venue,
		like.Payload,
		like.CreatedAt,
	)
	return err
}

// RemoveLike deletes a like and reports whether one existed
func RemoveLike(ctx context.Context, db Execer, userID, key string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND key = ?`, userID, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListLikes returns a user's likes, oldest first
func ListLikes(ctx context.Context, db Querier, userID string) ([]Like, error) {
	query := `SELECT ` + likeColumns + ` FROM likes WHERE user_id = ? ORDER BY created_at, key`
	var likes []Like
	if err := sqlscan.Select(ctx, db, &likes, query, userID); err != nil {
		return nil, err
	}
	return likes, nil
}

// ListLikedKeys returns the keys a user has liked
func ListLikedKeys(ctx context.Context, db Querier, userID string) ([]string, error) {
	var keys []string
	if err := sqlscan.Select(ctx, db, &keys, `SELECT key FROM likes WHERE user_id = ? ORDER BY key`, userID); err != nil {
		return nil, err
	}
	return keys, nil
}
