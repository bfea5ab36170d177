package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

var _ repository.LikeRepository = (*DB)(nil)

// anonDedupWindow is how far back the anonymous (IP-based) duplicate check
// looks. Best-effort only: rotating IPs walks straight past it.
const anonDedupWindow = 24 * time.Hour

// Add records a like event and bumps the post's counter.
//
// THE WHOLE FLOW IS ONE TRANSACTION:
// existence check → duplicate check → like INSERT → counter UPDATE.
// The counter moves via `like_count = like_count + 1` evaluated inside the
// database, never via a value read into Go and written back. Two concurrent
// likes therefore serialize on the write lock and produce +2, not the
// classic read-modify-write lost update.
//
// The partial unique index on (post_id, user_id) is the backstop for
// authenticated likes: if two transactions for the same user race past the
// duplicate SELECT, the second INSERT fails the constraint and the caller
// gets ErrAlreadyLiked instead of a double count.
//
// Returns the like_count the UPDATE actually wrote (via RETURNING), which is
// the only value callers may display.
func (db *DB) Add(ctx context.Context, like *model.Like) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning like transaction: %w", err)
	}
	// Rollback is a no-op after Commit; the defer covers every error path.
	defer tx.Rollback()

	// The post must exist and still be surfaced.
	var postID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM age_posts WHERE id = ? AND is_active = 1`, like.PostID,
	).Scan(&postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("post", like.PostID)
		}
		return 0, fmt.Errorf("sqlite: checking post %s: %w", like.PostID, err)
	}

	// Duplicate check. Authenticated: one live like per (post, user), hard
	// rule. Anonymous: one like per (post, IP) within the rolling window,
	// soft rule.
	duplicate, err := hasLikedTx(ctx, tx, like.PostID, model.Identity{
		UserID:    like.UserID,
		IPAddress: like.IPAddress,
	})
	if err != nil {
		return 0, err
	}
	if duplicate {
		return 0, apperror.AlreadyLiked(like.PostID)
	}

	like.ID = xid.New().String()
	like.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO post_likes (id, post_id, user_id, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		like.ID,
		like.PostID,
		nullable(like.UserID),
		nullable(like.IPAddress),
		like.UserAgent,
		like.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.AlreadyLiked(like.PostID)
		}
		return 0, fmt.Errorf("sqlite: inserting like for post %s: %w", like.PostID, err)
	}

	var likeCount int
	err = tx.QueryRowContext(ctx,
		`UPDATE age_posts
		 SET like_count = like_count + 1, updated_at = ?
		 WHERE id = ?
		 RETURNING like_count`,
		time.Now().UTC(), like.PostID,
	).Scan(&likeCount)
	if err != nil {
		return 0, fmt.Errorf("sqlite: incrementing like count for post %s: %w", like.PostID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing like for post %s: %w", like.PostID, err)
	}

	return likeCount, nil
}

// HasLiked reports whether the identity already has a live like on the post,
// using the same matching rules Add enforces.
func (db *DB) HasLiked(ctx context.Context, postID string, identity model.Identity) (bool, error) {
	return hasLikedTx(ctx, db.conn, postID, identity)
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the duplicate check runs both inside and outside the like transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasLikedTx(ctx context.Context, q querier, postID string, identity model.Identity) (bool, error) {
	var (
		found int
		err   error
	)

	switch {
	case identity.UserID != "":
		err = q.QueryRowContext(ctx,
			`SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?`,
			postID, identity.UserID,
		).Scan(&found)
	case identity.IPAddress != "":
		since := time.Now().UTC().Add(-anonDedupWindow)
		err = q.QueryRowContext(ctx,
			`SELECT 1 FROM post_likes
			 WHERE post_id = ? AND ip_address = ? AND created_at >= ?`,
			postID, identity.IPAddress, since,
		).Scan(&found)
	default:
		// No identity at all — nothing to match against.
		return false, nil
	}

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: checking like for post %s: %w", postID, err)
	}
	return true, nil
}

// isUniqueViolation detects a UNIQUE index failure from the driver.
// modernc.org/sqlite exposes constraint failures only through the error
// text, so string matching is the available check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
