package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y stops implementing X, the compiler errors here instead of at some
// distant call site. Standard Go practice for interface implementations.
var _ repository.PostRepository = (*DB)(nil)

const postColumns = `id, target_age, content, author_age, user_id, username,
	like_count, view_count, is_active, is_featured, created_at, updated_at`

// scanPost reads one age_posts row. The row argument is satisfied by both
// *sql.Row and *sql.Rows, so single-row and listing queries share it.
func scanPost(row interface{ Scan(...any) error }, p *model.Post) error {
	var userID, username sql.NullString
	err := row.Scan(
		&p.ID, &p.TargetAge, &p.Content, &p.AuthorAge, &userID, &username,
		&p.LikeCount, &p.ViewCount, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.UserID = userID.String
	p.Username = username.String
	return nil
}

// Create inserts a new post. The record is written in a single INSERT —
// either the whole post lands or nothing does.
//
// ID GENERATION WITH xid:
// xid produces 20-char URL-safe IDs that sort by creation time, which keeps
// "ORDER BY created_at DESC, id" stable without a second tiebreaker column.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.LikeCount = 0
	post.ViewCount = 0
	post.IsActive = true
	post.IsFeatured = false

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO age_posts (id, target_age, content, author_age, user_id, username,
		 like_count, view_count, is_active, is_featured, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, 0, 1, 0, ?, ?)`,
		post.ID,
		post.TargetAge,
		post.Content,
		post.AuthorAge,
		nullable(post.UserID),
		nullable(post.Username),
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post by ID, active or not — callers that only
// want surfaced posts check IsActive themselves.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM age_posts WHERE id = ?`, id)

	if err := scanPost(row, &post); err != nil {
		// sql.ErrNoRows is a sentinel, not a real failure — translate it to
		// the domain's NotFound so the handler can answer 404.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &post, nil
}

// ListByTargetAge returns one page of active posts for a target age plus the
// exact total, ordered by like_count DESC then created_at DESC. Popular
// content first, recency as the tiebreaker — a simple "hot" ranking with no
// decay.
func (db *DB) ListByTargetAge(ctx context.Context, targetAge int, opts repository.ListOptions) ([]model.Post, int, error) {
	limit, offset := clampListOptions(opts)

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM age_posts WHERE target_age = ? AND is_active = 1`,
		targetAge,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts for age %d: %w", targetAge, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM age_posts
		 WHERE target_age = ? AND is_active = 1
		 ORDER BY like_count DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		targetAge, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing posts for age %d: %w", targetAge, err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByUser returns a user's active posts, newest first, plus the total.
func (db *DB) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Post, int, error) {
	limit, offset := clampListOptions(opts)

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM age_posts WHERE user_id = ? AND is_active = 1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts for user %s: %w", userID, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM age_posts
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing posts for user %s: %w", userID, err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// SumLikesByUser totals like_count over a user's active posts.
// COALESCE turns the NULL that SUM returns on an empty set into 0.
func (db *DB) SumLikesByUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(like_count), 0) FROM age_posts
		 WHERE user_id = ? AND is_active = 1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing likes for user %s: %w", userID, err)
	}
	return total, nil
}

// Deactivate soft-deletes a post. The row stays for the like ledger's
// foreign keys; it just stops appearing in listings and stats.
func (db *DB) Deactivate(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE age_posts SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deactivating post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// collectPosts drains a listing result set.
// Always called with `defer rows.Close()` already in place at the caller.
func collectPosts(rows *sql.Rows, capacity int) ([]model.Post, error) {
	posts := make([]model.Post, 0, capacity)
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	// rows.Err() catches failures during iteration (connection dropping
	// mid-scan), which rows.Next() reports only as "no more rows".
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// clampListOptions applies the defaults and bounds shared by all listings.
func clampListOptions(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
