package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

var _ repository.StatsRepository = (*DB)(nil)

// AgeCounts groups active posts by target age. GROUP BY does the frequency
// fold the app needs; ages with no posts simply have no row, and consumers
// default them to 0.
func (db *DB) AgeCounts(ctx context.Context) ([]model.AgeCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT target_age, COUNT(*)
		 FROM age_posts
		 WHERE is_active = 1
		 GROUP BY target_age
		 ORDER BY target_age ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting posts per age: %w", err)
	}
	defer rows.Close()

	counts := make([]model.AgeCount, 0, 85) // 7..91 inclusive
	for rows.Next() {
		var c model.AgeCount
		if err := rows.Scan(&c.TargetAge, &c.PostCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning age count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating age counts: %w", err)
	}

	return counts, nil
}

func (db *DB) CountActivePosts(ctx context.Context) (int, error) {
	return db.countOne(ctx, `SELECT COUNT(*) FROM age_posts WHERE is_active = 1`, "counting active posts")
}

func (db *DB) CountActiveUsers(ctx context.Context) (int, error) {
	return db.countOne(ctx, `SELECT COUNT(*) FROM users WHERE is_active = 1`, "counting active users")
}

// SumLikeCounts sums the denormalized counters over active posts, so the
// total matches what listing pages show post by post.
func (db *DB) SumLikeCounts(ctx context.Context) (int, error) {
	return db.countOne(ctx,
		`SELECT COALESCE(SUM(like_count), 0) FROM age_posts WHERE is_active = 1`,
		"summing like counts")
}

func (db *DB) CountActiveAges(ctx context.Context) (int, error) {
	return db.countOne(ctx,
		`SELECT COUNT(DISTINCT target_age) FROM age_posts WHERE is_active = 1`,
		"counting active ages")
}

// DistinctAuthorAges returns every author age seen on an active post, for
// the 7-year bucket breakdown computed in the service layer.
func (db *DB) DistinctAuthorAges(ctx context.Context) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT author_age FROM age_posts WHERE is_active = 1 ORDER BY author_age ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing distinct author ages: %w", err)
	}
	defer rows.Close()

	ages := make([]int, 0, 85)
	for rows.Next() {
		var age int
		if err := rows.Scan(&age); err != nil {
			return nil, fmt.Errorf("sqlite: scanning author age: %w", err)
		}
		ages = append(ages, age)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating author ages: %w", err)
	}

	return ages, nil
}

func (db *DB) countOne(ctx context.Context, query, what string) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: %s: %w", what, err)
	}
	return n, nil
}
