// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// `_ "modernc.org/sqlite"` is a side-effect only import. The package's
	// init() registers itself with database/sql as a driver named "sqlite";
	// after this import, sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface (posts, likes, users, stats) against one SQLite file.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), configures it,
// and runs migrations.
//
// sql.Open does not actually connect — it creates a pool manager. Ping
// forces an immediate connection so a bad path or permissions problem
// surfaces here, not on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, always. SQLite allows a single writer anyway, and a
	// pool would give each connection its own ":memory:" database and its
	// own copy of the session PRAGMAs below. Transactions from concurrent
	// requests queue on this connection instead of fighting for the write
	// lock.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — important for a
	// web server where listing requests race against like transactions.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// SQLite allows one writer at a time. Concurrent like transactions on
	// the same post queue behind the write lock; busy_timeout makes them
	// wait for it instead of failing immediately with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We want referential integrity between likes → posts and posts → users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is still usable; the health endpoint calls it.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; for anything fancier you'd reach for golang-migrate.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME,
			is_active     INTEGER NOT NULL DEFAULT 1
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// target_age and author_age are range-checked in the service layer; the
	// CHECK constraints are a second line of defence against writes that
	// bypass it (imports, manual fixes).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS age_posts (
			id          TEXT PRIMARY KEY,
			target_age  INTEGER NOT NULL CHECK (target_age BETWEEN 7 AND 91),
			content     TEXT NOT NULL,
			author_age  INTEGER NOT NULL CHECK (author_age BETWEEN 7 AND 91),
			user_id     TEXT REFERENCES users(id),
			username    TEXT,
			like_count  INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0),
			view_count  INTEGER NOT NULL DEFAULT 0,
			is_active   INTEGER NOT NULL DEFAULT 1,
			is_featured INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_age_posts_target_age ON age_posts(target_age, is_active);
		CREATE INDEX IF NOT EXISTS idx_age_posts_user_id ON age_posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating age_posts table: %w", err)
	}

	// The partial unique index enforces "one live like per (post, user)" for
	// authenticated likes at the storage level. A racing duplicate insert
	// then fails with a constraint violation instead of double-counting —
	// the like flow translates that to ErrAlreadyLiked.
	//
	// Anonymous likes (user_id NULL) are outside the index on purpose: their
	// dedup is the best-effort 24h IP window, checked in the transaction.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS post_likes (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES age_posts(id),
			user_id    TEXT,
			ip_address TEXT,
			user_agent TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_post_likes_user
			ON post_likes(post_id, user_id) WHERE user_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_post_likes_ip
			ON post_likes(post_id, ip_address, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating post_likes table: %w", err)
	}

	return nil
}

// nullable converts "" to a SQL NULL. Anonymous posts and likes store NULL
// for user_id / ip_address, not empty strings, so the partial unique index
// and the FK behave correctly.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
