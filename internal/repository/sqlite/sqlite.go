// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. Use ":memory:" for an in-memory database in tests.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/minisocial/internal/repository"
)

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// The pool is capped at one connection: SQLite serialises writers anyway,
// and an in-memory database exists per connection, so a second connection
// would see an empty schema.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// Posts, comments and likes reference their parents without ON DELETE
// CASCADE and without foreign keys on the parent post/comment: deleting a
// post leaves its comments and likes in place.
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				first_name    TEXT NOT NULL,
				last_name     TEXT NOT NULL,
				bio           TEXT NOT NULL DEFAULT '',
				photo         TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		// The two follow sets are stored separately, mirroring the two
		// independent writes that maintain them.
		{"user_following", `
			CREATE TABLE IF NOT EXISTS user_following (
				user_id    TEXT NOT NULL REFERENCES users(id),
				target_id  TEXT NOT NULL REFERENCES users(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, target_id),
				CHECK (user_id <> target_id)
			);`},
		{"user_followers", `
			CREATE TABLE IF NOT EXISTS user_followers (
				user_id     TEXT NOT NULL REFERENCES users(id),
				follower_id TEXT NOT NULL REFERENCES users(id),
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, follower_id),
				CHECK (user_id <> follower_id)
			);`},
		{"posts", `
			CREATE TABLE IF NOT EXISTS posts (
				id             TEXT PRIMARY KEY,
				author_id      TEXT NOT NULL REFERENCES users(id),
				content        TEXT NOT NULL,
				image          TEXT NOT NULL DEFAULT '',
				likes_count    INTEGER NOT NULL DEFAULT 0,
				comments_count INTEGER NOT NULL DEFAULT 0,
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts(author_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);`},
		{"comments", `
			CREATE TABLE IF NOT EXISTS comments (
				id          TEXT PRIMARY KEY,
				post_id     TEXT NOT NULL,
				author_id   TEXT NOT NULL REFERENCES users(id),
				content     TEXT NOT NULL,
				likes_count INTEGER NOT NULL DEFAULT 0,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at DESC);`},
		// NULLs are distinct in SQLite UNIQUE constraints, so each pair
		// constraint only applies to likes of its own kind.
		{"likes", `
			CREATE TABLE IF NOT EXISTS likes (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id),
				post_id    TEXT,
				comment_id TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CHECK ((post_id IS NULL) <> (comment_id IS NULL)),
				UNIQUE (user_id, post_id),
				UNIQUE (user_id, comment_id)
			);`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure, judged by the SQLite extended result code.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only: extended codes were not reported
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
