// Package persistence provides the SQLite-backed follower roster.
// Only the roster input is stored; simulation state is never persisted.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/shainyguy/followercity/internal/roster"
)

// DB wraps a SQLite connection holding the follower roster.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS followers (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		joined_at TEXT NOT NULL,
		avatar TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS roster_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_followers_joined ON followers(joined_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type followerRow struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	JoinedAt string `db:"joined_at"`
	Avatar   string `db:"avatar"`
}

func toRow(f roster.Follower) followerRow {
	return followerRow{
		ID:       f.ID,
		Username: f.Username,
		JoinedAt: f.JoinedAt.UTC().Format(time.RFC3339Nano),
		Avatar:   f.Avatar,
	}
}

// Load implements roster.Source, returning followers in join order.
func (db *DB) Load(ctx context.Context) ([]roster.Follower, error) {
	var rows []followerRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT id, username, joined_at, avatar FROM followers ORDER BY joined_at, id")
	if err != nil {
		return nil, fmt.Errorf("load followers: %w", err)
	}

	out := make([]roster.Follower, 0, len(rows))
	for _, r := range rows {
		joined, err := time.Parse(time.RFC3339Nano, r.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("follower %q joined_at: %w", r.ID, err)
		}
		out = append(out, roster.Follower{
			ID:       r.ID,
			Username: r.Username,
			JoinedAt: joined,
			Avatar:   r.Avatar,
		})
	}
	return out, nil
}

// Upsert inserts or updates one follower.
func (db *DB) Upsert(ctx context.Context, f roster.Follower) error {
	if err := roster.Validate([]roster.Follower{f}); err != nil {
		return err
	}
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO followers (id, username, joined_at, avatar)
		VALUES (:id, :username, :joined_at, :avatar)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			joined_at = excluded.joined_at,
			avatar = excluded.avatar`, toRow(f))
	if err != nil {
		return fmt.Errorf("upsert follower %q: %w", f.ID, err)
	}
	return nil
}

// Remove deletes a follower. Removing an unknown id is not an error.
func (db *DB) Remove(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM followers WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove follower %q: %w", id, err)
	}
	return nil
}

// ReplaceAll writes the roster (full replace) in one transaction.
func (db *DB) ReplaceAll(ctx context.Context, list []roster.Follower) error {
	if err := roster.Validate(list); err != nil {
		return err
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM followers"); err != nil {
		return err
	}
	for _, f := range list {
		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO followers (id, username, joined_at, avatar) VALUES (:id, :username, :joined_at, :avatar)",
			toRow(f)); err != nil {
			return fmt.Errorf("insert follower %q: %w", f.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO roster_meta (key, value) VALUES ('replaced_at', ?)",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("roster replaced", "followers", len(list))
	return nil
}

// Count returns the number of stored followers.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM followers")
	return n, err
}

// SaveMeta stores a key-value pair in roster metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec("INSERT OR REPLACE INTO roster_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta returns a metadata value, or "" if unset.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM roster_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
