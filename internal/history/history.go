// Package history keeps the append-only audit log of collection changes
// in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Event kinds recorded in the log.
const (
	EventCreated  = "CREATED"
	EventUpdated  = "UPDATED"
	EventDeleted  = "DELETED"
	EventSettings = "SETTINGS"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event       TEXT NOT NULL,
	bookmark_id INTEGER,
	recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_recorded_at ON events(recorded_at);
`

// Event is one audit log entry. BookmarkID is nil for settings changes.
type Event struct {
	Event      string    `json:"event"`
	BookmarkID *int      `json:"id,omitempty"`
	RecordedAt time.Time `json:"datetime"`
}

// DB wraps the SQLite connection holding the audit log.
type DB struct {
	conn      *sql.DB
	retention time.Duration
}

// Open opens (or creates) the history database, applies the schema and
// prunes events older than the retention window. A zero retention keeps
// everything.
func Open(dsn string, retention time.Duration) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	db := &DB{conn: conn, retention: retention}
	if err := db.prune(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) prune() error {
	if db.retention <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-db.retention).UTC()
	if _, err := db.conn.Exec(`DELETE FROM events WHERE recorded_at < ?`, cutoff); err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	return nil
}

func (db *DB) record(event string, bookmarkID *int) error {
	_, err := db.conn.Exec(
		`INSERT INTO events (event, bookmark_id, recorded_at) VALUES (?, ?, ?)`,
		event, bookmarkID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", event, err)
	}
	return nil
}

// RecordCreated logs a bookmark creation.
func (db *DB) RecordCreated(id int) error { return db.record(EventCreated, &id) }

// RecordUpdated logs a bookmark update.
func (db *DB) RecordUpdated(id int) error { return db.record(EventUpdated, &id) }

// RecordDeleted logs a bookmark deletion.
func (db *DB) RecordDeleted(id int) error { return db.record(EventDeleted, &id) }

// RecordSettingsChanged logs a settings change.
func (db *DB) RecordSettingsChanged() error { return db.record(EventSettings, nil) }

// All returns the most recent events, newest first. limit <= 0 returns
// everything.
func (db *DB) All(limit int) ([]Event, error) {
	query := `SELECT event, bookmark_id, recorded_at FROM events ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var id sql.NullInt64
		if err := rows.Scan(&e.Event, &id, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if id.Valid {
			v := int(id.Int64)
			e.BookmarkID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
