package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS complaints (
			token TEXT PRIMARY KEY,
			status TEXT,
			description TEXT,
			location TEXT,
			complaint_type TEXT,
			complaint_category TEXT,
			expected_resolved_date TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracking_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL REFERENCES complaints(token),
			action_date TEXT,
			from_user TEXT,
			to_user TEXT,
			status TEXT,
			remark TEXT,
			UNIQUE(token, action_date)
		)`,
	},
	upsert: `INSERT INTO complaints
		(token, status, description, location, complaint_type, complaint_category, expected_resolved_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(token) DO UPDATE SET
			status = excluded.status,
			description = excluded.description,
			location = excluded.location,
			complaint_type = excluded.complaint_type,
			complaint_category = excluded.complaint_category,
			expected_resolved_date = excluded.expected_resolved_date,
			updated_at = CURRENT_TIMESTAMP`,
	insertHistory: `INSERT OR IGNORE INTO tracking_history
		(token, action_date, from_user, to_user, status, remark)
		VALUES (?, ?, ?, ?, ?, ?)`,
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}
	// The sqlite driver serializes access per connection; a single
	// connection avoids SQLITE_BUSY under the sequential pipeline.
	db.SetMaxOpenConns(1)
	return db, nil
}
