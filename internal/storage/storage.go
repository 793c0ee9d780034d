// Package storage persists scraped complaint records and their tracking
// history in a relational backend.
//
// Two backends are supported, selected once at startup:
//  1. SQLite (default) — zero-setup local file, good for one-shot runs
//  2. MySQL — shared database for scheduled runs feeding other tools
//
// Both use the same schema shape: a complaints table keyed by token and
// a tracking_history table with a UNIQUE(token, action_date) constraint
// so re-scraping a token never duplicates history entries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"pmctrack/internal/config"
	"pmctrack/internal/errors"
	"pmctrack/internal/scrape"
)

// dialect carries the backend-specific SQL. The statements share the
// same placeholder order so Store never branches on the backend.
type dialect struct {
	name          string
	schema        []string
	upsert        string
	insertHistory string
}

// Store is a SQL-backed implementation of the pipeline's repository.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the backend named in the configuration and verifies
// the connection before returning.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err = openSQLite(cfg.SQLitePath)
		d = sqliteDialect
	case config.BackendMySQL:
		db, err = openMySQL(cfg.MySQLDSN)
		d = mysqlDialect
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", d.name, err)
	}

	log.Printf("💾 Storage backend: %s", d.name)
	return &Store{db: db, dialect: d}, nil
}

// InitSchema creates the tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize %s schema: %w", s.dialect.name, err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertComplaint inserts the record or refreshes every non-key column
// of the existing row for the same token.
func (s *Store) UpsertComplaint(ctx context.Context, rec *scrape.ComplaintRecord) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert,
		rec.Token,
		rec.Status,
		rec.Description,
		rec.Location,
		rec.ComplaintType,
		rec.ComplaintCategory,
		rec.ExpectedResolvedDate,
	)
	if err != nil {
		return errors.NewPersistError(rec.Token, err)
	}
	return nil
}

// AppendTrackingHistory inserts history entries for a token, silently
// skipping entries already present for the same (token, action_date).
// The complaint row must exist first; the foreign key enforces that.
func (s *Store) AppendTrackingHistory(ctx context.Context, tok string, entries []scrape.TrackingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewPersistError(tok, err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, s.dialect.insertHistory,
			e.Token,
			e.ActionDate,
			e.FromUser,
			e.ToUser,
			e.Status,
			e.Remark,
		)
		if err != nil {
			return errors.NewPersistError(tok, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistError(tok, err)
	}
	return nil
}

// CountComplaints returns the number of stored complaint rows.
func (s *Store) CountComplaints(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM complaints").Scan(&n)
	return n, err
}

// HistoryFor returns the stored tracking entries for a token in
// insertion order.
func (s *Store) HistoryFor(ctx context.Context, tok string) ([]scrape.TrackingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT token, action_date, from_user, to_user, status, remark FROM tracking_history WHERE token = ? ORDER BY id",
		tok,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []scrape.TrackingEntry
	for rows.Next() {
		var e scrape.TrackingEntry
		if err := rows.Scan(&e.Token, &e.ActionDate, &e.FromUser, &e.ToUser, &e.Status, &e.Remark); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
