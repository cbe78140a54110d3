// Package ledger tracks uploads that no content entry references yet.
//
// An upload is recorded as pending when the file lands in the file store
// and marked registered once an entry points at it. Rows still pending
// after a grace period are orphans.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"portfolio/pkg/ledger/migrations"
	"portfolio/pkg/models"
)

// Entry is one tracked upload.
type Entry struct {
	Path         string
	Category     models.Category
	Name         string
	Size         int64
	UploadedAt   time.Time
	RegisteredAt *time.Time
}

// Ledger is a SQLite-backed record of uploads.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path and migrates it.
// path can be a file path or ":memory:".
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordUpload stores f as pending. Recording the same path again resets it.
func (l *Ledger) RecordUpload(ctx context.Context, f models.StoredFile, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO uploads (path, category, name, size, uploaded_at, registered_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		f.Path, string(f.Category), f.Name, f.Size, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording upload %s: %w", f.Path, err)
	}
	return nil
}

// MarkRegistered flags a pending upload as referenced. It reports whether a
// pending row was found; paths the ledger never saw are ignored.
func (l *Ledger) MarkRegistered(ctx context.Context, path string, at time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`UPDATE uploads SET registered_at = ? WHERE path = ? AND registered_at IS NULL`,
		at.UnixMilli(), path)
	if err != nil {
		return false, fmt.Errorf("registering %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Forget drops the row for path, if any.
func (l *Ledger) Forget(ctx context.Context, path string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM uploads WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forgetting %s: %w", path, err)
	}
	return nil
}

// Get returns the row for path or models.ErrNotFound.
func (l *Ledger) Get(ctx context.Context, path string) (Entry, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT path, category, name, size, uploaded_at, registered_at FROM uploads WHERE path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, models.ErrNotFound
	}
	return e, err
}

// Pending returns unregistered uploads made before the given time, oldest first.
func (l *Ledger) Pending(ctx context.Context, before time.Time) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT path, category, name, size, uploaded_at, registered_at FROM uploads
		 WHERE registered_at IS NULL AND uploaded_at < ?
		 ORDER BY uploaded_at, path`, before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("listing pending uploads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e          Entry
		category   string
		uploadedAt int64
		registered sql.NullInt64
	)
	if err := s.Scan(&e.Path, &category, &e.Name, &e.Size, &uploadedAt, &registered); err != nil {
		return Entry{}, err
	}
	e.Category = models.Category(category)
	e.UploadedAt = time.UnixMilli(uploadedAt).UTC()
	if registered.Valid {
		t := time.UnixMilli(registered.Int64).UTC()
		e.RegisteredAt = &t
	}
	return e, nil
}
