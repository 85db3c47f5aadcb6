// Package sqlite provides a SQLite-backed character document store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/charsheet/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/charsheet/internal/services/charstore/storage"
	"github.com/louisbranch/charsheet/internal/services/charstore/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const defaultListLimit = 20

// Store persists character revisions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite document store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRevision appends one revision.
func (s *Store) PutRevision(ctx context.Context, revision storage.Revision) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(revision.ID)
	if id == "" {
		return fmt.Errorf("revision id is required")
	}
	if len(revision.Payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	createdAt := revision.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO character_revisions (revision_id, payload, created_at) VALUES (?, ?, ?)`,
		id,
		string(revision.Payload),
		toMillis(createdAt),
	)
	if err != nil {
		if isRevisionUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put revision: %w", err)
	}
	return nil
}

// LatestRevision returns the most recently stored revision.
func (s *Store) LatestRevision(ctx context.Context) (storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return storage.Revision{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Revision{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT revision_id, payload, created_at
		 FROM character_revisions
		 ORDER BY seq DESC
		 LIMIT 1`,
	)
	revision, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Revision{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Revision{}, fmt.Errorf("latest revision: %w", err)
	}
	return revision, nil
}

// ListRevisions returns up to limit revisions, newest first.
func (s *Store) ListRevisions(ctx context.Context, limit int) ([]storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT revision_id, payload, created_at
		 FROM character_revisions
		 ORDER BY seq DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []storage.Revision
	for rows.Next() {
		revision, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, revision)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (storage.Revision, error) {
	var (
		id        string
		payload   string
		createdAt int64
	)
	if err := row.Scan(&id, &payload, &createdAt); err != nil {
		return storage.Revision{}, err
	}
	return storage.Revision{
		ID:        id,
		Payload:   []byte(payload),
		CreatedAt: fromMillis(createdAt),
	}, nil
}

func isRevisionUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "character_revisions.revision_id")
}

var _ storage.DocumentStore = (*Store)(nil)
