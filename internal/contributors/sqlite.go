package contributors

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	q  queries
}

// NewSQLiteStore opens (and migrates) a SQLite database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, q: newQueries(sq.Question)}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to initialize sqlite schema").Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contributors (
		repo TEXT NOT NULL,
		version TEXT NOT NULL,
		locale TEXT NOT NULL,
		file_path TEXT NOT NULL,
		count INTEGER NOT NULL,
		authors TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (repo, version, locale, file_path)
	);
	CREATE INDEX IF NOT EXISTS idx_contributors_updated ON contributors(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces the record for rec.Key.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	query, args, err := s.q.upsert(rec)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to store contributor record").Build()
	}
	return nil
}

// Get returns the record for key.
func (s *SQLiteStore) Get(ctx context.Context, key Key) (Record, error) {
	query, args, err := s.q.get(key)
	if err != nil {
		return Record{}, fmt.Errorf("build select: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(key)
	}
	if err != nil {
		return Record{}, errors.WrapError(err, errors.CategoryStorage, "failed to read contributor record").Build()
	}
	return rec, nil
}

// List returns every record ordered by key.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	query, args, err := s.q.list()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to list contributor records").Build()
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func notFound(key Key) error {
	return errors.WrapError(ErrNoRecord, errors.CategoryNotFound, "no contributor record").
		WithContext("repository", key.Repo).
		WithContext("version", key.Version).
		WithContext("locale", key.Locale).
		WithContext("file", key.FilePath).
		Build()
}
