package contributors

import (
	"context"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
	q  queries
}

// NewPostgresStore connects to dsn, verifies the connection and creates the
// table when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.ConfigError("invalid postgres dsn").WithCause(err).Build()
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to create pool").Build()
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to ping db").Build()
	}
	store := &PostgresStore{db: pool, q: newQueries(sq.Dollar)}
	if err := store.initialize(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to initialize postgres schema").Build()
	}
	return store, nil
}

func (s *PostgresStore) initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
	create table if not exists contributors (
		repo text not null,
		version text not null,
		locale text not null,
		file_path text not null,
		count integer not null,
		authors text not null,
		updated_at bigint not null,
		primary key (repo, version, locale, file_path)
	)`)
	return err
}

// Put inserts or replaces the record for rec.Key.
func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	query, args, err := s.q.upsert(rec)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to store contributor record").Build()
	}
	return nil
}

// Get returns the record for key.
func (s *PostgresStore) Get(ctx context.Context, key Key) (Record, error) {
	query, args, err := s.q.get(key)
	if err != nil {
		return Record{}, fmt.Errorf("build select: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return Record{}, notFound(key)
	}
	if err != nil {
		return Record{}, errors.WrapError(err, errors.CategoryStorage, "failed to read contributor record").Build()
	}
	return rec, nil
}

// List returns every record ordered by key.
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query, args, err := s.q.list()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
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

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
