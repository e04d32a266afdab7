package contributors

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const table = "contributors"

var columns = []string{"repo", "version", "locale", "file_path", "count", "authors", "updated_at"}

// queries builds the statements shared by the SQL stores; only the
// placeholder format differs between drivers.
type queries struct {
	b sq.StatementBuilderType
}

func newQueries(format sq.PlaceholderFormat) queries {
	return queries{b: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (q queries) upsert(rec Record) (string, []any, error) {
	return q.b.Insert(table).
		Columns(columns...).
		Values(rec.Repo, rec.Version, rec.Locale, rec.FilePath, rec.Count,
			strings.Join(rec.Authors, ","), rec.UpdatedAt.Unix()).
		Suffix("ON CONFLICT (repo, version, locale, file_path) DO UPDATE SET " +
			"count = excluded.count, authors = excluded.authors, updated_at = excluded.updated_at").
		ToSql()
}

func (q queries) get(key Key) (string, []any, error) {
	return q.b.Select(columns...).
		From(table).
		Where(sq.Eq{"repo": key.Repo, "version": key.Version, "locale": key.Locale, "file_path": key.FilePath}).
		ToSql()
}

func (q queries) list() (string, []any, error) {
	return q.b.Select(columns...).
		From(table).
		OrderBy("repo", "version", "locale", "file_path").
		ToSql()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec     Record
		authors string
		updated int64
	)
	if err := row.Scan(&rec.Repo, &rec.Version, &rec.Locale, &rec.FilePath, &rec.Count, &authors, &updated); err != nil {
		return Record{}, err
	}
	if authors != "" {
		rec.Authors = strings.Split(authors, ",")
	}
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return rec, nil
}
