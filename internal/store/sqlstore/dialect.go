package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ledger/internal/core"
)

// timeLayout is fixed width so sqlite TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type dialect struct {
	name   string
	driver string
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite"}
	postgresDialect = dialect{name: "postgres", driver: "pgx"}
)

// rebind rewrites ? placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if d != postgresDialect {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d == postgresDialect {
		return t
	}
	return t.Format(timeLayout)
}

func (d dialect) dateArg(date core.Date) any {
	if d == postgresDialect {
		return date.Time
	}
	return date.String()
}

func (d dialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// dateValue scans DATE columns (postgres) and YYYY-MM-DD text (sqlite).
type dateValue struct{ core.Date }

func (v *dateValue) Scan(src any) error {
	switch s := src.(type) {
	case time.Time:
		v.Date = core.DateOf(s)
		return nil
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	case nil:
		v.Date = core.Date{}
		return nil
	}
	return fmt.Errorf("unsupported date column type %T", src)
}

func (v *dateValue) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	v.Date = d
	return nil
}

// timeValue scans TIMESTAMPTZ columns (postgres) and RFC 3339 text (sqlite).
type timeValue struct{ time.Time }

func (v *timeValue) Scan(src any) error {
	switch s := src.(type) {
	case time.Time:
		v.Time = s.UTC()
		return nil
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	case nil:
		v.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported timestamp column type %T", src)
}

func (v *timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	v.Time = t.UTC()
	return nil
}

var (
	_ sql.Scanner = (*dateValue)(nil)
	_ sql.Scanner = (*timeValue)(nil)
)

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ? ESCAPE '\'.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
