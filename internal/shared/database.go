package shared

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Dialect identifies the SQL flavour spoken by a database driver.
type Dialect string

const (
	DialectSQLite   Dialect = DriverSQLite
	DialectPostgres Dialect = DriverPostgres
)

// DialectFor returns the [Dialect] for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Rebind rewrites `?` placeholders into the dialect's positional form.
//
// SQLite queries are returned unchanged; postgres queries get $1, $2, ...
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
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

// NewDatabase opens a connection pool for the given driver and data source.
//
// For sqlite3 the dsn is a file path (or ":memory:"); for postgres it is a connection URL.
// Returns an open database connection or an error if connection fails.
func NewDatabase(driver, dsn string) (*sql.DB, error) {
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Non-positive values leave the database/sql defaults in place.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}
