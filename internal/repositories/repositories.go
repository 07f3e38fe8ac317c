// package repositories provides the record store for songs and todo songs.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database pool and the dialect its queries are written in.
type Store struct {
	db      *sql.DB
	dialect shared.Dialect
}

// NewStore creates a Store over an open pool.
func NewStore(db *sql.DB, dialect shared.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the pool.
func (s *Store) Dialect() shared.Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	return nil
}

// WithConn acquires one connection from the pool, runs fn with it and releases it
// on every return path, including panics.
func (s *Store) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// Songs returns the repository for a collection bound to q.
func (s *Store) Songs(q Querier, c models.Collection) *SongRepository {
	return NewSongRepository(q, s.dialect, c)
}
