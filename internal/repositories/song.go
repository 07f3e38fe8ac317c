package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/goccy/go-json"
)

// songQueries holds the statements for one collection table.
type songQueries struct {
	list   string
	get    string
	exists string
	insert string
	upsert string
	update string
	delete string
	count  string
	clear  string
}

// newSongQueries builds the statements for a table name taken from [models.Collection.Table].
func newSongQueries(table string, dialect shared.Dialect) songQueries {
	q := songQueries{
		list:   "SELECT id, data FROM {table}",
		get:    "SELECT id, data FROM {table} WHERE id = ?",
		exists: "SELECT EXISTS(SELECT 1 FROM {table} WHERE id = ?)",
		insert: "INSERT INTO {table} (id, data) VALUES (?, ?)",
		upsert: "INSERT INTO {table} (id, data) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET data = excluded.data",
		update: "UPDATE {table} SET data = ? WHERE id = ?",
		delete: "DELETE FROM {table} WHERE id = ?",
		count:  "SELECT COUNT(*) FROM {table}",
		clear:  "DELETE FROM {table}",
	}

	for _, stmt := range []*string{&q.list, &q.get, &q.exists, &q.insert, &q.upsert, &q.update, &q.delete, &q.count, &q.clear} {
		*stmt = dialect.Rebind(strings.ReplaceAll(*stmt, "{table}", table))
	}

	return q
}

// songDocument is the JSON stored in the data column.
type songDocument struct {
	Name    string   `json:"name"`
	Singers []string `json:"singers"`
	Tags    []string `json:"tags"`
	Links   []string `json:"links"`
}

// SongRepository performs key-based CRUD on a single collection.
type SongRepository struct {
	q          Querier
	collection models.Collection
	queries    songQueries
}

// NewSongRepository creates a repository for collection c that runs its statements on q.
func NewSongRepository(q Querier, dialect shared.Dialect, c models.Collection) *SongRepository {
	return &SongRepository{q: q, collection: c, queries: newSongQueries(c.Table(), dialect)}
}

// Collection returns the collection the repository reads and writes.
func (r *SongRepository) Collection() models.Collection {
	return r.collection
}

// List returns every record in the collection. Order is unspecified.
func (r *SongRepository) List(ctx context.Context) ([]models.Song, error) {
	rows, err := r.q.QueryContext(ctx, r.queries.list)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.collection.Table(), err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Get retrieves a record by id. Returns [shared.ErrSongNotFound] when the id is absent.
func (r *SongRepository) Get(ctx context.Context, id string) (models.Song, error) {
	song, err := scanSong(r.q.QueryRowContext(ctx, r.queries.get, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return song, err
}

// Exists reports whether id is present in the collection.
func (r *SongRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.q.QueryRowContext(ctx, r.queries.exists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", r.collection.Table(), err)
	}
	return exists, nil
}

// Insert stores a new record. Fails when the id already exists.
func (r *SongRepository) Insert(ctx context.Context, song models.Song) error {
	data, err := encodeSong(song)
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, r.queries.insert, song.ID, data); err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// Upsert stores a record, replacing the data of an existing id.
func (r *SongRepository) Upsert(ctx context.Context, song models.Song) error {
	data, err := encodeSong(song)
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, r.queries.upsert, song.ID, data); err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}
	return nil
}

// Update replaces the data of an existing record.
// Returns [shared.ErrSongNotFound] when no row matched.
func (r *SongRepository) Update(ctx context.Context, song models.Song) error {
	data, err := encodeSong(song)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, r.queries.update, data, song.ID)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return expectAffected(result, song.ID)
}

// Delete removes a record by id.
// Returns [shared.ErrSongNotFound] when no row matched.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, r.queries.delete, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return expectAffected(result, id)
}

// Count returns the number of records in the collection.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, r.queries.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.collection.Table(), err)
	}
	return count, nil
}

// Clear removes every record in the collection and returns how many were deleted.
func (r *SongRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, r.queries.clear)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", r.collection.Table(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSong scans an (id, data) row into a [models.Song].
func scanSong(row scanner) (models.Song, error) {
	var (
		id   string
		data []byte
	)

	if err := row.Scan(&id, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Song{}, err
		}
		return models.Song{}, fmt.Errorf("failed to scan song: %w", err)
	}

	var doc songDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Song{}, fmt.Errorf("failed to decode song %s: %w", id, err)
	}

	song := models.Song{ID: id, Name: doc.Name, Singers: doc.Singers, Tags: doc.Tags, Links: doc.Links}
	song.Normalize()
	return song, nil
}

// encodeSong returns the data column value for a record.
func encodeSong(song models.Song) (string, error) {
	song.Normalize()
	data, err := json.Marshal(songDocument{Name: song.Name, Singers: song.Singers, Tags: song.Tags, Links: song.Links})
	if err != nil {
		return "", fmt.Errorf("failed to encode song: %w", err)
	}
	return string(data), nil
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return nil
}
