// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
)

const (
	TestUsername  = "operator"
	TestPassword  = "hunter2"
	TestJWTSecret = "test-secret"
)

// NewTestDB opens a sqlite database in a temporary directory with migrations applied.
// A file is used instead of :memory: so every pooled connection sees the same tables.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "songlist.db") + "?_busy_timeout=5000"
	db, err := shared.NewDatabase(shared.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db, shared.DialectSQLite); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// TestConfig returns a configuration with known credentials for tests.
func TestConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Auth.Username = TestUsername
	config.Auth.Password = TestPassword
	config.Auth.JWTSecret = TestJWTSecret
	return config
}

// SampleSongs returns a small catalogue with distinct ids.
func SampleSongs() []models.Song {
	return []models.Song{
		{ID: shared.GenerateID(), Name: "Bohemian Rhapsody", Singers: []string{"Queen"}, Tags: []string{"rock", "classic"}, Links: []string{"https://example.com/bohemian"}},
		{ID: shared.GenerateID(), Name: "Hotel California", Singers: []string{"Eagles"}, Tags: []string{"rock"}, Links: []string{}},
		{ID: shared.GenerateID(), Name: "Under Pressure", Singers: []string{"Queen", "David Bowie"}, Tags: []string{}, Links: []string{}},
	}
}

// SongInput returns a valid create payload.
func SongInput(name string, singers ...string) models.SongInput {
	if len(singers) == 0 {
		singers = []string{"Unknown Artist"}
	}
	return models.SongInput{Name: name, Singers: singers, Tags: []string{}, Links: []string{}}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
