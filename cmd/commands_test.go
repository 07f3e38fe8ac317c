package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songlist/internal/api"
	"github.com/desertthunder/songlist/internal/auth"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/repositories"
	"github.com/desertthunder/songlist/internal/server"
	"github.com/desertthunder/songlist/internal/services"
	"github.com/desertthunder/songlist/internal/shared"
	tu "github.com/desertthunder/songlist/internal/testing"
	"github.com/goccy/go-json"
)

type testCLI struct {
	runner *Runner
	output *bytes.Buffer
	store  *repositories.Store
}

// newTestCLI starts the API on a temp database and returns a runner pointed at it.
func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	config := tu.TestConfig()
	gate, err := auth.NewGate(config.Auth)
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	logger := log.New(io.Discard)
	store := repositories.NewStore(tu.NewTestDB(t), shared.DialectSQLite)
	ts := httptest.NewServer(server.NewRouter(server.RouterOptions{Logger: logger}, api.NewHandler(store, gate, logger)))
	t.Cleanup(ts.Close)

	config.Client.BaseURL = ts.URL
	config.Client.TokenPath = filepath.Join(t.TempDir(), "token")
	config.Database.URL = filepath.Join(t.TempDir(), "cli.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		API:        services.NewAPIService(ts.URL, ts.Client()),
		Logger:     logger,
		Output:     output,
		Confirm:    func(string) (bool, error) { return false, nil },
	})

	return &testCLI{runner: runner, output: output, store: store}
}

func (c *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()
	c.output.Reset()

	for _, cmd := range c.runner.register() {
		if cmd.Name == args[0] {
			return cmd.Run(context.Background(), args)
		}
	}
	t.Fatalf("unknown command %s", args[0])
	return nil
}

func (c *testCLI) login(t *testing.T) {
	t.Helper()
	if err := c.run(t, "login"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func (c *testCLI) add(t *testing.T, args ...string) models.Song {
	t.Helper()
	if err := c.run(t, append([]string{"songs", "add"}, args...)...); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var song models.Song
	if err := json.Unmarshal(c.output.Bytes(), &song); err != nil {
		t.Fatalf("failed to decode song: %v\n%s", err, c.output.String())
	}
	return song
}

func (c *testCLI) count(t *testing.T, collection models.Collection) int {
	t.Helper()
	n, err := c.store.Songs(c.store.DB(), collection).Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestClientCommands(t *testing.T) {
	t.Run("login saves token", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		tu.AssertFileExists(t, cli.runner.config.Client.TokenPath)
		if !strings.Contains(cli.output.String(), "Authentication successful") {
			t.Errorf("unexpected output: %s", cli.output.String())
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		cli := newTestCLI(t)

		err := cli.run(t, "login", "--password", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected auth failure, got %v", err)
		}
	})

	t.Run("add requires login", func(t *testing.T) {
		cli := newTestCLI(t)

		err := cli.run(t, "songs", "add", "--singer", "John Lennon", "Imagine")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("add validates locally", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		err := cli.run(t, "songs", "add", "Imagine")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("add, list and update", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		song := cli.add(t, "--singer", "John Lennon", "--tag", "classic", "--tag", "classic", "Imagine")
		if song.ID == "" || len(song.Tags) != 1 {
			t.Fatalf("unexpected song: %+v", song)
		}

		if err := cli.run(t, "songs", "list", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		var songs []models.Song
		if err := json.Unmarshal(cli.output.Bytes(), &songs); err != nil {
			t.Fatalf("failed to decode list: %v", err)
		}
		if len(songs) != 1 || songs[0].ID != song.ID {
			t.Errorf("unexpected list: %+v", songs)
		}

		if err := cli.run(t, "songs", "update", "--name", "Imagine (Remastered)", "--clear-tags", song.ID); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		var updated models.Song
		if err := json.Unmarshal(cli.output.Bytes(), &updated); err != nil {
			t.Fatalf("failed to decode update: %v", err)
		}
		if updated.Name != "Imagine (Remastered)" || len(updated.Tags) != 0 || updated.Singers[0] != "John Lennon" {
			t.Errorf("unexpected update: %+v", updated)
		}

		if err := cli.run(t, "songs", "list"); err != nil {
			t.Fatalf("table list failed: %v", err)
		}
		if !strings.Contains(cli.output.String(), "Imagine (Remastered)") {
			t.Errorf("expected table to contain song, got %s", cli.output.String())
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		err := cli.run(t, "songs", "update", "--name", "x", shared.GenerateID())
		if !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("move and delete report missing ids", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		song := cli.add(t, "--singer", "Radiohead", "Creep")
		missing := shared.GenerateID()

		err := cli.run(t, "songs", "move", song.ID, missing)
		if !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
		if !strings.Contains(cli.output.String(), "1 of 2") || !strings.Contains(cli.output.String(), missing) {
			t.Errorf("unexpected move output: %s", cli.output.String())
		}
		if cli.count(t, models.Todo) != 1 || cli.count(t, models.Songs) != 0 {
			t.Error("expected the song to be in todo")
		}

		if err := cli.run(t, "songs", "move", "--to-songs", song.ID); err != nil {
			t.Fatalf("move back failed: %v", err)
		}
		if cli.count(t, models.Songs) != 1 {
			t.Error("expected the song back in songs")
		}

		if err := cli.run(t, "songs", "delete", song.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if cli.count(t, models.Songs) != 0 {
			t.Error("expected songs to be empty")
		}
	})

	t.Run("move without ids", func(t *testing.T) {
		cli := newTestCLI(t)

		if err := cli.run(t, "songs", "move"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("import collects failures", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)

		path := filepath.Join(t.TempDir(), "songs.json")
		body := `[
			{"name":"Africa","singers":["Toto"],"tags":[],"links":[]},
			{"name":"","singers":["Nobody"],"tags":[],"links":[]},
			{"name":"Take On Me","singers":["a-ha"],"tags":["80s"],"links":[]}
		]`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		err := cli.run(t, "songs", "import", "--todo", "--file", path, "--rate", "1000")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected import error for the invalid row, got %v", err)
		}
		if !strings.Contains(cli.output.String(), "2 of 3") {
			t.Errorf("unexpected import output: %s", cli.output.String())
		}
		if cli.count(t, models.Todo) != 2 {
			t.Errorf("expected 2 todo songs, got %d", cli.count(t, models.Todo))
		}
	})

	t.Run("export to file", func(t *testing.T) {
		cli := newTestCLI(t)
		cli.login(t)
		cli.add(t, "--singer", "Adele", "--todo", "Hello")

		path := filepath.Join(t.TempDir(), "todo.csv")
		if err := cli.run(t, "songs", "export", "--todo", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "ID,Name,Singers,Tags,Links") || !strings.Contains(content, "Adele") {
			t.Errorf("unexpected CSV: %s", content)
		}
	})

	t.Run("export rejects unknown format", func(t *testing.T) {
		cli := newTestCLI(t)

		if err := cli.run(t, "songs", "export", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("health", func(t *testing.T) {
		cli := newTestCLI(t)

		if err := cli.run(t, "health"); err != nil {
			t.Fatalf("health failed: %v", err)
		}
		if !strings.Contains(cli.output.String(), "Service is healthy") {
			t.Errorf("unexpected output: %s", cli.output.String())
		}
	})
}

func TestDatabaseCommands(t *testing.T) {
	t.Run("seed then truncate", func(t *testing.T) {
		cli := newTestCLI(t)

		if err := cli.run(t, "seed", "--songs", "3", "--todo", "2"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if !strings.Contains(cli.output.String(), "3 records inserted into songs") {
			t.Errorf("unexpected seed output: %s", cli.output.String())
		}

		if err := cli.run(t, "setup", "truncate", "--collection", "todo"); err != nil {
			t.Fatalf("truncate failed: %v", err)
		}
		if !strings.Contains(cli.output.String(), "2 records removed from todo_songs") {
			t.Errorf("unexpected truncate output: %s", cli.output.String())
		}
	})

	t.Run("seed asks before keeping existing data", func(t *testing.T) {
		cli := newTestCLI(t)

		asked := 0
		cli.runner.confirm = func(string) (bool, error) {
			asked++
			return true, nil
		}

		if err := cli.run(t, "seed", "--songs", "2", "--todo", "0"); err != nil {
			t.Fatalf("first seed failed: %v", err)
		}
		if asked != 0 {
			t.Errorf("expected no prompt on empty database, got %d", asked)
		}

		if err := cli.run(t, "seed", "--songs", "1", "--todo", "0"); err != nil {
			t.Fatalf("second seed failed: %v", err)
		}
		if asked != 1 {
			t.Errorf("expected one prompt, got %d", asked)
		}
		if !strings.Contains(cli.output.String(), "2 records removed from songs") {
			t.Errorf("expected existing songs to be cleared, got %s", cli.output.String())
		}

		if err := cli.run(t, "seed", "--songs", "1", "--todo", "0", "--append"); err != nil {
			t.Fatalf("append seed failed: %v", err)
		}
		if asked != 1 {
			t.Errorf("expected --append to skip the prompt, got %d prompts", asked)
		}
	})

	t.Run("seed rejects clear with append", func(t *testing.T) {
		cli := newTestCLI(t)

		err := cli.run(t, "seed", "--clear", "--append")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("setup config writes template", func(t *testing.T) {
		cli := newTestCLI(t)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := cli.run(t, "setup", "config", "--output", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := cli.run(t, "setup", "config", "--output", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("setup reset empties tables", func(t *testing.T) {
		cli := newTestCLI(t)

		if err := cli.run(t, "seed", "--songs", "2", "--todo", "2"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if err := cli.run(t, "setup", "reset"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if err := cli.run(t, "seed", "--songs", "1", "--todo", "0"); err != nil {
			t.Fatalf("seed after reset failed: %v", err)
		}
		if strings.Contains(cli.output.String(), "removed") {
			t.Errorf("expected empty tables after reset, got %s", cli.output.String())
		}
	})
}
