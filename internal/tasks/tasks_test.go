package tasks

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/repositories"
	"github.com/desertthunder/songlist/internal/shared"
	tu "github.com/desertthunder/songlist/internal/testing"
)

func newSeeder(t *testing.T) (*Seeder, *repositories.Store) {
	t.Helper()
	store := repositories.NewStore(tu.NewTestDB(t), shared.DialectSQLite)
	return NewSeeder(store, rand.New(rand.NewPCG(1, 2))), store
}

func TestGenerateSong(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for range 200 {
		in := GenerateSong(rng)

		if err := in.Validate(); err != nil {
			t.Fatalf("generated song should be valid: %v", err)
		}
		if n := len(in.Singers); n < 1 || n > 3 {
			t.Errorf("expected 1-3 singers, got %d", n)
		}
		if n := len(in.Tags); n < 1 || n > 6 {
			t.Errorf("expected 1-6 tags, got %d", n)
		}
		if n := len(in.Links); n < 1 || n > 4 {
			t.Errorf("expected 1-4 links, got %d", n)
		}
		for _, list := range [][]string{in.Singers, in.Tags, in.Links} {
			if len(models.Dedupe(list)) != len(list) {
				t.Errorf("expected distinct values, got %v", list)
			}
		}
	}
}

func TestSeeder(t *testing.T) {
	t.Run("Seed inserts into both collections", func(t *testing.T) {
		seeder, _ := newSeeder(t)
		ctx := context.Background()
		progress := make(chan ProgressUpdate, 100)

		result, err := seeder.Seed(ctx, progress, SeedOpts{Songs: 5, Todo: 3})
		if err != nil {
			t.Fatalf("Seed failed: %v", err)
		}

		if result.Inserted[models.Songs] != 5 || result.Inserted[models.Todo] != 3 {
			t.Errorf("unexpected inserted counts: %v", result.Inserted)
		}
		if len(result.Cleared) != 0 {
			t.Errorf("expected nothing cleared, got %v", result.Cleared)
		}

		counts, err := seeder.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if counts[models.Songs] != 5 || counts[models.Todo] != 3 {
			t.Errorf("unexpected counts: %v", counts)
		}

		close(progress)
		seeded := 0
		for update := range progress {
			if update.Phase == SeedSongs && update.Step > 0 {
				seeded++
			}
		}
		if seeded != 8 {
			t.Errorf("expected 8 seed progress updates, got %d", seeded)
		}
	})

	t.Run("Seed appends without clear", func(t *testing.T) {
		seeder, _ := newSeeder(t)
		ctx := context.Background()

		if _, err := seeder.Seed(ctx, nil, SeedOpts{Songs: 2, Todo: 2}); err != nil {
			t.Fatalf("first seed failed: %v", err)
		}
		if _, err := seeder.Seed(ctx, nil, SeedOpts{Songs: 2, Todo: 1}); err != nil {
			t.Fatalf("second seed failed: %v", err)
		}

		counts, _ := seeder.Counts(ctx)
		if counts[models.Songs] != 4 || counts[models.Todo] != 3 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})

	t.Run("Seed with clear replaces existing data", func(t *testing.T) {
		seeder, _ := newSeeder(t)
		ctx := context.Background()

		if _, err := seeder.Seed(ctx, nil, SeedOpts{Songs: 4, Todo: 4}); err != nil {
			t.Fatalf("first seed failed: %v", err)
		}

		result, err := seeder.Seed(ctx, nil, SeedOpts{Songs: 1, Todo: 2, Clear: true})
		if err != nil {
			t.Fatalf("second seed failed: %v", err)
		}
		if result.Cleared[models.Songs] != 4 || result.Cleared[models.Todo] != 4 {
			t.Errorf("unexpected cleared counts: %v", result.Cleared)
		}

		counts, _ := seeder.Counts(ctx)
		if counts[models.Songs] != 1 || counts[models.Todo] != 2 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})

	t.Run("Seed rejects negative counts", func(t *testing.T) {
		seeder, _ := newSeeder(t)

		_, err := seeder.Seed(context.Background(), nil, SeedOpts{Songs: -1})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Truncate clears selected collections", func(t *testing.T) {
		seeder, _ := newSeeder(t)
		ctx := context.Background()

		if _, err := seeder.Seed(ctx, nil, SeedOpts{Songs: 3, Todo: 2}); err != nil {
			t.Fatalf("Seed failed: %v", err)
		}

		removed, err := seeder.Truncate(ctx, models.Todo)
		if err != nil {
			t.Fatalf("Truncate failed: %v", err)
		}
		if removed[models.Todo] != 2 {
			t.Errorf("expected 2 removed, got %d", removed[models.Todo])
		}

		counts, _ := seeder.Counts(ctx)
		if counts[models.Songs] != 3 || counts[models.Todo] != 0 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})
}

type fakeCreator struct {
	fail map[string]error
}

func (f *fakeCreator) Create(_ context.Context, _ models.Collection, in models.SongInput) (*models.Song, error) {
	if err, ok := f.fail[in.Name]; ok {
		return nil, err
	}
	song := in.Song(shared.GenerateID())
	return &song, nil
}

func TestBulkImport(t *testing.T) {
	items := []models.SongInput{
		tu.SongInput("Imagine", "John Lennon"),
		tu.SongInput("Creep", "Radiohead"),
		{Name: "", Singers: []string{"Nobody"}, Tags: []string{}, Links: []string{}},
		tu.SongInput("Africa", "Toto"),
	}

	t.Run("collects failures without stopping", func(t *testing.T) {
		creator := &fakeCreator{fail: map[string]error{"Creep": shared.ErrServiceUnavailable}}
		progress := make(chan ProgressUpdate, 10)

		result, err := BulkImport(context.Background(), progress, creator, items, BulkImportOpts{
			Collection: models.Songs,
			NumWorkers: 2,
			RateLimit:  1000,
		})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}

		if result.Total != 4 {
			t.Errorf("expected total 4, got %d", result.Total)
		}
		if len(result.Created) != 2 {
			t.Errorf("expected 2 created, got %d", len(result.Created))
		}
		if len(result.Failures) != 2 {
			t.Fatalf("expected 2 failures, got %d", len(result.Failures))
		}

		if result.Failures[0].Index != 1 || !errors.Is(result.Failures[0].Error, shared.ErrServiceUnavailable) {
			t.Errorf("unexpected first failure: %+v", result.Failures[0])
		}
		if result.Failures[1].Index != 2 {
			t.Errorf("expected validation failure at index 2, got %+v", result.Failures[1])
		}

		names := []string{}
		for _, song := range result.Created {
			names = append(names, song.Name)
		}
		slices.Sort(names)
		if !slices.Equal(names, []string{"Africa", "Imagine"}) {
			t.Errorf("unexpected created songs: %v", names)
		}

		close(progress)
		count := 0
		for range progress {
			count++
		}
		if count != 4 {
			t.Errorf("expected 4 progress updates, got %d", count)
		}
	})

	t.Run("nil creator", func(t *testing.T) {
		_, err := BulkImport(context.Background(), nil, nil, items, BulkImportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := BulkImport(ctx, nil, &fakeCreator{}, items, BulkImportOpts{RateLimit: 1000})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || len(result.Created) != 0 {
			t.Errorf("expected empty partial result, got %+v", result)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		result, err := BulkImport(context.Background(), nil, &fakeCreator{}, nil, BulkImportOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total != 0 || len(result.Created) != 0 {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestLoadSongs(t *testing.T) {
	dir := t.TempDir()

	t.Run("JSON list", func(t *testing.T) {
		path := filepath.Join(dir, "songs.json")
		body := `[{"name":"Imagine","singers":["John Lennon"],"tags":["classic"],"links":[]}]`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		items, err := LoadSongs(path)
		if err != nil {
			t.Fatalf("LoadSongs failed: %v", err)
		}
		if len(items) != 1 || items[0].Name != "Imagine" || items[0].Tags[0] != "classic" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("CSV file", func(t *testing.T) {
		path := filepath.Join(dir, "songs.csv")
		body := "Name,Singers,Tags,Links\nUnder Pressure,Queen; David Bowie,rock,\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		items, err := LoadSongs(path)
		if err != nil {
			t.Fatalf("LoadSongs failed: %v", err)
		}
		if len(items) != 1 || !slices.Equal(items[0].Singers, []string{"Queen", "David Bowie"}) {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"name":"x"}`), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadSongs(path); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSongs(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
