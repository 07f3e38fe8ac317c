package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/songlist/internal/formatter"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// SongCreator creates a song in a collection. [services.APIService] satisfies it.
type SongCreator interface {
	Create(ctx context.Context, c models.Collection, in models.SongInput) (*models.Song, error)
}

// BulkImportOpts contains configuration for bulk song imports.
type BulkImportOpts struct {
	Collection models.Collection // Target collection
	NumWorkers int               // Concurrent workers (default: 4)
	RateLimit  float64           // Requests per second (default: 10)
}

// ImportFailure records a song that could not be created.
type ImportFailure struct {
	Index int    // Position in the input list
	Name  string // Song name as given
	Error error
}

// BulkImportResult summarizes a bulk import.
type BulkImportResult struct {
	Total    int
	Created  []models.Song
	Failures []ImportFailure
}

type importJob struct {
	index int
	input models.SongInput
}

type importResult struct {
	index int
	name  string
	song  *models.Song
	err   error
}

// BulkImport creates songs concurrently with rate limiting and progress tracking.
//
// Per-item failures are collected in the result. Only cancellation aborts the import,
// in which case the partial result is returned with the context error.
func BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	creator SongCreator,
	items []models.SongInput,
	opts BulkImportOpts,
) (*BulkImportResult, error) {
	if creator == nil {
		return nil, fmt.Errorf("%w: song creator not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10.0
	}

	result := &BulkImportResult{
		Total:   len(items),
		Created: make([]models.Song, 0, len(items)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob, len(items))
	results := make(chan importResult, len(items))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go importWorker(ctx, &wg, creator, opts.Collection, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- importJob{index: i, input: item}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			failure := ImportFailure{Index: res.index, Name: res.name, Error: res.err}
			result.Failures = append(result.Failures, failure)
			sendProgress(prog, importFailedUpdate(completed, len(items), failure))
			continue
		}
		result.Created = append(result.Created, *res.song)
		sendProgress(prog, importedUpdate(completed, len(items), res.song))
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Index < result.Failures[j].Index
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// importWorker creates songs from the jobs channel until it is closed or ctx is cancelled.
func importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	creator SongCreator,
	c models.Collection,
	jobs <-chan importJob,
	results chan<- importResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := importResult{index: job.index, name: job.input.Name}
		if err := job.input.Validate(); err != nil {
			res.err = err
		} else {
			res.song, res.err = creator.Create(ctx, c, job.input)
		}
		results <- res
	}
}

// LoadSongs reads create payloads from a CSV file, or from a JSON array for any other extension.
func LoadSongs(path string) ([]models.SongInput, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return formatter.SongsFromCSV(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []models.SongInput
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON list of songs: %v", shared.ErrInvalidInput, path, err)
	}
	return items, nil
}
