package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/songlist/internal/formatter"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Seed inserts random songs into both collections.
//
// When records already exist and neither --clear nor --append is set, the user is asked whether to clear them.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("clear") && cmd.Bool("append") {
		return fmt.Errorf("%w: cannot specify both --clear and --append", shared.ErrInvalidArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	seeder := tasks.NewSeeder(store, nil)
	opts := tasks.SeedOpts{
		Songs: int(cmd.Int("songs")),
		Todo:  int(cmd.Int("todo")),
		Clear: cmd.Bool("clear"),
	}

	counts, err := seeder.Counts(ctx)
	if err != nil {
		return err
	}
	existing := counts[models.Songs] + counts[models.Todo]

	if existing > 0 && !opts.Clear && !cmd.Bool("append") {
		title := fmt.Sprintf("Found %d songs and %d todo songs. Clear them before seeding?", counts[models.Songs], counts[models.Todo])
		if opts.Clear, err = r.confirm(title); err != nil {
			return fmt.Errorf("confirm clear: %w", err)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := seeder.Seed(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	for _, c := range models.Collections {
		if n, ok := result.Cleared[c]; ok {
			r.writePlain("%s %d records removed from %s\n", formatter.Warning("-"), n, c.Table())
		}
		r.writePlain("%s %d records inserted into %s\n", formatter.Success("✓"), result.Inserted[c], c.Table())
	}
	return nil
}

// confirmPrompt asks a yes/no question on the terminal; without one it answers no.
func confirmPrompt(title string) (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, err
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return false, nil
	}

	var ok bool
	err = huh.NewConfirm().
		Title(title).
		Affirmative("Clear").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}
