package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/songlist/internal/formatter"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

func collectionFromFlag(cmd *cli.Command) models.Collection {
	if cmd.Bool("todo") {
		return models.Todo
	}
	return models.Songs
}

// Login exchanges the operator credential for an access token and saves it.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	if username == "" {
		username = r.config.Auth.Username
	}
	password := cmd.String("password")
	if password == "" {
		password = r.config.Auth.Password
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingCredentials)
	}

	r.logger.Info("logging in", "server", r.api.BaseURL(), "username", username)

	token, err := r.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if cmd.Bool("print") {
		return r.writePlain("%s\n", token.AccessToken)
	}

	path, err := r.saveToken(token.AccessToken)
	if err != nil {
		return err
	}
	r.logger.Infof("token saved to %v", path)
	return r.writePlain("%s\n", formatter.Success("✓ Authentication successful"))
}

// Health checks that the server and its database are reachable.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking server health", "server", r.api.BaseURL())

	if err := r.api.Health(ctx); err != nil {
		r.writePlain("%s\n", formatter.Failure("✗ Service is unavailable"))
		return err
	}
	return r.writePlain("%s\nServer: %s\n", formatter.Success("✓ Service is healthy"), r.api.BaseURL())
}

// SongsList prints a collection as a table, or as JSON with --json.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	c := collectionFromFlag(cmd)

	songs, err := r.api.List(ctx, c)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}
	return formatter.Write(r.output, formatter.FormatTable, collectionTitle(c), songs)
}

// SongsAdd creates a song from the name argument and the repeatable list flags.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	c := collectionFromFlag(cmd)

	in := models.SongInput{
		Name:    cmd.StringArg("name"),
		Singers: nonNil(cmd.StringSlice("singer")),
		Tags:    nonNil(cmd.StringSlice("tag")),
		Links:   nonNil(cmd.StringSlice("link")),
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	song, err := r.client().Create(ctx, c, in)
	if err != nil {
		return err
	}

	r.logger.Info("song created", "collection", c, "id", song.ID)
	return r.writeJSON(song, true)
}

// SongsUpdate sends a partial update built from the flags that were given.
func (r *Runner) SongsUpdate(ctx context.Context, cmd *cli.Command) error {
	c := collectionFromFlag(cmd)

	patch := models.SongPatch{ID: cmd.StringArg("id")}
	if cmd.IsSet("name") {
		patch.Name = models.Some(cmd.String("name"))
	}
	if cmd.IsSet("singer") {
		patch.Singers = models.Some(cmd.StringSlice("singer"))
	}
	if cmd.IsSet("tag") {
		patch.Tags = models.Some(cmd.StringSlice("tag"))
	} else if cmd.Bool("clear-tags") {
		patch.Tags = models.Some([]string{})
	}
	if cmd.IsSet("link") {
		patch.Links = models.Some(cmd.StringSlice("link"))
	} else if cmd.Bool("clear-links") {
		patch.Links = models.Some([]string{})
	}

	if err := patch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	song, err := r.client().Update(ctx, c, patch)
	if err != nil {
		return err
	}

	r.logger.Info("song updated", "collection", c, "id", song.ID)
	return r.writeJSON(song, true)
}

// SongsMove moves the id arguments between collections.
func (r *Runner) SongsMove(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one id is required", shared.ErrMissingArgument)
	}

	direction := models.SongsToTodo
	if cmd.Bool("to-songs") {
		direction = models.TodoToSongs
	}

	result, err := r.client().Move(ctx, direction, ids)
	if err != nil {
		return err
	}
	return r.writeBulkResult(fmt.Sprintf("moved to %s", direction.Target().Table()), len(ids), result)
}

// SongsDelete removes the id arguments from a collection.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one id is required", shared.ErrMissingArgument)
	}
	c := collectionFromFlag(cmd)

	result, err := r.client().Delete(ctx, c, ids)
	if err != nil {
		return err
	}
	return r.writeBulkResult(fmt.Sprintf("deleted from %s", c.Table()), len(ids), result)
}

// SongsImport creates every song in a JSON or CSV file and reports the ones that failed.
func (r *Runner) SongsImport(ctx context.Context, cmd *cli.Command) error {
	c := collectionFromFlag(cmd)

	items, err := tasks.LoadSongs(cmd.String("file"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(items))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message)
		}
	}()

	result, err := tasks.BulkImport(ctx, progress, r.client(), items, tasks.BulkImportOpts{
		Collection: c,
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("%s %d of %d songs imported into %s\n", formatter.Success("✓"), len(result.Created), result.Total, c.Table())
	for _, failure := range result.Failures {
		r.writePlain("%s #%d %q: %v\n", formatter.Failure("✗"), failure.Index+1, failure.Name, failure.Error)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%w: %d songs failed to import", shared.ErrAPIRequest, len(result.Failures))
	}
	return nil
}

// SongsExport writes a collection in the chosen format to stdout or --output.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	c := collectionFromFlag(cmd)

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	songs, err := r.api.List(ctx, c)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, format, collectionTitle(c), songs); err != nil {
			return err
		}
		r.logger.Info("exported collection", "collection", c, "songs", len(songs), "path", path)
		return nil
	}
	return formatter.Write(r.output, format, collectionTitle(c), songs)
}

func (r *Runner) writeBulkResult(action string, total int, result *models.BulkResult) error {
	done := total - len(result.NotFound)
	r.writePlain("%s %d of %d songs %s\n", formatter.Success("✓"), done, total, action)
	if result.OK() {
		return nil
	}

	r.writePlain("%s not found: %s\n", formatter.Warning("!"), strings.Join(result.NotFound, ", "))
	return errors.Join(shared.ErrSongNotFound, fmt.Errorf("%d ids not found", len(result.NotFound)))
}

func collectionTitle(c models.Collection) string {
	if c == models.Todo {
		return "Todo"
	}
	return "Songs"
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
