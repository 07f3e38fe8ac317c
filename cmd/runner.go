package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songlist/internal/repositories"
	"github.com/desertthunder/songlist/internal/services"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	confirm    func(title string) (bool, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Confirm    func(title string) (bool, error) // Interactive yes/no prompt (default: huh confirm)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Client.BaseURL, opts.HTTPClient)
	}
	if opts.Confirm == nil {
		opts.Confirm = confirmPrompt
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		confirm:    opts.Confirm,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, seedCommand, loginCommand, healthCommand, songsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the runner's config, reloading it when --config points somewhere else.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return r.config, nil
	}

	config, err := shared.Load(path)
	if err != nil {
		return nil, err
	}
	r.config = config
	r.configPath = path
	return config, nil
}

// openStore opens the configured database and applies pending migrations.
func (r *Runner) openStore(config *shared.Config) (*repositories.Store, func(), error) {
	db, dialect, err := openRaw(config)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db, dialect); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewStore(db, dialect), func() { db.Close() }, nil
}

// openRaw opens the configured database without touching its schema.
func openRaw(config *shared.Config) (*sql.DB, shared.Dialect, error) {
	dialect, err := shared.DialectFor(config.Database.Driver)
	if err != nil {
		return nil, "", err
	}

	db, err := shared.NewDatabase(config.Database.Driver, config.Database.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create database: %w", err)
	}
	return db, dialect, nil
}

// client returns the API client carrying the saved bearer token, if any.
func (r *Runner) client() *services.APIService {
	token, err := r.loadToken()
	if err != nil {
		r.logger.Debug("no saved token", "error", err)
	}
	return r.api.WithToken(token)
}

// loadToken prefers client.token from config and falls back to the token file.
func (r *Runner) loadToken() (string, error) {
	if r.config.Client.Token != "" {
		return r.config.Client.Token, nil
	}

	path, err := r.config.Client.ResolveTokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// saveToken writes token to the configured token path with owner-only permissions.
func (r *Runner) saveToken(token string) (string, error) {
	path, err := r.config.Client.ResolveTokenPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write token file: %w", err)
	}
	return path, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
