package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	Server   ServerConfig   `toml:"server" koanf:"server"`
	Database DatabaseConfig `toml:"database" koanf:"database"`
	Auth     AuthConfig     `toml:"auth" koanf:"auth"`
	Log      LogConfig      `toml:"log" koanf:"log"`
	Client   ClientConfig   `toml:"client" koanf:"client"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                   string   `toml:"host" koanf:"host"`
	Port                   int      `toml:"port" koanf:"port"`
	CORSOrigins            []string `toml:"cors_origins" koanf:"cors_origins"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds" koanf:"shutdown_timeout_seconds"`
}

// Address returns the host:port pair the server listens on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver" koanf:"driver"`
	URL          string `toml:"url" koanf:"url"`
	MaxOpenConns int    `toml:"max_open_conns" koanf:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" koanf:"max_idle_conns"`
}

// AuthConfig holds the single operator credential and the token signing settings.
type AuthConfig struct {
	Username      string `toml:"username" koanf:"username"`
	Password      string `toml:"password" koanf:"password"`
	JWTSecret     string `toml:"jwt_secret" koanf:"jwt_secret"`
	TokenTTLWeeks int    `toml:"token_ttl_weeks" koanf:"token_ttl_weeks"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level" koanf:"level"`
}

// ClientConfig configures CLI commands that talk to a running server.
type ClientConfig struct {
	BaseURL   string `toml:"base_url" koanf:"base_url"`
	Token     string `toml:"token" koanf:"token"`
	TokenPath string `toml:"token_path" koanf:"token_path"`
}

// ResolveTokenPath returns the configured token path, defaulting to ~/.songlist/token.
func (c ClientConfig) ResolveTokenPath() (string, error) {
	if c.TokenPath != "" {
		return c.TokenPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".songlist", "token"), nil
}

// envMappings maps recognised environment variables to config keys.
var envMappings = map[string]string{
	"DATABASE_URL":             "database.url",
	"SONGLIST_DATABASE_DRIVER": "database.driver",
	"SONGLIST_USERNAME":        "auth.username",
	"SONGLIST_PASSWORD":        "auth.password",
	"JWT_SECRET":               "auth.jwt_secret",
	"SONGLIST_TOKEN_TTL_WEEKS": "auth.token_ttl_weeks",
	"SONGLIST_HOST":            "server.host",
	"SONGLIST_PORT":            "server.port",
	"SONGLIST_LOG_LEVEL":       "log.level",
	"SONGLIST_API_URL":         "client.base_url",
	"SONGLIST_TOKEN":           "client.token",
}

// envTransformFunc maps an environment variable to its config key.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[key]
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Load builds the effective configuration: embedded defaults, then the TOML file at path
// (skipped when it does not exist), then environment variable overrides.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if config, err = LoadConfig(path); err != nil {
				return nil, err
			}
		}
	}

	return ApplyEnv(config)
}

// ApplyEnv layers environment variable overrides on top of config and returns the result.
func ApplyEnv(config *Config) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(config, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load config values: %w", err)
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	out := &Config{}
	if err := k.Unmarshal("", out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if _, ok := os.LookupEnv("SONGLIST_DATABASE_DRIVER"); !ok && isPostgresURL(out.Database.URL) {
		out.Database.Driver = DriverPostgres
	}

	return out, nil
}

// isPostgresURL reports whether url uses a postgres:// or postgresql:// scheme.
func isPostgresURL(url string) bool {
	url = strings.ToLower(url)
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Validate checks the settings needed to serve the API.
func (c *Config) Validate() error {
	var errs []error

	if _, err := DialectFor(c.Database.Driver); err != nil {
		errs = append(errs, err)
	}
	if c.Database.URL == "" {
		errs = append(errs, fmt.Errorf("database.url is required"))
	}
	if c.Database.Driver == DriverSQLite && isPostgresURL(c.Database.URL) {
		errs = append(errs, fmt.Errorf("%w: database.url is a postgres URL but database.driver is %s", ErrUnsupportedDriver, DriverSQLite))
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		errs = append(errs, fmt.Errorf("%w: auth.username and auth.password are required", ErrMissingCredentials))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTLWeeks <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl_weeks must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
