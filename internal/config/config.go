// Package config loads the service configuration from defaults, an optional
// YAML file and TODO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/n0roo/todo-mcp/internal/i18n"
	"github.com/n0roo/todo-mcp/internal/logging"
	"github.com/n0roo/todo-mcp/internal/task"
)

// Config is the effective service configuration
type Config struct {
	Server   ServerConfig `yaml:"server" json:"server"`
	Store    StoreConfig  `yaml:"store" json:"store"`
	Log      LogConfig    `yaml:"log" json:"log"`
	Language string       `yaml:"language" json:"language" env:"TODO_LANGUAGE"`
}

// ServerConfig is the identity reported on initialize
type ServerConfig struct {
	Name    string `yaml:"name" json:"name" env:"TODO_SERVER_NAME"`
	Version string `yaml:"version" json:"version" env:"TODO_SERVER_VERSION"`
}

// StoreConfig selects the task store
type StoreConfig struct {
	Backend  string `yaml:"backend" json:"backend" env:"TODO_STORE_BACKEND"`
	IDPolicy string `yaml:"id_policy" json:"id_policy" env:"TODO_STORE_ID_POLICY"`
	Seed     bool   `yaml:"seed" json:"seed" env:"TODO_STORE_SEED"`
}

// LogConfig controls the stderr logger
type LogConfig struct {
	Level  string `yaml:"level" json:"level" env:"TODO_LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"TODO_LOG_FORMAT"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "todo-server",
			Version: "0.1.0",
		},
		Store: StoreConfig{
			Backend:  string(task.BackendMemory),
			IDPolicy: string(task.PolicySequence),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Language: i18n.BaseLocale,
	}
}

// Load builds the configuration: defaults, then the YAML file at path, then
// the environment. An empty path means DefaultPath(); a missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects unknown backends, id policies, languages and log settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Name == "" {
		errs = append(errs, errors.New("server.name must not be empty"))
	}
	if c.Server.Version == "" {
		errs = append(errs, errors.New("server.version must not be empty"))
	}
	if _, err := c.Backend(); err != nil {
		errs = append(errs, err)
	}
	if _, err := task.ParseIDPolicy(c.Store.IDPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := i18n.Resolve(c.Language); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format: %s", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Backend returns the configured store backend
func (c *Config) Backend() (task.Backend, error) {
	if c.Store.Backend == "" {
		return task.BackendMemory, nil
	}
	for _, b := range task.Backends() {
		if string(b) == c.Store.Backend {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown store backend: %s", c.Store.Backend)
}

// StoreOptions returns the task store options for this configuration
func (c *Config) StoreOptions() ([]task.Option, error) {
	policy, err := task.ParseIDPolicy(c.Store.IDPolicy)
	if err != nil {
		return nil, err
	}
	return []task.Option{task.WithIDPolicy(policy)}, nil
}
