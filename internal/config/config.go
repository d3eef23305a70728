package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. TSLENS_OUTPUT_FORMAT.
const EnvPrefix = "TSLENS"

// Config holds all configuration settings
type Config struct {
	// Project root to analyze; empty means detect from the working directory
	Workspace string `mapstructure:"workspace" yaml:"workspace"`

	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "text", "json", "yaml"
	Limit  int    `mapstructure:"limit" yaml:"limit"`   // Max churn rows, 0 = all
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // "none", "bolt", "sqlite"
	Path string `mapstructure:"path" yaml:"path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Type: "none",
			Path: filepath.Join(HomeDir(), "history.db"),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// HomeDir returns the per-user tslens directory (~/.tslens).
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tslens"
	}
	return filepath.Join(homeDir, ".tslens")
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := newViper()

	// Try to find config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath(".tslens")
		v.AddConfigPath(".")
		v.AddConfigPath(HomeDir())
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, tserrors.ConfigErrorf(err, "failed to read config")
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, tserrors.ConfigErrorf(err, "failed to unmarshal config")
	}

	cfg.Workspace = expandPath(cfg.Workspace)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	if result := cfg.Validate(); result.HasErrors() {
		return nil, tserrors.ConfigErrorf(nil, "%s", strings.TrimSpace(result.Error()))
	}

	return cfg, nil
}

// newViper returns a viper instance seeded with defaults and environment
// bindings. Keys are bound individually so nested values can be overridden
// from the environment.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("workspace", defaults.Workspace)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.limit", defaults.Output.Limit)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("storage.type", defaults.Storage.Type)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.json", defaults.Logging.JSON)
	v.SetDefault("logging.file", defaults.Logging.File)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables that are already set, so earlier files win.
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
		filepath.Join(HomeDir(), ".env"),
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("workspace", c.Workspace)
	v.Set("output.format", c.Output.Format)
	v.Set("output.limit", c.Output.Limit)
	v.Set("cache.ttl", c.Cache.TTL.String())
	v.Set("watch.debounce", c.Watch.Debounce.String())
	v.Set("storage.type", c.Storage.Type)
	v.Set("storage.path", c.Storage.Path)
	v.Set("logging.level", c.Logging.Level)
	v.Set("logging.json", c.Logging.JSON)
	v.Set("logging.file", c.Logging.File)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
