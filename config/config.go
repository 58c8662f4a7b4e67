// Package config loads catalog settings from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kjk/catalog/u"
)

const (
	DefaultDataDir    = "~/.catalog"
	DefaultStoreFile  = "catalog.txt"
	DefaultGenresFile = "genres.json"
	logDirName        = "logs"
	backupDirName     = "backups"
)

type Config struct {
	// DataDir holds the store and genres files
	DataDir    string `yaml:"data_dir"`
	StoreFile  string `yaml:"store_file"`
	GenresFile string `yaml:"genres_file"`
	// LogDir defaults to <data_dir>/logs
	LogDir  string `yaml:"log_dir"`
	Verbose bool   `yaml:"verbose"`
	// DefaultGenres seed the genre registry when its file is missing
	DefaultGenres []string `yaml:"default_genres"`
}

// DefaultPath is where the config is looked for when --config is not given
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "catalog", "config.yaml")
}

// Default returns configuration used without a config file
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields
func ApplyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.StoreFile == "" {
		cfg.StoreFile = DefaultStoreFile
	}
	if cfg.GenresFile == "" {
		cfg.GenresFile = DefaultGenresFile
	}
}

// Validate checks the configuration
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if cfg.StoreFile == cfg.GenresFile {
		return fmt.Errorf("store_file and genres_file must differ, both are '%s'", cfg.StoreFile)
	}
	for _, g := range cfg.DefaultGenres {
		if strings.TrimSpace(g) == "" {
			return errors.New("default_genres must not contain empty names")
		}
	}
	return nil
}

// LoadConfig reads YAML from path, applies defaults and validates
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Load is LoadConfig followed by environment overrides.
// If path is empty, DefaultPath() is used and a missing file there
// is not an error.
func Load(path string) (*Config, error) {
	var cfg *Config
	var err error
	if path == "" {
		path = DefaultPath()
		if path == "" || !u.FileExists(path) {
			cfg = Default()
		}
	}
	if cfg == nil {
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides uses CATALOG_FIELD variables. They take precedence
// over the file.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CATALOG_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("CATALOG_STORE_FILE"); val != "" {
		cfg.StoreFile = val
	}
	if val := os.Getenv("CATALOG_GENRES_FILE"); val != "" {
		cfg.GenresFile = val
	}
	if val := os.Getenv("CATALOG_LOG_DIR"); val != "" {
		cfg.LogDir = val
	}
	if val := os.Getenv("CATALOG_VERBOSE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Verbose = b
		}
	}
}

func (c *Config) resolve(name string) string {
	name = u.ExpandTildeInPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir(), name)
}

// Dir is DataDir with ~ expanded
func (c *Config) Dir() string {
	return u.ExpandTildeInPath(c.DataDir)
}

// StorePath is the store file, relative names are inside DataDir
func (c *Config) StorePath() string {
	return c.resolve(c.StoreFile)
}

func (c *Config) GenresPath() string {
	return c.resolve(c.GenresFile)
}

func (c *Config) LogPath() string {
	if c.LogDir == "" {
		return filepath.Join(c.Dir(), logDirName)
	}
	return c.resolve(c.LogDir)
}

// BackupDir is the default location of backups
func (c *Config) BackupDir() string {
	return filepath.Join(c.Dir(), backupDirName)
}
