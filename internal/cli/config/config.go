package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the configuration file base name, without extension
const FileName = "algodoc"

// EnvPrefix prefixes every environment override (ALGODOC_LIBRARY_ROOT...)
const EnvPrefix = "ALGODOC"

// Config represents the algodoc configuration
type Config struct {
	Library   LibraryConfig     `mapstructure:"library"`
	Generator GeneratorConfig   `mapstructure:"generator"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Log       LogConfig         `mapstructure:"log"`
	Watch     WatchConfig       `mapstructure:"watch"`
	Docs      DocsConfig        `mapstructure:"docs"`
	Serve     ServeConfig       `mapstructure:"serve"`
	Labels    map[string]string `mapstructure:"labels"`
}

// LibraryConfig locates the algorithm library
type LibraryConfig struct {
	Root    string `mapstructure:"root"`
	Package string `mapstructure:"package"`
}

// GeneratorConfig configures generated source
type GeneratorConfig struct {
	Package string `mapstructure:"package"`
	Gofmt   bool   `mapstructure:"gofmt"`
}

// CacheConfig bounds the snapshot cache
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig configures the library watcher
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// DocsConfig configures generated reference pages
type DocsConfig struct {
	Title  string `mapstructure:"title"`
	Output string `mapstructure:"output"`
}

// ServeConfig configures the catalog HTTP API
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads algodoc.yml (or .yaml) from dir, applying a .env file and
// ALGODOC_ environment overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return load(dir, "")
}

// LoadFile reads an explicit configuration file
func LoadFile(path string) (*Config, error) {
	return load("", path)
}

func load(dir, file string) (*Config, error) {
	if dir == "" {
		dir = "."
	}
	// A missing .env file is not an error.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()

	v.SetDefault("library.root", ".")
	v.SetDefault("library.package", "")
	v.SetDefault("generator.package", "algorithms")
	v.SetDefault("generator.gofmt", true)
	v.SetDefault("cache.size", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("watch.debounce_ms", 100)
	v.SetDefault("docs.title", "Algorithm Catalog")
	v.SetDefault("docs.output", "docs")
	v.SetDefault("serve.addr", "127.0.0.1:8700")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FindRoot walks up from dir to the first directory holding an algodoc
// configuration file.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s.yml found", FileName)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got: %d", cfg.Cache.Size)
	}
	if cfg.Generator.Package == "" {
		return fmt.Errorf("generator.package must not be empty")
	}
	if cfg.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	if cfg.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got: %d", cfg.Watch.DebounceMS)
	}
	return nil
}
