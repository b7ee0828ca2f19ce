package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "magpie.yaml"

// EnvPrefix prefixes environment overrides: MAGPIE_OUTPUT_FORMAT sets
// output.format.
const EnvPrefix = "MAGPIE"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents magpie.yaml configuration
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Discover  DiscoverConfig  `yaml:"discover" mapstructure:"discover"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// NormalizeConfig holds normalizer settings
type NormalizeConfig struct {
	// Workers bounds parallel compilations and files; 0 means one per CPU.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// CacheSize bounds each resource memo cache.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"`
	// Strict fails a report whose normalized model has dangling references.
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ResolveConfig holds plugin and reporter resolution settings
type ResolveConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// DiscoverConfig controls how report files are found in directories
type DiscoverConfig struct {
	IgnoreDirs []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
	Patterns   []string `yaml:"patterns" mapstructure:"patterns"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Normalize: NormalizeConfig{
			Workers:   0,
			CacheSize: 1 << 14,
			Strict:    false,
		},
		Output: OutputConfig{
			Format: FormatText,
			Path:   "",
		},
		Resolve: ResolveConfig{
			Root: ".",
		},
		Discover: DiscoverConfig{
			IgnoreDirs: []string{"node_modules", ".git", "vendor"},
			Patterns:   []string{"*.json"},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("normalize.workers", d.Normalize.Workers)
	v.SetDefault("normalize.cache_size", d.Normalize.CacheSize)
	v.SetDefault("normalize.strict", d.Normalize.Strict)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("resolve.root", d.Resolve.Root)
	v.SetDefault("discover.ignore_dirs", d.Discover.IgnoreDirs)
	v.SetDefault("discover.patterns", d.Discover.Patterns)
}

// LoadConfig loads configuration from a YAML file. An empty path looks
// for magpie.yaml in the working directory; a missing file yields the
// defaults. A .env file next to the config is loaded first, and MAGPIE_*
// environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	} else {
		path = FileName
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		// Fall back to defaults (plus environment) if the file doesn't exist
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid output.format %q (want %s, %s or %s)", c.Output.Format, FormatText, FormatJSON, FormatYAML)
	}
	if c.Normalize.Workers < 0 {
		return fmt.Errorf("invalid normalize.workers %d: must not be negative", c.Normalize.Workers)
	}
	if c.Normalize.CacheSize < 0 {
		return fmt.Errorf("invalid normalize.cache_size %d: must not be negative", c.Normalize.CacheSize)
	}
	return nil
}

// SaveConfig writes configuration to a YAML file
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
