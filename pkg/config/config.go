package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional config file read from the working directory
const FileName = "appinterfaceviewer.toml"

// EnvPrefix prefixes environment overrides, e.g. APPVIEWER_PORT=9090
const EnvPrefix = "APPVIEWER_"

// ErrInvalidConfig is returned when the merged configuration is unusable
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Catalog       string        `koanf:"catalog"`
	DSN           string        `koanf:"dsn"`
	WebMode       bool          `koanf:"web"`
	Port          int           `koanf:"port"`
	Static        string        `koanf:"static"`
	Watch         bool          `koanf:"watch"`
	Tag           string        `koanf:"tag"`
	Start         string        `koanf:"start"`
	Goal          string        `koanf:"goal"`
	Format        string        `koanf:"format"`
	MaxExpansions int           `koanf:"max.expansions"`
	Timeout       time.Duration `koanf:"timeout"`
	Verbosity     string        `koanf:"verbosity"`
	VerboseCnt    int           `koanf:"verbose"`
	JSONLogs      bool          `koanf:"json.logs"`
}

// Output formats of the command line mode
const (
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
)

// NewFlagSet declares the command line flags understood by Load
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.StringP("catalog", "c", "catalog.yaml", "Catalog file (.yaml, .yml or .toml)")
	f.String("dsn", "", "PostgreSQL connection string; overrides --catalog")
	f.Bool("web", false, "Start web server instead of printing to console")
	f.IntP("port", "p", 8080, "Port for web server (only used with --web)")
	f.String("static", "", "Directory served under /statics/")
	f.BoolP("watch", "w", false, "Reload the catalog file when it changes")
	f.StringP("tag", "t", "", "Route tag to follow")
	f.StringP("start", "s", "", "Start application (app_id or name)")
	f.StringP("goal", "g", "", "Goal application (app_id or name)")
	f.StringP("format", "f", FormatMermaid, "Output format: mermaid or json")
	f.Int("max-expansions", 1_000_000, "Maximum nodes expanded by one query (0 = unlimited)")
	f.Duration("timeout", 30*time.Second, "Maximum duration of one query (0 = unlimited)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("json-logs", false, "Write logs as JSON")
	return f
}

// LogLevel resolves the effective log level name. An explicit verbosity
// wins over the -v count.
func (c *Config) LogLevel() string {
	if c.Verbosity != "" {
		return c.Verbosity
	}
	switch {
	case c.VerboseCnt >= 2:
		return "trace"
	case c.VerboseCnt == 1:
		return "debug"
	}
	return "info"
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"catalog":   "catalog.yaml",
		"dsn":       "",
		"web":       false,
		"port":      8080,
		"static":    "",
		"watch":     false,
		"tag":       "",
		"start":     "",
		"goal":      "",
		"format":    FormatMermaid,
		"max":       map[string]interface{}{"expansions": 1_000_000},
		"timeout":   "30s",
		"verbosity": "",
		"verbose":   0,
		"json":      map[string]interface{}{"logs": false},
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", configFile, err)
		}
	}

	// 3. Environment Variables
	// APPVIEWER_MAX_EXPANSIONS=500 sets max.expansions
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	// Dashed flag names map onto dotted keys: --max-expansions sets max.expansions
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(flag *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(flag.Name, "-", "."), posflag.FlagVal(f, flag)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be corrected later
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.MaxExpansions < 0:
		return fmt.Errorf("%w: max.expansions must not be negative", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	case c.Format != FormatMermaid && c.Format != FormatJSON:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	case c.Catalog == "" && c.DSN == "":
		return fmt.Errorf("%w: either catalog or dsn is required", ErrInvalidConfig)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
