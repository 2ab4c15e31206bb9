// Package config loads LevenSearch settings from a TOML file, overlays
// LEVENSEARCH_* environment variables and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"LevenSearch/internal/analysis"
	"LevenSearch/internal/scanner"
	"LevenSearch/internal/storage"
)

var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "LEVENSEARCH_"

// Config is the complete configuration.
type Config struct {
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// SearchConfig configures scanning.
type SearchConfig struct {
	// DefaultMaxDistance applies when a request carries no bound.
	DefaultMaxDistance int      `toml:"default_max_distance"`
	Analyzer           string   `toml:"analyzer"`
	Matcher            string   `toml:"matcher"`
	ScanTimeout        Duration `toml:"scan_timeout"`
	MaxMatches         int      `toml:"max_matches"`
}

// ServerConfig configures the HTTP control surface.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout"`
	// AllowFileDocuments lets clients bind sessions to server-side paths.
	AllowFileDocuments bool `toml:"allow_file_documents"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a string ("5s") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			DefaultMaxDistance: 1,
			Analyzer:           analysis.DefaultAnalyzer,
			Matcher:            scanner.MatcherAutomaton,
			ScanTimeout:        Duration{5 * time.Second},
			MaxMatches:         10000,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			IdleTimeout:  Duration{120 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns ~/.config/levensearch/config.toml, or "" if the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "levensearch", "config.toml")
}

// Load reads the file at path over the defaults, applies environment
// overlays and validates. An empty path uses DefaultPath when that file
// exists, and the defaults otherwise.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overlays LEVENSEARCH_* variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(envPrefix + name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalid, envPrefix, name, v, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *Duration) error {
		v := getenv(envPrefix + name)
		if v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalid, envPrefix, name, v, err)
		}
		return nil
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("ADDR", &c.Server.Addr)
	str("ANALYZER", &c.Search.Analyzer)
	str("MATCHER", &c.Search.Matcher)

	return errors.Join(
		num("MAX_DISTANCE", &c.Search.DefaultMaxDistance),
		num("MAX_MATCHES", &c.Search.MaxMatches),
		dur("SCAN_TIMEOUT", &c.Search.ScanTimeout),
	)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Search.DefaultMaxDistance < 0 {
		bad("search.default_max_distance must be >= 0, got %d", c.Search.DefaultMaxDistance)
	}
	if !slices.Contains(analysis.NewRegistry().Names(), c.Search.Analyzer) {
		bad("search.analyzer %q is not one of %v", c.Search.Analyzer, analysis.NewRegistry().Names())
	}
	if c.Search.Matcher != scanner.MatcherAutomaton && c.Search.Matcher != scanner.MatcherTable {
		bad("search.matcher %q must be %q or %q", c.Search.Matcher, scanner.MatcherAutomaton, scanner.MatcherTable)
	}
	if c.Search.ScanTimeout.Duration < 0 {
		bad("search.scan_timeout must not be negative")
	}
	if c.Search.MaxMatches < 0 {
		bad("search.max_matches must be >= 0, got %d", c.Search.MaxMatches)
	}
	if c.Server.Addr == "" {
		bad("server.addr is required")
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		bad("log.level: %v", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		bad("log.format %q must be \"json\" or \"text\"", c.Log.Format)
	}
	return errors.Join(errs...)
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes c to path atomically.
func Save(path string, c Config) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return storage.WriteFile(path, data, storage.FilePerm)
}

// ScannerOptions builds scanner options from the search settings.
func (c SearchConfig) ScannerOptions() (scanner.Options, error) {
	a, err := analysis.NewRegistry().Get(c.Analyzer)
	if err != nil {
		return scanner.Options{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return scanner.Options{
		Analyzer:   a,
		Matcher:    c.Matcher,
		Timeout:    c.ScanTimeout.Duration,
		MaxMatches: c.MaxMatches,
	}, nil
}
