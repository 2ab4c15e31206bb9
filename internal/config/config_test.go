package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LevenSearch/internal/scanner"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Search.DefaultMaxDistance)
	assert.Equal(t, scanner.MatcherAutomaton, cfg.Search.Matcher)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[search]
default_max_distance = 2
analyzer = "word"
matcher = "table"
scan_timeout = "250ms"

[server]
addr = ":9090"
allow_file_documents = true

[log]
level = "debug"
format = "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Search.DefaultMaxDistance)
	assert.Equal(t, "word", cfg.Search.Analyzer)
	assert.Equal(t, scanner.MatcherTable, cfg.Search.Matcher)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.ScanTimeout.Duration)
	assert.Equal(t, 10000, cfg.Search.MaxMatches, "unset keys keep their defaults")
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.AllowFileDocuments)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "[search]\nmax_distance = 3\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "search.max_distance")
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, "[search]\nscan_timeout = \"soon\"\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverlay(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"info\"\n")
	t.Setenv("LEVENSEARCH_LOG_LEVEL", "warn")
	t.Setenv("LEVENSEARCH_ADDR", ":7000")
	t.Setenv("LEVENSEARCH_MAX_DISTANCE", "3")
	t.Setenv("LEVENSEARCH_SCAN_TIMEOUT", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Search.DefaultMaxDistance)
	assert.Equal(t, time.Second, cfg.Search.ScanTimeout.Duration)
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEVENSEARCH_MAX_DISTANCE", "two")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.DefaultMaxDistance = -1
	cfg.Search.Analyzer = "stemmer"
	cfg.Search.Matcher = "regex"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"default_max_distance", "analyzer", "matcher", "log.format"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Search.ScanTimeout = Duration{1500 * time.Millisecond}
	cfg.Server.Addr = ":1234"

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `scan_timeout = "1.5s"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestScannerOptions(t *testing.T) {
	opts, err := DefaultConfig().Search.ScannerOptions()
	require.NoError(t, err)
	assert.NotNil(t, opts.Analyzer)
	assert.Equal(t, 5*time.Second, opts.Timeout)

	_, err = SearchConfig{Analyzer: "nope"}.ScannerOptions()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf).Debug("shown", "k", "v")
	assert.True(t, strings.Contains(buf.String(), "msg=shown"))
}
