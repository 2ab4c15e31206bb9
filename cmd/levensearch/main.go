package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"LevenSearch/internal/config"
	"LevenSearch/internal/scanner"
	"LevenSearch/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// errNoMatches makes `search` exit with status 1, like grep.
var errNoMatches = errors.New("no matches")

var (
	configPath string
	logLevel   string
	noColor    bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "levensearch",
	Short:         "Fuzzy find-in-document within a bounded edit distance",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			if _, err := config.ParseLogLevel(logLevel); err != nil {
				return err
			}
			cfg.Log.Level = logLevel
		}
		logger = cfg.Log.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "levensearch", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ~/.config/levensearch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable highlighting colours")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNoMatches) {
			fmt.Fprintf(os.Stderr, "levensearch: %v\n", err)
		}
		os.Exit(1)
	}
}

// newManager builds a session manager from the loaded configuration.
func newManager() (*session.Manager, error) {
	opts, err := cfg.Search.ScannerOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	sc, err := scanner.New(opts)
	if err != nil {
		return nil, err
	}
	return session.NewManager(sc, logger), nil
}

// useColor reports whether f is a terminal and colours were not disabled.
func useColor(f *os.File) bool {
	return !noColor && term.IsTerminal(int(f.Fd()))
}
