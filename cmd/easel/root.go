package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/config"
	"github.com/jackzampolin/easel/internal/home"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Prompt workbench for AI image generation",
	Long: `Easel is a prompt workbench for AI image generation.

Templates hold {{variable}} placeholders that expand against named value
pools into batches of concrete prompts. Every prompt, rendered image, and
rating is kept in a local SQLite library.

Core workflow:
  - Save templates and variable pools
  - Expand templates into prompt batches
  - Generate an image per prompt through OpenAI or the offline mock
  - Rate results and mine the history for what worked`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.easel/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "easel home directory (default: ~/.easel)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory manager.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// newLogger builds a logger from config. Logs go to stderr so data output
// on stdout stays parseable.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// cmdEnv bundles what a store-backed command needs.
type cmdEnv struct {
	cfg    *config.Config
	home   *home.Dir
	logger *slog.Logger
	store  *store.Store
}

// openEnv loads config, prepares the home directory, and opens the store.
// Commands that touch the library go through here; callers must Close.
func openEnv() (*cmdEnv, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := cm.Get()

	h, err := getHome()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	path := cfg.Store.Path
	if path == "" {
		path = h.DBPath()
	}
	st, err := store.Open(path, store.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	return &cmdEnv{cfg: cfg, home: h, logger: logger, store: st}, nil
}

// Close releases the store.
func (e *cmdEnv) Close() {
	_ = e.store.Close()
}

// parseID parses a numeric id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
