// Package cmd wires the planner together: config, logging, storage,
// holiday ingestion and the terminal UI.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"planer/internal/config"
	"planer/internal/holiday"
	"planer/internal/logging"
	"planer/internal/storage"
	"planer/internal/ui"
	"planer/internal/view"
)

var (
	flagConfig string
	flagDB     string
)

var rootCmd = &cobra.Command{
	Use:   "planer",
	Short: "A terminal task planner with holiday reminders",
	Long: `Planer is a single-user task planner: add tasks with a due date and
priority, search, sort and page through them, and keep an eye on
upcoming public holidays pulled from date.nager.at.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: XDG config dir)")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "database file (overrides config)")
}

func run(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("planer needs a terminal to run")
	}

	configPath := flagConfig
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}

	if err := logging.InitFile(cfg.LogPath, slog.LevelInfo); err != nil {
		// Logging is best-effort; the planner works without a log file.
		fmt.Fprintf(os.Stderr, "warning: cannot open log file: %v\n", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	// One-shot ingestion at startup. Failures are logged and swallowed:
	// the task list must work without the holiday feed.
	client := holiday.NewClient()
	if err := holiday.Ingest(context.Background(), store, client, cfg.HolidayYear, cfg.HolidayCountry); err != nil {
		logging.Logger().Warn("holiday ingestion failed", "error", err)
	}

	ctl := view.New(store, cfg.PageSize, cfg.ReminderLimit)
	return ui.Run(ctl, cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
