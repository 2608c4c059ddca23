package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/warp/practrack/config"
	"github.com/warp/practrack/practrack"
	"github.com/warp/practrack/store/sqlite"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "practrack",
		Short:         "Track student practical hours against per-site requirements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default from PRACTRACK_DB or practical_hours.db)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
		newResetCmd(a),
		newSitesCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(a.logger)
	return nil
}

// openService opens the configured store. The caller must close the store.
func (a *app) openService() (*practrack.Service, *sqlite.Store, error) {
	store, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("database opened", "path", a.cfg.DBPath)
	return practrack.NewService(store), store, nil
}

// withService runs fn against a freshly opened store and closes it after.
func (a *app) withService(fn func(svc *practrack.Service) error) error {
	svc, store, err := a.openService()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(svc)
}
