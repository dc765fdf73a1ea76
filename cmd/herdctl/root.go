package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/repository/backend"
	herdsvc "github.com/mamadbah2/herdcare/internal/service/herd"
	reportingsvc "github.com/mamadbah2/herdcare/internal/service/reporting"
	"github.com/mamadbah2/herdcare/pkg/logger"
)

type cliApp struct {
	envFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

type services struct {
	store   repository.Store
	herd    *herdsvc.Service
	reports *reportingsvc.Service
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	root := &cobra.Command{
		Use:   "herdctl",
		Short: "Inspect and load herd care records",
		Long: `herdctl works directly against the configured record store.
It reads the same environment (or .env file) as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if app.verbose {
				level = "debug"
			}
			log, err := logger.New(logger.WithConsole(), logger.WithLevel(level))
			if err != nil {
				return err
			}
			app.logger = log

			cfg, err := config.Load(app.envFile)
			if err != nil {
				return err
			}
			app.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&app.envFile, "env", "", "env file to load (defaults to .env when present)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newImportCmd(app),
		newDueCmd(app),
		newReadyCmd(app),
		newOverdueCmd(app),
		newCalendarCmd(app),
	)
	return root
}

// withServices opens the store for the duration of fn.
func (a *cliApp) withServices(ctx context.Context, fn func(services) error) error {
	loc, err := a.cfg.Reporting.Location()
	if err != nil {
		return err
	}

	store, err := backend.Open(ctx, a.cfg, a.logger.Named("repo"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			a.logger.Warn("failed to close record store", zap.Error(err))
		}
	}()

	herd := herdsvc.NewService(store, herdsvc.Options{
		ReadyMinDays:           a.cfg.Care.ReadyMinDays,
		DashboardDueWindowDays: a.cfg.Care.DashboardDueWindowDays,
		Location:               loc,
	}, a.logger.Named("svc.herd"))
	reports := reportingsvc.NewService(herd, store, nil, a.cfg.Care.DueSoonDays, a.logger.Named("svc.reporting"))

	return fn(services{store: store, herd: herd, reports: reports})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
