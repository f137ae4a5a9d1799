// Package cmd defines and implements the CLI commands for the workerlist executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/app"
	"github.com/JakeFAU/workerlist/internal/config"
	"github.com/JakeFAU/workerlist/internal/logging"
	"github.com/JakeFAU/workerlist/internal/workers"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the services commands depend on.
// Tests swap in a fake through newApp.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetSource() workers.Source
}

// newApp is the application factory.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger)
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "workerlist",
		Short: "Browse marketplace workers by category.",
		Long: `workerlist serves the category-filtered worker listing page and
its JSON API, and can print the same listing from the command line.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(logging.Options{
				Development: cfg.Logging.Development,
				Level:       cfg.Logging.Level,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults and WORKERLIST_* env vars otherwise)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCategoriesCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
