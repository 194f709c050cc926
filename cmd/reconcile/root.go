package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"orbo/internal/app"
	"orbo/internal/config"
	"orbo/internal/database"
	"orbo/internal/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reconcile",
		Short:         "Reconcile Telegram state with the Orbo database",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return initLogger(level)
		},
	}

	cmd.PersistentFlags().Bool("migrate", false, "Apply pending database migrations first.")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error). Logs go to stderr.")

	cmd.AddCommand(newAdminsCmd())
	cmd.AddCommand(newBackfillCmd())
	cmd.AddCommand(newMigrateChatCmd())
	return cmd
}

// initLogger keeps stdout free for the JSON result.
func initLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	l, err := zcfg.Build()
	if err != nil {
		return err
	}
	logger.Replace(l)
	return nil
}

// withServices opens the database, builds the services and runs fn with a
// context cancelled on SIGINT/SIGTERM.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svcs *app.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer dbManager.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := dbManager.RunMigrations(); err != nil {
			return err
		}
	}

	svcs, err := app.NewServices(dbManager.DB(), cfg)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, svcs)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
