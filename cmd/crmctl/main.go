// Command crmctl runs the scheduled CRM jobs and maintenance tasks from a shell or a cron container.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/app"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/config"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/observability"
)

var timeout time.Duration

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crmctl",
	Short: "PASEKA IT CRM maintenance and scheduled jobs",
	Long: `crmctl runs the same jobs the /api/v1/cron endpoints expose, plus
database migrations, synchronous Pain Radar scans and user bootstrap.

Configuration is read from the environment, exactly like the API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	digestCmd.AddCommand(digestDailyCmd)
	digestCmd.AddCommand(digestWeeklyCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads config, builds the service layer and runs fn with a bounded context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := observability.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.NewWorker(cfg, log)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	runErr := fn(ctx, a, log)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil {
		log.Warn("close", zap.Error(err))
	}
	return runErr
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
