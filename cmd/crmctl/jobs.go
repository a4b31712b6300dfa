package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/app"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/config"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := app.Migrate(cfg.PG.DSN, cfg.App.MigrationsDir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send Telegram digests to every workspace with a bot configured",
}

var digestDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Send today's digest: events, overdue and due-today tasks and touches per user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, _ *zap.Logger) error {
			report, err := a.Services().Digest.Daily(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var digestWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Send the plan for the next 7 days grouped by day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, _ *zap.Logger) error {
			report, err := a.Services().Digest.Weekly(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive-tasks",
	Short: "Archive tasks completed more than 12 hours ago",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, log *zap.Logger) error {
			tasks, err := a.Services().Digest.ArchiveCompleted(ctx)
			if err != nil {
				return err
			}
			log.Info("tasks archived", zap.Int("count", len(tasks)))
			return printJSON(cmd, map[string]any{"archived": len(tasks), "tasks": tasks})
		})
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send personal reminders for tasks due tomorrow and approaching project deadlines",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, _ *zap.Logger) error {
			report, err := a.Services().Digest.Reminders(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var (
	scanWorkspace string
	scanKeyword   string
	scanPlatform  string
	scanLimit     int
	scanActor     string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a Pain Radar scan for a keyword and wait for it to finish",
	Long: `Run a Pain Radar scan synchronously. The scan is recorded exactly like one
started from the API, so it shows up in the scan history of the workspace.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		platform := dom.Platform(strings.ToUpper(strings.TrimSpace(scanPlatform)))
		if !platform.Valid() {
			return fmt.Errorf("unknown platform %q (REDDIT, HACKERNEWS, HABR or WEB)", scanPlatform)
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, _ *zap.Logger) error {
			scan, err := a.Services().PainRadar.Scan(ctx, scanWorkspace, scanActor, scanKeyword, platform, scanLimit)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, scan); err != nil {
				return err
			}
			if scan.Status == dom.ScanFailed {
				return errors.New("scan failed: " + scan.ErrorMessage)
			}
			return nil
		})
	},
}

var (
	userEmail    string
	userName     string
	userPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user together with a personal workspace they own",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, _ *zap.Logger) error {
			user, ws, err := a.Services().Users.Register(ctx, userEmail, userName, userPassword)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"userId": user.ID, "email": user.Email, "workspaceId": ws.ID})
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for seeding users by hand",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := "admin"
		if len(args) > 0 {
			password = args[0]
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(h))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanWorkspace, "workspace", "", "Workspace ID")
	scanCmd.Flags().StringVar(&scanKeyword, "keyword", "", "Keyword ID")
	scanCmd.Flags().StringVar(&scanPlatform, "platform", string(dom.PlatformReddit), "REDDIT, HACKERNEWS, HABR or WEB")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 50, "Maximum posts to fetch")
	scanCmd.Flags().StringVar(&scanActor, "actor", "", "User ID recorded as the scan author")
	_ = scanCmd.MarkFlagRequired("workspace")
	_ = scanCmd.MarkFlagRequired("keyword")
	_ = scanCmd.MarkFlagRequired("actor")

	createUserCmd.Flags().StringVar(&userEmail, "email", "", "Email")
	createUserCmd.Flags().StringVar(&userName, "name", "", "Display name")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Password (at least 6 characters)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("password")
}
