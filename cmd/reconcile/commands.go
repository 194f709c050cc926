package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"orbo/internal/app"
	"orbo/internal/services"
)

func newAdminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Refresh the admin rights cache from Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, _ := cmd.Flags().GetString("org")
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				if orgID != "" {
					res, err := svcs.AdminSync.ReconcileOrganization(ctx, orgID)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), res)
				}
				run, err := svcs.AdminSync.SyncAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"duration_ms":             run.Duration.Milliseconds(),
					"organizations_processed": len(run.Results),
					"results":                 run.Results,
				})
			})
		},
	}

	cmd.Flags().String("org", "", "Only reconcile this organization id.")
	return cmd
}

func newBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Create missing participants from chat activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, _ := cmd.Flags().GetString("org")
			chatIDs, _ := cmd.Flags().GetInt64Slice("chat")
			force, _ := cmd.Flags().GetBool("force")
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				res, err := svcs.Backfill.Backfill(ctx, services.BackfillRequest{
					OrgID:   orgID,
					ChatIDs: chatIDs,
					Force:   force,
					ActorID: "cli",
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().String("org", "", "Organization id (required).")
	cmd.Flags().Int64Slice("chat", nil, "Chat id to scan (repeatable). Defaults to every chat bound to the organization.")
	cmd.Flags().Bool("force", false, "Recorded in the audit log.")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func newMigrateChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate-chat",
		Short: "Move a chat flagged migration_needed to its supergroup id",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetInt64("from")
			to, _ := cmd.Flags().GetInt64("to")
			if from == 0 || to == 0 || from == to {
				return fmt.Errorf("--from and --to must be distinct non-zero chat ids")
			}
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				outcome, err := svcs.Migrations.Migrate(ctx, services.MigrationRequest{OldChatID: from, NewChatID: to})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), outcome)
			})
		},
	}

	cmd.Flags().Int64("from", 0, "Old chat id.")
	cmd.Flags().Int64("to", 0, "New supergroup chat id.")
	return cmd
}
