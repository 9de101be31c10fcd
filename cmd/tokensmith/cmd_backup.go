package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokensmith/internal/recovery"
)

var (
	rollbackDryRun bool
	rollbackForce  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore stored backups",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, err := backups.List()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(manifests)
		}
		if len(manifests) == 0 {
			fmt.Println("no backups stored")
			return nil
		}
		for _, m := range manifests {
			fmt.Printf("%s  %s  %-12s %d file(s)\n",
				shortID(m.ID), m.Timestamp.Format("2006-01-02 15:04:05"), m.Operation, len(m.Files))
		}
		return nil
	},
}

var backupRollbackCmd = &cobra.Command{
	Use:   "rollback <backup-id>",
	Short: "Restore the files recorded in a backup",
	Long: `Restores every file a backup recorded, byte for byte. The id may be
a unique prefix.

Files that changed since the backup was taken abort the restore unless
--force is given; --dry-run prints the plan without touching anything.
A snapshot of the current state is always taken first, so a rollback
can itself be rolled back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := recovery.NewResult()
		plan, err := backups.Rollback(args[0], recovery.RollbackOptions{
			DryRun: rollbackDryRun,
			Force:  rollbackForce,
		})
		if plan != nil {
			result.BackupID = plan.BackupID
			result.Detail("plan", plan)
		}
		if err != nil {
			result.Fail(err)
			return emit(result)
		}

		result.Transition(recovery.StateBackedUp)
		result.Transition(recovery.StateExecuting)
		if rollbackDryRun {
			result.Succeed(fmt.Sprintf("would restore %d file(s) from %s (%d diverged)",
				len(plan.Restored), plan.BackupID, len(plan.Diverged)))
		} else {
			result.Succeed(fmt.Sprintf("restored %d file(s) from %s", len(plan.Restored), plan.BackupID))
			result.Detail("safetyBackup", plan.SafetyBackupID)
		}
		return emit(result)
	},
}

// shortID abbreviates a backup id for the list view. Hand-written
// manifests can carry ids shorter than the abbreviation.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	backupRollbackCmd.Flags().BoolVar(&rollbackDryRun, "dry-run", false, "plan the restore without writing")
	backupRollbackCmd.Flags().BoolVar(&rollbackForce, "force", false, "restore over files that changed since the backup")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRollbackCmd)
}
