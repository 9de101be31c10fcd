package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokensmith/internal/recovery"
	"tokensmith/internal/validate"
)

var recoverCmd = &cobra.Command{
	Use:   "recover <tokens-dir>",
	Short: "Repair common corruption in a modular token directory",
	Long: `Applies the bounded repair strategies: rebuild a missing
$metadata.json from the set files on disk, recreate a missing
$themes.json as an empty list, mend malformed JSON (comments, trailing
commas, unclosed brackets), and normalize token shapes.

Unresolved references are reported but never rewritten. Every affected
file is backed up before the first repair, and the directory is
re-validated afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		result := recovery.NewResult()

		repairer := &recovery.Repairer{Backups: backups, Log: logger}
		outcome, err := repairer.Repair(dir)
		if outcome != nil {
			result.BackupID = outcome.BackupID
			result.Detail("actions", outcome.Actions)
		}
		if err != nil {
			result.Fail(err)
			return emit(result)
		}

		result.Transition(recovery.StateBackedUp)
		result.Transition(recovery.StateExecuting)

		for _, u := range outcome.Unrepaired {
			result.Errors = append(result.Errors, u)
		}

		report := validate.New(cfg).All(dir)
		result.Detail("issuesAfterRepair", len(report.Issues))

		switch {
		case len(outcome.Unrepaired) > 0:
			result.Transition(recovery.StateFailed)
			result.Transition(recovery.StateRecovering)
			result.Transition(recovery.StateUnrecovered)
			result.Message = fmt.Sprintf("repaired %d problem(s); %d could not be fixed automatically",
				len(outcome.Actions), len(outcome.Unrepaired))
			result.Suggest("restore from a backup with: tokensmith backup rollback <id>")
		case !report.Valid():
			result.Succeed(fmt.Sprintf("applied %d repair(s); validation still reports %d blocking issue(s)",
				len(outcome.Actions), report.Count(validate.SeverityCritical)+report.Count(validate.SeverityHigh)))
			result.Suggest("run: tokensmith validate %s", dir)
		default:
			result.Succeed(fmt.Sprintf("applied %d repair(s); the directory now validates cleanly", len(outcome.Actions)))
		}
		return emit(result)
	},
}
