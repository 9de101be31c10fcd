package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokensmith/internal/recovery"
)

var splitCmd = &cobra.Command{
	Use:   "split <canonical.json> <out-dir>",
	Short: "Split a canonical token document into a modular file tree",
	Long: `Reads the canonical single-file document and writes one JSON file
per token set, plus $metadata.json and $themes.json, into out-dir.

Top-level groups map onto sets by the configured order; groups the
configuration does not place are collected into the residual set.
Existing files in out-dir are backed up before anything is written,
and the result is verified to resolve to the same token graph as the
input.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := recovery.NewResult()
		engine := newEngine()

		tree, backupID, err := engine.SplitFile(args[0], args[1])
		result.BackupID = backupID
		if err != nil {
			result.Fail(err)
			if backupID != "" {
				result.Suggest("restore the previous state with: tokensmith backup rollback %s", backupID)
			}
			return emit(result)
		}

		result.Transition(recovery.StateBackedUp)
		result.Transition(recovery.StateExecuting)
		result.Succeed(fmt.Sprintf("split %s into %d set(s) under %s", args[0], len(tree.Sets), args[1]))
		result.Detail("sets", tree.Metadata.TokenSetOrder)
		for _, w := range tree.Warnings {
			result.Suggest("%s", w)
		}
		return emit(result)
	},
}
