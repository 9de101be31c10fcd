package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokensmith/internal/recovery"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <tokens-dir> <canonical.json>",
	Short: "Consolidate a modular file tree into the canonical document",
	Long: `Reads the modular directory (set files, $metadata.json, $themes.json)
and writes the canonical single-file document design tools import.

Sets are reassembled in tokenSetOrder; the residual set's groups are
expanded back to the top level. An existing canonical file is backed
up first, and the written document is verified to resolve to the same
token graph as the tree.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := recovery.NewResult()
		engine := newEngine()

		doc, backupID, err := engine.ConsolidateDir(args[0], args[1])
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
		sets := 0
		if meta, ok := doc["$metadata"].(map[string]any); ok {
			if order, ok := meta["tokenSetOrder"].([]any); ok {
				sets = len(order)
			}
		}
		result.Succeed(fmt.Sprintf("consolidated %s (%d group(s)) into %s", args[0], sets, args[1]))
		return emit(result)
	},
}
