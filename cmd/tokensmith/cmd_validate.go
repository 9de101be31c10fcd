package main

import (
	"github.com/spf13/cobra"

	"tokensmith/internal/validate"
)

var validateAgainst string

var validateCmd = &cobra.Command{
	Use:   "validate <tokens-dir>",
	Short: "Validate a modular token directory",
	Long: `Runs every integrity check over the modular directory: required
files and structure, reference resolution (including alternative
spellings and cycles), theme configuration, and round-trip stability.

Findings are reported with a severity; only critical and high findings
fail validation. With --against, the tree is also compared to a
canonical document: both must resolve to the same token graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := validate.New(cfg)
		v.Log = logger
		return emitReport(v.All(args[0], validateAgainst))
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateAgainst, "against", "", "canonical document to compare the tree against")
}
