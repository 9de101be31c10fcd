package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokensmith/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tokensmith version",
	Args:  cobra.NoArgs,
	// config loading is irrelevant here
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tokensmith", version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
