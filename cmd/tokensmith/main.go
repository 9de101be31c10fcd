// tokensmith manages a design token corpus: it splits a canonical
// token document into a modular file tree, consolidates the tree back,
// validates structure, references and themes, and protects every
// mutation with backups, rollback and bounded repair.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tokensmith/internal/config"
	"tokensmith/internal/oplog"
	"tokensmith/internal/recovery"
	"tokensmith/internal/session"
	"tokensmith/internal/transform"
)

var (
	// Global flags
	cfgPath    string
	jsonOutput bool
	noVerify   bool

	// Shared state built by the root PersistentPreRunE
	cfg     *config.Config
	logger  *oplog.Logger
	backups *recovery.Manager
	sess    *session.Session
)

var rootCmd = &cobra.Command{
	Use:   "tokensmith",
	Short: "Design token corpus manager",
	Long: `tokensmith keeps a design token corpus healthy across its two
representations: the canonical single-file document design tools
export, and the modular per-set file tree that versions cleanly.

Every mutating command takes a backup first, verifies the result, and
rolls its own state into the operation log. Use "backup list" and
"backup rollback" to inspect and undo past mutations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		logger = oplog.New(cfg.LogDir)
		backups = recovery.NewManager(cfg.BackupDir, cfg.BackupKeep)
		backups.Log = logger
		sess = session.New()
		return nil
	},
}

// newEngine builds a transformation engine wired to the backup manager
// and operation log
func newEngine() *transform.Engine {
	engine := transform.New(transform.Policy{
		SetOrder:     cfg.SetOrder,
		GroupMapping: cfg.GroupMapping,
		ResidualSet:  cfg.ResidualSet,
	})
	engine.HopLimit = cfg.HopLimit
	engine.Log = logger
	engine.Session = sess
	engine.VerifyRoundtrip = !noVerify
	engine.Backup = backups.Create
	return engine
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".tokensmith.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit results as JSON")
	rootCmd.PersistentFlags().BoolVar(&noVerify, "no-verify", false, "skip round-trip verification after transformations")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
