package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokensmith/internal/validate"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <tokens-dir>",
	Short: "Re-validate the token directory whenever it changes",
	Long: `Watches the modular directory and re-runs validation after every
burst of file changes. Editor save patterns (rename-and-replace,
temp files) are debounced into a single run.

Stops on SIGINT or SIGTERM.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		// set files may live in subdirectories
		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() || path == dir {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch subdirectories: %w", err)
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		runValidation := func() {
			v := validate.New(cfg)
			v.Log = logger
			report := v.All(dir)
			if report.Valid() {
				fmt.Printf("%s valid (%d issue(s))\n", time.Now().Format("15:04:05"), len(report.Issues))
				return
			}
			fmt.Printf("%s invalid: %d critical, %d high\n", time.Now().Format("15:04:05"),
				report.Count(validate.SeverityCritical), report.Count(validate.SeverityHigh))
			for _, issue := range report.Issues {
				if issue.Severity == validate.SeverityCritical || issue.Severity == validate.SeverityHigh {
					fmt.Println(" ", issue.Message)
				}
			}
		}

		fmt.Println("watching", dir)
		runValidation()

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !relevantChange(event) {
					continue
				}
				logger.Event("change detected",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				runValidation()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", zap.Error(err))
			case <-sig:
				fmt.Println("stopping")
				return nil
			}
		}
	},
}

// relevantChange filters watcher noise: only JSON files matter, and
// temp files from atomic writes do not
func relevantChange(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !strings.HasSuffix(base, ".json") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "quiet period before re-validating")
}
