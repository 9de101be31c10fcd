package main

import (
	"encoding/json"
	"fmt"
	"os"

	"tokensmith/internal/recovery"
	"tokensmith/internal/validate"
)

// emit renders an operation result: JSON when --json is set, otherwise
// a short human summary. A failed result also returns an error so the
// process exits nonzero.
func emit(result *recovery.Result) error {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		if !result.Success {
			return errSilentExit
		}
		return nil
	}

	if result.Success {
		fmt.Println(result.Message)
	} else {
		fmt.Fprintln(os.Stderr, result.Message)
	}
	for _, e := range result.Errors {
		if e != result.Message {
			fmt.Fprintln(os.Stderr, " ", e)
		}
	}
	for _, s := range result.Suggestions {
		fmt.Println("Suggestion:", s)
	}
	if result.BackupID != "" {
		fmt.Println("Backup:", result.BackupID)
	}
	if !result.Success {
		return errSilentExit
	}
	return nil
}

// errSilentExit signals a nonzero exit without re-printing the failure
var errSilentExit = fmt.Errorf("operation failed")

// emitReport renders a validation report
func emitReport(report *validate.Report) error {
	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		if !report.Valid() {
			return errSilentExit
		}
		return nil
	}

	for _, issue := range report.Issues {
		line := fmt.Sprintf("[%s] %s", issue.Severity, issue.Kind)
		if issue.Path != "" {
			line += " " + issue.Path
		}
		fmt.Println(line)
		fmt.Println(" ", issue.Message)
		if issue.Suggestion != "" {
			fmt.Println("  Suggestion:", issue.Suggestion)
		}
	}
	for _, w := range report.Warnings {
		fmt.Println("warning:", w)
	}

	if report.Valid() {
		fmt.Printf("valid: %d issue(s), none blocking\n", len(report.Issues))
		return nil
	}
	fmt.Printf("invalid: %d critical, %d high\n",
		report.Count(validate.SeverityCritical), report.Count(validate.SeverityHigh))
	return errSilentExit
}

// printJSON writes any value as indented JSON to stdout
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
