package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/database"
	"github.com/nao1215/contactscan/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command reads runs archived by scan from the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show saved scan runs",
		Long: `History displays scan runs saved in the history database.

Without arguments it lists the most recent runs. With a run ID it prints that
run's report. The history is an archive: it is never read by scan.

Examples:
  # List the latest runs
  contactscan history

  # Show one run
  contactscan history 3

  # Show the latest run as JSON
  contactscan history --latest --json

  # Show every contact ever kept for a handle
  contactscan history --handle janedoe`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of runs to list (0 lists all)")
	cmd.Flags().BoolP("latest", "l", false, "Show the most recent run")
	cmd.Flags().String("handle", "", "Show the reduced records of one handle across runs")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Validate arguments before opening the database.
	var runID int64
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run ID: %s", args[0])
		}
		runID = id
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("db-dir"); dir != "" { //nolint:errcheck // Flag is defined above
		cfg.DBDir = dir
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	format := historyFormat(cmd)

	if handle, _ := cmd.Flags().GetString("handle"); handle != "" { //nolint:errcheck // Flag is defined above
		return showHandleHistory(ctx, db, out, handle, format)
	}

	if latest, _ := cmd.Flags().GetBool("latest"); latest && runID == 0 { //nolint:errcheck // Flag is defined above
		runID, err = db.LatestRunID(ctx)
		if err != nil {
			return fmt.Errorf("failed to find latest run: %w", err)
		}
	}

	if runID != 0 {
		return showRun(ctx, db, out, runID, format)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listRuns(ctx, db, out, limit, format)
}

// historyFormat returns "json", "markdown" or "simple".
func historyFormat(cmd *cobra.Command) string {
	if j, _ := cmd.Flags().GetBool("json"); j { //nolint:errcheck // Flag is defined in NewHistoryCmd
		return "json"
	}
	if m, _ := cmd.Flags().GetBool("markdown"); m { //nolint:errcheck // Flag is defined in NewHistoryCmd
		return "markdown"
	}
	return "simple"
}

// newReportWriter returns the report writer for format.
func newReportWriter(out io.Writer, format string) report.Writer {
	switch format {
	case "json":
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case "markdown":
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(true))
	}
}

// listRuns prints the saved runs, newest first.
func listRuns(ctx context.Context, db *database.RunDB, out io.Writer, limit int, format string) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if format == "json" {
		if runs == nil {
			runs = []database.RunMetadata{}
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(runs)
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'contactscan scan --profiles <file>' to run a scan.")
		return nil
	}

	fmt.Fprintf(out, "Saved runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %-8s  %-10s  %s\n", "ID", "Date", "Identities", "Errors", "Contacts", "Label")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-10d  %-8d  %-10d  %s\n",
			r.ID,
			r.Summary.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Summary.Identities,
			r.Summary.Errors,
			r.Summary.Reduced,
			r.Label,
		)
	}
	fmt.Fprintln(out, "\nUse 'contactscan history <id>' to show a run.")

	return nil
}

// showRun prints one run's report.
func showRun(ctx context.Context, db *database.RunDB, out io.Writer, runID int64, format string) error {
	scanReport, err := db.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("run %d not found (use 'contactscan history' to list runs)", runID)
		}
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}

	_, err = newReportWriter(out, format).Write(scanReport)
	return err
}

// showHandleHistory prints every reduced record kept for handle.
func showHandleHistory(ctx context.Context, db *database.RunDB, out io.Writer, handle, format string) error {
	records, err := db.FindByHandle(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to search history: %w", err)
	}
	if len(records) == 0 && format == "simple" {
		fmt.Fprintf(out, "No contacts found for %s\n", handle)
		return nil
	}

	_, err = newReportWriter(out, format).WriteRecords(records)
	return err
}
