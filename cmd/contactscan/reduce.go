package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/config"
	"github.com/nao1215/contactscan/internal/record"
	"github.com/nao1215/contactscan/internal/report"
)

// NewReduceCmd creates the reduce command.
func NewReduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Reduce a candidate log to one best address per identity",
		Long: `Reduce re-runs the reduction step over an existing candidate log.

Placeholder rows and invalid or sandbox addresses are dropped, then the
highest-priority source is kept for every handle: bio, site, site_deep,
guess_personal. Ties keep the first row. Logs written by older versions
(username, full_name, source, mx columns) are accepted.

Examples:
  # Reduce the default candidate log
  contactscan reduce

  # Reduce a specific file
  contactscan reduce --in run1/emails.csv --out run1/emails_clean.csv`,
		Args: cobra.NoArgs,
		RunE: runReduceCmd,
	}

	cmd.Flags().StringP("in", "i", config.DefaultOutFile, "Candidate log CSV to read")
	cmd.Flags().StringP("out", "o", config.DefaultCleanFile, "Reduced log CSV to write")

	return cmd
}

// runReduceCmd executes the reduce command.
func runReduceCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	in, err := cmd.Flags().GetString("in")
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)

	f, err := os.Open(in) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to open candidate log: %w", err)
	}
	defer f.Close()

	records, err := report.ReadRecordsCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read candidate log %s: %w", in, err)
	}

	reduced := record.Reduce(records, newClassifier(cfg))
	logger.Debug("reduced candidate log", "rows", len(records), "contacts", len(reduced))

	w, err := createOutputFile(out)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := report.NewCSVWriter(w).WriteRecords(reduced); err != nil {
		return fmt.Errorf("failed to write reduced log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reduced %d rows to %d contacts -> %s\n", len(records), len(reduced), out)
	return nil
}
