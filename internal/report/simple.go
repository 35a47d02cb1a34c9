package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/contactscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose adds the origin URL and SMTP note to each contact.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary and the reduced log.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report.Summary)
	w.writeContacts(&sb, report.Reduced)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteRecords outputs only the contact list.
func (w *SimpleWriter) WriteRecords(records []model.Record) (int, error) {
	var sb strings.Builder
	w.writeContacts(&sb, records)
	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CONTACTSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	s := report.Summary
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:     %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Identities:  %d\n", s.Identities)
	fmt.Fprintf(sb, "Errors:      %d\n", s.Errors)
	fmt.Fprintf(sb, "Candidates:  %d\n", s.Candidates)
	fmt.Fprintf(sb, "Contacts:    %d\n", s.Reduced)
	sb.WriteString("\n")
}

// writeSummary writes candidate counts by tier and by SMTP status.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CANDIDATES BY SOURCE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, tier := range model.DiscoveryTiers() {
		fmt.Fprintf(sb, "  %-16s %d\n", strings.ToUpper(tier.String())+":", s.TierCounts[tier])
	}
	sb.WriteString("\n")

	if s.Candidates-s.Errors == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("SMTP STATUS\n\n")
	for _, status := range []model.SMTPStatus{model.SMTPAccepted, model.SMTPRefused, model.SMTPUnknown, model.SMTPUnchecked} {
		fmt.Fprintf(sb, "  %-16s %d\n", strings.ToUpper(status.String())+":", s.StatusCounts[status])
	}
	sb.WriteString("\n")
}

// writeContacts writes one block per record.
func (w *SimpleWriter) writeContacts(sb *strings.Builder, records []model.Record) {
	if len(records) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CONTACTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(records) == 0 {
		sb.WriteString("  No contacts found\n\n")
		return
	}

	for _, r := range records {
		fmt.Fprintf(sb, "  [%s] %s  <%s>\n", statusIndicator(r), r.Handle, r.Email)
		if r.DisplayName != "" {
			fmt.Fprintf(sb, "    Name:   %s\n", r.DisplayName)
		}
		fmt.Fprintf(sb, "    Source: %s\n", r.Tier)
		if w.verbose {
			if r.OriginURL != "" {
				fmt.Fprintf(sb, "    Found:  %s\n", r.OriginURL)
			}
			if r.SMTPNote != "" {
				fmt.Fprintf(sb, "    Note:   %s\n", r.SMTPNote)
			}
		}
	}
	sb.WriteString("\n")
}

// statusIndicator returns a visual indicator for the verification outcome.
func statusIndicator(r model.Record) string {
	switch {
	case r.SMTPStatus == model.SMTPAccepted:
		return "+"
	case r.SMTPStatus == model.SMTPRefused:
		return "x"
	case r.MXExists:
		return "~"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by ContactScan\n")
	sb.WriteString("https://github.com/nao1215/contactscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
