package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary followed by the reduced log.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeTiers(md, report.Summary)
	w.writeStatuses(md, report.Summary)

	md.H2("Contacts")
	md.PlainText("")
	w.writeRecordsTable(md, report.Reduced)

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRecords outputs the records as a single table.
func (w *MarkdownWriter) WriteRecords(records []model.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Contacts")
	md.PlainText("")
	w.writeRecordsTable(md, records)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	s := report.Summary

	md.H1("ContactScan Report")
	md.PlainText("")

	rows := [][]string{
		{"Identities", strconv.Itoa(s.Identities)},
		{"Acquisition Errors", strconv.Itoa(s.Errors)},
		{"Candidate Rows", strconv.Itoa(s.Candidates)},
		{"Contacts", strconv.Itoa(s.Reduced)},
	}
	if !s.StartedAt.IsZero() {
		rows = append([][]string{{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")}}, rows...)
	}
	if d := s.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	if report.Version != "" {
		rows = append(rows, []string{"Version", report.Version})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.Identities == 0:
		md.Note("No identities were processed.")
	case s.Reduced == 0:
		md.Warningf("No contact address was found for any of %d identities.", s.Identities)
	case s.Errors > 0:
		md.Importantf("%d of %d profiles could not be acquired.", s.Errors, s.Identities)
	default:
		md.Tip(fmt.Sprintf("Found a contact address for %d of %d identities.", s.Reduced, s.Identities))
	}
	md.PlainText("")
}

// writeTiers writes candidate counts per tier with a pie chart.
func (w *MarkdownWriter) writeTiers(md *markdown.Markdown, s model.RunSummary) {
	md.H2("Candidates by Source")
	md.PlainText("")

	rows := make([][]string, 0, len(model.DiscoveryTiers())+1)
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Candidate Sources"),
		piechart.WithShowData(true),
	)
	charted := false
	for _, tier := range model.DiscoveryTiers() {
		n := s.TierCounts[tier]
		rows = append(rows, []string{tierLabel(tier), strconv.Itoa(n)})
		if n > 0 {
			chart.LabelAndIntValue(tierLabel(tier), uint64(n))
			charted = true
		}
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.Candidates-s.Errors) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if charted {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writeStatuses writes candidate counts per SMTP status.
func (w *MarkdownWriter) writeStatuses(md *markdown.Markdown, s model.RunSummary) {
	md.H2("Verification")
	md.PlainText("")

	statuses := []model.SMTPStatus{model.SMTPAccepted, model.SMTPRefused, model.SMTPUnknown, model.SMTPUnchecked}
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, []string{titleCase(status.String()), strconv.Itoa(s.StatusCounts[status])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"SMTP Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecordsTable writes one row per record.
func (w *MarkdownWriter) writeRecordsTable(md *markdown.Markdown, records []model.Record) {
	if len(records) == 0 {
		md.PlainText("No contacts found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			"`" + r.Handle + "`",
			orDash(r.DisplayName),
			orDash(r.Email),
			tierLabel(r.Tier),
			strconv.FormatBool(r.MXExists),
			r.SMTPStatus.String(),
			truncateString(orDash(r.OriginURL), 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Handle", "Name", "Email", "Source", "MX", "SMTP", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ContactScan](https://github.com/nao1215/contactscan)*")
}

// tierLabel turns a tier name such as "site_deep" into "Site Deep".
func tierLabel(tier model.SourceTier) string {
	return titleCase(strings.ReplaceAll(tier.String(), "_", " "))
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
