package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/contactscan/internal/model"
)

// ErrMissingColumn is returned when a candidate log lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// CSVWriter writes records in model.RecordColumns order.
//
// Rows can be streamed with Append as identities complete, so an
// interrupted run still leaves a usable candidate log behind.
type CSVWriter struct {
	mu            sync.Mutex
	out           *countingWriter
	csv           *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	out := &countingWriter{w: output}
	return &CSVWriter{out: out, csv: csv.NewWriter(out)}
}

// Append writes records, preceded by the header on first use, and flushes.
// It is safe for concurrent use.
func (w *CSVWriter) Append(records ...model.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.headerWritten {
		if err := w.csv.Write(model.RecordColumns); err != nil {
			return err
		}
		w.headerWritten = true
	}
	for _, r := range records {
		if err := w.csv.Write(r.Row()); err != nil {
			return err
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Write outputs the candidate log of the report.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteRecords(report.Candidates)
}

// WriteRecords outputs the header and records.
func (w *CSVWriter) WriteRecords(records []model.Record) (int, error) {
	before := w.bytesWritten()
	err := w.Append(records...)
	return w.bytesWritten() - before, err
}

func (w *CSVWriter) bytesWritten() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.n
}

// legacyColumns maps column names of older candidate logs to current ones.
var legacyColumns = map[string]string{
	"username":  "handle",
	"full_name": "display_name",
	"source":    "source_tier",
	"mx":        "mx_exists",
}

// ReadRecordsCSV reads a candidate log written by CSVWriter or by the
// older username/full_name/source/mx layout. Extra columns are ignored;
// handle and email are required.
func ReadRecordsCSV(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if current, ok := legacyColumns[name]; ok {
			name = current
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range []string{"handle", "email"} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}

	var records []model.Record
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		records = append(records, model.Record{
			Handle:      get("handle"),
			DisplayName: get("display_name"),
			ExternalURL: get("external_url"),
			OriginURL:   get("origin_url"),
			Email:       get("email"),
			Tier:        model.ParseSourceTier(get("source_tier")),
			MXExists:    parseBool(get("mx_exists")),
			SMTPStatus:  model.ParseSMTPStatus(get("smtp_status")),
			SMTPNote:    get("smtp_note"),
		})
	}
}

// parseBool accepts strconv forms plus "yes"; anything else is false.
func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "yes") {
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
