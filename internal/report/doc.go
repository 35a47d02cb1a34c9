// Package report writes scan results.
//
// This package contains writers for different output formats:
//   - CSVWriter: the candidate and reduced logs, one row per record
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: a run summary for sharing
//   - SimpleWriter: human-readable text for terminal display
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter. ReadRecordsCSV reads a
// candidate log back, including logs written by earlier tools.
package report
