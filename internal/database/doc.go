// Package database provides SQLite-based storage for ContactScan.
//
// This package implements the RunDB, which archives every scan run:
//   - the run summary (counts by tier and SMTP status)
//   - the candidate log, placeholders included
//   - the reduced log
//
// The archive is written after a run and read by the history command.
// The scan pipeline itself never reads it.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// archive is a single file and the binary cross-compiles.
package database
