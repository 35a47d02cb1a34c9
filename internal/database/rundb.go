package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contactscan/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "contactscan.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RecordKind distinguishes the two logs stored per run.
type RecordKind string

const (
	// KindCandidate marks rows of the candidate log.
	KindCandidate RecordKind = "candidate"

	// KindReduced marks rows of the reduced log.
	KindReduced RecordKind = "reduced"
)

// RunDB provides SQLite-based storage for scan runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per scan run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		identities INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		candidates INTEGER NOT NULL DEFAULT 0,
		reduced INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL,
		label TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Candidate and reduced log rows, in log order
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		handle TEXT NOT NULL,
		display_name TEXT,
		external_url TEXT,
		origin_url TEXT,
		email TEXT,
		source_tier TEXT NOT NULL,
		mx_exists INTEGER NOT NULL DEFAULT 0,
		smtp_status TEXT,
		smtp_note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id, kind, position);
	CREATE INDEX IF NOT EXISTS idx_records_handle ON records(handle);
	CREATE INDEX IF NOT EXISTS idx_records_email ON records(email);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored run.
// This is used for listing history without loading the records.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64 `json:"id"`

	// Label is a free-form description, typically the input file name.
	Label string `json:"label,omitempty"`

	// Summary holds the counts of the run.
	Summary model.RunSummary `json:"summary"`
}

// SaveRun stores the report in a single transaction and returns the run ID.
func (rdb *RunDB) SaveRun(ctx context.Context, label string, report *model.ScanReport) (int64, error) {
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	s := report.Summary
	startedAt := s.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	var finishedAt any
	if !s.FinishedAt.IsZero() {
		finishedAt = formatTimestamp(s.FinishedAt)
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, identities, errors, candidates, reduced, summary_json, label)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(startedAt),
		finishedAt,
		s.Identities,
		s.Errors,
		s.Candidates,
		s.Reduced,
		string(summaryJSON),
		label,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	if err := insertRecords(ctx, tx, runID, KindCandidate, report.Candidates); err != nil {
		return 0, err
	}
	if err := insertRecords(ctx, tx, runID, KindReduced, report.Reduced); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// insertRecords writes records of one kind with their log positions.
func insertRecords(ctx context.Context, tx *sql.Tx, runID int64, kind RecordKind, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (run_id, kind, position, handle, display_name, external_url, origin_url,
		email, source_tier, mx_exists, smtp_status, smtp_note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID,
			string(kind),
			i,
			r.Handle,
			r.DisplayName,
			r.ExternalURL,
			r.OriginURL,
			r.Email,
			r.Tier.String(),
			r.MXExists,
			r.SMTPStatus.String(),
			r.SMTPNote,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s record: %w", kind, err)
		}
	}
	return nil
}

// ListRuns returns run metadata, newest first. limit <= 0 returns all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, label, summary_json FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var label sql.NullString
		var summaryJSON string

		if err := rows.Scan(&meta.ID, &label, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Label = label.String

		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			continue // Skip malformed summaries
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun loads a run with both logs.
// Returns ErrRunNotFound if no run has the ID.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*model.ScanReport, error) {
	var summaryJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	report := &model.ScanReport{}
	if err := json.Unmarshal([]byte(summaryJSON), &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}

	if report.Candidates, err = rdb.GetRunRecords(ctx, id, KindCandidate); err != nil {
		return nil, err
	}
	if report.Reduced, err = rdb.GetRunRecords(ctx, id, KindReduced); err != nil {
		return nil, err
	}
	return report, nil
}

// LatestRunID returns the ID of the most recent run.
// Returns ErrRunNotFound if the archive is empty.
func (rdb *RunDB) LatestRunID(ctx context.Context) (int64, error) {
	var id int64
	err := rdb.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRunNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// GetRunRecords returns one log of a run in log order.
func (rdb *RunDB) GetRunRecords(ctx context.Context, runID int64, kind RecordKind) ([]model.Record, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT handle, display_name, external_url, origin_url, email, source_tier, mx_exists, smtp_status, smtp_note
	FROM records
	WHERE run_id = ? AND kind = ?
	ORDER BY position
	`, runID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByHandle returns the reduced records of handle across all runs, newest first.
func (rdb *RunDB) FindByHandle(ctx context.Context, handle string) ([]model.Record, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT r.handle, r.display_name, r.external_url, r.origin_url, r.email, r.source_tier,
		r.mx_exists, r.smtp_status, r.smtp_note
	FROM records r JOIN runs ON runs.id = r.run_id
	WHERE r.handle = ? AND r.kind = ?
	ORDER BY runs.started_at DESC, runs.id DESC
	`, handle, string(KindReduced))
	if err != nil {
		return nil, fmt.Errorf("failed to find records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var r model.Record
		var displayName, externalURL, originURL, email, status, note sql.NullString
		var tier string

		if err := rows.Scan(&r.Handle, &displayName, &externalURL, &originURL, &email,
			&tier, &r.MXExists, &status, &note); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.DisplayName = displayName.String
		r.ExternalURL = externalURL.String
		r.OriginURL = originURL.String
		r.Email = email.String
		r.Tier = model.ParseSourceTier(tier)
		r.SMTPStatus = model.ParseSMTPStatus(status.String)
		r.SMTPNote = note.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// timestampLayout is fixed width so that lexical order of stored
// timestamps matches chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
