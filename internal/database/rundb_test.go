package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/contactscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestReport creates a report started at the given time.
func createTestReport(startedAt time.Time) *model.ScanReport {
	candidates := []model.Record{
		{
			Handle:      "janedoe",
			DisplayName: "Jane Doe",
			ExternalURL: "https://linktr.ee/janedoe",
			OriginURL:   "https://janedoe.dev/contact",
			Email:       "jane@janedoe.dev",
			Tier:        model.TierSiteDeep,
			MXExists:    true,
			SMTPStatus:  model.SMTPAccepted,
			SMTPNote:    "mx1.janedoe.dev",
		},
		{
			Handle:     "janedoe",
			Email:      "jane.doe@janedoe.dev",
			Tier:       model.TierGuessPersonal,
			OriginURL:  "https://janedoe.dev",
			MXExists:   true,
			SMTPStatus: model.SMTPUnchecked,
		},
		{
			Handle:     "ghost",
			Tier:       model.TierError,
			SMTPStatus: model.SMTPUnchecked,
			SMTPNote:   "profile_error:NotFound",
		},
	}
	report := model.NewScanReport(2, candidates, candidates[:1])
	report.Summary.StartedAt = startedAt
	report.Summary.FinishedAt = startedAt.Add(time.Minute)
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		if _, err := Open(filepath.Join(t.TempDir(), "missing"), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveRun(context.Background(), "first", createTestReport(time.Now())); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		_ = db.Close()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		db, err = Open(dir, opts)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 || runs[0].Label != "first" {
			t.Errorf("runs = %+v", runs)
		}
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	want := createTestReport(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	id, err := db.SaveRun(ctx, "usernames.txt", want)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if len(got.Candidates) != len(want.Candidates) {
		t.Fatalf("got %d candidates, want %d", len(got.Candidates), len(want.Candidates))
	}
	for i := range want.Candidates {
		if got.Candidates[i] != want.Candidates[i] {
			t.Errorf("candidate %d = %+v, want %+v", i, got.Candidates[i], want.Candidates[i])
		}
	}
	if len(got.Reduced) != 1 || got.Reduced[0] != want.Reduced[0] {
		t.Errorf("reduced = %+v", got.Reduced)
	}
	if got.Summary.Identities != 2 || got.Summary.Errors != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if !got.Summary.StartedAt.Equal(want.Summary.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.Summary.StartedAt, want.Summary.StartedAt)
	}
	if got.Summary.TierCounts[model.TierGuessPersonal] != 1 {
		t.Errorf("TierCounts = %v", got.Summary.TierCounts)
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	if _, err := db.GetRun(context.Background(), 42); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
	if _, err := db.LatestRunID(context.Background()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LatestRunID() error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Saved out of chronological order.
	for _, tc := range []struct {
		label  string
		offset time.Duration
	}{
		{"middle", time.Hour},
		{"oldest", 0},
		{"newest", 2*time.Hour + 500*time.Millisecond},
	} {
		if _, err := db.SaveRun(ctx, tc.label, createTestReport(base.Add(tc.offset))); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", tc.label, err)
		}
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	labels := make([]string, 0, len(runs))
	for _, r := range runs {
		labels = append(labels, r.Label)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels = %v, want %v", labels, want)
			break
		}
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d runs, want 2", len(limited))
	}

	latest, err := db.LatestRunID(ctx)
	if err != nil {
		t.Fatalf("LatestRunID() error = %v", err)
	}
	if latest != runs[0].ID {
		t.Errorf("LatestRunID() = %d, want %d", latest, runs[0].ID)
	}
}

func TestFindByHandle(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := createTestReport(base)
	newer := createTestReport(base.Add(time.Hour))
	newer.Reduced = []model.Record{{Handle: "janedoe", Email: "hi@janedoe.dev", Tier: model.TierBio, SMTPStatus: model.SMTPUnchecked}}

	for _, r := range []*model.ScanReport{older, newer} {
		if _, err := db.SaveRun(ctx, "", r); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	got, err := db.FindByHandle(ctx, "janedoe")
	if err != nil {
		t.Fatalf("FindByHandle() error = %v", err)
	}
	if len(got) != 2 || got[0].Email != "hi@janedoe.dev" || got[1].Email != "jane@janedoe.dev" {
		t.Errorf("FindByHandle() = %+v", got)
	}

	none, err := db.FindByHandle(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindByHandle() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no records, got %+v", none)
	}
}

func TestSaveRunEmptyReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, "empty", model.NewScanReport(0, nil, nil))
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(got.Candidates) != 0 || len(got.Reduced) != 0 {
		t.Errorf("expected empty logs, got %+v", got)
	}
}
