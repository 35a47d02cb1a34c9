package pipeline

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/source"
)

// slowSource blocks until the context ends.
type slowSource struct{}

func (slowSource) Profile(ctx context.Context, _ string) (model.Identity, error) {
	<-ctx.Done()
	return model.Identity{}, ctx.Err()
}

func testSource() *source.FileSource {
	return source.NewFileSource([]model.Identity{
		{Handle: "alice", DisplayName: "Alice"},
		{Handle: "bob", DisplayName: "Bob"},
		{Handle: "carol", DisplayName: "Carol"},
	})
}

func emptyPipeline() *Pipeline {
	return New()
}

// recordingPipeline emits one record per identity.
func recordingPipeline() *Pipeline {
	p := New()
	p.AddStep(&mockStep{
		name: "emit",
		doFunc: func(_ context.Context, run *model.IdentityRun) error {
			run.Records = append(run.Records, model.Record{
				Handle: run.Identity.Handle,
				Email:  run.Identity.Handle + "@mail.test",
				Tier:   model.TierBio,
			})
			return nil
		},
	})
	return p
}

func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(testSource(), emptyPipeline)
	if bp.concurrency != 1 {
		t.Errorf("default concurrency = %d, want 1", bp.concurrency)
	}
	if bp.delay != 0 {
		t.Errorf("default delay = %v, want 0", bp.delay)
	}

	bp = NewBatchProcessor(testSource(), emptyPipeline,
		WithConcurrency(4),
		WithInterRequestDelay(time.Second),
		WithConcurrency(0),
	)
	if bp.concurrency != 4 {
		t.Errorf("concurrency = %d, want 4 (non-positive ignored)", bp.concurrency)
	}
	if bp.delay != time.Second {
		t.Errorf("delay = %v, want 1s", bp.delay)
	}
}

func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("results follow input order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testSource(), recordingPipeline, WithConcurrency(3))
		handles := []string{"carol", "alice", "bob"}

		results, err := bp.ProcessBatch(context.Background(), handles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, r := range results {
			if r.Handle != handles[i] || r.Failed() {
				t.Errorf("result %d = %+v", i, r)
			}
		}
		var emails []string
		for _, rec := range Records(results) {
			emails = append(emails, rec.Email)
		}
		want := []string{"carol@mail.test", "alice@mail.test", "bob@mail.test"}
		if !slices.Equal(emails, want) {
			t.Errorf("Records() = %v, want %v", emails, want)
		}
	})

	t.Run("missing profile becomes a placeholder", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testSource(), recordingPipeline)

		results, err := bp.ProcessBatch(context.Background(), []string{"alice", "ghost"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ghost := results[1]
		if !ghost.Failed() || !errors.Is(ghost.Err, source.ErrProfileNotFound) {
			t.Fatalf("ghost result = %+v", ghost)
		}
		if len(ghost.Records) != 1 {
			t.Fatalf("ghost records = %v, want one placeholder", ghost.Records)
		}
		rec := ghost.Records[0]
		if rec.Handle != "ghost" || rec.Tier != model.TierError || rec.SMTPNote != "profile_error:NotFound" {
			t.Errorf("placeholder = %+v", rec)
		}
		if !rec.IsErrorPlaceholder() {
			t.Error("expected IsErrorPlaceholder")
		}
	})

	t.Run("step errors do not stop the batch", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(testSource(), func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "sometimes-fails",
				doFunc: func(_ context.Context, run *model.IdentityRun) error {
					processed.Add(1)
					if run.Identity.Handle == "bob" {
						return errors.New("simulated failure")
					}
					return nil
				},
			})
			return p
		})

		results, err := bp.ProcessBatch(context.Background(), []string{"alice", "bob", "carol"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processed.Load())
		}
		if results[1].Err == nil || results[1].Failed() {
			t.Errorf("bob result = %+v, want pipeline error with run", results[1])
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var called atomic.Int32

		bp := NewBatchProcessor(slowSource{}, emptyPipeline, WithConcurrency(2))
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		err := bp.ProcessBatchWithCallback(ctx, []string{"a", "b", "c", "d"}, func(Result, int) {
			called.Add(1)
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if called.Load() != 0 {
			t.Errorf("callback called %d times for interrupted identities", called.Load())
		}
	})
}

func TestBatchProcessorInterRequestDelay(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var starts []time.Time
	bp := NewBatchProcessor(testSource(), func() *Pipeline {
		p := New()
		p.AddStep(&mockStep{
			name: "stamp",
			doFunc: func(context.Context, *model.IdentityRun) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			},
		})
		return p
	}, WithConcurrency(3), WithInterRequestDelay(50*time.Millisecond))

	if _, err := bp.ProcessBatch(context.Background(), []string{"alice", "bob", "carol"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })
	if len(starts) != 3 {
		t.Fatalf("starts = %d, want 3", len(starts))
	}
	if span := starts[2].Sub(starts[0]); span < 90*time.Millisecond {
		t.Errorf("three identities started within %v, want spacing across workers", span)
	}
}

func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[int]string)

	bp := NewBatchProcessor(testSource(), recordingPipeline, WithConcurrency(2))
	handles := []string{"alice", "bob", "carol", "nobody"}

	err := bp.ProcessBatchWithCallback(context.Background(), handles, func(r Result, index int) {
		mu.Lock()
		defer mu.Unlock()
		seen[index] = r.Handle
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != len(handles) {
		t.Fatalf("callbacks = %d, want %d", len(seen), len(handles))
	}
	for i, h := range handles {
		if seen[i] != h {
			t.Errorf("index %d = %q, want %q", i, seen[i], h)
		}
	}
}
