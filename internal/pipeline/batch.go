package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/record"
	"github.com/nao1215/contactscan/internal/source"
)

// Result is the outcome of one identity.
type Result struct {
	// Handle is the requested handle.
	Handle string

	// Run is the pipeline state, nil when the profile could not be acquired.
	Run *model.IdentityRun

	// Records are the identity's candidate rows. An acquisition failure
	// yields exactly one error placeholder.
	Records []model.Record

	// Err is the acquisition or pipeline error, if any.
	Err error
}

// Failed reports whether the profile could not be acquired.
func (r Result) Failed() bool {
	return r.Run == nil
}

// BatchProcessor handles concurrent processing of multiple identities.
// It uses errgroup to bound the workers and a shared limiter to space
// identities.
type BatchProcessor struct {
	source source.ProfileSource

	// pipelineFactory creates a fresh pipeline for each identity.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of identities in flight.
	concurrency int

	// delay is the minimum spacing between two identity starts.
	delay time.Duration

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent identities.
// Default is 1, which processes identities sequentially.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithInterRequestDelay sets the minimum spacing between identity starts.
// Zero disables spacing.
func WithInterRequestDelay(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		b.delay = max(d, 0)
	}
}

// NewBatchProcessor creates a new BatchProcessor reading profiles from src.
func NewBatchProcessor(src source.ProfileSource, pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		source:          src,
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes handles and returns the results in input order.
// Results of identities that never started because of cancellation are
// left zero.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, handles []string) ([]Result, error) {
	results := make([]Result, len(handles))
	err := bp.ProcessBatchWithCallback(ctx, handles, func(r Result, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback processes handles and calls callback for each
// completed identity. The callback runs on the worker that finished the
// identity, so it must be safe for concurrent use when concurrency > 1.
// Identities interrupted by cancellation are not reported.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	handles []string,
	callback func(result Result, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_identities", len(handles),
		"concurrency", bp.concurrency,
		"delay", bp.delay,
	)
	startTime := time.Now()

	var limiter *rate.Limiter
	if bp.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(bp.delay), 1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, handle := range handles {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			bp.logger.Info("processing identity",
				"handle", handle,
				"index", i+1,
				"total", len(handles),
			)

			result := bp.process(ctx, handle)
			if ctx.Err() != nil {
				return ctx.Err()
			}

			callback(result, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_identities", len(handles),
		"elapsed", time.Since(startTime),
	)

	return err
}

// process acquires one profile and runs a fresh pipeline over it.
func (bp *BatchProcessor) process(ctx context.Context, handle string) Result {
	identity, err := bp.source.Profile(ctx, handle)
	if err != nil {
		kind := source.ErrorKind(err)
		bp.logger.Warn("profile acquisition failed", "handle", handle, "kind", kind, "error", err)
		return Result{
			Handle:  handle,
			Records: []model.Record{record.ErrorRecord(handle, kind)},
			Err:     err,
		}
	}

	run := model.NewIdentityRun(identity)
	err = bp.pipelineFactory().Execute(ctx, run)
	if err != nil {
		bp.logger.Warn("identity pipeline failed", "handle", handle, "error", err)
	}

	bp.logger.Info("identity completed",
		"handle", handle,
		"candidates", len(run.Candidates),
	)
	return Result{
		Handle:  handle,
		Run:     run,
		Records: run.Records,
		Err:     err,
	}
}

// Records flattens results into candidate rows in input order.
func Records(results []Result) []model.Record {
	var out []model.Record
	for _, r := range results {
		out = append(out, r.Records...)
	}
	return out
}
