// Package pipeline runs the per-identity discovery steps and fans a batch
// of identities out over a bounded worker pool.
//
// A Pipeline executes its steps in order against one model.IdentityRun:
// bio extraction, the deep site crawl, personal-domain guessing and
// finally verification, which materializes the records. Soft failures are
// recorded on the run as values; only cancellation stops a pipeline early.
//
// BatchProcessor acquires each profile from a source.ProfileSource,
// turns acquisition failures into placeholder records, and spaces
// identities with a shared rate limiter so the inter-request delay holds
// regardless of the worker count.
package pipeline
