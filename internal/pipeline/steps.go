package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/contactscan/internal/crawler"
	"github.com/nao1215/contactscan/internal/extract"
	"github.com/nao1215/contactscan/internal/guess"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/record"
)

// SiteCrawler walks an identity's external site graph.
type SiteCrawler interface {
	Crawl(ctx context.Context, identity model.Identity) crawler.CrawlResult
}

// MXChecker gates guessing on a domain accepting mail.
type MXChecker interface {
	HasMX(ctx context.Context, domain string) bool
}

// AddressVerifier annotates a candidate address.
type AddressVerifier interface {
	Verify(ctx context.Context, address string) model.VerificationResult
}

// ContactVerifier is both an MX gate and an address verifier.
// *verify.Verifier satisfies it.
type ContactVerifier interface {
	MXChecker
	AddressVerifier
}

// DefaultSteps returns the discovery steps in their canonical order.
func DefaultSteps(sites SiteCrawler, verifier ContactVerifier, logger *slog.Logger) []Step {
	return []Step{
		NewBioStep(logger),
		NewCrawlStep(sites, logger),
		NewGuessStep(verifier, logger),
		NewVerifyStep(verifier, logger),
	}
}

// BioStep extracts addresses declared in the profile bio.
type BioStep struct {
	logger *slog.Logger
}

// NewBioStep creates a new bio extraction step.
func NewBioStep(logger *slog.Logger) *BioStep {
	return &BioStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *BioStep) Name() string {
	return "bio"
}

// Do appends one bio candidate per address found in the bio.
func (s *BioStep) Do(_ context.Context, run *model.IdentityRun) error {
	if run.Identity.Bio == "" {
		return nil
	}

	emails := extract.Emails(run.Identity.Bio)
	for _, email := range emails {
		run.AddCandidates(model.NewCandidate(run.Identity.Handle, email, model.TierBio, ""))
	}
	s.logger.Debug("bio scanned", "handle", run.Identity.Handle, "emails", len(emails))
	return nil
}

// CrawlStep fetches the external URL and the personal sites it links to.
type CrawlStep struct {
	sites  SiteCrawler
	logger *slog.Logger
}

// NewCrawlStep creates a new crawl step.
func NewCrawlStep(sites SiteCrawler, logger *slog.Logger) *CrawlStep {
	return &CrawlStep{sites: sites, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do records site and site_deep candidates, the fetch attempts and the
// personal domains proven by the deep tier.
func (s *CrawlStep) Do(ctx context.Context, run *model.IdentityRun) error {
	if run.Identity.ExternalURL == "" {
		return nil
	}

	result := s.sites.Crawl(ctx, run.Identity)
	run.AddCandidates(result.Candidates...)
	run.Attempts = append(run.Attempts, result.Attempts...)
	run.PersonalDomains = append(run.PersonalDomains, result.PersonalDomains...)

	s.logger.Debug("site crawled",
		"handle", run.Identity.Handle,
		"fetches", len(result.Attempts),
		"candidates", len(result.Candidates),
		"personal_domains", len(result.PersonalDomains),
	)
	return nil
}

// GuessStep proposes conventional addresses on personal domains.
type GuessStep struct {
	mx     MXChecker
	logger *slog.Logger
}

// NewGuessStep creates a new guessing step.
func NewGuessStep(mx MXChecker, logger *slog.Logger) *GuessStep {
	return &GuessStep{mx: mx, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *GuessStep) Name() string {
	return "guess"
}

// Do guesses only on personal domains that publish an MX record.
func (s *GuessStep) Do(ctx context.Context, run *model.IdentityRun) error {
	for _, domain := range run.PersonalDomains {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.mx.HasMX(ctx, domain) {
			s.logger.Debug("skipping guesses, no mx", "handle", run.Identity.Handle, "domain", domain)
			continue
		}

		origin := "https://" + domain
		for _, email := range guess.Emails(run.Identity.DisplayName, domain) {
			run.AddCandidates(model.NewCandidate(run.Identity.Handle, email, model.TierGuessPersonal, origin))
		}
	}
	return nil
}

// VerifyStep verifies every candidate and builds the identity's records.
type VerifyStep struct {
	verifier AddressVerifier
	logger   *slog.Logger
}

// NewVerifyStep creates a new verification step.
func NewVerifyStep(verifier AddressVerifier, logger *slog.Logger) *VerifyStep {
	return &VerifyStep{verifier: verifier, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do verifies candidates one at a time in discovery order. An address
// that appears under several tiers is verified once.
func (s *VerifyStep) Do(ctx context.Context, run *model.IdentityRun) error {
	verified := make(map[string]model.VerificationResult, len(run.Candidates))
	results := make([]model.VerificationResult, len(run.Candidates))

	for i, c := range run.Candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v, ok := verified[c.Address]
		if !ok {
			v = s.verifier.Verify(ctx, c.Address)
			verified[c.Address] = v
		}
		results[i] = v
	}

	run.Records = record.BuildAll(run.Identity, run.Candidates, results)
	s.logger.Debug("candidates verified", "handle", run.Identity.Handle, "records", len(run.Records))
	return nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
