package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contactscan/internal/domains"
	"github.com/nao1215/contactscan/internal/model"
)

// DefaultMaxDeepLinks is the default number of linked sites visited per identity.
const DefaultMaxDeepLinks = 5

// Representative is the first link seen for a distinct registrable domain.
type Representative struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

// CrawlResult is what a deep crawl found for one identity.
type CrawlResult struct {
	// Candidates are the site and site_deep candidates in discovery order.
	Candidates []model.CandidateEmail

	// PersonalDomains are the visited domains that yielded at least one
	// email, in selection order.
	PersonalDomains []string

	// Selected are the representative links chosen for the deep tier,
	// before the maxDeepLinks cap.
	Selected []Representative

	// Attempts lists every fetch made.
	Attempts []model.CrawlAttempt
}

// DeepCrawler walks an identity's site graph two levels deep: the declared
// external URL, then one representative link per personal-looking domain.
type DeepCrawler struct {
	fetcher    PageFetcher
	classifier *domains.Classifier

	// maxDeepLinks caps the number of representative links visited.
	maxDeepLinks int

	// concurrency is the number of deep fetches in flight for one identity.
	concurrency int

	// ignorePatterns are URL path globs never selected for the deep tier.
	ignorePatterns []string

	logger *slog.Logger
}

// DeepCrawlerOption configures a DeepCrawler.
type DeepCrawlerOption func(*DeepCrawler)

// WithMaxDeepLinks sets how many representative links are visited.
// Zero disables the deep tier.
func WithMaxDeepLinks(n int) DeepCrawlerOption {
	return func(c *DeepCrawler) {
		c.maxDeepLinks = max(n, 0)
	}
}

// WithDeepConcurrency sets how many deep fetches run at once.
func WithDeepConcurrency(n int) DeepCrawlerOption {
	return func(c *DeepCrawler) {
		c.concurrency = max(n, 1)
	}
}

// WithIgnorePatterns sets URL path patterns never followed by the deep tier.
// Patterns use glob syntax (e.g., "*.pdf", "/cart/*").
func WithIgnorePatterns(patterns []string) DeepCrawlerOption {
	return func(c *DeepCrawler) {
		c.ignorePatterns = patterns
	}
}

// WithCrawlerLogger sets the logger.
func WithCrawlerLogger(logger *slog.Logger) DeepCrawlerOption {
	return func(c *DeepCrawler) {
		c.logger = logger
	}
}

// NewDeepCrawler creates a new DeepCrawler.
func NewDeepCrawler(fetcher PageFetcher, classifier *domains.Classifier, opts ...DeepCrawlerOption) *DeepCrawler {
	c := &DeepCrawler{
		fetcher:      fetcher,
		classifier:   classifier,
		maxDeepLinks: DefaultMaxDeepLinks,
		concurrency:  1,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl fetches the identity's external URL and up to maxDeepLinks of the
// sites it links to. An identity without an external URL yields an empty result.
func (c *DeepCrawler) Crawl(ctx context.Context, identity model.Identity) CrawlResult {
	var result CrawlResult

	startURL := normalizeStartURL(identity.ExternalURL)
	if startURL == "" {
		return result
	}

	site := c.fetcher.Fetch(ctx, startURL)
	result.Attempts = append(result.Attempts, attempt(startURL, model.TierSite, site))
	for _, email := range site.Emails {
		result.Candidates = append(result.Candidates,
			model.NewCandidate(identity.Handle, email, model.TierSite, identity.ExternalURL))
	}
	c.logger.Debug("fetched external url",
		"handle", identity.Handle, "url", startURL, "status", site.Status, "emails", len(site.Emails), "links", len(site.Links))

	result.Selected = c.SelectLinks(site.Links)
	visit := result.Selected
	if len(visit) > c.maxDeepLinks {
		visit = visit[:c.maxDeepLinks]
	}
	if len(visit) == 0 {
		return result
	}

	pages := c.fetchAll(ctx, visit)
	for i, rep := range visit {
		page := pages[i]
		result.Attempts = append(result.Attempts, attempt(rep.URL, model.TierSiteDeep, page))
		if len(page.Emails) > 0 {
			result.PersonalDomains = append(result.PersonalDomains, rep.Domain)
		}
		for _, email := range page.Emails {
			result.Candidates = append(result.Candidates,
				model.NewCandidate(identity.Handle, email, model.TierSiteDeep, rep.URL))
		}
	}

	return result
}

// SelectLinks returns the first link of every distinct registrable domain
// that is neither an aggregator nor a social platform, in link order.
// Links matching an ignore pattern are skipped.
func (c *DeepCrawler) SelectLinks(links []string) []Representative {
	seen := make(map[string]struct{})
	var out []Representative

	for _, link := range links {
		domain, ok := domains.DomainOf(link)
		if !ok || c.classifier.IsAggregatorOrSocial(domain) {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		if ignored(c.ignorePatterns, link) {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, Representative{Domain: domain, URL: link})
	}
	return out
}

// fetchAll fetches the representatives and returns results in input order.
func (c *DeepCrawler) fetchAll(ctx context.Context, reps []Representative) []model.FetchResult {
	results := make([]model.FetchResult, len(reps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, rep := range reps {
		g.Go(func() error {
			results[i] = c.fetcher.Fetch(gctx, rep.URL)
			return nil
		})
	}
	// Fetch never fails; errors are carried in each result's status.
	_ = g.Wait()

	return results
}

func attempt(u string, tier model.SourceTier, r model.FetchResult) model.CrawlAttempt {
	return model.CrawlAttempt{URL: u, Tier: tier, Status: r.Status, Emails: len(r.Emails)}
}

// normalizeStartURL trims the URL and defaults a missing scheme to https.
func normalizeStartURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.String()
}
