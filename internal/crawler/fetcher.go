package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/contactscan/internal/model"
)

// Default fetch settings.
const (
	DefaultHeadTimeout  = 8 * time.Second
	DefaultFetchTimeout = 12 * time.Second
	DefaultMaxBytes     = 1_000_000
	DefaultUserAgent    = "ContactScan/1.0 (+https://github.com/nao1215/contactscan)"

	maxRedirects = 10
)

// PageFetcher fetches and parses a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) model.FetchResult
}

// Fetcher fetches a page with a HEAD size probe followed by a capped GET.
// It never returns an error: every failure is reported in the result status.
type Fetcher struct {
	// client performs the requests. It follows redirects and keeps cookies
	// per registrable domain.
	client *http.Client

	// headTimeout bounds the HEAD probe.
	headTimeout time.Duration

	// fetchTimeout bounds the GET request including the body read.
	fetchTimeout time.Duration

	// maxBytes is the size cap for both the probe and the body read.
	maxBytes int64

	// userAgent identifies the crawler.
	userAgent string

	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithHeadTimeout sets the timeout of the HEAD size probe.
func WithHeadTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.headTimeout = d
	}
}

// WithFetchTimeout sets the timeout of the GET request.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithMaxBytes sets the page size cap.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		headTimeout:  DefaultHeadTimeout,
		fetchTimeout: DefaultFetchTimeout,
		maxBytes:     DefaultMaxBytes,
		userAgent:    DefaultUserAgent,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = NewHTTPClient()
	}
	return f
}

// NewHTTPClient returns the default client: a cookie jar scoped by the
// public suffix list and a bounded redirect policy.
func NewHTTPClient() *http.Client {
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{
		Jar:           jar,
		CheckRedirect: limitRedirects,
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects: %w", maxRedirects, ErrTooManyRedirects)
	}
	return nil
}

// Fetch fetches pageURL and extracts its emails and links.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) model.FetchResult {
	result := model.FetchResult{URL: pageURL}

	size, err := f.probeSize(ctx, pageURL)
	if err != nil {
		result.Status = model.FetchFailure(errorKind(err))
		f.logger.Debug("head probe failed", "url", pageURL, "error", err)
		return result
	}
	if size > f.maxBytes {
		result.Status = model.SkipLarge(size)
		return result
	}

	body, finalURL, code, err := f.get(ctx, pageURL)
	if err != nil {
		result.Status = model.FetchFailure(errorKind(err))
		f.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return result
	}
	result.FinalURL = finalURL
	if code >= http.StatusBadRequest {
		result.Status = model.HTTPFailure(code)
		return result
	}

	parser, err := NewParser(finalURL)
	if err != nil {
		result.Status = model.FetchFailure(KindParse)
		return result
	}
	parsed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		result.Status = model.FetchFailure(KindParse)
		return result
	}

	result.Status = model.FetchOK
	result.Emails = parsed.Emails
	result.Links = parsed.Links
	return result
}

// probeSize issues a HEAD request and returns the declared Content-Length,
// or -1 when the server does not declare one.
func (f *Fetcher) probeSize(ctx context.Context, pageURL string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.headTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.ContentLength, nil
}

// get fetches the page body through a size limit.
func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, finalURL, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, finalURL, resp.StatusCode, err
	}
	return body, finalURL, resp.StatusCode, nil
}
