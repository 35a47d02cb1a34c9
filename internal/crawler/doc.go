// Package crawler fetches an identity's declared website and the sites it
// links to, and extracts contact email addresses from them.
//
// # Components
//
//   - Fetcher: fetches one page (HEAD size probe, capped GET) and parses it
//   - Parser: goquery-based extraction of mailto targets, visible text,
//     meta content and outbound links
//   - DeepCrawler: the two-level crawl over an identity's external URL and
//     one representative link per distinct non-aggregator domain
//
// # Limits
//
// Every fetch carries its own timeout and reads at most maxBytes of the
// body regardless of what Content-Length claims. The crawl never goes
// deeper than the pages linked directly from the external URL, and at most
// maxDeepLinks of those are visited.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(crawler.WithMaxBytes(1_000_000))
//	deep := crawler.NewDeepCrawler(fetcher, domains.NewClassifier(), crawler.WithMaxDeepLinks(5))
//	result := deep.Crawl(ctx, identity)
package crawler
