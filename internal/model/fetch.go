package model

import (
	"strconv"
	"strings"
)

// FetchStatus describes the outcome of a single page fetch.
// Non-OK values are "skip_large:<size>", "http_<code>" or "error:<Kind>".
type FetchStatus string

// FetchOK is the status of a fetch whose body was parsed.
const FetchOK FetchStatus = "ok"

// SkipLarge returns the status of a page whose declared size exceeds the cap.
func SkipLarge(size int64) FetchStatus {
	return FetchStatus("skip_large:" + strconv.FormatInt(size, 10))
}

// HTTPFailure returns the status of a response with a status code >= 400.
func HTTPFailure(code int) FetchStatus {
	return FetchStatus("http_" + strconv.Itoa(code))
}

// FetchFailure returns the status of a failed request of the given kind.
func FetchFailure(kind string) FetchStatus {
	return FetchStatus("error:" + kind)
}

// OK reports whether the fetch produced a parsed body.
func (s FetchStatus) OK() bool {
	return s == FetchOK
}

// Kind returns the status class: "ok", "skip_large", "http" or "error".
func (s FetchStatus) Kind() string {
	str := string(s)
	switch {
	case s == FetchOK:
		return "ok"
	case strings.HasPrefix(str, "skip_large:"):
		return "skip_large"
	case strings.HasPrefix(str, "http_"):
		return "http"
	case strings.HasPrefix(str, "error:"):
		return "error"
	default:
		return str
	}
}

// String returns the status text.
func (s FetchStatus) String() string {
	return string(s)
}

// FetchResult holds what a single page fetch produced.
// On any non-OK status Emails and Links are empty.
type FetchResult struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Links are resolved against it.
	FinalURL string `json:"finalUrl,omitempty"`

	// Status is the fetch outcome.
	Status FetchStatus `json:"status"`

	// Emails are distinct addresses in first-seen order
	// (mailto targets first, then text matches).
	Emails []string `json:"emails,omitempty"`

	// Links are absolute http(s) outbound links in document order.
	Links []string `json:"links,omitempty"`
}

// CrawlAttempt records one fetch made while crawling an identity's site graph.
type CrawlAttempt struct {
	URL    string      `json:"url"`
	Tier   SourceTier  `json:"tier"`
	Status FetchStatus `json:"status"`
	Emails int         `json:"emails"`
}
