package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be checked with
// errors.Is() while still reading well when printed.
var (
	// ErrNoProfiles is returned when no profile file is given.
	ErrNoProfiles = errors.New("no profiles specified: use --profiles")

	// ErrNoOutput is returned when the candidate log path is empty.
	ErrNoOutput = errors.New("no output file specified: --out must not be empty")

	// ErrInvalidMaxSiteBytes is returned when the page size limit is not positive.
	ErrInvalidMaxSiteBytes = errors.New("invalid max site bytes: must be positive")

	// ErrInvalidMaxDeepLinks is returned when the deep link cap is negative.
	// Use 0 to disable the deep crawl.
	ErrInvalidMaxDeepLinks = errors.New("invalid max deep links: must be non-negative")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidConcurrency is returned when a worker count is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when any network timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSMTPPort is returned for ports outside 1-65535.
	ErrInvalidSMTPPort = errors.New("invalid smtp port: must be between 1 and 65535")

	// ErrInvalidSMTPFrom is returned when the probe sender is not an address.
	ErrInvalidSMTPFrom = errors.New("invalid smtp from: must be an email address")

	// ErrInvalidProxyAddress is returned when the SMTP proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid smtp proxy: must be host:port")
)
