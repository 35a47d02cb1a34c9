package verify

import "errors"

// Verification errors.
var (
	// ErrNoMX is returned when a domain publishes no usable MX record.
	ErrNoMX = errors.New("no MX records")

	// ErrNXDomain is returned when the domain does not exist.
	ErrNXDomain = errors.New("domain does not exist")

	// ErrDNSFailure is returned when the resolver answers with a failure code.
	ErrDNSFailure = errors.New("dns query failed")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrUnexpectedGreeting is returned when a mail exchanger does not greet with 220.
	ErrUnexpectedGreeting = errors.New("unexpected smtp greeting")
)
