package crawler

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
)

// Failure kinds reported as "error:<Kind>" fetch statuses.
const (
	KindTimeout          = "Timeout"
	KindCanceled         = "Canceled"
	KindDNS              = "DNSError"
	KindConnection       = "ConnectionError"
	KindTLS              = "TLSError"
	KindTooManyRedirects = "TooManyRedirects"
	KindInvalidURL       = "InvalidURL"
	KindParse            = "ParseError"
	KindRequest          = "RequestError"
)

// ErrTooManyRedirects is returned by the redirect policy after maxRedirects hops.
var ErrTooManyRedirects = errors.New("too many redirects")

// errorKind classifies a request error into one of the failure kinds.
func errorKind(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, ErrTooManyRedirects) {
		return KindTooManyRedirects
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	if isTLSError(err) {
		return KindTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Op == "parse" || strings.Contains(urlErr.Err.Error(), "unsupported protocol scheme") {
			return KindInvalidURL
		}
	}

	return KindRequest
}

func isTLSError(err error) bool {
	var (
		recordErr    tls.RecordHeaderError
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}
