package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/contactscan/internal/domains"
	"github.com/nao1215/contactscan/internal/model"
)

// Verifier combines an MX lookup with an optional SMTP recipient probe.
// MX answers are memoized for the lifetime of the Verifier, so one
// Verifier should serve a single run.
type Verifier struct {
	resolver MXResolver
	prober   RCPTProber

	// smtpVerify enables the RCPT probe.
	smtpVerify bool

	logger *slog.Logger

	mu      sync.Mutex
	mxCache map[string][]MX
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithSMTPVerify enables the SMTP probe using prober.
// A nil prober leaves probing disabled.
func WithSMTPVerify(prober RCPTProber) VerifierOption {
	return func(v *Verifier) {
		v.prober = prober
		v.smtpVerify = prober != nil
	}
}

// WithVerifierLogger sets the logger.
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a Verifier backed by resolver.
func NewVerifier(resolver MXResolver, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		resolver: resolver,
		logger:   slog.Default(),
		mxCache:  make(map[string][]MX),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// SMTPEnabled reports whether the RCPT probe is active.
func (v *Verifier) SMTPEnabled() bool {
	return v.smtpVerify
}

// MailExchangers returns the exchangers of domain, or nil when it has none
// or the lookup failed.
func (v *Verifier) MailExchangers(ctx context.Context, domain string) []MX {
	domain = strings.ToLower(strings.TrimSpace(domain))

	v.mu.Lock()
	cached, ok := v.mxCache[domain]
	v.mu.Unlock()
	if ok {
		return cached
	}

	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil {
		v.logger.Debug("no mail exchanger", "domain", domain, "error", err)
		records = nil
	}

	// Cancellation says nothing about the domain; do not remember it.
	if ctx.Err() == nil {
		v.mu.Lock()
		v.mxCache[domain] = records
		v.mu.Unlock()
	}
	return records
}

// HasMX reports whether domain publishes at least one usable MX record.
func (v *Verifier) HasMX(ctx context.Context, domain string) bool {
	return len(v.MailExchangers(ctx, domain)) > 0
}

// Verify checks address and never fails: inconclusive outcomes are
// reported in the result.
func (v *Verifier) Verify(ctx context.Context, address string) model.VerificationResult {
	_, domain, ok := domains.SplitAddress(address)
	if !ok {
		return model.VerificationResult{SMTPStatus: model.SMTPUnknown, SMTPNote: model.NoteBadEmail}
	}

	exchangers := v.MailExchangers(ctx, domain)
	if len(exchangers) == 0 {
		return model.Unverified()
	}

	result := model.VerificationResult{MXExists: true, SMTPStatus: model.SMTPUnchecked}
	if !v.smtpVerify {
		return result
	}

	for _, mx := range exchangers {
		if ctx.Err() != nil {
			break
		}
		code, err := v.prober.ProbeRCPT(ctx, mx.Host, address)
		if err != nil {
			v.logger.Debug("smtp probe failed", "host", mx.Host, "error", err)
			continue
		}
		result.SMTPStatus, result.SMTPNote = classify(mx.Host, code)
		return result
	}

	result.SMTPStatus = model.SMTPUnknown
	result.SMTPNote = model.NoteMXUnreachable
	return result
}

// classify maps an RCPT reply code to a status and note.
func classify(host string, code int) (model.SMTPStatus, string) {
	switch {
	case code >= 200 && code < 300:
		return model.SMTPAccepted, host
	case code >= 500 && code < 600:
		return model.SMTPRefused, fmt.Sprintf("%s:%d", host, code)
	default:
		return model.SMTPUnknown, fmt.Sprintf("%s:%d", host, code)
	}
}
