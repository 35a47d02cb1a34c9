package model

import "strings"

// SMTPStatus is the outcome of an SMTP recipient probe.
type SMTPStatus string

const (
	// SMTPUnchecked means no probe was attempted (disabled or no MX).
	SMTPUnchecked SMTPStatus = "unchecked"

	// SMTPAccepted means a mail exchanger answered RCPT TO with 2xx.
	SMTPAccepted SMTPStatus = "accepted"

	// SMTPRefused means a mail exchanger answered RCPT TO with 5xx.
	SMTPRefused SMTPStatus = "refused"

	// SMTPUnknown means the probe was inconclusive.
	SMTPUnknown SMTPStatus = "unknown"
)

// Notes attached to inconclusive verification results.
const (
	// NoteBadEmail is set when an address cannot be split into local part and domain.
	NoteBadEmail = "bad_email"

	// NoteMXUnreachable is set when every mail exchanger failed to answer.
	NoteMXUnreachable = "mx_unreachable"

	// ProfileErrorPrefix prefixes the note of an acquisition-failure record.
	ProfileErrorPrefix = "profile_error:"
)

// String returns the wire name of the status.
func (s SMTPStatus) String() string {
	return string(s)
}

// ParseSMTPStatus converts a stored status name into an SMTPStatus.
// An empty value is SMTPUnchecked, anything unrecognized is SMTPUnknown.
func ParseSMTPStatus(s string) SMTPStatus {
	switch SMTPStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", SMTPUnchecked:
		return SMTPUnchecked
	case SMTPAccepted:
		return SMTPAccepted
	case SMTPRefused:
		return SMTPRefused
	default:
		return SMTPUnknown
	}
}

// VerificationResult is the verification outcome for one address.
type VerificationResult struct {
	// MXExists is true when the domain publishes at least one usable MX record.
	MXExists bool `json:"mxExists"`

	// SMTPStatus is the RCPT probe outcome.
	SMTPStatus SMTPStatus `json:"smtpStatus"`

	// SMTPNote carries the answering host, "host:code", or a failure note.
	SMTPNote string `json:"smtpNote,omitempty"`
}

// Unverified returns the result used when no verification took place.
func Unverified() VerificationResult {
	return VerificationResult{SMTPStatus: SMTPUnchecked}
}
