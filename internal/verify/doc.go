// Package verify checks whether an email address can receive mail.
//
// Verification has two stages:
//
//  1. MX lookup (DNSResolver, built on miekg/dns). A domain without a
//     usable MX record fails verification outright.
//  2. Optional SMTP recipient probe (SMTPProber). Each mail exchanger is
//     tried in preference order: greeting, HELO, MAIL FROM, RCPT TO, QUIT.
//     The RCPT reply decides the status: 2xx accepted, 5xx refused,
//     anything else unknown. Exchangers that cannot be reached are skipped.
//
// Verification never fails with an error. Inconclusive outcomes are
// reported as model.SMTPUnknown or a missing MX record.
//
// Outbound port 25 is blocked on many networks; SMTP probing is disabled
// by default and can be routed through a SOCKS5 proxy.
package verify
