// Package model defines the core data structures used throughout ContactScan.
//
// This package contains the following main types:
//   - Identity: A social-media identity as yielded by a profile source
//   - CandidateEmail: An address discovered for an identity, tagged with its tier
//   - VerificationResult: The MX/SMTP outcome for one address
//   - Record: The flat row written to the candidate and reduced logs
//   - IdentityRun: The per-identity pipeline state
//
// Models live in their own package so that crawler, verify, record and
// report can share them without import cycles. All of them serialize to JSON.
package model
