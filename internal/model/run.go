package model

import "time"

// IdentityRun is the pipeline state for a single identity.
// Steps append to it; nothing is removed once added.
type IdentityRun struct {
	// Identity is the acquired profile.
	Identity Identity `json:"identity"`

	// Candidates are all discovered and guessed addresses in discovery order.
	Candidates []CandidateEmail `json:"candidates,omitempty"`

	// PersonalDomains are the deep-crawled domains that yielded at least one email.
	PersonalDomains []string `json:"personalDomains,omitempty"`

	// Attempts lists every page fetch made for the identity.
	Attempts []CrawlAttempt `json:"attempts,omitempty"`

	// Records are the built rows, one per candidate.
	Records []Record `json:"records,omitempty"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// StartedAt and FinishedAt bound the processing of the identity.
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// NewIdentityRun creates the pipeline state for an identity.
func NewIdentityRun(identity Identity) *IdentityRun {
	return &IdentityRun{
		Identity:  identity,
		StartedAt: time.Now(),
	}
}

// AddCandidates appends candidates in order.
func (r *IdentityRun) AddCandidates(candidates ...CandidateEmail) {
	r.Candidates = append(r.Candidates, candidates...)
}

// CandidatesByTier returns the candidates of one tier in discovery order.
func (r *IdentityRun) CandidatesByTier(tier SourceTier) []CandidateEmail {
	var out []CandidateEmail
	for _, c := range r.Candidates {
		if c.Tier == tier {
			out = append(out, c)
		}
	}
	return out
}

// Finish stamps the end time.
func (r *IdentityRun) Finish() {
	r.FinishedAt = time.Now()
}
