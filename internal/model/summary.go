package model

import "time"

// RunSummary aggregates the outcome of one scan run.
type RunSummary struct {
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Identities is the number of identities processed.
	Identities int `json:"identities"`

	// Errors is the number of identities whose profile could not be acquired.
	Errors int `json:"errors"`

	// Candidates is the number of candidate log rows written (placeholders included).
	Candidates int `json:"candidates"`

	// Reduced is the number of reduced log rows (one per handle at most).
	Reduced int `json:"reduced"`

	// TierCounts counts candidate rows by tier.
	TierCounts map[SourceTier]int `json:"tierCounts"`

	// StatusCounts counts candidate rows by SMTP status.
	StatusCounts map[SMTPStatus]int `json:"statusCounts"`
}

// Summarize computes a RunSummary over candidate and reduced records.
func Summarize(identities int, candidates, reduced []Record) RunSummary {
	s := RunSummary{
		Identities:   identities,
		Candidates:   len(candidates),
		Reduced:      len(reduced),
		TierCounts:   make(map[SourceTier]int),
		StatusCounts: make(map[SMTPStatus]int),
	}
	for _, r := range candidates {
		if r.IsErrorPlaceholder() {
			s.Errors++
			continue
		}
		s.TierCounts[r.Tier]++
		s.StatusCounts[r.SMTPStatus]++
	}
	return s
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
