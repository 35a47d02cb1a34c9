package model

// ScanReport is everything one scan run produced.
type ScanReport struct {
	// Version is the contactscan version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary aggregates the run.
	Summary RunSummary `json:"summary"`

	// Candidates is the candidate log, placeholders included.
	Candidates []Record `json:"candidates"`

	// Reduced is the reduced log, at most one record per handle.
	Reduced []Record `json:"reduced"`
}

// NewScanReport builds a report and its summary from the two logs.
func NewScanReport(identities int, candidates, reduced []Record) *ScanReport {
	return &ScanReport{
		Summary:    Summarize(identities, candidates, reduced),
		Candidates: candidates,
		Reduced:    reduced,
	}
}
