package model

// CandidateEmail is an address discovered for one identity.
// Values are never mutated after creation.
type CandidateEmail struct {
	// Address is the email address as found (case preserved).
	Address string `json:"address"`

	// Tier is how the address was discovered.
	Tier SourceTier `json:"tier"`

	// OriginURL is the page the address was found on.
	// Empty for bio hits; for guesses it is "https://<domain>".
	OriginURL string `json:"originUrl,omitempty"`

	// Handle is the identity the address belongs to.
	Handle string `json:"handle"`
}

// NewCandidate creates a CandidateEmail.
func NewCandidate(handle, address string, tier SourceTier, originURL string) CandidateEmail {
	return CandidateEmail{
		Address:   address,
		Tier:      tier,
		OriginURL: originURL,
		Handle:    handle,
	}
}
