package model

import "strings"

// SourceTier tags a candidate email with how it was discovered.
// Lower priority values are more trusted.
type SourceTier string

const (
	// TierBio is an address found in the profile bio.
	TierBio SourceTier = "bio"

	// TierSite is an address found on the declared external URL.
	TierSite SourceTier = "site"

	// TierSiteDeep is an address found on a page linked from the external URL.
	TierSiteDeep SourceTier = "site_deep"

	// TierGuessPersonal is an address synthesized from the display name
	// and a personal domain.
	TierGuessPersonal SourceTier = "guess_personal"

	// TierError marks the placeholder record of an identity whose
	// profile could not be acquired.
	TierError SourceTier = "error"
)

// UnknownPriority is the priority of any tier that is not a discovery tier.
// It sorts after every known tier.
const UnknownPriority = 99

// DiscoveryTiers returns the discovery tiers in priority order.
func DiscoveryTiers() []SourceTier {
	return []SourceTier{TierBio, TierSite, TierSiteDeep, TierGuessPersonal}
}

// Priority returns the rank of the tier: Bio=1, Site=2, SiteDeep=3,
// GuessPersonal=4 and UnknownPriority for everything else.
func (t SourceTier) Priority() int {
	switch t {
	case TierBio:
		return 1
	case TierSite:
		return 2
	case TierSiteDeep:
		return 3
	case TierGuessPersonal:
		return 4
	default:
		return UnknownPriority
	}
}

// String returns the wire name of the tier.
func (t SourceTier) String() string {
	return string(t)
}

// ParseSourceTier converts a stored tier name into a SourceTier.
// Unknown names are kept verbatim so that they rank as UnknownPriority.
func ParseSourceTier(s string) SourceTier {
	return SourceTier(strings.ToLower(strings.TrimSpace(s)))
}
