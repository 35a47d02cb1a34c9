package domains

// DefaultAggregators are link-in-bio and URL shortener domains.
// Their pages are crawled but they never count as personal domains.
var DefaultAggregators = []string{
	"linktr.ee",
	"bio.site",
	"beacons.ai",
	"bit.ly",
	"campsite.bio",
	"msha.ke",
	"withkoji.com",
	"stan.store",
}

// DefaultSocial are social platform domains.
var DefaultSocial = []string{
	"instagram.com",
	"facebook.com",
	"fb.com",
	"youtube.com",
	"youtu.be",
	"tiktok.com",
	"x.com",
	"twitter.com",
	"pinterest.com",
	"patreon.com",
	"substack.com",
	"linkedin.com",
	"github.com",
	"reddit.com",
	"medium.com",
	"t.me",
	"discord.gg",
	"discord.com",
	"keybase.io",
	"wa.me",
}

// DefaultPlaceholders are reserved documentation domains (RFC 2606).
var DefaultPlaceholders = []string{
	"example.com",
	"example.org",
	"example.net",
}
