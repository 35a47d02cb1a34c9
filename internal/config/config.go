package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/contactscan/internal/verify"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "contactscan"

	// DefaultMaxSiteBytes caps how much of a page is read and is the
	// Content-Length above which a page is skipped without a GET.
	DefaultMaxSiteBytes int64 = 1_000_000

	// DefaultMaxDeepLinks is how many outbound domains are visited per identity.
	DefaultMaxDeepLinks = 5

	// DefaultInterRequestDelay spaces consecutive identities.
	DefaultInterRequestDelay = 2 * time.Second

	// DefaultConcurrency processes identities one at a time.
	DefaultConcurrency = 1

	// DefaultDeepConcurrency fetches deep links one at a time.
	DefaultDeepConcurrency = 1

	// DefaultHeadTimeout bounds the size probe.
	DefaultHeadTimeout = 8 * time.Second

	// DefaultFetchTimeout bounds a page GET, body included.
	DefaultFetchTimeout = 12 * time.Second

	// DefaultDNSTimeout bounds one MX query.
	DefaultDNSTimeout = 5 * time.Second

	// DefaultSMTPTimeout bounds one SMTP session.
	DefaultSMTPTimeout = 8 * time.Second

	// DefaultSMTPPort is the MX port.
	DefaultSMTPPort = 25

	// DefaultSMTPFrom is the envelope sender of RCPT probes.
	DefaultSMTPFrom = "noreply@example.com"

	// DefaultHELOName is the name announced in HELO.
	DefaultHELOName = "example.com"

	// DefaultUserAgent identifies ContactScan in HTTP requests.
	DefaultUserAgent = "ContactScan/1.0 (+https://github.com/nao1215/contactscan)"

	// DefaultOutFile is the candidate log.
	DefaultOutFile = "emails.csv"

	// DefaultJSONFile is the candidate JSON dump.
	DefaultJSONFile = "emails.json"

	// DefaultCleanFile is the reduced log.
	DefaultCleanFile = "emails_clean.csv"
)

// Config holds all configuration options for a scan.
// It is populated from defaults, then the config file, then CLI flags,
// and passed through the application rather than kept in global state.
type Config struct {
	// UsernamesFile is the handle list selecting which profiles to scan.
	// When empty, every profile in ProfilesFile is scanned in file order.
	UsernamesFile string

	// ProfilesFile is the JSON, YAML or CSV profile export.
	ProfilesFile string

	// OutFile is the candidate log path.
	OutFile string

	// JSONFile is the candidate JSON path. Empty disables the dump.
	JSONFile string

	// CleanFile is the reduced log path. Empty disables reduction output.
	CleanFile string

	// MarkdownFile is the optional Markdown summary path.
	MarkdownFile string

	// MaxSiteBytes is the page size limit in bytes.
	MaxSiteBytes int64

	// MaxDeepLinks is the number of outbound domains visited per identity.
	MaxDeepLinks int

	// SMTPVerify enables the RCPT probe. MX lookups always run.
	SMTPVerify bool

	// InterRequestDelay is the minimum spacing between identities.
	InterRequestDelay time.Duration

	// Concurrency is the number of identities processed at once.
	Concurrency int

	// DeepConcurrency is the number of deep links fetched at once per identity.
	DeepConcurrency int

	// HeadTimeout, FetchTimeout, DNSTimeout and SMTPTimeout bound each
	// network call of their kind.
	HeadTimeout  time.Duration
	FetchTimeout time.Duration
	DNSTimeout   time.Duration
	SMTPTimeout  time.Duration

	// SMTPPort is the port dialed on each mail exchanger.
	SMTPPort int

	// SMTPFrom is the MAIL FROM address of probes.
	SMTPFrom string

	// HELOName is the name announced in HELO.
	HELOName string

	// DNSServer is the resolver in "host[:port]" form.
	// Empty means the system resolver from /etc/resolv.conf.
	DNSServer string

	// SMTPProxy is an optional SOCKS5 proxy "host:port" for SMTP probes.
	SMTPProxy string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// AggregatorDomains, SocialDomains and PlaceholderDomains extend the
	// built-in domain lists.
	AggregatorDomains  []string
	SocialDomains      []string
	PlaceholderDomains []string

	// IgnorePatterns are glob patterns of links the deep crawl skips.
	IgnorePatterns []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// MaskEmails masks addresses in log output.
	MaskEmails bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the default locations.
	ConfigFilePath string

	// DBDir is the directory of the run history database.
	// Defaults to XDG data directory (~/.local/share/contactscan on Linux).
	DBDir string

	// SaveToDB archives the run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutFile:           DefaultOutFile,
		JSONFile:          DefaultJSONFile,
		CleanFile:         DefaultCleanFile,
		MaxSiteBytes:      DefaultMaxSiteBytes,
		MaxDeepLinks:      DefaultMaxDeepLinks,
		InterRequestDelay: DefaultInterRequestDelay,
		Concurrency:       DefaultConcurrency,
		DeepConcurrency:   DefaultDeepConcurrency,
		HeadTimeout:       DefaultHeadTimeout,
		FetchTimeout:      DefaultFetchTimeout,
		DNSTimeout:        DefaultDNSTimeout,
		SMTPTimeout:       DefaultSMTPTimeout,
		SMTPPort:          DefaultSMTPPort,
		SMTPFrom:          DefaultSMTPFrom,
		HELOName:          DefaultHELOName,
		UserAgent:         DefaultUserAgent,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for ContactScan.
// On Linux: ~/.local/share/contactscan
// On macOS: ~/Library/Application Support/contactscan
// On Windows: %LOCALAPPDATA%\contactscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ContactScan.
// On Linux: ~/.config/contactscan
// On macOS: ~/Library/Application Support/contactscan
// On Windows: %APPDATA%\contactscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, so callers can
// use errors.Is. It runs once, before any identity is processed.
func (c *Config) Validate() error {
	if c.ProfilesFile == "" {
		return ErrNoProfiles
	}
	if c.OutFile == "" {
		return ErrNoOutput
	}
	if c.MaxSiteBytes <= 0 {
		return ErrInvalidMaxSiteBytes
	}
	if c.MaxDeepLinks < 0 {
		return ErrInvalidMaxDeepLinks
	}
	if c.InterRequestDelay < 0 {
		return ErrInvalidDelay
	}
	if c.Concurrency <= 0 || c.DeepConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.HeadTimeout <= 0 || c.FetchTimeout <= 0 || c.DNSTimeout <= 0 || c.SMTPTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return ErrInvalidSMTPPort
	}
	if strings.Count(c.SMTPFrom, "@") != 1 || strings.HasPrefix(c.SMTPFrom, "@") || strings.HasSuffix(c.SMTPFrom, "@") {
		return ErrInvalidSMTPFrom
	}
	if c.SMTPProxy != "" && !verify.IsValidProxyAddress(c.SMTPProxy) {
		return ErrInvalidProxyAddress
	}
	return nil
}
