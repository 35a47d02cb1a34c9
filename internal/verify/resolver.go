package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Default resolver settings.
const (
	DefaultDNSTimeout = 5 * time.Second
	FallbackDNSServer = "8.8.8.8:53"
	resolvConfPath    = "/etc/resolv.conf"
)

// MX is one mail exchanger of a domain.
type MX struct {
	Host       string `json:"host"`
	Preference uint16 `json:"preference"`
}

// MXResolver looks up the mail exchangers of a domain.
type MXResolver interface {
	// LookupMX returns the exchangers sorted by preference (lowest first).
	// It returns ErrNoMX when the domain has none.
	LookupMX(ctx context.Context, domain string) ([]MX, error)
}

// DNSResolver resolves MX records by querying a DNS server directly.
type DNSResolver struct {
	// server is the "host:port" of the DNS server.
	server string

	// timeout bounds a single lookup, including a TCP retry.
	timeout time.Duration

	logger *slog.Logger
}

// DNSResolverOption configures a DNSResolver.
type DNSResolverOption func(*DNSResolver)

// WithDNSServer sets the DNS server address. A missing port defaults to 53.
func WithDNSServer(server string) DNSResolverOption {
	return func(r *DNSResolver) {
		if server == "" {
			return
		}
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
		r.server = server
	}
}

// WithDNSTimeout sets the lookup timeout.
func WithDNSTimeout(d time.Duration) DNSResolverOption {
	return func(r *DNSResolver) {
		r.timeout = d
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) DNSResolverOption {
	return func(r *DNSResolver) {
		r.logger = logger
	}
}

// NewDNSResolver creates a resolver using the system's first nameserver,
// or FallbackDNSServer when none is configured.
func NewDNSResolver(opts ...DNSResolverOption) *DNSResolver {
	r := &DNSResolver{
		server:  SystemDNSServer(),
		timeout: DefaultDNSTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SystemDNSServer returns the first nameserver of /etc/resolv.conf as "host:port".
func SystemDNSServer() string {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(cfg.Servers) == 0 {
		return FallbackDNSServer
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// Server returns the DNS server address in use.
func (r *DNSResolver) Server() string {
	return r.server
}

// LookupMX queries the MX records of domain.
// A null MX (RFC 7505) counts as no MX.
func (r *DNSResolver) LookupMX(ctx context.Context, domain string) ([]MX, error) {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return nil, ErrNoMX
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: r.timeout}
	in, _, err := client.ExchangeContext(ctx, msg, r.server)
	if err == nil && in != nil && in.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: r.timeout}
		in, _, err = tcp.ExchangeContext(ctx, msg, r.server)
	}
	if err != nil {
		return nil, fmt.Errorf("mx lookup %s: %w", domain, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("mx lookup %s: %w", domain, ErrNXDomain)
	default:
		return nil, fmt.Errorf("mx lookup %s: %s: %w", domain, dns.RcodeToString[in.Rcode], ErrDNSFailure)
	}

	records := make([]MX, 0, len(in.Answer))
	for _, ans := range in.Answer {
		rr, ok := ans.(*dns.MX)
		if !ok {
			continue
		}
		host := strings.TrimSuffix(rr.Mx, ".")
		if host == "" {
			continue
		}
		records = append(records, MX{Host: host, Preference: rr.Preference})
	}
	if len(records) == 0 {
		return nil, ErrNoMX
	}

	slices.SortStableFunc(records, func(a, b MX) int {
		return int(a.Preference) - int(b.Preference)
	})
	r.logger.Debug("mx lookup", "domain", domain, "records", len(records), "server", r.server)
	return records, nil
}
