package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// Default SMTP probe settings.
const (
	DefaultSMTPPort    = 25
	DefaultSMTPTimeout = 8 * time.Second
	DefaultHELOName    = "example.com"
	DefaultMailFrom    = "noreply@example.com"
)

// RCPTProber asks a mail exchanger whether it accepts a recipient.
type RCPTProber interface {
	// ProbeRCPT returns the reply code to RCPT TO for address at host.
	// An error means the exchanger could not be reached or broke the
	// protocol before the RCPT reply.
	ProbeRCPT(ctx context.Context, host, address string) (int, error)
}

// SMTPProber runs a minimal SMTP session up to RCPT TO.
// One connection is opened per call and always ends with QUIT.
type SMTPProber struct {
	// dialer opens connections, directly or through a SOCKS5 proxy.
	dialer proxy.Dialer

	// timeout bounds the whole session including the dial.
	timeout time.Duration

	port     int
	heloName string
	mailFrom string

	logger *slog.Logger
}

// SMTPProberOption configures an SMTPProber.
type SMTPProberOption func(*SMTPProber)

// WithSMTPTimeout sets the session timeout.
func WithSMTPTimeout(timeout time.Duration) SMTPProberOption {
	return func(p *SMTPProber) {
		p.timeout = timeout
	}
}

// WithSMTPPort sets the port mail exchangers are contacted on.
func WithSMTPPort(port int) SMTPProberOption {
	return func(p *SMTPProber) {
		p.port = port
	}
}

// WithHELOName sets the name announced in HELO.
func WithHELOName(name string) SMTPProberOption {
	return func(p *SMTPProber) {
		p.heloName = name
	}
}

// WithMailFrom sets the envelope sender.
func WithMailFrom(addr string) SMTPProberOption {
	return func(p *SMTPProber) {
		p.mailFrom = addr
	}
}

// WithProberLogger sets the logger.
func WithProberLogger(logger *slog.Logger) SMTPProberOption {
	return func(p *SMTPProber) {
		p.logger = logger
	}
}

// NewSMTPProber creates a new SMTP prober.
// A nil dialer connects directly.
func NewSMTPProber(dialer proxy.Dialer, opts ...SMTPProberOption) *SMTPProber {
	if dialer == nil {
		dialer = proxy.Direct
	}
	p := &SMTPProber{
		dialer:   dialer,
		timeout:  DefaultSMTPTimeout,
		port:     DefaultSMTPPort,
		heloName: DefaultHELOName,
		mailFrom: DefaultMailFrom,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ProbeRCPT connects to host and returns the RCPT TO reply code for address.
// HELO and MAIL FROM replies are not checked; only the greeting must be 220.
func (p *SMTPProber) ProbeRCPT(ctx context.Context, host, address string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	target := net.JoinHostPort(host, strconv.Itoa(p.port))
	conn, err := dialWithContext(ctx, p.dialer, "tcp", target)
	if err != nil {
		return 0, fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, err
	}

	tp := textproto.NewConn(conn)
	defer tp.Close()

	code, msg, err := tp.ReadResponse(0)
	if err != nil {
		return 0, fmt.Errorf("read greeting from %s: %w", host, err)
	}
	if code != 220 {
		return 0, fmt.Errorf("%w from %s: %d %s", ErrUnexpectedGreeting, host, code, msg)
	}

	if _, _, err := command(tp, "HELO %s", p.heloName); err != nil {
		return 0, fmt.Errorf("HELO to %s: %w", host, err)
	}
	if _, _, err := command(tp, "MAIL FROM:<%s>", p.mailFrom); err != nil {
		return 0, fmt.Errorf("MAIL FROM to %s: %w", host, err)
	}
	code, msg, err = command(tp, "RCPT TO:<%s>", address)
	if err != nil {
		return 0, fmt.Errorf("RCPT TO to %s: %w", host, err)
	}
	p.logger.Debug("rcpt reply", "host", host, "code", code, "message", msg)

	// The verdict is already known; a failed QUIT changes nothing.
	_, _, _ = command(tp, "QUIT")

	return code, nil
}

// command sends one SMTP command and reads its (possibly multi-line) reply.
func command(tp *textproto.Conn, format string, args ...any) (int, string, error) {
	id, err := tp.Cmd(format, args...)
	if err != nil {
		return 0, "", err
	}
	tp.StartResponse(id)
	defer tp.EndResponse(id)

	return tp.ReadResponse(0)
}
