package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/contactscan/internal/extract"
)

// Parser extracts contact information and outbound links from HTML.
type Parser struct {
	// baseURL is the final URL of the page, used for resolving relative links.
	baseURL *url.URL

	// normalizer extracts addresses from visible text and meta content.
	normalizer *extract.Normalizer
}

// ParseResult contains everything extracted from one HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// MailtoEmails are mailto: targets (text before any "?"), in document order.
	MailtoEmails []string

	// TextEmails are addresses found in visible text and meta content.
	TextEmails []string

	// Emails is MailtoEmails followed by TextEmails, de-duplicated.
	Emails []string

	// Links are absolute http(s) anchor targets, de-duplicated in document order.
	Links []string

	// MetaContent holds every non-empty <meta content> value.
	MetaContent []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u, normalizer: extract.NewNormalizer()}, nil
}

// Parse parses HTML content and extracts emails and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	root, err := html.Parse(content)
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &ParseResult{
		Title:        strings.TrimSpace(doc.Find("title").First().Text()),
		MailtoEmails: make([]string, 0),
		Links:        make([]string, 0),
		MetaContent:  make([]string, 0),
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if addrs, ok := mailtoTargets(href); ok {
			result.MailtoEmails = append(result.MailtoEmails, addrs...)
			return
		}
		if link := p.resolveURL(href); link != "" {
			result.Links = append(result.Links, link)
		}
	})

	doc.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		if content := strings.TrimSpace(s.AttrOr("content", "")); content != "" {
			result.MetaContent = append(result.MetaContent, content)
		}
	})

	blob := visibleText(root) + " " + strings.Join(result.MetaContent, " ")
	result.TextEmails = p.normalizer.Extract(blob)
	result.MailtoEmails = extract.Unique(result.MailtoEmails)
	result.Links = extract.Unique(result.Links)
	result.Emails = extract.Unique(append(append([]string{}, result.MailtoEmails...), result.TextEmails...))

	return result, nil
}

// mailtoTargets returns the addresses of a mailto: href.
// A href listing several recipients yields each of them.
func mailtoTargets(href string) ([]string, bool) {
	if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
		return nil, false
	}
	target, _, _ := strings.Cut(href[len("mailto:"):], "?")

	var out []string
	for _, addr := range strings.Split(target, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out, true
}

// resolveURL resolves href against the base URL.
// It returns "" for fragment-only links and anything that is not http(s).
func (p *Parser) resolveURL(href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}

// skippedTextElements hold text that is never rendered.
var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// visibleText concatenates the page's rendered text nodes with spaces.
func visibleText(root *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTextElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return b.String()
}
