package crawler

import (
	"slices"
	"strings"
	"testing"
)

func TestParser(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, base, html string) *ParseResult {
		t.Helper()
		parser, err := NewParser(base)
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		return result
	}

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		result := parse(t, "https://janedoe.dev/", `<html><head><title> Jane Doe </title></head></html>`)
		if result.Title != "Jane Doe" {
			t.Errorf("expected title 'Jane Doe', got %q", result.Title)
		}
	})

	t.Run("mailto targets drop the query", func(t *testing.T) {
		t.Parallel()

		html := `<body>
			<a href="mailto:hello@janedoe.dev?subject=Booking">mail</a>
			<a href="MAILTO:press@janedoe.dev">press</a>
			<a href="mailto:a@janedoe.dev,b@janedoe.dev">both</a>
			<a href="mailto:">empty</a>
		</body>`
		result := parse(t, "https://janedoe.dev/", html)

		want := []string{"hello@janedoe.dev", "press@janedoe.dev", "a@janedoe.dev", "b@janedoe.dev"}
		if !slices.Equal(result.MailtoEmails, want) {
			t.Errorf("MailtoEmails = %v, want %v", result.MailtoEmails, want)
		}
	})

	t.Run("text and meta content are scanned", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta name="description" content="Contact: studio [at] janedoe [dot] dev">
			<meta property="og:title" content="Jane">
		</head><body><p>Mgmt: mgmt at agency dot io</p></body></html>`
		result := parse(t, "https://janedoe.dev/", html)

		for _, want := range []string{"mgmt@agency.io", "studio@janedoe.dev"} {
			if !slices.Contains(result.TextEmails, want) {
				t.Errorf("TextEmails = %v, missing %q", result.TextEmails, want)
			}
		}
		if len(result.MetaContent) != 2 {
			t.Errorf("expected 2 meta contents, got %v", result.MetaContent)
		}
	})

	t.Run("script and style text is not visible", func(t *testing.T) {
		t.Parallel()

		html := `<body>
			<script>var x = "bot@tracker.io";</script>
			<style>/* css@style.io */</style>
			<p>real@janedoe.dev</p>
		</body>`
		result := parse(t, "https://janedoe.dev/", html)

		if !slices.Equal(result.Emails, []string{"real@janedoe.dev"}) {
			t.Errorf("Emails = %v, want only real@janedoe.dev", result.Emails)
		}
	})

	t.Run("mailto targets come before text matches", func(t *testing.T) {
		t.Parallel()

		html := `<body><p>second@janedoe.dev</p><a href="mailto:first@janedoe.dev">first@janedoe.dev</a></body>`
		result := parse(t, "https://janedoe.dev/", html)

		want := []string{"first@janedoe.dev", "second@janedoe.dev"}
		if !slices.Equal(result.Emails, want) {
			t.Errorf("Emails = %v, want %v", result.Emails, want)
		}
	})

	t.Run("links are resolved and filtered", func(t *testing.T) {
		t.Parallel()

		html := `<body>
			<a href="/about">about</a>
			<a href="contact">contact</a>
			<a href="#top">top</a>
			<a href="mailto:x@janedoe.dev">mail</a>
			<a href="javascript:void(0)">js</a>
			<a href="tel:+100">tel</a>
			<a href="https://studio.net/work">studio</a>
			<a href="/about">about again</a>
			<a>no href</a>
		</body>`
		result := parse(t, "https://janedoe.dev/links/", html)

		want := []string{
			"https://janedoe.dev/about",
			"https://janedoe.dev/links/contact",
			"https://studio.net/work",
		}
		if !slices.Equal(result.Links, want) {
			t.Errorf("Links = %v, want %v", result.Links, want)
		}
	})

	t.Run("protocol-relative links keep the base scheme", func(t *testing.T) {
		t.Parallel()

		result := parse(t, "http://janedoe.dev/", `<a href="//cdn.studio.net/page">x</a>`)
		if !slices.Equal(result.Links, []string{"http://cdn.studio.net/page"}) {
			t.Errorf("Links = %v", result.Links)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		result := parse(t, "https://janedoe.dev/", "")
		if len(result.Emails) != 0 || len(result.Links) != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
	})
}

func TestNewParserInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := NewParser("http://[::1"); err == nil {
		t.Error("expected error for invalid base URL")
	}
}
