package domains

import "testing"

func TestDomainOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"multi-label suffix", "https://shop.example.co.uk/path", "example.co.uk", true},
		{"plain domain", "https://www.janedoe.dev/contact", "janedoe.dev", true},
		{"upper case host", "HTTPS://WWW.JaneDoe.DEV", "janedoe.dev", true},
		{"port is ignored", "http://janedoe.dev:8080/", "janedoe.dev", true},
		{"scheme-less", "janedoe.dev/about", "janedoe.dev", true},
		{"aggregator", "https://linktr.ee/jane", "linktr.ee", true},
		{"private suffix", "https://jane.github.io/", "jane.github.io", true},
		{"not a url", "not a url", "", false},
		{"empty", "", "", false},
		{"ip address", "http://192.168.0.10/", "", false},
		{"ipv6 address", "http://[::1]:80/", "", false},
		{"unknown suffix", "http://intranet.thisisnotatld/", "", false},
		{"localhost", "http://localhost:3000", "", false},
		{"bare suffix", "https://co.uk/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DomainOf(tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DomainOf(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifierSets(t *testing.T) {
	t.Parallel()

	c := NewClassifier(WithAggregators("Links.Example"), WithSocial("bsky.app"))

	tests := []struct {
		domain     string
		aggregator bool
		social     bool
	}{
		{"linktr.ee", true, false},
		{"beacons.ai", true, false},
		{"links.example", true, false},
		{"instagram.com", false, true},
		{"youtu.be", false, true},
		{"bsky.app", false, true},
		{"janedoe.dev", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			t.Parallel()
			if got := c.IsAggregator(tt.domain); got != tt.aggregator {
				t.Errorf("IsAggregator(%q) = %v", tt.domain, got)
			}
			if got := c.IsSocial(tt.domain); got != tt.social {
				t.Errorf("IsSocial(%q) = %v", tt.domain, got)
			}
			if got := c.IsAggregatorOrSocial(tt.domain); got != (tt.aggregator || tt.social) {
				t.Errorf("IsAggregatorOrSocial(%q) = %v", tt.domain, got)
			}
		})
	}
}

func TestDefaultListsAreDisjoint(t *testing.T) {
	t.Parallel()

	social := make(map[string]bool)
	for _, d := range DefaultSocial {
		social[d] = true
	}
	for _, d := range DefaultAggregators {
		if social[d] {
			t.Errorf("%q is listed as both aggregator and social", d)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	c := NewClassifier(WithPlaceholders("test.invalid"))
	tests := []struct {
		domain string
		want   bool
	}{
		{"example.com", true},
		{"EXAMPLE.org", true},
		{"mail.example.net", true},
		{"sub.test.invalid", true},
		{"notexample.com", false},
		{"example.com.au", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.IsPlaceholder(tt.domain); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestValidAddress(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	tests := []struct {
		addr string
		want bool
	}{
		{"jane@janedoe.dev", true},
		{" jane@janedoe.dev ", true},
		{"", false},
		{"jane", false},
		{"@janedoe.dev", false},
		{"jane@", false},
		{"a@b@c.dev", false},
		{"you@example.com", false},
		{"team@mail.example.org", false},
	}
	for _, tt := range tests {
		if got := c.ValidAddress(tt.addr); got != tt.want {
			t.Errorf("ValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestSplitAddress(t *testing.T) {
	t.Parallel()

	local, domain, ok := SplitAddress("we\"ird@local@janedoe.dev")
	if !ok || local != "we\"ird@local" || domain != "janedoe.dev" {
		t.Errorf("SplitAddress = (%q, %q, %v)", local, domain, ok)
	}
	if _, _, ok := SplitAddress("nodomain@"); ok {
		t.Error("expected failure for empty domain")
	}
}
