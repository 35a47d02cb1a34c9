package pipeline

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/nao1215/contactscan/internal/crawler"
	"github.com/nao1215/contactscan/internal/guess"
	"github.com/nao1215/contactscan/internal/model"
)

// fakeCrawler returns a fixed crawl result and counts calls.
type fakeCrawler struct {
	result crawler.CrawlResult
	calls  int
}

func (f *fakeCrawler) Crawl(_ context.Context, _ model.Identity) crawler.CrawlResult {
	f.calls++
	return f.result
}

// fakeVerifier reports MX for the listed domains and accepts every address.
type fakeVerifier struct {
	mu       sync.Mutex
	mx       map[string]bool
	verified []string
	mxAsked  []string
}

func (f *fakeVerifier) HasMX(_ context.Context, domain string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mxAsked = append(f.mxAsked, domain)
	return f.mx[domain]
}

func (f *fakeVerifier) Verify(_ context.Context, address string) model.VerificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, address)
	return model.VerificationResult{MXExists: true, SMTPStatus: model.SMTPAccepted, SMTPNote: "mx.test"}
}

func TestBioStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bio  string
		want []string
	}{
		{"plain address", "Booking: jane@janedoe.dev", []string{"jane@janedoe.dev"}},
		{"obfuscated address", "mail me: jane [at] janedoe [dot] dev", []string{"jane@janedoe.dev"}},
		{"duplicates collapse", "jane@janedoe.dev or jane@janedoe.dev", []string{"jane@janedoe.dev"}},
		{"empty bio", "", nil},
		{"no address", "just vibes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			run := model.NewIdentityRun(model.Identity{Handle: "janedoe", Bio: tt.bio})
			if err := NewBioStep(nil).Do(context.Background(), run); err != nil {
				t.Fatalf("Do() error = %v", err)
			}

			var got []string
			for _, c := range run.Candidates {
				if c.Tier != model.TierBio || c.Handle != "janedoe" || c.OriginURL != "" {
					t.Errorf("unexpected candidate %+v", c)
				}
				got = append(got, c.Address)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("addresses = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("copies crawl result onto the run", func(t *testing.T) {
		t.Parallel()

		fc := &fakeCrawler{result: crawler.CrawlResult{
			Candidates: []model.CandidateEmail{
				model.NewCandidate("janedoe", "hi@janedoe.dev", model.TierSite, "https://janedoe.dev"),
				model.NewCandidate("janedoe", "jane@studio.dev", model.TierSiteDeep, "https://studio.dev/about"),
			},
			PersonalDomains: []string{"studio.dev"},
			Attempts: []model.CrawlAttempt{
				{URL: "https://janedoe.dev", Tier: model.TierSite, Status: model.FetchOK, Emails: 1},
				{URL: "https://studio.dev/about", Tier: model.TierSiteDeep, Status: model.FetchOK, Emails: 1},
			},
		}}

		run := model.NewIdentityRun(model.Identity{Handle: "janedoe", ExternalURL: "https://janedoe.dev"})
		run.AddCandidates(model.NewCandidate("janedoe", "bio@janedoe.dev", model.TierBio, ""))

		if err := NewCrawlStep(fc, nil).Do(context.Background(), run); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		if len(run.Candidates) != 3 || run.Candidates[0].Tier != model.TierBio {
			t.Errorf("candidates = %+v, want bio first then crawl results", run.Candidates)
		}
		if !slices.Equal(run.PersonalDomains, []string{"studio.dev"}) {
			t.Errorf("PersonalDomains = %v", run.PersonalDomains)
		}
		if len(run.Attempts) != 2 {
			t.Errorf("Attempts = %v", run.Attempts)
		}
	})

	t.Run("skips identities without external url", func(t *testing.T) {
		t.Parallel()

		fc := &fakeCrawler{}
		run := model.NewIdentityRun(model.Identity{Handle: "janedoe"})

		if err := NewCrawlStep(fc, nil).Do(context.Background(), run); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if fc.calls != 0 {
			t.Errorf("crawler called %d times, want 0", fc.calls)
		}
	})
}

func TestGuessStep(t *testing.T) {
	t.Parallel()

	t.Run("guesses only on domains with mx", func(t *testing.T) {
		t.Parallel()

		fv := &fakeVerifier{mx: map[string]bool{"janedoe.dev": true}}
		run := model.NewIdentityRun(model.Identity{Handle: "janedoe", DisplayName: "Jane Doe"})
		run.PersonalDomains = []string{"nomx.dev", "janedoe.dev"}

		if err := NewGuessStep(fv, nil).Do(context.Background(), run); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		want := guess.Emails("Jane Doe", "janedoe.dev")
		if len(want) == 0 {
			t.Fatal("expected guesses for a two-token name")
		}
		var got []string
		for _, c := range run.Candidates {
			if c.Tier != model.TierGuessPersonal || c.OriginURL != "https://janedoe.dev" {
				t.Errorf("unexpected candidate %+v", c)
			}
			got = append(got, c.Address)
		}
		if !slices.Equal(got, want) {
			t.Errorf("guesses = %v, want %v", got, want)
		}
		if !slices.Equal(fv.mxAsked, []string{"nomx.dev", "janedoe.dev"}) {
			t.Errorf("mx checks = %v", fv.mxAsked)
		}
	})

	t.Run("no personal domains means no guesses", func(t *testing.T) {
		t.Parallel()

		fv := &fakeVerifier{mx: map[string]bool{"janedoe.dev": true}}
		run := model.NewIdentityRun(model.Identity{Handle: "janedoe", DisplayName: "Jane Doe", ExternalURL: "https://janedoe.dev"})

		if err := NewGuessStep(fv, nil).Do(context.Background(), run); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if len(run.Candidates) != 0 || len(fv.mxAsked) != 0 {
			t.Errorf("candidates = %v, mx checks = %v", run.Candidates, fv.mxAsked)
		}
	})
}

func TestVerifyStep(t *testing.T) {
	t.Parallel()

	fv := &fakeVerifier{}
	identity := model.Identity{Handle: "janedoe", DisplayName: "Jane Doe", ExternalURL: "https://janedoe.dev"}
	run := model.NewIdentityRun(identity)
	run.AddCandidates(
		model.NewCandidate("janedoe", "jane@janedoe.dev", model.TierBio, ""),
		model.NewCandidate("janedoe", "jane@janedoe.dev", model.TierSite, "https://janedoe.dev"),
		model.NewCandidate("janedoe", "hello@janedoe.dev", model.TierSite, "https://janedoe.dev"),
	)

	if err := NewVerifyStep(fv, nil).Do(context.Background(), run); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if !slices.Equal(fv.verified, []string{"jane@janedoe.dev", "hello@janedoe.dev"}) {
		t.Errorf("verified = %v, want each address once", fv.verified)
	}
	if len(run.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(run.Records))
	}
	for i, r := range run.Records {
		if r.Email != run.Candidates[i].Address || r.Tier != run.Candidates[i].Tier {
			t.Errorf("record %d = %+v, not aligned with candidate", i, r)
		}
		if r.DisplayName != "Jane Doe" || !r.MXExists || r.SMTPStatus != model.SMTPAccepted {
			t.Errorf("record %d = %+v", i, r)
		}
	}
}

func TestDefaultSteps(t *testing.T) {
	t.Parallel()

	fc := &fakeCrawler{result: crawler.CrawlResult{
		Candidates: []model.CandidateEmail{
			model.NewCandidate("janedoe", "jane@studio.dev", model.TierSiteDeep, "https://studio.dev"),
		},
		PersonalDomains: []string{"studio.dev"},
	}}
	fv := &fakeVerifier{mx: map[string]bool{"studio.dev": true}}

	p := New()
	p.AddSteps(DefaultSteps(fc, fv, nil)...)

	want := []string{"bio", "crawl", "guess", "verify"}
	if !slices.Equal(p.StepNames(), want) {
		t.Fatalf("StepNames() = %v, want %v", p.StepNames(), want)
	}

	run := model.NewIdentityRun(model.Identity{
		Handle:      "janedoe",
		DisplayName: "Jane Doe",
		Bio:         "press: press@janedoe.dev",
		ExternalURL: "https://janedoe.dev",
	})
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(run.Records) != len(run.Candidates) {
		t.Fatalf("records = %d, candidates = %d", len(run.Records), len(run.Candidates))
	}
	tiers := []model.SourceTier{run.Records[0].Tier, run.Records[1].Tier, run.Records[2].Tier}
	wantTiers := []model.SourceTier{model.TierBio, model.TierSiteDeep, model.TierGuessPersonal}
	if !slices.Equal(tiers, wantTiers) {
		t.Errorf("first tiers = %v, want %v", tiers, wantTiers)
	}
	for _, r := range run.Records[2:] {
		if r.Tier != model.TierGuessPersonal {
			t.Errorf("unexpected trailing record %+v", r)
		}
	}
}
