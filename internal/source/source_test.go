package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/contactscan/internal/model"
)

func TestParseHandles(t *testing.T) {
	t.Parallel()

	input := `# exported 2026-01-01
@janedoe

bob
  carol  
# bob again
Bob
@
`
	got, err := ParseHandles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseHandles() error = %v", err)
	}
	want := []string{"janedoe", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("ParseHandles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handle %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadHandles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "usernames.txt")
	if err := os.WriteFile(path, []byte("a\nb\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := LoadHandles(path)
	if err != nil {
		t.Fatalf("LoadHandles() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("LoadHandles() = %v", got)
	}

	if _, err := LoadHandles(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	want := []model.Identity{
		{Handle: "janedoe", DisplayName: "Jane Doe", Bio: "hi", ExternalURL: "https://linktr.ee/janedoe"},
		{Handle: "bob"},
	}

	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json native",
			format: FormatJSON,
			input: `[{"handle":"janedoe","displayName":"Jane Doe","bio":"hi","externalUrl":"https://linktr.ee/janedoe"},
				{"handle":"bob"}]`,
		},
		{
			name:   "json export aliases",
			format: FormatJSON,
			input: `[{"username":"janedoe","full_name":"Jane Doe","biography":"hi","external_url":"https://linktr.ee/janedoe"},
				{"username":"bob"}]`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input: `- handle: janedoe
  displayName: Jane Doe
  bio: hi
  externalUrl: https://linktr.ee/janedoe
- username: bob
`,
		},
		{
			name:   "csv native",
			format: FormatCSV,
			input:  "handle,displayName,bio,externalUrl\njanedoe,Jane Doe,hi,https://linktr.ee/janedoe\nbob,,,\n",
		},
		{
			name:   "csv aliases with extra column",
			format: FormatCSV,
			input:  "\ufeffusername,full_name,followers,biography,external_url\njanedoe,Jane Doe,12,hi,https://linktr.ee/janedoe\nbob\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("Parse() = %+v, want %+v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("identity %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		input   string
		wantErr error
	}{
		{"json missing handle", FormatJSON, `[{"bio":"x"}]`, ErrEmptyHandle},
		{"csv missing handle", FormatCSV, "handle,bio\n,x\n", ErrEmptyHandle},
		{"unknown format", Format("xml"), "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		if _, err := Parse(strings.NewReader(tt.input), tt.format); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	if _, err := Parse(strings.NewReader("bio,name\nx,y\n"), FormatCSV); err == nil {
		t.Error("expected error for CSV without handle column")
	}
	if _, err := Parse(strings.NewReader("{not json"), FormatJSON); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"profiles.json": FormatJSON,
		"p.YAML":        FormatYAML,
		"p.yml":         FormatYAML,
		"dir/p.csv":     FormatCSV,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("profiles.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	s := NewFileSource([]model.Identity{
		{Handle: "@JaneDoe", DisplayName: "Jane Doe"},
		{Handle: "bob"},
		{Handle: "janedoe", DisplayName: "duplicate"},
		{Handle: "  "},
	})

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	handles := s.Handles()
	if len(handles) != 2 || handles[0] != "JaneDoe" || handles[1] != "bob" {
		t.Errorf("Handles() = %v", handles)
	}

	id, err := s.Profile(context.Background(), "@janedoe")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if id.DisplayName != "Jane Doe" {
		t.Errorf("Profile() = %+v, want first entry", id)
	}

	_, err = s.Profile(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("error = %v, want ErrProfileNotFound", err)
	}
	if got := ErrorKind(err); got != "NotFound" {
		t.Errorf("ErrorKind() = %q, want NotFound", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Profile(ctx, "bob"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte("- handle: janedoe\n  bio: write to jane at janedoe dot dev\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	id, err := s.Profile(context.Background(), "janedoe")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if !strings.Contains(id.Bio, "janedoe dot dev") {
		t.Errorf("Bio = %q", id.Bio)
	}

	if _, err := LoadFile(filepath.Join(dir, "profiles.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrProfileNotFound, "NotFound"},
		{context.Canceled, "Canceled"},
		{context.DeadlineExceeded, "Timeout"},
		{errors.New("boom"), "SourceError"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
