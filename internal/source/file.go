package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/contactscan/internal/model"
)

// ProfileSource resolves handles to profiles.
type ProfileSource interface {
	// Profile returns the identity of handle, or an error wrapping
	// ErrProfileNotFound when the source has none.
	Profile(ctx context.Context, handle string) (model.Identity, error)
}

// Format is a profile file encoding.
type Format string

const (
	// FormatJSON is a JSON array of profile objects.
	FormatJSON Format = "json"

	// FormatYAML is a YAML list of profile mappings.
	FormatYAML Format = "yaml"

	// FormatCSV is a CSV file with a header row.
	FormatCSV Format = "csv"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FileSource is an in-memory ProfileSource loaded from an exported file.
// Handles are matched case-insensitively.
type FileSource struct {
	profiles map[string]model.Identity
	order    []string
}

// NewFileSource creates a FileSource from identities. Later duplicates of
// a handle are ignored.
func NewFileSource(identities []model.Identity) *FileSource {
	s := &FileSource{profiles: make(map[string]model.Identity, len(identities))}
	for _, id := range identities {
		id.Handle = model.NormalizeHandle(id.Handle)
		if id.Handle == "" {
			continue
		}
		key := strings.ToLower(id.Handle)
		if _, dup := s.profiles[key]; dup {
			continue
		}
		s.profiles[key] = id
		s.order = append(s.order, id.Handle)
	}
	return s
}

// LoadFile reads a profile file, choosing the format by extension.
func LoadFile(path string) (*FileSource, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles: %w", err)
	}
	defer f.Close()

	identities, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return NewFileSource(identities), nil
}

// Profile implements ProfileSource.
func (s *FileSource) Profile(ctx context.Context, handle string) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}
	id, ok := s.profiles[strings.ToLower(model.NormalizeHandle(handle))]
	if !ok {
		return model.Identity{}, fmt.Errorf("%w: %s", ErrProfileNotFound, handle)
	}
	return id, nil
}

// Handles returns every handle in file order.
func (s *FileSource) Handles() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of profiles.
func (s *FileSource) Len() int {
	return len(s.order)
}

// profileDoc accepts both the native field names and those of common
// profile exports.
type profileDoc struct {
	Handle      string `json:"handle" yaml:"handle"`
	Username    string `json:"username" yaml:"username"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	FullName    string `json:"full_name" yaml:"full_name"`
	Bio         string `json:"bio" yaml:"bio"`
	Biography   string `json:"biography" yaml:"biography"`
	ExternalURL string `json:"externalUrl" yaml:"externalUrl"`
	LegacyURL   string `json:"external_url" yaml:"external_url"`
}

func (d profileDoc) identity() model.Identity {
	return model.Identity{
		Handle:      firstNonEmpty(d.Handle, d.Username),
		DisplayName: firstNonEmpty(d.DisplayName, d.FullName),
		Bio:         firstNonEmpty(d.Bio, d.Biography),
		ExternalURL: firstNonEmpty(d.ExternalURL, d.LegacyURL),
	}
}

// Parse decodes identities from r. Entries without a handle are rejected.
func Parse(r io.Reader, format Format) ([]model.Identity, error) {
	var docs []profileDoc
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&docs); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&docs); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatCSV:
		return parseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	identities := make([]model.Identity, 0, len(docs))
	for i, d := range docs {
		id := d.identity()
		if model.NormalizeHandle(id.Handle) == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrEmptyHandle)
		}
		identities = append(identities, id)
	}
	return identities, nil
}

// csvColumns maps accepted header names to identity fields.
var csvColumns = map[string]string{
	"handle":       "handle",
	"username":     "handle",
	"displayname":  "displayName",
	"display_name": "displayName",
	"full_name":    "displayName",
	"bio":          "bio",
	"biography":    "bio",
	"externalurl":  "externalUrl",
	"external_url": "externalUrl",
}

func parseCSV(r io.Reader) ([]model.Identity, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		field, ok := csvColumns[name]
		if !ok {
			continue
		}
		if _, dup := index[field]; !dup {
			index[field] = i
		}
	}
	if _, ok := index["handle"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "handle")
	}

	var identities []model.Identity
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return identities, nil
		}
		if err != nil {
			return nil, err
		}

		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		id := model.Identity{
			Handle:      get("handle"),
			DisplayName: get("displayName"),
			Bio:         get("bio"),
			ExternalURL: get("externalUrl"),
		}
		if model.NormalizeHandle(id.Handle) == "" {
			return nil, fmt.Errorf("record %d: %w", n, ErrEmptyHandle)
		}
		identities = append(identities, id)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
