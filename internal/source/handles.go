package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/contactscan/internal/model"
)

// LoadHandles reads a handle list file.
func LoadHandles(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open handle list: %w", err)
	}
	defer f.Close()

	return ParseHandles(f)
}

// ParseHandles reads one handle per line. Blank lines and lines starting
// with "#" are skipped, a leading "@" is stripped and duplicates are
// dropped, keeping the first occurrence.
func ParseHandles(r io.Reader) ([]string, error) {
	var handles []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		handle := model.NormalizeHandle(line)
		if handle == "" {
			continue
		}
		key := strings.ToLower(handle)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, handle)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read handle list: %w", err)
	}
	return handles, nil
}
