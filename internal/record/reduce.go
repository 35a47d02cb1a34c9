package record

import (
	"strings"

	"github.com/nao1215/contactscan/internal/domains"
	"github.com/nao1215/contactscan/internal/model"
)

// Filter drops error placeholders and records whose email is not a valid,
// non-placeholder address. Order is preserved.
func Filter(records []model.Record, classifier *domains.Classifier) []model.Record {
	kept := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.IsErrorPlaceholder() {
			continue
		}
		if !classifier.ValidAddress(strings.TrimSpace(r.Email)) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Reduce keeps the best record per handle. A later record replaces the
// current one only when its tier has a strictly lower priority, so the
// first record seen wins ties. Handles are emitted in order of first
// appearance among the filtered records.
func Reduce(records []model.Record, classifier *domains.Classifier) []model.Record {
	filtered := Filter(records, classifier)

	best := make(map[string]int, len(filtered))
	reduced := make([]model.Record, 0, len(filtered))
	for _, r := range filtered {
		i, ok := best[r.Handle]
		if !ok {
			best[r.Handle] = len(reduced)
			reduced = append(reduced, r)
			continue
		}
		if r.Tier.Priority() < reduced[i].Tier.Priority() {
			reduced[i] = r
		}
	}
	return reduced
}
