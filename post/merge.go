// Package post holds the steps applied to retrieved passages before they
// reach the generation prompt.
package post

import (
	"github.com/agrofel/field-assistant/schema"
)

// MergeByContent deduplicates results from several searches by exact
// passage text, keeping the first occurrence and its order.
func MergeByContent(batches ...[]schema.SearchResult) []schema.SearchResult {
	seen := make(map[string]bool)
	var out []schema.SearchResult
	for _, batch := range batches {
		for _, r := range batch {
			if seen[r.Document.Content] {
				continue
			}
			seen[r.Document.Content] = true
			out = append(out, r)
		}
	}
	return out
}
