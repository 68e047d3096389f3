package retriever

import (
	"context"

	"github.com/agrofel/field-assistant/schema"
)

// Retriever finds passages relevant to a natural language query.
type Retriever interface {
	Search(ctx context.Context, query string, opts *schema.SearchOptions) ([]schema.SearchResult, error)
}
