// Package vectordb wraps the vector store holding product-label chunks.
// PDF extraction happens upstream; this package only stores and searches
// pre-chunked, pre-embedded passages.
package vectordb

import (
	"context"

	"github.com/agrofel/field-assistant/schema"
)

// VectorStoreProvider is the storage contract used by the retriever and the
// administrative endpoints. An empty search result is valid and must be
// handled by callers.
type VectorStoreProvider interface {
	// EnsureCollection creates the collection and its index when missing
	// and loads it for search.
	EnsureCollection(ctx context.Context) error
	// SearchDocs runs a nearest-neighbor search for the given vector.
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	// AddDocs inserts pre-embedded documents.
	AddDocs(ctx context.Context, docs []schema.Document) error
	// DeleteDocs removes documents by ID.
	DeleteDocs(ctx context.Context, ids []string) error
	// ListDocs returns up to limit stored documents, newest first not
	// guaranteed; intended for administrative inspection only.
	ListDocs(ctx context.Context, limit int) ([]schema.Document, error)
	// Close releases the underlying connection.
	Close() error
}
