// Package embedding abstracts the hosted embedding model used to vectorize
// search queries and ingested label chunks.
package embedding

import "context"

// Provider produces an embedding vector for a piece of text.
// Implementations must be safe for concurrent use.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}
