package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/embedding"
	"github.com/agrofel/field-assistant/metrics"
	"github.com/agrofel/field-assistant/schema"
	"github.com/agrofel/field-assistant/vectordb"
)

// VectorRetriever embeds the query and searches the vector store.
type VectorRetriever struct {
	embedder embedding.Provider
	store    vectordb.VectorStoreProvider
}

func NewVectorRetriever(embedder embedding.Provider, store vectordb.VectorStoreProvider) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, store: store}
}

func (r *VectorRetriever) Search(ctx context.Context, query string, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	start := time.Now()
	vec, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}
	results, err := r.store.SearchDocs(ctx, vec, opts)
	if err != nil {
		return nil, fmt.Errorf("retriever: vector search: %w", err)
	}
	metrics.ObserveRetrieval(time.Since(start), len(results))
	logx.Debug().Int("results", len(results)).Dur("elapsed", time.Since(start)).Msg("vector search done")
	return results, nil
}
