package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/embedding"
	"github.com/agrofel/field-assistant/schema"
	"github.com/agrofel/field-assistant/vectordb"
)

// Ingestor reads label text files from a directory and indexes their
// chunks. The file name (without extension) becomes the source label that
// technical lookups filter on.
type Ingestor struct {
	embedder embedding.Provider
	store    vectordb.VectorStoreProvider
	splitter *Splitter
}

func New(embedder embedding.Provider, store vectordb.VectorStoreProvider, splitter *Splitter) *Ingestor {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Ingestor{embedder: embedder, store: store, splitter: splitter}
}

// IngestDir indexes every .txt and .md file under dir and returns the
// number of chunks written.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	if err := in.store.EnsureCollection(ctx); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("ingest: read dir: %w", err)
	}
	total := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		n, err := in.ingestFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return total, err
		}
		total += n
	}
	logx.Info().Int("chunks", total).Str("dir", dir).Msg("ingestion finished")
	return total, nil
}

func (in *Ingestor) ingestFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	source := SourceLabel(path)
	chunks := in.splitter.Split(string(raw))
	docs := make([]schema.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := in.embedder.GetEmbedding(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("ingest: embed chunk of %s: %w", source, err)
		}
		docs = append(docs, schema.Document{
			ID:          uuid.NewString(),
			Content:     chunk,
			SourceLabel: source,
			Vector:      vec,
			CreatedAt:   time.Now(),
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := in.store.AddDocs(ctx, docs); err != nil {
		return 0, err
	}
	logx.Debug().Str("source", source).Int("chunks", len(docs)).Msg("file indexed")
	return len(docs), nil
}

// SourceLabel derives the label name a file is indexed under.
func SourceLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
