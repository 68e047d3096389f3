// Command ingest builds or updates the label knowledge base from a
// directory of text files.
package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/embedding"
	"github.com/agrofel/field-assistant/ingest"
	"github.com/agrofel/field-assistant/vectordb"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	dir := flag.String("dir", "", "directory with label .txt/.md files")
	chunkSize := flag.Int("chunk-size", ingest.DefaultChunkSize, "chunk size in characters")
	overlap := flag.Int("chunk-overlap", ingest.DefaultChunkOverlap, "chunk overlap in characters")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logx.Init(logx.Production)
		logx.Fatal().Err(err).Msg("invalid configuration")
	}
	logx.Init(logx.Environment(cfg.Environment))

	if *dir == "" {
		logx.Fatal().Msg("-dir is required")
	}

	ctx := context.Background()
	embedder, err := embedding.NewOpenAIProvider(cfg.Embedding)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to init embedding provider")
	}
	store, err := vectordb.NewMilvusProvider(ctx, &cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to connect to the vector store")
	}
	defer store.Close()

	ing := ingest.New(embedder, store, ingest.NewSplitter(*chunkSize, *overlap))
	n, err := ing.IngestDir(ctx, *dir)
	if err != nil {
		logx.Fatal().Err(err).Int("chunks_written", n).Msg("ingestion failed")
	}
	logx.Info().Int("chunks", n).Msg("knowledge base updated")
}
