package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Server.Mode)
	assert.Equal(t, StrategyExpansion, cfg.Pipeline.Strategy)
	assert.Equal(t, 4, cfg.Pipeline.TopK)
	assert.Equal(t, 3, cfg.Pipeline.ExpansionVariants)
	assert.Equal(t, "inmemory", cfg.Session.Store)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
llm:
  model: gemini-1.5-pro-latest
vectordb:
  host: milvus.internal
  port: 19530
  collection: bulas
pipeline:
  strategy: broad
  broad_top_k: 12
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro-latest", cfg.LLM.Model)
	assert.Equal(t, "milvus.internal", cfg.VectorDB.Host)
	assert.Equal(t, StrategyBroad, cfg.Pipeline.Strategy)
	assert.Equal(t, 12, cfg.Pipeline.BroadTopK)
	// untouched defaults survive the overlay
	assert.Equal(t, 4, cfg.Pipeline.TopK)
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Strategy = "hybrid"
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresRedisURL(t *testing.T) {
	cfg := Default()
	cfg.Session.Store = "redis"
	assert.Error(t, cfg.Validate())

	cfg.Session.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresCollection(t *testing.T) {
	cfg := Default()
	cfg.VectorDB.Collection = ""
	assert.Error(t, cfg.Validate())
}
