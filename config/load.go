package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path (optional, may be empty), overlays
// environment variables and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "", "http", "mcp":
	default:
		return fmt.Errorf("config: unknown server mode %q", c.Server.Mode)
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "http"
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config: llm.model is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("config: embedding.model is required")
	}
	if c.VectorDB.Host == "" || c.VectorDB.Port <= 0 {
		return fmt.Errorf("config: vectordb host and port are required")
	}
	if c.VectorDB.Collection == "" {
		return fmt.Errorf("config: vectordb.collection is required")
	}
	switch c.Pipeline.Strategy {
	case "":
		c.Pipeline.Strategy = StrategyExpansion
	case StrategyExpansion, StrategyBroad:
	default:
		return fmt.Errorf("config: unknown pipeline strategy %q", c.Pipeline.Strategy)
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 4
	}
	if c.Pipeline.BroadTopK <= 0 {
		c.Pipeline.BroadTopK = 10
	}
	if c.Pipeline.ExpansionVariants <= 0 {
		c.Pipeline.ExpansionVariants = 3
	}
	if c.Pipeline.FilterKeep <= 0 {
		c.Pipeline.FilterKeep = 3
	}
	if c.Pipeline.MaxPromptTokens <= 0 {
		c.Pipeline.MaxPromptTokens = 3000
	}
	if c.Pipeline.GenerationTemperature <= 0 {
		c.Pipeline.GenerationTemperature = 0.4
	}
	if c.Pipeline.HistoryTurns <= 0 {
		c.Pipeline.HistoryTurns = 4
	}
	switch c.Session.Store {
	case "":
		c.Session.Store = "inmemory"
	case "inmemory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("config: session.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("config: unknown session store %q", c.Session.Store)
	}
	return nil
}
