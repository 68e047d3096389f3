// Package config holds the configuration for the field assistant. Values are
// read from a YAML file and then overlaid with environment variables, so
// secrets never need to live on disk.
package config

// Config is the root configuration structure.
type Config struct {
	Environment string          `yaml:"environment" envconfig:"ASSISTANT_ENV"`
	Server      ServerConfig    `yaml:"server"`
	LLM         LLMConfig       `yaml:"llm"`
	Embedding   EmbeddingConfig `yaml:"embedding"`
	VectorDB    VectorDBConfig  `yaml:"vectordb"`
	Pipeline    PipelineConfig  `yaml:"pipeline"`
	Session     SessionConfig   `yaml:"session"`
	Handoff     HandoffConfig   `yaml:"handoff"`
	// HTTP holds defaults for outbound webhook calls. Nil means library defaults.
	HTTP *HTTPClientConfig `yaml:"http,omitempty"`
}

// ServerConfig controls the serving surface.
type ServerConfig struct {
	// Mode: "http" (default) or "mcp" (stdio).
	Mode string `yaml:"mode" envconfig:"SERVER_MODE"`
	Host string `yaml:"host" envconfig:"SERVER_HOST"`
	Port int    `yaml:"port" envconfig:"SERVER_PORT"`
}

// LLMConfig defines the chat-completion model used for extraction, expansion,
// filtering and final generation. Any OpenAI-compatible endpoint works,
// including Gemini's compatibility surface.
type LLMConfig struct {
	APIKey    string `yaml:"api_key,omitempty" envconfig:"LLM_API_KEY"`
	BaseURL   string `yaml:"base_url,omitempty" envconfig:"LLM_BASE_URL"`
	Model     string `yaml:"model" envconfig:"LLM_MODEL"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig defines the embedding model backing vector search.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key,omitempty" envconfig:"EMBEDDING_API_KEY"`
	BaseURL    string `yaml:"base_url,omitempty" envconfig:"EMBEDDING_BASE_URL"`
	Model      string `yaml:"model" envconfig:"EMBEDDING_MODEL"`
	Dimensions int    `yaml:"dimensions,omitempty"`
}

// VectorDBConfig points at the Milvus collection holding label chunks.
type VectorDBConfig struct {
	Host       string `yaml:"host" envconfig:"VECTORDB_HOST"`
	Port       int    `yaml:"port" envconfig:"VECTORDB_PORT"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection"`
	Username   string `yaml:"username,omitempty" envconfig:"VECTORDB_USERNAME"`
	Password   string `yaml:"password,omitempty" envconfig:"VECTORDB_PASSWORD"`
	// MetricType for similarity search, e.g. "IP" or "L2".
	MetricType string `yaml:"metric_type,omitempty"`
}

// Retrieval strategies.
const (
	StrategyExpansion = "expansion" // expand the query, search each variant with a small k
	StrategyBroad     = "broad"     // one wide search followed by an LLM passage filter
)

// PipelineConfig tunes the query orchestration pipeline.
type PipelineConfig struct {
	// Strategy selects between query expansion and broad retrieval with an
	// LLM filter. The two are alternatives and never run together.
	Strategy string `yaml:"strategy"`
	// TopK per search call in the expansion strategy.
	TopK int `yaml:"top_k,omitempty"`
	// BroadTopK for the single search of the broad strategy.
	BroadTopK int `yaml:"broad_top_k,omitempty"`
	// ExpansionVariants is the number of alternative phrasings requested.
	ExpansionVariants int `yaml:"expansion_variants,omitempty"`
	// FilterKeep is how many passages the LLM filter is asked to keep.
	FilterKeep int `yaml:"filter_keep,omitempty"`
	// Threshold below which search hits are dropped (0 disables).
	Threshold float64 `yaml:"threshold,omitempty"`
	// DisableExtraction skips the intent/entity extraction call and routes
	// every utterance straight to retrieval.
	DisableExtraction bool `yaml:"disable_extraction,omitempty"`
	// MaxPromptTokens caps the passage window of the generation prompt.
	MaxPromptTokens int `yaml:"max_prompt_tokens,omitempty"`
	// Temperatures: near-zero for extraction/filtering, moderate for the
	// persuasive final generation.
	ToolTemperature       float64 `yaml:"tool_temperature"`
	GenerationTemperature float64 `yaml:"generation_temperature,omitempty"`
	// HistoryTurns is how many recent turns are carried into the
	// generation prompt.
	HistoryTurns int `yaml:"history_turns,omitempty"`
	// Cache controls the in-process answer cache.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig controls the L1 answer cache.
type CacheConfig struct {
	Enable     bool `yaml:"enable,omitempty"`
	MaxEntries int  `yaml:"max_entries,omitempty"`
	TTLSeconds int  `yaml:"ttl_seconds,omitempty"`
}

// SessionConfig controls conversation persistence.
// Store: "inmemory" (default) or "redis".
type SessionConfig struct {
	Store       string `yaml:"store,omitempty"`
	TTLSeconds  int    `yaml:"ttl_seconds,omitempty"`
	MaxSessions int    `yaml:"max_sessions,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty" envconfig:"SESSION_REDIS_URL"`
}

// HandoffConfig defines the outbound notification channels.
type HandoffConfig struct {
	// SalesWebhook receives confirmed leads as opaque JSON payloads.
	SalesWebhook string `yaml:"sales_webhook,omitempty" envconfig:"HANDOFF_SALES_WEBHOOK"`
	// SupportWebhook receives human-escalation requests.
	SupportWebhook string `yaml:"support_webhook,omitempty" envconfig:"HANDOFF_SUPPORT_WEBHOOK"`
	// WhatsAppNumber is the destination of the wa.me deep link, digits only.
	WhatsAppNumber string `yaml:"whatsapp_number,omitempty" envconfig:"HANDOFF_WHATSAPP_NUMBER"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `yaml:"timeout_ms,omitempty"`
	Retry                  int      `yaml:"retry,omitempty"`
	BackoffMinMs           int      `yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `yaml:"circuit_open_seconds,omitempty"`
}

// Default returns a configuration with every tunable at its documented default.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Mode: "http",
			Host: "0.0.0.0",
			Port: 8080,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 2048,
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		VectorDB: VectorDBConfig{
			Host:       "localhost",
			Port:       19530,
			Collection: "bulas_agrofel",
			MetricType: "IP",
		},
		Pipeline: PipelineConfig{
			Strategy:              StrategyExpansion,
			TopK:                  4,
			BroadTopK:             10,
			ExpansionVariants:     3,
			FilterKeep:            3,
			MaxPromptTokens:       3000,
			ToolTemperature:       0.0,
			GenerationTemperature: 0.4,
			HistoryTurns:          4,
			Cache: CacheConfig{
				Enable:     true,
				MaxEntries: 500,
				TTLSeconds: 120,
			},
		},
		Session: SessionConfig{
			Store:       "inmemory",
			TTLSeconds:  86400,
			MaxSessions: 1000,
		},
	}
}
