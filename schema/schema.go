// Package schema defines the shared data types that flow between the
// retrieval, generation and session layers.
package schema

import "time"

// Roles for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document is a chunk of product-label text stored in the vector index.
type Document struct {
	ID          string         `json:"id"`
	Content     string         `json:"content"`
	SourceLabel string         `json:"source_label"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Vector      []float32      `json:"-"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// SearchResult pairs a retrieved document with its similarity score.
// The score is an opaque ordering key for a single search call; scores from
// different calls must not be compared against each other.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SearchOptions controls a single vector search call.
type SearchOptions struct {
	TopK      int
	Threshold float64
	// SourceLabel restricts the search to chunks of one label document.
	SourceLabel string
}

// ChatMessage is a single conversation turn. Past turns are read-only
// context; the orchestrator never mutates them.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
