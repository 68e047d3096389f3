// Package orchestrator runs the full question answering pipeline: analyse
// the utterance, route it, retrieve label passages and generate the reply.
package orchestrator

import "github.com/agrofel/field-assistant/schema"

// Kind classifies the outcome of one pipeline run.
type Kind string

const (
	// KindRecommendation is a grounded product recommendation or a
	// grounded technical answer.
	KindRecommendation Kind = "recommendation"
	// KindNotFound means the knowledge base had nothing usable.
	KindNotFound Kind = "not_found"
	// KindClarification means the assistant needs more detail before it
	// can search.
	KindClarification Kind = "clarification"
)

// Result is what the caller shows to the grower. Text is always safe to
// display as-is.
type Result struct {
	Kind Kind
	Text string
}

// Request carries one grower turn into the pipeline.
type Request struct {
	Utterance string
	// History is the prior conversation, oldest first.
	History []schema.ChatMessage
	// Product is the product already under discussion in this session,
	// empty when none. Product questions are answered against its label.
	Product string
}
