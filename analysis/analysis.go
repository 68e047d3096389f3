// Package analysis turns a raw grower utterance into a structured view of
// what is being asked, and routes it to the right pipeline path.
package analysis

// QueryAnalysis is the structured reading of one utterance.
type QueryAnalysis struct {
	// Crop is the crop the grower named, empty when absent.
	Crop string
	// Pest is the pest, weed or disease the grower named, empty when absent.
	Pest string
	// GenericTerm holds the grower's own words when they used a generic
	// term such as "praga" instead of naming a species.
	GenericTerm string
	// MentionsProduct is true when the utterance asks about a product by
	// name rather than asking for a recommendation.
	MentionsProduct bool
	// Extracted is false when the model declined or returned something
	// unusable and the fields above are empty.
	Extracted bool
}

// Route says which pipeline path an utterance takes.
type Route string

const (
	RouteClarify   Route = "clarify"
	RouteRecommend Route = "recommend"
	RouteTechnical Route = "technical"
)

// Decision is the routing outcome for one analysed utterance.
type Decision struct {
	Route Route
	// Message is the clarification question when Route is RouteClarify.
	Message string
	// AdvisoryNote is appended to a recommendation when the analysis was
	// incomplete but retrieval can still proceed.
	AdvisoryNote string
}
