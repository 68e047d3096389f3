package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/agrofel/field-assistant/analysis"
	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/expansion"
	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/metrics"
	"github.com/agrofel/field-assistant/post"
	"github.com/agrofel/field-assistant/retriever"
	"github.com/agrofel/field-assistant/schema"
)

// Orchestrator wires the pipeline stages together. It holds no session
// state: callers pass history and product context on each request.
type Orchestrator struct {
	llm       llm.Provider
	retriever retriever.Retriever
	extractor *analysis.Extractor
	expander  *expansion.Expander
	filter    *post.LLMFilter
	cfg       config.PipelineConfig
}

func New(provider llm.Provider, r retriever.Retriever, cfg config.PipelineConfig) *Orchestrator {
	return &Orchestrator{
		llm:       provider,
		retriever: r,
		extractor: analysis.NewExtractor(provider, cfg.ToolTemperature),
		expander:  expansion.NewExpander(provider, cfg.ExpansionVariants, cfg.GenerationTemperature),
		filter:    post.NewLLMFilter(provider, cfg.FilterKeep),
		cfg:       cfg,
	}
}

// Handle runs one grower turn through the pipeline.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Result, error) {
	utterance := strings.TrimSpace(req.Utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}
	if o.llm == nil || o.retriever == nil {
		return nil, ErrServiceUnavailable
	}

	a := analysis.QueryAnalysis{}
	if !o.cfg.DisableExtraction {
		var err error
		a, err = o.extractor.Extract(ctx, utterance)
		if err != nil {
			return nil, &UpstreamError{Stage: "extraction", Err: err}
		}
	}

	decision := analysis.Decide(a)
	switch decision.Route {
	case analysis.RouteClarify:
		metrics.CountResult(string(KindClarification))
		return &Result{Kind: KindClarification, Text: decision.Message}, nil
	case analysis.RouteTechnical:
		if req.Product != "" {
			return o.HandleTechnical(ctx, req.Product, utterance)
		}
		// No product under discussion yet; the utterance names the
		// product, so the recommendation path finds its label.
	}

	results, err := o.retrieve(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		metrics.CountEmptyRetrieval()
		metrics.CountResult(string(KindNotFound))
		logx.Info().Str("utterance", utterance).Msg("retrieval returned no passages")
		return &Result{Kind: KindNotFound, Text: NotFoundMessage}, nil
	}

	prompt := buildRecommendPrompt(req.History, results, utterance, decision.AdvisoryNote, o.cfg.MaxPromptTokens)
	reply, err := o.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if isNotFound(reply) {
		metrics.CountSentinelHit()
		metrics.CountResult(string(KindNotFound))
		return &Result{Kind: KindNotFound, Text: NotFoundMessage}, nil
	}

	metrics.CountResult(string(KindRecommendation))
	return &Result{Kind: KindRecommendation, Text: strings.TrimSpace(reply)}, nil
}

// HandleTechnical answers a question about one product using only that
// product's label passages.
func (o *Orchestrator) HandleTechnical(ctx context.Context, product, question string) (*Result, error) {
	product = strings.TrimSpace(product)
	question = strings.TrimSpace(question)
	if product == "" || question == "" {
		return nil, ErrEmptyUtterance
	}
	if o.llm == nil || o.retriever == nil {
		return nil, ErrServiceUnavailable
	}

	probe, err := o.retriever.Search(ctx, product, &schema.SearchOptions{TopK: 1})
	if err != nil {
		return nil, &UpstreamError{Stage: "retrieval", Err: err}
	}
	if len(probe) == 0 {
		metrics.CountResult(string(KindNotFound))
		return &Result{Kind: KindNotFound, Text: NotFoundMessage}, nil
	}

	source := probe[0].Document.SourceLabel
	results, err := o.retriever.Search(ctx, product+" "+question, &schema.SearchOptions{
		TopK:        o.cfg.TopK,
		Threshold:   o.cfg.Threshold,
		SourceLabel: source,
	})
	if err != nil {
		return nil, &UpstreamError{Stage: "retrieval", Err: err}
	}
	if len(results) == 0 {
		metrics.CountEmptyRetrieval()
		metrics.CountResult(string(KindNotFound))
		return &Result{Kind: KindNotFound, Text: NotFoundMessage}, nil
	}

	prompt := buildTechnicalPrompt(product, results, question, o.cfg.MaxPromptTokens)
	reply, err := o.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if isNotFound(reply) {
		metrics.CountSentinelHit()
		metrics.CountResult(string(KindNotFound))
		return &Result{Kind: KindNotFound, Text: NotFoundMessage}, nil
	}
	metrics.CountResult(string(KindRecommendation))
	return &Result{Kind: KindRecommendation, Text: strings.TrimSpace(reply)}, nil
}

// retrieve collects passages for the utterance per the configured
// strategy and deduplicates them by content.
func (o *Orchestrator) retrieve(ctx context.Context, utterance string) ([]schema.SearchResult, error) {
	if o.cfg.Strategy == config.StrategyBroad {
		results, err := o.retriever.Search(ctx, utterance, &schema.SearchOptions{
			TopK:      o.cfg.BroadTopK,
			Threshold: o.cfg.Threshold,
		})
		if err != nil {
			return nil, &UpstreamError{Stage: "retrieval", Err: err}
		}
		merged := post.MergeByContent(results)
		return o.filter.Filter(ctx, utterance, merged), nil
	}

	queries := o.expander.Expand(ctx, utterance)
	batches := make([][]schema.SearchResult, len(queries))
	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			batches[i], errs[i] = o.retriever.Search(ctx, q, &schema.SearchOptions{
				TopK:      o.cfg.TopK,
				Threshold: o.cfg.Threshold,
			})
		}(i, q)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, &UpstreamError{Stage: "retrieval", Err: err}
		}
	}
	return post.MergeByContent(batches...), nil
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := o.llm.Complete(ctx, prompt, llm.Options{
		Temperature: o.cfg.GenerationTemperature,
	})
	metrics.ObserveLLMCall("generation", time.Since(start))
	if err != nil {
		return "", &UpstreamError{Stage: "generation", Err: err}
	}
	return reply, nil
}
