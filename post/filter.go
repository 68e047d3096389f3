package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/metrics"
	"github.com/agrofel/field-assistant/schema"
)

const filterPrompt = `Sua tarefa é analisar os trechos de bulas de produtos abaixo e retornar APENAS o conteúdo dos %d trechos que são MAIS RELEVANTES para responder à pergunta do produtor.
Copie o conteúdo dos trechos escolhidos exatamente como está, separados por '---'. Não adicione comentários nem explicações.

Pergunta: %s

Trechos:
%s`

// LLMFilter asks the model to keep only the passages most relevant to the
// question.
type LLMFilter struct {
	llm  llm.Provider
	keep int
}

func NewLLMFilter(provider llm.Provider, keep int) *LLMFilter {
	if keep <= 0 {
		keep = 3
	}
	return &LLMFilter{llm: provider, keep: keep}
}

// Filter is best effort: when the model fails or returns nothing usable,
// the input comes back unchanged.
func (f *LLMFilter) Filter(ctx context.Context, question string, results []schema.SearchResult) []schema.SearchResult {
	if len(results) <= f.keep {
		return results
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(r.Document.Content)
	}

	start := time.Now()
	raw, err := f.llm.Complete(ctx,
		fmt.Sprintf(filterPrompt, f.keep, question, sb.String()),
		llm.Options{Temperature: 0})
	metrics.ObserveLLMCall("filter", time.Since(start))
	if err != nil {
		logx.Warn().Err(err).Msg("passage filter failed, keeping all passages")
		return results
	}

	byContent := make(map[string]schema.SearchResult, len(results))
	for _, r := range results {
		byContent[strings.TrimSpace(r.Document.Content)] = r
	}

	var kept []schema.SearchResult
	for _, chunk := range strings.Split(raw, "---") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if r, ok := byContent[chunk]; ok {
			kept = append(kept, r)
		}
		if len(kept) == f.keep {
			break
		}
	}
	if len(kept) == 0 {
		logx.Warn().Msg("passage filter matched nothing, keeping all passages")
		return results
	}
	return kept
}
