// Package expansion rewrites one retrieval query into several variants so
// that vector search sees different phrasings of the same need.
package expansion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/metrics"
)

const expansionPrompt = `Você é um especialista em busca de informações sobre defensivos agrícolas.
Gere %d variações da consulta abaixo para melhorar a busca em uma base de bulas de produtos.
Use sinônimos e termos técnicos do setor agrícola. Responda APENAS com as variações, uma por linha, sem numeração.

Consulta: %s`

// Expander produces query variants with one model call.
type Expander struct {
	llm         llm.Provider
	variants    int
	temperature float64
}

func NewExpander(provider llm.Provider, variants int, temperature float64) *Expander {
	if variants <= 0 {
		variants = 3
	}
	return &Expander{llm: provider, variants: variants, temperature: temperature}
}

// Expand returns the original query followed by up to the configured number
// of variants. Expansion is best effort: on any failure the original query
// comes back alone and the error is only logged.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	start := time.Now()
	raw, err := e.llm.Complete(ctx,
		fmt.Sprintf(expansionPrompt, e.variants, query),
		llm.Options{Temperature: e.temperature})
	metrics.ObserveLLMCall("expansion", time.Since(start))
	if err != nil {
		logx.Warn().Err(err).Msg("query expansion failed, using original query only")
		return []string{query}
	}

	queries := []string{query}
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	for _, line := range strings.Split(raw, "\n") {
		variant := strings.TrimSpace(line)
		if variant == "" {
			continue
		}
		key := strings.ToLower(variant)
		if seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, variant)
		if len(queries) > e.variants {
			break
		}
	}
	return queries
}
