package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/metrics"
)

const extractionPrompt = `Analise a mensagem de um produtor rural e extraia as informações abaixo usando a ferramenta registrar_analise.

- cultura: a cultura mencionada (ex: soja, milho, trigo). Vazio se não houver.
- praga: o nome específico da praga, planta daninha ou doença (ex: Capim-amargoso, ferrugem asiática). Vazio se não houver.
- termo_generico: se o produtor usou apenas um termo genérico como "praga", "pragas", "doença", "inseto" ou "mato" sem nomear a espécie, repita aqui exatamente o termo usado. Vazio caso contrário.
- menciona_produto: true se a mensagem pergunta sobre um produto específico pelo nome (dose, aplicação, modo de uso), false se pede uma recomendação.

Mensagem: %s`

var extractionTool = llm.Tool{
	Name:        "registrar_analise",
	Description: "Registra a análise estruturada da mensagem do produtor.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cultura": map[string]any{
				"type":        "string",
				"description": "Cultura mencionada, vazio se ausente.",
			},
			"praga": map[string]any{
				"type":        "string",
				"description": "Praga, daninha ou doença específica, vazio se ausente.",
			},
			"termo_generico": map[string]any{
				"type":        "string",
				"description": "Termo genérico usado no lugar do nome da espécie, vazio caso contrário.",
			},
			"menciona_produto": map[string]any{
				"type":        "boolean",
				"description": "Se a mensagem pergunta sobre um produto pelo nome.",
			},
		},
		"required": []string{"cultura", "praga", "termo_generico", "menciona_produto"},
	},
}

// Extractor reads crop, pest and intent out of an utterance with one
// model tool call.
type Extractor struct {
	llm         llm.Provider
	temperature float64
}

func NewExtractor(provider llm.Provider, temperature float64) *Extractor {
	return &Extractor{llm: provider, temperature: temperature}
}

// Extract never fails the pipeline: a model error propagates, but a
// malformed or missing tool call falls back to an empty analysis.
func (e *Extractor) Extract(ctx context.Context, utterance string) (QueryAnalysis, error) {
	start := time.Now()
	call, err := e.llm.CompleteWithTools(ctx,
		fmt.Sprintf(extractionPrompt, utterance),
		[]llm.Tool{extractionTool},
		llm.Options{Temperature: e.temperature})
	metrics.ObserveLLMCall("extraction", time.Since(start))
	if errors.Is(err, llm.ErrMalformedToolCall) {
		logx.Warn().Err(err).Msg("extraction arguments unreadable, falling back")
		return QueryAnalysis{}, nil
	}
	if err != nil {
		return QueryAnalysis{}, err
	}
	if call == nil || call.Name != extractionTool.Name {
		logx.Warn().Msg("extraction returned no usable tool call, falling back")
		return QueryAnalysis{}, nil
	}
	return QueryAnalysis{
		Crop:            strArg(call.Arguments, "cultura"),
		Pest:            strArg(call.Arguments, "praga"),
		GenericTerm:     strArg(call.Arguments, "termo_generico"),
		MentionsProduct: boolArg(call.Arguments, "menciona_produto"),
		Extracted:       true,
	}, nil
}

func strArg(args map[string]any, key string) string {
	v, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
