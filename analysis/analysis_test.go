package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/llm"
)

type stubLLM struct {
	call *llm.ToolCall
	err  error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return "", errors.New("not used")
}

func (s *stubLLM) CompleteWithTools(ctx context.Context, prompt string, tools []llm.Tool, opts llm.Options) (*llm.ToolCall, error) {
	return s.call, s.err
}

func TestExtract(t *testing.T) {
	e := NewExtractor(&stubLLM{call: &llm.ToolCall{
		Name: "registrar_analise",
		Arguments: map[string]any{
			"cultura":          "soja",
			"praga":            "Capim-amargoso",
			"termo_generico":   "",
			"menciona_produto": false,
		},
	}}, 0)

	a, err := e.Extract(context.Background(), "Qual produto usar para Capim-amargoso na cultura da soja?")
	require.NoError(t, err)
	assert.True(t, a.Extracted)
	assert.Equal(t, "soja", a.Crop)
	assert.Equal(t, "Capim-amargoso", a.Pest)
	assert.False(t, a.MentionsProduct)
}

func TestExtractFallback(t *testing.T) {
	cases := map[string]*stubLLM{
		"no tool call":    {call: nil},
		"wrong tool name": {call: &llm.ToolCall{Name: "outra_coisa"}},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := NewExtractor(stub, 0).Extract(context.Background(), "tenho um problema")
			require.NoError(t, err)
			assert.False(t, a.Extracted)
			assert.Empty(t, a.Pest)
		})
	}
}

func TestExtractRecoversMalformedArguments(t *testing.T) {
	stub := &stubLLM{err: fmt.Errorf("%w: unexpected end of JSON input", llm.ErrMalformedToolCall)}
	a, err := NewExtractor(stub, 0).Extract(context.Background(), "tenho um problema")
	require.NoError(t, err)
	assert.False(t, a.Extracted)
}

func TestExtractPropagatesModelError(t *testing.T) {
	_, err := NewExtractor(&stubLLM{err: errors.New("boom")}, 0).
		Extract(context.Background(), "tenho um problema")
	require.Error(t, err)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		in   QueryAnalysis
		want Route
	}{
		{"product question", QueryAnalysis{MentionsProduct: true, Extracted: true}, RouteTechnical},
		{"generic term", QueryAnalysis{GenericTerm: "praga", Extracted: true}, RouteClarify},
		{"no pest", QueryAnalysis{Crop: "soja", Extracted: true}, RouteClarify},
		{"full analysis", QueryAnalysis{Crop: "soja", Pest: "Capim-amargoso", Extracted: true}, RouteRecommend},
		{"extraction fallback", QueryAnalysis{}, RouteRecommend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.in).Route)
		})
	}
}

func TestDecideGenericTermQuotedVerbatim(t *testing.T) {
	d := Decide(QueryAnalysis{GenericTerm: "pragas", Extracted: true})
	require.Equal(t, RouteClarify, d.Route)
	assert.True(t, strings.Contains(d.Message, "pragas"))
}

func TestDecideMissingCropGetsAdvisoryNote(t *testing.T) {
	d := Decide(QueryAnalysis{Pest: "ferrugem asiática", Extracted: true})
	require.Equal(t, RouteRecommend, d.Route)
	assert.NotEmpty(t, d.AdvisoryNote)
}
