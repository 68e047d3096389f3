package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/schema"
)

func TestTrimToBudget(t *testing.T) {
	long := strings.Repeat("palavra ", 400)
	results := []schema.SearchResult{
		{Document: schema.Document{Content: long}},
		{Document: schema.Document{Content: long}},
		{Document: schema.Document{Content: long}},
	}

	budget := tokenLen(long) + 1
	trimmed := trimToBudget(results, budget)
	assert.Len(t, trimmed, 1)

	assert.Len(t, trimToBudget(results, 0), 3, "zero budget disables trimming")
}

func TestTrimToBudgetKeepsFirstPassage(t *testing.T) {
	results := []schema.SearchResult{
		{Document: schema.Document{Content: strings.Repeat("a", 10000)}},
	}
	assert.Len(t, trimToBudget(results, 1), 1)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound("NAO_ENCONTRADO"))
	assert.True(t, isNotFound("Olha, NAO_ENCONTRADO mesmo."))
	assert.False(t, isNotFound("**Produto 1:** GLYPHOTAL TR"))
}

func TestBuildRecommendPrompt(t *testing.T) {
	history := []schema.ChatMessage{
		{Role: schema.RoleUser, Content: "oi"},
		{Role: schema.RoleAssistant, Content: "olá, como posso ajudar?"},
	}
	results := []schema.SearchResult{
		{Document: schema.Document{Content: "trecho da bula", SourceLabel: "bula_x"}},
	}

	prompt := buildRecommendPrompt(history, results, "Capim-amargoso na soja", "", 0)

	require.Contains(t, prompt, "Produtor: oi")
	require.Contains(t, prompt, "Assistente: olá, como posso ajudar?")
	require.Contains(t, prompt, "[bula_x] trecho da bula")
	require.Contains(t, prompt, "Capim-amargoso na soja")
	assert.Contains(t, prompt, sentinel)
	assert.NotContains(t, prompt, "5. Termine a resposta")
}

func TestBuildRecommendPromptWithNote(t *testing.T) {
	results := []schema.SearchResult{
		{Document: schema.Document{Content: "trecho", SourceLabel: "bula_x"}},
	}
	note := "Para confirmar a dose, me informe a cultura."
	prompt := buildRecommendPrompt(nil, results, "pergunta", note, 0)
	assert.Contains(t, prompt, "5. Termine a resposta com este aviso ao produtor: "+note)
}
