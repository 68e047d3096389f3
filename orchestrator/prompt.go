package orchestrator

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/agrofel/field-assistant/schema"
)

// Sentinel the generation model answers with when the passages cannot
// support an answer. It never reaches the grower.
const sentinel = "NAO_ENCONTRADO"

// NotFoundMessage is the grower-facing reply when the knowledge base had
// nothing usable.
const NotFoundMessage = "Não encontrei na nossa base de bulas um produto adequado para essa necessidade. " +
	"Posso encaminhar sua dúvida para um dos nossos consultores da Agrofel entrar em contato com você."

const recommendPrompt = `Você é um assistente de vendas especializado da Agrofel, distribuidora de insumos agrícolas.
Responda à pergunta do produtor usando APENAS as informações dos trechos de bulas abaixo.

Regras:
1. Recomende no máximo 2 produtos, sempre neste formato:
**Produto 1:** [Nome do Produto]
**Descrição:** [como o produto resolve o problema do produtor, com dose e modo de aplicação quando constarem nos trechos]
2. Use um tom cordial e direto, em português do Brasil.
3. Nunca invente produtos, doses ou recomendações que não estejam nos trechos.
4. Se os trechos não forem suficientes para responder, responda APENAS com: NAO_ENCONTRADO
%s
Histórico da conversa:
%s

Trechos das bulas:
%s

Pergunta do produtor: %s`

const technicalPrompt = `Você é um assistente técnico da Agrofel. O produtor está perguntando sobre o produto %s.
Responda usando APENAS as informações dos trechos da bula abaixo. Não use nenhum conhecimento externo.
Se os trechos não contiverem a resposta, responda APENAS com: NAO_ENCONTRADO

Trechos da bula:
%s

Pergunta do produtor: %s`

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// tokenLen counts tokens with the cl100k_base encoding. The encoding is
// fetched over the network on first use; when that fails, a rune count
// heuristic stands in.
func tokenLen(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return utf8.RuneCountInString(text)/4 + 1
}

// trimToBudget drops passages from the end until the whole set fits the
// token budget. At least one passage always survives.
func trimToBudget(results []schema.SearchResult, budget int) []schema.SearchResult {
	if budget <= 0 || len(results) == 0 {
		return results
	}
	total := 0
	for i, r := range results {
		total += tokenLen(r.Document.Content)
		if total > budget && i > 0 {
			return results[:i]
		}
	}
	return results
}

func formatHistory(history []schema.ChatMessage) string {
	if len(history) == 0 {
		return "(sem histórico)"
	}
	var sb strings.Builder
	for i, m := range history {
		if i > 0 {
			sb.WriteByte('\n')
		}
		role := "Produtor"
		if m.Role == schema.RoleAssistant {
			role = "Assistente"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

func formatPassages(results []schema.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		if r.Document.SourceLabel != "" {
			sb.WriteString("[")
			sb.WriteString(r.Document.SourceLabel)
			sb.WriteString("] ")
		}
		sb.WriteString(r.Document.Content)
	}
	return sb.String()
}

func buildRecommendPrompt(history []schema.ChatMessage, results []schema.SearchResult, question, note string, budget int) string {
	trimmed := trimToBudget(results, budget)
	return fmt.Sprintf(recommendPrompt, formatNote(note), formatHistory(history), formatPassages(trimmed), question)
}

// formatNote turns the router's advisory note into an extra prompt rule.
// The note rides the prompt; nothing downstream acts on it.
func formatNote(note string) string {
	if note == "" {
		return ""
	}
	return "5. Termine a resposta com este aviso ao produtor: " + note + "\n"
}

func buildTechnicalPrompt(product string, results []schema.SearchResult, question string, budget int) string {
	trimmed := trimToBudget(results, budget)
	return fmt.Sprintf(technicalPrompt, product, formatPassages(trimmed), question)
}

// isNotFound reports whether the model declined to answer. The marker
// counts anywhere in the reply, not only as the full reply.
func isNotFound(reply string) bool {
	return strings.Contains(reply, sentinel)
}
