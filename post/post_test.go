package post

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/schema"
)

func result(id, content string) schema.SearchResult {
	return schema.SearchResult{Document: schema.Document{ID: id, Content: content}}
}

func TestMergeByContent(t *testing.T) {
	a := []schema.SearchResult{result("1", "alfa"), result("2", "beta")}
	b := []schema.SearchResult{result("3", "beta"), result("4", "gama")}

	merged := MergeByContent(a, b)

	assert.Len(t, merged, 3)
	assert.Equal(t, "alfa", merged[0].Document.Content)
	assert.Equal(t, "beta", merged[1].Document.Content)
	assert.Equal(t, "2", merged[1].Document.ID, "first occurrence wins")
	assert.Equal(t, "gama", merged[2].Document.Content)
}

func TestMergeByContentEmpty(t *testing.T) {
	assert.Empty(t, MergeByContent(nil, nil))
}

type stubLLM struct {
	out string
	err error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return s.out, s.err
}

func (s *stubLLM) CompleteWithTools(ctx context.Context, prompt string, tools []llm.Tool, opts llm.Options) (*llm.ToolCall, error) {
	return nil, errors.New("not used")
}

func TestFilterKeepsSelectedPassages(t *testing.T) {
	in := []schema.SearchResult{
		result("1", "dose de 2 L/ha em soja"),
		result("2", "armazenar em local seco"),
		result("3", "controle de capim-amargoso"),
		result("4", "descarte de embalagens"),
	}
	f := NewLLMFilter(&stubLLM{out: "controle de capim-amargoso\n---\ndose de 2 L/ha em soja"}, 3)

	kept := f.Filter(context.Background(), "qual a dose para capim-amargoso?", in)

	assert.Len(t, kept, 2)
	assert.Equal(t, "3", kept[0].Document.ID)
	assert.Equal(t, "1", kept[1].Document.ID)
}

func TestFilterSkipsWhenFewPassages(t *testing.T) {
	in := []schema.SearchResult{result("1", "só um trecho")}
	f := NewLLMFilter(&stubLLM{err: errors.New("must not be called")}, 3)
	assert.Equal(t, in, f.Filter(context.Background(), "pergunta", in))
}

func TestFilterFallsBackOnError(t *testing.T) {
	in := []schema.SearchResult{
		result("1", "a"), result("2", "b"), result("3", "c"), result("4", "d"),
	}
	f := NewLLMFilter(&stubLLM{err: errors.New("model down")}, 3)
	assert.Equal(t, in, f.Filter(context.Background(), "pergunta", in))
}

func TestFilterFallsBackOnUnmatchedOutput(t *testing.T) {
	in := []schema.SearchResult{
		result("1", "a"), result("2", "b"), result("3", "c"), result("4", "d"),
	}
	f := NewLLMFilter(&stubLLM{out: "texto inventado pelo modelo"}, 3)
	assert.Equal(t, in, f.Filter(context.Background(), "pergunta", in))
}
