package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/orchestrator"
	"github.com/agrofel/field-assistant/schema"
	"github.com/agrofel/field-assistant/session"
)

func TestFirstProductName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"**Produto 1:** GLYPHOTAL TR\n**Descrição:** herbicida sistêmico.", "GLYPHOTAL TR"},
		{"Olá!\n\n**Produto 1:** [NUFOS 480 EC]\n**Descrição:** inseticida.", "NUFOS 480 EC"},
		{"resposta sem produto estruturado", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, firstProductName(tt.text))
	}
}

func TestTechnicalWithoutProductAsksForOne(t *testing.T) {
	c := &Client{}
	res, err := c.Technical(context.Background(), "", "", "Qual a dose?")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.KindClarification, res.Kind)
	assert.Contains(t, res.Text, "produto")
}

func TestRecordTracksLastRecommendation(t *testing.T) {
	ctx := context.Background()
	c := &Client{sessions: session.NewMemoryStore(0, 10)}
	sess, err := c.sessions.Create(ctx)
	require.NoError(t, err)

	res := &orchestrator.Result{
		Kind: orchestrator.KindRecommendation,
		Text: "**Produto 1:** GLYPHOTAL TR\n**Descrição:** herbicida.",
	}
	_, err = c.record(ctx, sess, "Capim-amargoso na soja", res)
	require.NoError(t, err)

	got, err := c.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "GLYPHOTAL TR", got.LastRecommendation)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, schema.RoleUser, got.Messages[0].Role)
	assert.Equal(t, schema.RoleAssistant, got.Messages[1].Role)
}

func TestRecordIgnoresNotFound(t *testing.T) {
	ctx := context.Background()
	c := &Client{sessions: session.NewMemoryStore(0, 10)}
	sess, err := c.sessions.Create(ctx)
	require.NoError(t, err)
	sess.LastRecommendation = "GLYPHOTAL TR"

	_, err = c.record(ctx, sess, "e para ferrugem?", &orchestrator.Result{
		Kind: orchestrator.KindNotFound,
		Text: orchestrator.NotFoundMessage,
	})
	require.NoError(t, err)

	got, err := c.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "GLYPHOTAL TR", got.LastRecommendation)
}
