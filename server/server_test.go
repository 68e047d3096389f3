package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/orchestrator"
	"github.com/agrofel/field-assistant/session"
)

type fakeAssistant struct {
	recommend    *orchestrator.Result
	recommendErr error
	session      *session.Session
	link         string
	escalated    bool
}

func (f *fakeAssistant) StartSession(ctx context.Context) (*session.Session, error) {
	return f.session, nil
}

func (f *fakeAssistant) GetSession(ctx context.Context, id string) (*session.Session, error) {
	if f.session == nil || f.session.ID != id {
		return nil, session.ErrNotFound
	}
	return f.session, nil
}

func (f *fakeAssistant) Recommend(ctx context.Context, sessionID, utterance string) (*orchestrator.Result, error) {
	return f.recommend, f.recommendErr
}

func (f *fakeAssistant) Technical(ctx context.Context, sessionID, product, question string) (*orchestrator.Result, error) {
	return f.recommend, f.recommendErr
}

func (f *fakeAssistant) ConfirmOrder(ctx context.Context, sessionID, note string) (string, error) {
	return f.link, nil
}

func (f *fakeAssistant) Escalate(ctx context.Context, sessionID, reason string) error {
	f.escalated = true
	return nil
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommendEndpoint(t *testing.T) {
	fake := &fakeAssistant{recommend: &orchestrator.Result{
		Kind: orchestrator.KindRecommendation,
		Text: "**Produto 1:** GLYPHOTAL TR",
	}}
	srv := New(fake, config.ServerConfig{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/v1/recommend",
		chatRequest{Message: "Capim-amargoso na soja"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "recommendation", resp.Kind)
	assert.Contains(t, resp.Reply, "GLYPHOTAL TR")
}

func TestRecommendEmptyMessage(t *testing.T) {
	fake := &fakeAssistant{recommendErr: orchestrator.ErrEmptyUtterance}
	srv := New(fake, config.ServerConfig{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/v1/recommend", chatRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendUpstreamFailureHidesDetails(t *testing.T) {
	fake := &fakeAssistant{recommendErr: &orchestrator.UpstreamError{
		Stage: "generation", Err: errors.New("api key leaked in error"),
	}}
	srv := New(fake, config.ServerConfig{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/v1/recommend",
		chatRequest{Message: "oi"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "api key")
}

func TestGetSessionNotFound(t *testing.T) {
	srv := New(&fakeAssistant{}, config.ServerConfig{})
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmReturnsWhatsAppLink(t *testing.T) {
	fake := &fakeAssistant{link: "https://wa.me/5551999990000?text=oi"}
	srv := New(fake, config.ServerConfig{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/v1/handoff/confirm",
		handoffRequest{SessionID: "s1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, fake.link, resp["whatsapp_link"])
}

func TestEscalateEndpoint(t *testing.T) {
	fake := &fakeAssistant{}
	srv := New(fake, config.ServerConfig{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/v1/handoff/escalate",
		handoffRequest{SessionID: "s1", Note: "quero falar com um humano"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, fake.escalated)
}

func TestHealthz(t *testing.T) {
	srv := New(&fakeAssistant{}, config.ServerConfig{})
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
