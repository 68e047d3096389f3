package handoff

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/common/httpx"
	"github.com/agrofel/field-assistant/config"
)

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+55 (51) 99999-0000", "Olá, tenho interesse no GLYPHOTAL TR")
	assert.Equal(t, "https://wa.me/5551999990000?text=Ol%C3%A1%2C+tenho+interesse+no+GLYPHOTAL+TR", link)
}

func TestWhatsAppLinkNoDigits(t *testing.T) {
	assert.Empty(t, WhatsAppLink("sem número", "oi"))
}

func TestNotifySalesPostsLead(t *testing.T) {
	var got Lead
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(httpx.NewFromConfig(nil), config.HandoffConfig{SalesWebhook: srv.URL})
	lead := Lead{SessionID: "s1", Product: "GLYPHOTAL TR", Utterance: "quero fechar o pedido", CreatedAt: time.Now()}

	require.NoError(t, n.NotifySales(context.Background(), lead))
	assert.Equal(t, "GLYPHOTAL TR", got.Product)
	assert.Equal(t, "s1", got.SessionID)
}

func TestEscalateReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(httpx.NewFromConfig(nil), config.HandoffConfig{SupportWebhook: srv.URL})
	err := n.Escalate(context.Background(), Lead{SessionID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestUnsetWebhookSucceeds(t *testing.T) {
	n := NewWebhookNotifier(httpx.NewFromConfig(nil), config.HandoffConfig{})
	assert.NoError(t, n.NotifySales(context.Background(), Lead{SessionID: "s1"}))
	assert.NoError(t, n.Escalate(context.Background(), Lead{SessionID: "s1"}))
}
