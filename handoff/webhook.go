package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agrofel/field-assistant/common/httpx"
	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
)

// WebhookNotifier posts leads as JSON to the configured webhooks. A notify
// method whose webhook is unset logs the lead and succeeds, so hand-off
// keeps working in deployments without CRM integration.
type WebhookNotifier struct {
	client     *httpx.Client
	salesURL   string
	supportURL string
}

func NewWebhookNotifier(client *httpx.Client, cfg config.HandoffConfig) *WebhookNotifier {
	return &WebhookNotifier{
		client:     client,
		salesURL:   cfg.SalesWebhook,
		supportURL: cfg.SupportWebhook,
	}
}

func (n *WebhookNotifier) NotifySales(ctx context.Context, lead Lead) error {
	return n.post(ctx, n.salesURL, "sales", lead)
}

func (n *WebhookNotifier) Escalate(ctx context.Context, lead Lead) error {
	return n.post(ctx, n.supportURL, "support", lead)
}

func (n *WebhookNotifier) post(ctx context.Context, url, kind string, lead Lead) error {
	if url == "" {
		logx.Info().Str("kind", kind).Str("session", lead.SessionID).
			Str("product", lead.Product).Msg("handoff webhook unset, lead logged only")
		return nil
	}
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("handoff: encode lead: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("handoff: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("handoff: post %s lead: %w", kind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("handoff: %s webhook returned %d", kind, resp.StatusCode)
	}
	return nil
}
