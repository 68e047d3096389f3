// Package handoff moves a conversation from the assistant to a person:
// notifying a sales rep when the grower wants to buy, or escalating to a
// human agent when the assistant cannot help.
package handoff

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Lead is what a sales rep receives when a grower confirms interest.
type Lead struct {
	SessionID  string    `json:"session_id"`
	Product    string    `json:"product,omitempty"`
	Utterance  string    `json:"utterance"`
	Transcript string    `json:"transcript,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notifier delivers hand-off events.
type Notifier interface {
	// NotifySales tells a rep that the grower wants to close an order.
	NotifySales(ctx context.Context, lead Lead) error
	// Escalate forwards the conversation to a human support agent.
	Escalate(ctx context.Context, lead Lead) error
}

// WhatsAppLink builds a click-to-chat link for the given number with the
// message prefilled. Non-digit characters in the number are dropped.
func WhatsAppLink(number, text string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + digits.String(),
		RawQuery: url.Values{"text": {text}}.Encode(),
	}
	return u.String()
}
