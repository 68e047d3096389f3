// Package assistant exposes the Agrofel field assistant: a retrieval
// augmented chat service that recommends agrochemical products from a
// base of label documents and hands confirmed leads to sales reps.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agrofel/field-assistant/cache"
	"github.com/agrofel/field-assistant/common/httpx"
	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/embedding"
	"github.com/agrofel/field-assistant/handoff"
	"github.com/agrofel/field-assistant/llm"
	"github.com/agrofel/field-assistant/metrics"
	"github.com/agrofel/field-assistant/orchestrator"
	"github.com/agrofel/field-assistant/retriever"
	"github.com/agrofel/field-assistant/schema"
	"github.com/agrofel/field-assistant/session"
	"github.com/agrofel/field-assistant/vectordb"
)

// Client is the assembled assistant. One instance serves all sessions.
type Client struct {
	cfg      *config.Config
	llm      llm.Provider
	store    vectordb.VectorStoreProvider
	orch     *orchestrator.Orchestrator
	sessions session.Store
	notifier handoff.Notifier
	answers  *cache.Cache[orchestrator.Result]
}

// New wires every component from configuration and verifies the vector
// collection is loadable.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	provider, err := llm.NewOpenAIProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("assistant: init llm provider: %w", err)
	}
	embedder, err := embedding.NewOpenAIProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("assistant: init embedding provider: %w", err)
	}
	store, err := vectordb.NewMilvusProvider(ctx, &cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("assistant: init vector store: %w", err)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("assistant: prepare collection: %w", err)
	}

	sessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		llm:      provider,
		store:    store,
		orch:     orchestrator.New(provider, retriever.NewVectorRetriever(embedder, store), cfg.Pipeline),
		sessions: sessions,
		notifier: handoff.NewWebhookNotifier(httpx.NewFromConfig(cfg.HTTP), cfg.Handoff),
	}
	if cfg.Pipeline.Cache.Enable {
		c.answers = cache.New[orchestrator.Result](
			cfg.Pipeline.Cache.MaxEntries,
			time.Duration(cfg.Pipeline.Cache.TTLSeconds)*time.Second,
		)
	}
	metrics.Register(prometheus.DefaultRegisterer)
	logx.Info().Str("collection", cfg.VectorDB.Collection).
		Str("strategy", cfg.Pipeline.Strategy).Msg("assistant ready")
	return c, nil
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.Store == "redis" {
		s, err := session.NewRedisStore(ctx, cfg.RedisURL, ttl)
		if err != nil {
			return nil, fmt.Errorf("assistant: init session store: %w", err)
		}
		return s, nil
	}
	return session.NewMemoryStore(ttl, cfg.MaxSessions), nil
}

// StartSession opens a new conversation.
func (c *Client) StartSession(ctx context.Context) (*session.Session, error) {
	return c.sessions.Create(ctx)
}

// GetSession returns the stored conversation state.
func (c *Client) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return c.sessions.Get(ctx, id)
}

// Recommend runs one grower turn through the pipeline, keeping the
// session history and the product under discussion up to date. An empty
// sessionID serves the turn statelessly.
func (c *Client) Recommend(ctx context.Context, sessionID, utterance string) (*orchestrator.Result, error) {
	var sess *session.Session
	if sessionID != "" {
		var err error
		sess, err = c.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}

	req := orchestrator.Request{Utterance: utterance}
	if sess != nil {
		req.History = sess.RecentTurns(c.cfg.Pipeline.HistoryTurns)
		req.Product = sess.LastRecommendation
	}

	// Only history-free turns are cacheable: the same words can mean
	// something else mid-conversation.
	cacheable := c.answers != nil && len(req.History) == 0 && req.Product == ""
	if cacheable {
		if res, ok := c.answers.Get(strings.TrimSpace(utterance)); ok {
			logx.Debug().Msg("answer served from cache")
			return c.record(ctx, sess, utterance, &res)
		}
	}

	res, err := c.orch.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.answers.Set(strings.TrimSpace(utterance), *res)
	}
	return c.record(ctx, sess, utterance, res)
}

// Technical answers a question about a specific product. With an empty
// product name the session's last recommended product is used.
func (c *Client) Technical(ctx context.Context, sessionID, product, question string) (*orchestrator.Result, error) {
	var sess *session.Session
	if sessionID != "" {
		var err error
		sess, err = c.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if product == "" {
			product = sess.LastRecommendation
		}
	}
	if product == "" {
		return &orchestrator.Result{
			Kind: orchestrator.KindClarification,
			Text: "Sobre qual produto é a sua dúvida? Me diga o nome dele que eu consulto a bula.",
		}, nil
	}

	res, err := c.orch.HandleTechnical(ctx, product, question)
	if err != nil {
		return nil, err
	}
	return c.record(ctx, sess, question, res)
}

// ConfirmOrder notifies a sales rep about the lead and returns a WhatsApp
// link the grower can use to close the order directly.
func (c *Client) ConfirmOrder(ctx context.Context, sessionID, note string) (string, error) {
	lead := handoff.Lead{SessionID: sessionID, Utterance: note, CreatedAt: time.Now()}
	if sessionID != "" {
		if sess, err := c.sessions.Get(ctx, sessionID); err == nil {
			lead.Product = sess.LastRecommendation
			lead.Transcript = transcript(sess)
		}
	}
	if err := c.notifier.NotifySales(ctx, lead); err != nil {
		return "", err
	}
	msg := "Olá! Tenho interesse em fechar um pedido com a Agrofel."
	if lead.Product != "" {
		msg = fmt.Sprintf("Olá! Tenho interesse em fechar um pedido do produto %s com a Agrofel.", lead.Product)
	}
	return handoff.WhatsAppLink(c.cfg.Handoff.WhatsAppNumber, msg), nil
}

// Escalate forwards the conversation to a human agent.
func (c *Client) Escalate(ctx context.Context, sessionID, reason string) error {
	lead := handoff.Lead{SessionID: sessionID, Utterance: reason, CreatedAt: time.Now()}
	if sessionID != "" {
		if sess, err := c.sessions.Get(ctx, sessionID); err == nil {
			lead.Product = sess.LastRecommendation
			lead.Transcript = transcript(sess)
		}
	}
	return c.notifier.Escalate(ctx, lead)
}

// Close releases the vector store connection and, when applicable, the
// session store.
func (c *Client) Close() error {
	type closer interface{ Close() error }
	if cl, ok := c.sessions.(closer); ok {
		_ = cl.Close()
	}
	return c.store.Close()
}

// record appends the exchange to the session and tracks the product the
// conversation settled on.
func (c *Client) record(ctx context.Context, sess *session.Session, utterance string, res *orchestrator.Result) (*orchestrator.Result, error) {
	if sess == nil {
		return res, nil
	}
	sess.Append(schema.RoleUser, utterance)
	sess.Append(schema.RoleAssistant, res.Text)
	if res.Kind == orchestrator.KindRecommendation {
		if name := firstProductName(res.Text); name != "" {
			sess.LastRecommendation = name
		}
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		logx.Error().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}
	return res, nil
}

// firstProductName pulls the product out of a reply formatted as
// "**Produto 1:** NAME".
func firstProductName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "**Produto 1:**"); ok {
			return strings.Trim(strings.TrimSpace(rest), "*[]")
		}
	}
	return ""
}

func transcript(sess *session.Session) string {
	var sb strings.Builder
	for i, m := range sess.Messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}
