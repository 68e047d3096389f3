// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/orchestrator"
	"github.com/agrofel/field-assistant/session"
)

// Assistant is the surface the HTTP layer needs from the assembled client.
type Assistant interface {
	StartSession(ctx context.Context) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	Recommend(ctx context.Context, sessionID, utterance string) (*orchestrator.Result, error)
	Technical(ctx context.Context, sessionID, product, question string) (*orchestrator.Result, error)
	ConfirmOrder(ctx context.Context, sessionID, note string) (string, error)
	Escalate(ctx context.Context, sessionID, reason string) error
}

type Server struct {
	assistant Assistant
	router    chi.Router
	addr      string
}

func New(assistant Assistant, cfg config.ServerConfig) *Server {
	s := &Server{
		assistant: assistant,
		addr:      fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/recommend", s.handleRecommend)
		r.Post("/technical", s.handleTechnical)
		r.Post("/handoff/confirm", s.handleConfirm)
		r.Post("/handoff/escalate", s.handleEscalate)
	})
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run blocks serving until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
