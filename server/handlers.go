package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/orchestrator"
	"github.com/agrofel/field-assistant/session"
)

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type technicalRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Product   string `json:"product,omitempty"`
	Question  string `json:"question"`
}

type handoffRequest struct {
	SessionID string `json:"session_id"`
	Note      string `json:"note,omitempty"`
}

type chatResponse struct {
	Kind  string `json:"kind"`
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.assistant.StartSession(r.Context())
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.assistant.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	res, err := s.assistant.Recommend(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Kind: string(res.Kind), Reply: res.Text})
}

func (s *Server) handleTechnical(w http.ResponseWriter, r *http.Request) {
	var req technicalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	res, err := s.assistant.Technical(r.Context(), req.SessionID, req.Product, req.Question)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Kind: string(res.Kind), Reply: res.Text})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req handoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	link, err := s.assistant.ConfirmOrder(r.Context(), req.SessionID, req.Note)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"whatsapp_link": link})
}

func (s *Server) handleEscalate(w http.ResponseWriter, r *http.Request) {
	var req handoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if err := s.assistant.Escalate(r.Context(), req.SessionID, req.Note); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "encaminhado"})
}

// respondFailure maps internal errors to user-safe replies. Raw upstream
// errors never reach the grower.
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	var upstream *orchestrator.UpstreamError
	switch {
	case errors.Is(err, orchestrator.ErrEmptyUtterance):
		respondError(w, http.StatusBadRequest, "me envie uma mensagem com a sua dúvida")
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "sessão não encontrada ou expirada")
	case errors.Is(err, orchestrator.ErrServiceUnavailable):
		respondError(w, http.StatusServiceUnavailable, "o assistente está indisponível no momento, tente novamente em instantes")
	case errors.As(err, &upstream):
		logx.Error().Err(err).Str("stage", upstream.Stage).Msg("pipeline stage failed")
		respondError(w, http.StatusBadGateway, "não consegui processar sua pergunta agora, tente novamente em instantes")
	default:
		logx.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "erro interno, tente novamente")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
