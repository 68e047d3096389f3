// Package mcpserver exposes the assistant as MCP tools over stdio, so
// agent hosts can drive the recommendation flow.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agrofel/field-assistant/orchestrator"
)

// Assistant is the surface the MCP layer needs from the assembled client.
type Assistant interface {
	Recommend(ctx context.Context, sessionID, utterance string) (*orchestrator.Result, error)
	Technical(ctx context.Context, sessionID, product, question string) (*orchestrator.Result, error)
	ConfirmOrder(ctx context.Context, sessionID, note string) (string, error)
	Escalate(ctx context.Context, sessionID, reason string) error
}

type Server struct {
	assistant Assistant
	mcp       *server.MCPServer
}

func New(assistant Assistant, version string) *Server {
	s := &Server{
		assistant: assistant,
		mcp:       server.NewMCPServer("agrofel-field-assistant", version),
	}

	s.mcp.AddTool(mcp.NewTool("recommend_product",
		mcp.WithDescription("Recomenda produtos da Agrofel para uma praga, planta daninha ou doença descrita pelo produtor."),
		mcp.WithString("message", mcp.Required(), mcp.Description("A pergunta do produtor, em português.")),
		mcp.WithString("session_id", mcp.Description("Sessão de conversa existente, opcional.")),
	), s.handleRecommend)

	s.mcp.AddTool(mcp.NewTool("technical_question",
		mcp.WithDescription("Responde uma dúvida técnica sobre um produto específico usando apenas a bula dele."),
		mcp.WithString("product", mcp.Required(), mcp.Description("Nome do produto, por exemplo GLYPHOTAL TR.")),
		mcp.WithString("question", mcp.Required(), mcp.Description("A dúvida técnica do produtor.")),
		mcp.WithString("session_id", mcp.Description("Sessão de conversa existente, opcional.")),
	), s.handleTechnical)

	s.mcp.AddTool(mcp.NewTool("confirm_order",
		mcp.WithDescription("Notifica um vendedor sobre o interesse de compra e retorna o link de WhatsApp para fechar o pedido."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Sessão da conversa com a recomendação.")),
		mcp.WithString("note", mcp.Description("Observação do produtor para o vendedor, opcional.")),
	), s.handleConfirm)

	s.mcp.AddTool(mcp.NewTool("escalate_to_human",
		mcp.WithDescription("Encaminha a conversa para atendimento humano."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Sessão da conversa.")),
		mcp.WithString("reason", mcp.Description("Motivo do encaminhamento, opcional.")),
	), s.handleEscalate)

	return s
}

// Serve blocks reading MCP requests from stdin.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleRecommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.assistant.Recommend(ctx, req.GetString("session_id", ""), message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommend failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleTechnical(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	product, err := req.RequireString("product")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.assistant.Technical(ctx, req.GetString("session_id", ""), product, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("technical lookup failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleConfirm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	link, err := s.assistant.ConfirmOrder(ctx, sessionID, req.GetString("note", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("confirm failed: %v", err)), nil
	}
	if link == "" {
		return mcp.NewToolResultText("Vendedor notificado."), nil
	}
	return mcp.NewToolResultText("Vendedor notificado. Link para fechar o pedido: " + link), nil
}

func (s *Server) handleEscalate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.assistant.Escalate(ctx, sessionID, req.GetString("reason", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("escalate failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Conversa encaminhada para atendimento humano."), nil
}
