// Command assistant runs the Agrofel field assistant, either as an HTTP
// service or as an MCP stdio server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	assistant "github.com/agrofel/field-assistant"
	"github.com/agrofel/field-assistant/common/logx"
	"github.com/agrofel/field-assistant/config"
	"github.com/agrofel/field-assistant/mcpserver"
	"github.com/agrofel/field-assistant/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logx.Init(logx.Production)
		logx.Fatal().Err(err).Msg("invalid configuration")
	}
	logx.Init(logx.Environment(cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := assistant.New(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to start assistant")
	}
	defer client.Close()

	switch cfg.Server.Mode {
	case "mcp":
		if err := mcpserver.New(client, version).Serve(); err != nil {
			logx.Fatal().Err(err).Msg("mcp server stopped")
		}
	default:
		srv := server.New(client, cfg.Server)
		if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("http server stopped")
		}
	}
}
