package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/VBurburan/mailchimp-mcp-server/internal/config"
	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
	"github.com/VBurburan/mailchimp-mcp-server/internal/pkg/logger"
	"github.com/VBurburan/mailchimp-mcp-server/internal/tools"
)

const version = "1.0.0"

// main runs the gateway over stdio for MCP clients that spawn the server
// as a subprocess. stdout carries the protocol stream, so every diagnostic
// goes to stderr.
func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.DisableRedaction)

	if cfg.Mailchimp.APIKey == "" {
		logger.Warn("MAILCHIMP_API_KEY is not set; tool calls will fail until it is configured")
	}

	client := mailchimp.NewClient(cfg.Mailchimp)
	server := tools.NewServer(client, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		cancel()
	}()

	logger.Info("stdio transport started",
		"base_url", client.BaseURL(),
		"api_key", cfg.Mailchimp.APIKey,
		"tools", len(tools.Definitions()),
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}

	logger.Info("stdio transport stopped")
}
