package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VBurburan/mailchimp-mcp-server/internal/api"
	"github.com/VBurburan/mailchimp-mcp-server/internal/config"
	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
	"github.com/VBurburan/mailchimp-mcp-server/internal/metrics"
	"github.com/VBurburan/mailchimp-mcp-server/internal/pkg/logger"
	"github.com/VBurburan/mailchimp-mcp-server/internal/tools"
)

const version = "1.0.0"

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Mailchimp MCP Gateway (cmd/server/main.go)                ║")
	log.Println("║  Streamable HTTP transport with health and metrics         ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.DisableRedaction)

	if cfg.Mailchimp.APIKey == "" {
		log.Println("WARNING: MAILCHIMP_API_KEY is not set; tool calls will fail until it is configured")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Initialize the Mailchimp client and the shared tool catalog
	client := mailchimp.NewClient(cfg.Mailchimp)

	m := metrics.New()
	metrics.SetGlobal(m)

	mcpServer := tools.NewServer(client, version)
	server := api.NewServer(cfg.Server, mcpServer, m, version)

	logger.Info("gateway configured",
		"base_url", client.BaseURL(),
		"api_key", cfg.Mailchimp.APIKey,
		"tools", len(tools.Definitions()),
	)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s:%d", host, port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("MCP endpoint ready at /mcp (health at /health, metrics at /metrics)")

	<-done
	log.Println("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
