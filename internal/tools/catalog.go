// Package tools holds the gateway's tool catalog: nine operations that
// translate typed agent inputs into single Mailchimp API calls and
// shape the responses into compact JSON payloads. Both the stdio and
// HTTP entry points register this same catalog.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
	"github.com/VBurburan/mailchimp-mcp-server/internal/metrics"
	"github.com/VBurburan/mailchimp-mcp-server/internal/pkg/logger"
)

// serverName identifies the gateway in the MCP handshake.
const serverName = "mailchimp-mcp-server"

// Gateway owns the catalog and the remote client every handler calls.
// It keeps no state between invocations.
type Gateway struct {
	client *mailchimp.Client
}

// NewGateway creates a Gateway backed by the given Mailchimp client.
func NewGateway(client *mailchimp.Client) *Gateway {
	return &Gateway{client: client}
}

// NewServer builds an MCP server with the full catalog registered.
func NewServer(client *mailchimp.Client, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	NewGateway(client).Register(server)
	return server
}

// Register attaches every catalog tool to the server.
func (g *Gateway) Register(server *mcp.Server) {
	mcp.AddTool(server, listAudiencesTool, instrument(listAudiencesTool.Name, g.handleListAudiences))
	mcp.AddTool(server, listCampaignsTool, instrument(listCampaignsTool.Name, g.handleListCampaigns))
	mcp.AddTool(server, createCampaignTool, instrument(createCampaignTool.Name, g.handleCreateCampaign))
	mcp.AddTool(server, setCampaignContentTool, instrument(setCampaignContentTool.Name, g.handleSetCampaignContent))
	mcp.AddTool(server, sendTestEmailTool, instrument(sendTestEmailTool.Name, g.handleSendTestEmail))
	mcp.AddTool(server, sendCampaignTool, instrument(sendCampaignTool.Name, g.handleSendCampaign))
	mcp.AddTool(server, scheduleCampaignTool, instrument(scheduleCampaignTool.Name, g.handleScheduleCampaign))
	mcp.AddTool(server, getCampaignReportTool, instrument(getCampaignReportTool.Name, g.handleGetCampaignReport))
	mcp.AddTool(server, deleteCampaignTool, instrument(deleteCampaignTool.Name, g.handleDeleteCampaign))
}

// Definitions returns the full catalog in registration order.
func Definitions() []*mcp.Tool {
	return []*mcp.Tool{
		listAudiencesTool,
		listCampaignsTool,
		createCampaignTool,
		setCampaignContentTool,
		sendTestEmailTool,
		sendCampaignTool,
		scheduleCampaignTool,
		getCampaignReportTool,
		deleteCampaignTool,
	}
}

// instrument wraps a handler with invocation logging and metrics. The
// handler's error passes through untouched; the SDK turns it into a
// tool-error result for the agent.
func instrument[In any](name string, h mcp.ToolHandlerFor[In, any]) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		invocationID := uuid.NewString()
		logger.Debug("tool call started", "tool", name, "invocation_id", invocationID)

		result, out, err := h(ctx, req, input)

		outcome := classifyOutcome(err)
		elapsed := time.Since(start)
		metrics.ObserveToolCall(name, outcome, elapsed.Seconds())

		if err != nil {
			var apiErr *mailchimp.APIError
			if errors.As(err, &apiErr) {
				metrics.IncRemoteError(strconv.Itoa(apiErr.StatusCode))
			}
			logger.Error("tool call failed",
				"tool", name,
				"invocation_id", invocationID,
				"outcome", outcome,
				"duration_ms", elapsed.Milliseconds(),
				"error", err.Error(),
			)
			return nil, nil, err
		}

		logger.Info("tool call completed",
			"tool", name,
			"invocation_id", invocationID,
			"duration_ms", elapsed.Milliseconds(),
		)
		return result, out, nil
	}
}

// classifyOutcome buckets a handler error for metrics. The order
// matters: validation errors never carry a remote status, and a
// missing key is a config problem, not a transport one.
func classifyOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isValidationError(err):
		return "invalid_input"
	case errors.Is(err, mailchimp.ErrNoAPIKey):
		return "config_error"
	case isAPIError(err):
		return "remote_error"
	default:
		return "transport_error"
	}
}

func isValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func isAPIError(err error) bool {
	var a *mailchimp.APIError
	return errors.As(err, &a)
}

// textResult renders a shaped payload as the single pretty-printed
// text block every tool returns.
func textResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// actionResult is the shared success payload of the campaign action
// tools. The remote's 204 responses normalize to this shape.
func actionResult(campaignID, action string) (*mcp.CallToolResult, error) {
	return textResult(map[string]any{
		"campaign_id": campaignID,
		"action":      action,
		"status":      "ok",
	})
}

// formatRate renders a fractional rate as a one-decimal percent
// string: 0.423 → "42.3%".
func formatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// nullableString maps an absent remote string to explicit JSON null.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
