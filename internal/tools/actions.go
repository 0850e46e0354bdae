package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
)

var sendTestEmailTool = &mcp.Tool{
	Name:        "mailchimp_send_test_email",
	Description: "Send a test rendering of a campaign to up to 5 addresses. Each call sends real email.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign to test.",
			},
			"emails": {
				Type:        "array",
				Description: "Recipient addresses for the test send.",
				Items:       &jsonschema.Schema{Type: "string", Format: "email"},
				MinItems:    intPtr(1),
				MaxItems:    intPtr(5),
			},
			"send_type": {
				Type:        "string",
				Description: "Which rendering to send.",
				Enum:        []any{"html", "plaintext"},
				Default:     json.RawMessage(`"html"`),
			},
		},
		Required: []string{"campaign_id", "emails"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Send test email",
		DestructiveHint: boolPtr(false),
	},
}

type sendTestEmailInput struct {
	CampaignID string   `json:"campaign_id"`
	Emails     []string `json:"emails"`
	SendType   string   `json:"send_type,omitempty"`
}

func (g *Gateway) handleSendTestEmail(ctx context.Context, req *mcp.CallToolRequest, input sendTestEmailInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}
	if err := validateTestEmails(input.Emails); err != nil {
		return nil, nil, err
	}
	sendType, err := validateSendType(input.SendType)
	if err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/campaigns/%s/actions/test", url.PathEscape(input.CampaignID))
	body := mailchimp.TestSendRequest{TestEmails: input.Emails, SendType: sendType}
	if _, err := g.client.Execute(ctx, http.MethodPost, path, nil, body); err != nil {
		return nil, nil, err
	}

	result, err := actionResult(input.CampaignID, "send_test")
	return result, nil, err
}

var sendCampaignTool = &mcp.Tool{
	Name:        "mailchimp_send_campaign",
	Description: "Send a campaign to its full audience immediately. This cannot be undone.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign to send.",
			},
		},
		Required: []string{"campaign_id"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Send campaign",
		DestructiveHint: boolPtr(true),
	},
}

type sendCampaignInput struct {
	CampaignID string `json:"campaign_id"`
}

func (g *Gateway) handleSendCampaign(ctx context.Context, req *mcp.CallToolRequest, input sendCampaignInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/campaigns/%s/actions/send", url.PathEscape(input.CampaignID))
	if _, err := g.client.Execute(ctx, http.MethodPost, path, nil, nil); err != nil {
		return nil, nil, err
	}

	result, err := actionResult(input.CampaignID, "send")
	return result, nil, err
}

var scheduleCampaignTool = &mcp.Tool{
	Name:        "mailchimp_schedule_campaign",
	Description: "Schedule a campaign for delivery at a future time. Commits the send unless unscheduled remotely.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign to schedule.",
			},
			"schedule_time": {
				Type:        "string",
				Description: "Delivery time as RFC 3339, e.g. 2026-03-01T15:00:00Z.",
				Format:      "date-time",
			},
		},
		Required: []string{"campaign_id", "schedule_time"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Schedule campaign",
		DestructiveHint: boolPtr(true),
	},
}

type scheduleCampaignInput struct {
	CampaignID   string `json:"campaign_id"`
	ScheduleTime string `json:"schedule_time"`
}

func (g *Gateway) handleScheduleCampaign(ctx context.Context, req *mcp.CallToolRequest, input scheduleCampaignInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}
	if err := validateScheduleTime(input.ScheduleTime); err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/campaigns/%s/actions/schedule", url.PathEscape(input.CampaignID))
	body := mailchimp.ScheduleRequest{ScheduleTime: input.ScheduleTime}
	if _, err := g.client.Execute(ctx, http.MethodPost, path, nil, body); err != nil {
		return nil, nil, err
	}

	result, err := actionResult(input.CampaignID, "schedule")
	return result, nil, err
}

var deleteCampaignTool = &mcp.Tool{
	Name:        "mailchimp_delete_campaign",
	Description: "Permanently delete a campaign. The remote only allows deleting campaigns that have never been sent.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign to delete.",
			},
		},
		Required: []string{"campaign_id"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Delete campaign",
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
	},
}

type deleteCampaignInput struct {
	CampaignID string `json:"campaign_id"`
}

func (g *Gateway) handleDeleteCampaign(ctx context.Context, req *mcp.CallToolRequest, input deleteCampaignInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/campaigns/%s", url.PathEscape(input.CampaignID))
	if _, err := g.client.Execute(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return nil, nil, err
	}

	result, err := actionResult(input.CampaignID, "delete")
	return result, nil, err
}
