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

var listCampaignsTool = &mcp.Tool{
	Name:        "mailchimp_list_campaigns",
	Description: "List campaigns, newest first. Optionally filter by status.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"status": {
				Type:        "string",
				Description: "Only return campaigns in this status.",
				Enum:        []any{"draft", "scheduled", "sending", "sent", "paused"},
			},
			"count": {
				Type:        "integer",
				Description: "Number of campaigns to return.",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(100),
				Default:     json.RawMessage("20"),
			},
		},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:          "List campaigns",
		ReadOnlyHint:   true,
		IdempotentHint: true,
	},
}

type listCampaignsInput struct {
	Status string `json:"status,omitempty"`
	Count  *int   `json:"count,omitempty"`
}

func (g *Gateway) handleListCampaigns(ctx context.Context, req *mcp.CallToolRequest, input listCampaignsInput) (*mcp.CallToolResult, any, error) {
	if err := validateStatus(input.Status); err != nil {
		return nil, nil, err
	}
	count, err := validateCount(input.Count, 20, 1, 100)
	if err != nil {
		return nil, nil, err
	}

	query := url.Values{}
	query.Set("count", fmt.Sprintf("%d", count))
	query.Set("sort_field", "create_time")
	query.Set("sort_dir", "DESC")
	if input.Status != "" {
		query.Set("status", input.Status)
	}

	raw, err := g.client.Execute(ctx, http.MethodGet, "/campaigns", query, nil)
	if err != nil {
		return nil, nil, err
	}

	var resp mailchimp.CampaignsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode campaigns response: %w", err)
	}

	campaigns := make([]map[string]any, 0, len(resp.Campaigns))
	for _, campaign := range resp.Campaigns {
		campaigns = append(campaigns, shapeCampaign(campaign))
	}

	result, err := textResult(map[string]any{
		"campaigns":   campaigns,
		"total_items": resp.TotalItems,
	})
	return result, nil, err
}

var createCampaignTool = &mcp.Tool{
	Name:        "mailchimp_create_campaign",
	Description: "Create a regular draft campaign targeting one audience. Content is set separately.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"audience_id": {
				Type:        "string",
				Description: "ID of the audience the campaign targets.",
			},
			"subject_line": {
				Type:        "string",
				Description: "Email subject line.",
			},
			"from_name": {
				Type:        "string",
				Description: "Sender name shown to recipients.",
			},
			"reply_to": {
				Type:        "string",
				Description: "Reply-to email address.",
				Format:      "email",
			},
			"title": {
				Type:        "string",
				Description: "Internal campaign title. Defaults to the subject line.",
			},
			"preview_text": {
				Type:        "string",
				Description: "Inbox preview snippet. Defaults to empty.",
			},
		},
		Required: []string{"audience_id", "subject_line", "from_name", "reply_to"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Create campaign",
		DestructiveHint: boolPtr(false),
	},
}

type createCampaignInput struct {
	AudienceID  string `json:"audience_id"`
	SubjectLine string `json:"subject_line"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
	Title       string `json:"title,omitempty"`
	PreviewText string `json:"preview_text,omitempty"`
}

func (g *Gateway) handleCreateCampaign(ctx context.Context, req *mcp.CallToolRequest, input createCampaignInput) (*mcp.CallToolResult, any, error) {
	for _, check := range []struct{ value, field string }{
		{input.AudienceID, "audience_id"},
		{input.SubjectLine, "subject_line"},
		{input.FromName, "from_name"},
		{input.ReplyTo, "reply_to"},
	} {
		if err := requireField(check.value, check.field); err != nil {
			return nil, nil, err
		}
	}
	if err := validateEmail(input.ReplyTo, "reply_to"); err != nil {
		return nil, nil, err
	}

	title := input.Title
	if title == "" {
		title = input.SubjectLine
	}

	body := mailchimp.CreateCampaignRequest{
		Type:       "regular",
		Recipients: mailchimp.RecipientsRef{ListID: input.AudienceID},
		Settings: mailchimp.CampaignSettings{
			SubjectLine: input.SubjectLine,
			PreviewText: input.PreviewText,
			Title:       title,
			FromName:    input.FromName,
			ReplyTo:     input.ReplyTo,
		},
	}

	raw, err := g.client.Execute(ctx, http.MethodPost, "/campaigns", nil, body)
	if err != nil {
		return nil, nil, err
	}

	var campaign mailchimp.Campaign
	if err := json.Unmarshal(raw, &campaign); err != nil {
		return nil, nil, fmt.Errorf("failed to decode campaign response: %w", err)
	}

	result, err := textResult(shapeCampaign(campaign))
	return result, nil, err
}

var setCampaignContentTool = &mcp.Tool{
	Name:        "mailchimp_set_campaign_content",
	Description: "Set or replace the HTML content of a draft campaign. The remote derives the plain-text version.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign to update.",
			},
			"html": {
				Type:        "string",
				Description: "Full HTML body of the email.",
			},
		},
		Required: []string{"campaign_id", "html"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:           "Set campaign content",
		DestructiveHint: boolPtr(false),
		IdempotentHint:  true,
	},
}

type setCampaignContentInput struct {
	CampaignID string `json:"campaign_id"`
	HTML       string `json:"html"`
}

func (g *Gateway) handleSetCampaignContent(ctx context.Context, req *mcp.CallToolRequest, input setCampaignContentInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}
	if err := requireField(input.HTML, "html"); err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/campaigns/%s/content", url.PathEscape(input.CampaignID))
	if _, err := g.client.Execute(ctx, http.MethodPut, path, nil, mailchimp.ContentRequest{HTML: input.HTML}); err != nil {
		return nil, nil, err
	}

	result, err := actionResult(input.CampaignID, "set_content")
	return result, nil, err
}

// shapeCampaign flattens one campaign for agent consumption. send_time
// and the report summary stay null until the campaign has been sent.
func shapeCampaign(campaign mailchimp.Campaign) map[string]any {
	out := map[string]any{
		"id":             campaign.ID,
		"status":         campaign.Status,
		"create_time":    campaign.CreateTime,
		"send_time":      nullableString(campaign.SendTime),
		"emails_sent":    campaign.EmailsSent,
		"subject_line":   campaign.Settings.SubjectLine,
		"title":          campaign.Settings.Title,
		"preview_text":   campaign.Settings.PreviewText,
		"from_name":      campaign.Settings.FromName,
		"reply_to":       campaign.Settings.ReplyTo,
		"audience_id":    nullableString(campaign.Recipients.ListID),
		"audience_name":  nullableString(campaign.Recipients.ListName),
		"report_summary": nil,
	}
	if campaign.ReportSummary != nil {
		out["report_summary"] = map[string]any{
			"opens":         campaign.ReportSummary.Opens,
			"unique_opens":  campaign.ReportSummary.UniqueOpens,
			"open_rate":     formatRate(campaign.ReportSummary.OpenRate),
			"clicks":        campaign.ReportSummary.Clicks,
			"unique_clicks": campaign.ReportSummary.SubscriberClicks,
			"click_rate":    formatRate(campaign.ReportSummary.ClickRate),
		}
	}
	return out
}
