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

var getCampaignReportTool = &mcp.Tool{
	Name:        "mailchimp_get_campaign_report",
	Description: "Get the delivery report of a sent campaign: opens, clicks, bounces and unsubscribes.",
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign the report belongs to.",
			},
		},
		Required: []string{"campaign_id"},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:          "Get campaign report",
		ReadOnlyHint:   true,
		IdempotentHint: true,
	},
}

type getCampaignReportInput struct {
	CampaignID string `json:"campaign_id"`
}

func (g *Gateway) handleGetCampaignReport(ctx context.Context, req *mcp.CallToolRequest, input getCampaignReportInput) (*mcp.CallToolResult, any, error) {
	if err := requireField(input.CampaignID, "campaign_id"); err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/reports/%s", url.PathEscape(input.CampaignID))
	raw, err := g.client.Execute(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	var report mailchimp.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, nil, fmt.Errorf("failed to decode report response: %w", err)
	}

	result, err := textResult(shapeReport(report))
	return result, nil, err
}

// shapeReport flattens a delivery report. Sub-objects the remote
// omits (no tracking data yet) surface as nulls, never as zeros.
func shapeReport(report mailchimp.Report) map[string]any {
	out := map[string]any{
		"subject_line":  report.SubjectLine,
		"emails_sent":   report.EmailsSent,
		"opens":         nil,
		"unique_opens":  nil,
		"open_rate":     nil,
		"clicks":        nil,
		"unique_clicks": nil,
		"click_rate":    nil,
		"hard_bounces":  nil,
		"soft_bounces":  nil,
		"unsubscribes":  report.Unsubscribed,
	}
	if report.Opens != nil {
		out["opens"] = report.Opens.OpensTotal
		out["unique_opens"] = report.Opens.UniqueOpens
		out["open_rate"] = formatRate(report.Opens.OpenRate)
	}
	if report.Clicks != nil {
		out["clicks"] = report.Clicks.ClicksTotal
		out["unique_clicks"] = report.Clicks.UniqueClicks
		out["click_rate"] = formatRate(report.Clicks.ClickRate)
	}
	if report.Bounces != nil {
		out["hard_bounces"] = report.Bounces.HardBounces
		out["soft_bounces"] = report.Bounces.SoftBounces
	}
	return out
}
