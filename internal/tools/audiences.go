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

var listAudiencesTool = &mcp.Tool{
	Name:        "mailchimp_list_audiences",
	Description: "List all audiences (subscriber lists) in the account with their size and engagement rates.",
	InputSchema: &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	},
	Annotations: &mcp.ToolAnnotations{
		Title:          "List audiences",
		ReadOnlyHint:   true,
		IdempotentHint: true,
	},
}

type listAudiencesInput struct{}

func (g *Gateway) handleListAudiences(ctx context.Context, req *mcp.CallToolRequest, input listAudiencesInput) (*mcp.CallToolResult, any, error) {
	query := url.Values{}
	query.Set("count", "100")

	raw, err := g.client.Execute(ctx, http.MethodGet, "/lists", query, nil)
	if err != nil {
		return nil, nil, err
	}

	var resp mailchimp.ListsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode audiences response: %w", err)
	}

	audiences := make([]map[string]any, 0, len(resp.Lists))
	for _, list := range resp.Lists {
		audiences = append(audiences, shapeAudience(list))
	}

	result, err := textResult(map[string]any{
		"audiences":   audiences,
		"total_items": resp.TotalItems,
	})
	return result, nil, err
}

func shapeAudience(list mailchimp.List) map[string]any {
	return map[string]any{
		"id":           list.ID,
		"name":         list.Name,
		"subscribers":  list.Stats.MemberCount,
		"unsubscribes": list.Stats.UnsubscribeCount,
		"open_rate":    formatRate(list.Stats.OpenRate),
		"click_rate":   formatRate(list.Stats.ClickRate),
	}
}
