package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingServer fails the test if any request arrives; used to prove
// validation failures never reach the network.
func countingServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestListCampaigns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/campaigns", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("count"))
		assert.Equal(t, "create_time", r.URL.Query().Get("sort_field"))
		assert.Equal(t, "DESC", r.URL.Query().Get("sort_dir"))
		assert.Empty(t, r.URL.Query().Get("status"))

		w.Write([]byte(`{
			"campaigns": [
				{
					"id": "c100",
					"type": "regular",
					"status": "sent",
					"create_time": "2026-08-01T10:00:00+00:00",
					"send_time": "2026-08-02T09:00:00+00:00",
					"emails_sent": 480,
					"recipients": {"list_id": "a1b2c3", "list_name": "Weekly Digest"},
					"settings": {"subject_line": "August news", "preview_text": "", "title": "August news", "from_name": "Ops", "reply_to": "ops@example.com"},
					"report_summary": {"opens": 300, "unique_opens": 210, "open_rate": 0.4375, "clicks": 60, "subscriber_clicks": 48, "click_rate": 0.1}
				},
				{
					"id": "c101",
					"type": "regular",
					"status": "draft",
					"create_time": "2026-08-10T12:00:00+00:00",
					"send_time": "",
					"emails_sent": 0,
					"recipients": {"list_id": "a1b2c3", "list_name": "Weekly Digest"},
					"settings": {"subject_line": "Draft subject", "preview_text": "peek", "title": "Internal title", "from_name": "Ops", "reply_to": "ops@example.com"}
				}
			],
			"total_items": 2
		}`))
	}))
	defer server.Close()

	g := newTestGateway(server)
	result, _, err := g.handleListCampaigns(context.Background(), nil, listCampaignsInput{})
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, float64(2), payload["total_items"])

	campaigns := payload["campaigns"].([]any)
	require.Len(t, campaigns, 2)

	sent := campaigns[0].(map[string]any)
	assert.Equal(t, "c100", sent["id"])
	assert.Equal(t, "sent", sent["status"])
	assert.Equal(t, "2026-08-02T09:00:00+00:00", sent["send_time"])
	assert.Equal(t, float64(480), sent["emails_sent"])
	assert.Equal(t, "a1b2c3", sent["audience_id"])
	assert.Equal(t, "Weekly Digest", sent["audience_name"])

	summary := sent["report_summary"].(map[string]any)
	assert.Equal(t, float64(300), summary["opens"])
	assert.Equal(t, float64(210), summary["unique_opens"])
	assert.Equal(t, "43.8%", summary["open_rate"])
	assert.Equal(t, float64(48), summary["unique_clicks"])
	assert.Equal(t, "10.0%", summary["click_rate"])

	draft := campaigns[1].(map[string]any)
	assert.Equal(t, "draft", draft["status"])
	assert.Nil(t, draft["send_time"])
	assert.Nil(t, draft["report_summary"])
	assert.Equal(t, "peek", draft["preview_text"])
	assert.Equal(t, "Internal title", draft["title"])
}

func TestListCampaignsStatusFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "draft", r.URL.Query().Get("status"))
		assert.Equal(t, "50", r.URL.Query().Get("count"))
		w.Write([]byte(`{"campaigns": [], "total_items": 0}`))
	}))
	defer server.Close()

	count := 50
	g := newTestGateway(server)
	_, _, err := g.handleListCampaigns(context.Background(), nil, listCampaignsInput{Status: "draft", Count: &count})
	require.NoError(t, err)
}

func TestListCampaignsRejectsBadStatus(t *testing.T) {
	server, calls := countingServer(t)

	g := newTestGateway(server)
	_, _, err := g.handleListCampaigns(context.Background(), nil, listCampaignsInput{Status: "archived"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
	assert.Equal(t, int64(0), calls.Load())
}

func TestListCampaignsRejectsOutOfRangeCount(t *testing.T) {
	server, calls := countingServer(t)
	g := newTestGateway(server)

	for _, bad := range []int{0, -5, 101, 1000} {
		count := bad
		_, _, err := g.handleListCampaigns(context.Background(), nil, listCampaignsInput{Count: &count})
		require.Error(t, err, "count %d must be rejected", bad)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "count", vErr.Field)
	}
	assert.Equal(t, int64(0), calls.Load())
}

func TestCreateCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaigns", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "regular", req["type"])

		recipients := req["recipients"].(map[string]any)
		assert.Equal(t, "a1b2c3", recipients["list_id"])

		settings := req["settings"].(map[string]any)
		assert.Equal(t, "Launch day", settings["subject_line"])
		// title falls back to the subject line
		assert.Equal(t, "Launch day", settings["title"])
		// preview_text is sent explicitly, even when empty
		assert.Equal(t, "", settings["preview_text"])
		assert.Equal(t, "Growth Team", settings["from_name"])
		assert.Equal(t, "growth@example.com", settings["reply_to"])

		w.Write([]byte(`{
			"id": "c200",
			"type": "regular",
			"status": "draft",
			"create_time": "2026-08-20T08:00:00+00:00",
			"send_time": "",
			"emails_sent": 0,
			"recipients": {"list_id": "a1b2c3", "list_name": "Weekly Digest"},
			"settings": {"subject_line": "Launch day", "preview_text": "", "title": "Launch day", "from_name": "Growth Team", "reply_to": "growth@example.com"}
		}`))
	}))
	defer server.Close()

	g := newTestGateway(server)
	result, _, err := g.handleCreateCampaign(context.Background(), nil, createCampaignInput{
		AudienceID:  "a1b2c3",
		SubjectLine: "Launch day",
		FromName:    "Growth Team",
		ReplyTo:     "growth@example.com",
	})
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, "c200", payload["id"])
	assert.Equal(t, "draft", payload["status"])
	assert.Equal(t, "Launch day", payload["subject_line"])
	assert.Equal(t, "Launch day", payload["title"])
	assert.Nil(t, payload["send_time"])
	assert.Nil(t, payload["report_summary"])
}

func TestCreateCampaignExplicitTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		settings := req["settings"].(map[string]any)
		assert.Equal(t, "Internal name", settings["title"])
		assert.Equal(t, "A peek inside", settings["preview_text"])

		w.Write([]byte(`{"id":"c201","status":"draft","settings":{"subject_line":"S","title":"Internal name"}}`))
	}))
	defer server.Close()

	g := newTestGateway(server)
	_, _, err := g.handleCreateCampaign(context.Background(), nil, createCampaignInput{
		AudienceID:  "a1b2c3",
		SubjectLine: "S",
		FromName:    "Ops",
		ReplyTo:     "ops@example.com",
		Title:       "Internal name",
		PreviewText: "A peek inside",
	})
	require.NoError(t, err)
}

func TestCreateCampaignMissingFields(t *testing.T) {
	server, calls := countingServer(t)
	g := newTestGateway(server)

	tests := []struct {
		name  string
		input createCampaignInput
		field string
	}{
		{"missing audience", createCampaignInput{SubjectLine: "S", FromName: "F", ReplyTo: "r@example.com"}, "audience_id"},
		{"missing subject", createCampaignInput{AudienceID: "a", FromName: "F", ReplyTo: "r@example.com"}, "subject_line"},
		{"missing from", createCampaignInput{AudienceID: "a", SubjectLine: "S", ReplyTo: "r@example.com"}, "from_name"},
		{"missing reply", createCampaignInput{AudienceID: "a", SubjectLine: "S", FromName: "F"}, "reply_to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := g.handleCreateCampaign(context.Background(), nil, tt.input)
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
	assert.Equal(t, int64(0), calls.Load())
}

func TestCreateCampaignRejectsBadReplyTo(t *testing.T) {
	server, calls := countingServer(t)
	g := newTestGateway(server)

	_, _, err := g.handleCreateCampaign(context.Background(), nil, createCampaignInput{
		AudienceID:  "a1b2c3",
		SubjectLine: "S",
		FromName:    "Ops",
		ReplyTo:     "not-an-email",
	})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reply_to", vErr.Field)
	assert.Equal(t, int64(0), calls.Load())
}

func TestSetCampaignContent(t *testing.T) {
	const html = "<h1>Hello</h1><p>Launch is live.</p>"

	var puts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/campaigns/c200/content", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, html, req["html"])

		w.Write([]byte(`{"html": "<h1>Hello</h1><p>Launch is live.</p>", "plain_text": "Hello. Launch is live."}`))
	}))
	defer server.Close()

	g := newTestGateway(server)
	input := setCampaignContentInput{CampaignID: "c200", HTML: html}

	// PUT semantics: setting the same content twice succeeds identically
	for i := 0; i < 2; i++ {
		result, _, err := g.handleSetCampaignContent(context.Background(), nil, input)
		require.NoError(t, err)

		payload := decodeResult(t, result)
		assert.Equal(t, "c200", payload["campaign_id"])
		assert.Equal(t, "set_content", payload["action"])
		assert.Equal(t, "ok", payload["status"])
	}
	assert.Equal(t, int64(2), puts.Load())
}

func TestSetCampaignContentValidation(t *testing.T) {
	server, calls := countingServer(t)
	g := newTestGateway(server)

	_, _, err := g.handleSetCampaignContent(context.Background(), nil, setCampaignContentInput{HTML: "<p>x</p>"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "campaign_id", vErr.Field)

	_, _, err = g.handleSetCampaignContent(context.Background(), nil, setCampaignContentInput{CampaignID: "c200"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "html", vErr.Field)

	assert.Equal(t, int64(0), calls.Load())
}
