package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VBurburan/mailchimp-mcp-server/internal/config"
	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
	"github.com/VBurburan/mailchimp-mcp-server/internal/metrics"
	"github.com/VBurburan/mailchimp-mcp-server/internal/tools"
)

func newTestServer(t *testing.T, m *metrics.Metrics) *Server {
	t.Helper()

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lists":[],"total_items":0}`))
	}))
	t.Cleanup(remote.Close)

	client := mailchimp.NewClient(config.MailchimpConfig{
		APIKey:         "test-key-us14",
		BaseURL:        remote.URL,
		TimeoutSeconds: 5,
	})
	mcpServer := tools.NewServer(client, "test")

	return NewServer(config.ServerConfig{Host: "localhost", Port: 0}, mcpServer, m, "test")
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "mailchimp-mcp", payload["service"])
	assert.Equal(t, "test", payload["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ToolCallsTotal.WithLabelValues("mailchimp_list_audiences", "ok").Inc()

	server := newTestServer(t, m)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mailchimp_mcp_tool_calls_total")
}

func TestMetricsEndpointAbsentWithoutMetrics(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMCPInitialize(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test-client","version":"0.0.1"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mailchimp-mcp-server")
}

func TestMCPToolsList(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	// Stateless mode accepts requests without a prior initialize.
	body := `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	for _, name := range []string{
		"mailchimp_list_audiences",
		"mailchimp_create_campaign",
		"mailchimp_send_campaign",
		"mailchimp_get_campaign_report",
	} {
		assert.Contains(t, string(data), name)
	}
}
