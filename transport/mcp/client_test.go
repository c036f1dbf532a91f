package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/sinking-island/api"
	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/game/service"
	"github.com/wricardo/sinking-island/game/session"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

// newBackedClient returns a client talking to a real API server with an
// empty session store.
func newBackedClient(t *testing.T) *Client {
	t.Helper()
	svc := service.NewGameService(session.NewManager(), service.WithSeedSource(func() int64 { return 42 }))
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/")
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.mcpServer == nil || client.GetMCPServer() != client.mcpServer {
		t.Error("Expected MCP server to be initialized")
	}
	if client.logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestClient_WithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	client := NewClient("http://localhost:8080", WithHTTPClient(hc))
	if client.httpClient != hc {
		t.Error("Expected custom HTTP client to be used")
	}
}

func TestClient_apiCall(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ab12","seed":7}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var info service.SessionInfo
	err := client.apiCall(context.Background(), "POST", "/api/sessions", map[string]string{"id": "ab12"}, &info)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if gotMethod != "POST" || gotPath != "/api/sessions" {
		t.Errorf("Expected POST /api/sessions, got %s %s", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotBody["id"] != "ab12" {
		t.Errorf("Expected body id ab12, got %v", gotBody["id"])
	}
	if info.ID != "ab12" || info.Seed != 7 {
		t.Errorf("Unexpected decoded response: %+v", info)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"error field", http.StatusNotFound, `{"error":"session not found"}`, "session not found"},
		{"bare status", http.StatusInternalServerError, ``, "API error: 500"},
		{"non-json body", http.StatusBadGateway, `upstream down`, "API error: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			err := client.apiCall(context.Background(), "GET", "/api/sessions/x", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestSessionPath(t *testing.T) {
	tests := []struct {
		id    string
		parts []string
		want  string
	}{
		{"ab12", nil, "/api/sessions/ab12"},
		{"ab12", []string{"state"}, "/api/sessions/ab12/state"},
		{"ab12", []string{"tiles", "3", "4"}, "/api/sessions/ab12/tiles/3/4"},
		{"a b", []string{"history"}, "/api/sessions/a%20b/history"},
	}

	for _, tt := range tests {
		if got := sessionPath(tt.id, tt.parts...); got != tt.want {
			t.Errorf("sessionPath(%q, %v) = %q, want %q", tt.id, tt.parts, got, tt.want)
		}
	}
}

func TestClient_handleAct_Request(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/actions" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Action string `json:"action"`
			Reset  bool   `json:"reset"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Action != "shore_up_left" || !body.Reset {
			t.Errorf("Unexpected body %+v", body)
		}
		json.NewEncoder(w).Encode(service.ActionResult{
			Action:  engine.ActionShoreUpLeft,
			Applied: false,
			Reason:  engine.ReasonNothingToShoreUp,
			Message: "that tile is not flooded",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleAct(context.Background(), callRequest("act", map[string]interface{}{
		"session_id": "ab12",
		"action":     "shore_up_left",
		"intent":     "protect the heliport",
		"reset":      true,
	}))
	if err != nil {
		t.Fatalf("handleAct returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Rejected command should not be a tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "✗ shore_up_left rejected: that tile is not flooded") {
		t.Errorf("Expected rejection line, got:\n%s", text)
	}
	if !strings.Contains(text, "No game state available") {
		t.Errorf("Expected missing state note, got:\n%s", text)
	}
}

func TestClient_MissingArguments(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
	}{
		{"get_session", client.handleGetSession, map[string]interface{}{}},
		{"game_state", client.handleGameState, map[string]interface{}{}},
		{"act without action", client.handleAct, map[string]interface{}{"session_id": "ab12"}},
		{"bulk_act without actions", client.handleBulkAct, map[string]interface{}{"session_id": "ab12"}},
		{"end_turn", client.handleEndTurn, map[string]interface{}{}},
		{"reset_game", client.handleReset, map[string]interface{}{}},
		{"action_history", client.handleActionHistory, map[string]interface{}{}},
		{"describe_tile without y", client.handleDescribeTile, map[string]interface{}{"session_id": "ab12", "x": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callRequest(tt.name, tt.args))
			if err != nil {
				t.Fatalf("Expected tool error result, got error %v", err)
			}
			if !result.IsError {
				t.Errorf("Expected IsError for missing arguments, got %s", resultText(t, result))
			}
		})
	}
}

func TestClient_EndToEnd(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callRequest("create_session", map[string]interface{}{
		"session_id": "demo",
		"seed":       float64(7),
	}))
	if err != nil || result.IsError {
		t.Fatalf("create_session failed: %v %s", err, resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Created session: demo") || !strings.Contains(text, "Seed: 7") {
		t.Errorf("Unexpected create output:\n%s", text)
	}
	if !strings.Contains(text, "Turn 1") {
		t.Errorf("Expected rendered board in create output:\n%s", text)
	}

	// Duplicate IDs are refused by the API.
	result, _ = client.handleCreateSession(ctx, callRequest("create_session", map[string]interface{}{"session_id": "DEMO"}))
	if !result.IsError {
		t.Error("Expected duplicate session to be a tool error")
	}

	result, _ = client.handleGameState(ctx, callRequest("game_state", map[string]interface{}{"session_id": "demo"}))
	text = resultText(t, result)
	for _, want := range []string{"Turn 1", "Legend:", "Heliport:", "Next:"} {
		if !strings.Contains(text, want) {
			t.Errorf("game_state output missing %q:\n%s", want, text)
		}
	}

	result, _ = client.handleAct(ctx, callRequest("act", map[string]interface{}{"session_id": "demo", "action": "end_turn"}))
	if result.IsError {
		t.Fatalf("act end_turn failed: %s", resultText(t, result))
	}
	text = resultText(t, result)
	if !strings.Contains(text, "✓ end_turn") || !strings.Contains(text, "Floods:") {
		t.Errorf("Expected applied end_turn with floods:\n%s", text)
	}

	result, _ = client.handleAct(ctx, callRequest("act", map[string]interface{}{"session_id": "demo", "action": "fly"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "invalid action") {
		t.Errorf("Expected invalid action error, got %s", resultText(t, result))
	}

	result, _ = client.handleBulkAct(ctx, callRequest("bulk_act", map[string]interface{}{
		"session_id": "demo",
		"actions":    []interface{}{"shore_up_here"},
	}))
	if result.IsError {
		t.Fatalf("bulk_act failed: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "Session demo: executed") {
		t.Errorf("Unexpected bulk output:\n%s", resultText(t, result))
	}

	result, _ = client.handleActionHistory(ctx, callRequest("action_history", map[string]interface{}{
		"session_id": "demo",
		"order":      "asc",
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "#1 turn 2 end_turn") {
		t.Errorf("Expected end_turn as first history entry:\n%s", text)
	}

	result, _ = client.handleDescribeTile(ctx, callRequest("describe_tile", map[string]interface{}{"session_id": "demo", "x": 0, "y": 3}))
	if !strings.Contains(resultText(t, result), "Sea ring") {
		t.Errorf("Expected sea description:\n%s", resultText(t, result))
	}

	result, _ = client.handleDescribeTile(ctx, callRequest("describe_tile", map[string]interface{}{"session_id": "demo", "x": 3, "y": 3}))
	text = resultText(t, result)
	if !strings.Contains(text, "The adventurer is standing here") && !strings.Contains(text, "Flood region: 2") {
		t.Errorf("Expected start tile description:\n%s", text)
	}

	result, _ = client.handleDescribeTile(ctx, callRequest("describe_tile", map[string]interface{}{"session_id": "demo", "x": 9, "y": 9}))
	if !result.IsError {
		t.Error("Expected out of range tile to be a tool error")
	}

	result, _ = client.handleReset(ctx, callRequest("reset_game", map[string]interface{}{"session_id": "demo"}))
	text = resultText(t, result)
	if !strings.Contains(text, "Game reset successfully") || !strings.Contains(text, "Turn 1") {
		t.Errorf("Unexpected reset output:\n%s", text)
	}

	result, _ = client.handleGetSession(ctx, callRequest("get_session", map[string]interface{}{"session_id": "demo"}))
	if !strings.Contains(resultText(t, result), "Session: demo") {
		t.Errorf("Unexpected get_session output:\n%s", resultText(t, result))
	}

	result, _ = client.handleListSessions(ctx, callRequest("list_sessions", map[string]interface{}{"sort": "created"}))
	text = resultText(t, result)
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, "- demo (seed 7") {
		t.Errorf("Unexpected list output:\n%s", text)
	}

	result, _ = client.handleFloodRegions(ctx, callRequest("flood_regions", nil))
	text = resultText(t, result)
	if !strings.Contains(text, "north shore") || !strings.Contains(text, "south shore") {
		t.Errorf("Unexpected regions output:\n%s", text)
	}

	result, _ = client.handleGameState(ctx, callRequest("game_state", map[string]interface{}{"session_id": "nope"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "session not found") {
		t.Errorf("Expected session not found, got %s", resultText(t, result))
	}
}

func TestClient_HTTPHandler(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	handler := client.HTTPHandler()

	t.Run("tools/list", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		var resp struct {
			Result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			} `json:"result"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		want := []string{"create_session", "list_sessions", "get_session", "game_state", "act", "bulk_act",
			"end_turn", "reset_game", "action_history", "describe_tile", "flood_regions", "game_instructions"}
		got := make(map[string]bool)
		for _, tool := range resp.Result.Tools {
			got[tool.Name] = true
		}
		if len(got) != len(want) {
			t.Errorf("Expected %d tools, got %d", len(want), len(got))
		}
		for _, name := range want {
			if !got[name] {
				t.Errorf("Missing tool %s", name)
			}
		}
	})

	t.Run("tools/call instructions", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"game_instructions","arguments":{}}}`
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Sinking Island - Rules") {
			t.Errorf("Expected rules in response, got %s", rr.Body.String())
		}
	})

	t.Run("notification", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
		if rr.Code != http.StatusAccepted {
			t.Errorf("Expected 202, got %d", rr.Code)
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/mcp", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rr.Code)
		}
	})
}

func TestClient_ServeStdio(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out strings.Builder

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Listen returns once the input is exhausted.
	client.ServeStdio(ctx, in, &out)

	if !strings.Contains(out.String(), `"id":1`) {
		t.Errorf("Expected ping response, got %q", out.String())
	}
}
