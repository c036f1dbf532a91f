package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/inconshreveable/log15/v3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/game/service"
	"github.com/wricardo/sinking-island/logging"
)

const (
	ServerName    = "Sinking Island"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 10s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for failed API calls.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(`Sinking Island - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Collect the artifact (*) and escape from the heliport (H) before the island sinks.
Moves cost one of your 3 actions per turn; every end_turn floods one tile in each of the six regions.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: board and status
- act: one command (move_*, shore_up_*, collect_artifact, escape, end_turn) - explain your intent
- bulk_act: several commands, stops at the first rejection - explain your intent
- end_turn: finish the turn and see which tiles flooded
- reset_game: restart the same island
- action_history: past commands
- describe_tile: details of one tile
- flood_regions: which tiles each flood region covers
- game_instructions: full rules

NOTE: The 'intent' parameter on act/bulk_act is for your own reasoning; it is not used by the game.`),
	)

	c.registerTools()
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func actionNames() []string {
	names := make([]string, len(engine.Actions))
	for i, a := range engine.Actions {
		names[i] = string(a)
	}
	return names
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session. The same seed always builds the same island."),
		mcp.WithString("session_id", mcp.Description("Custom session ID (optional, 4 hex characters are generated otherwise)")),
		mcp.WithNumber("seed", mcp.Description("Island seed (optional)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List active game sessions"),
		mcp.WithString("sort", mcp.Enum("created", "accessed"), mcp.Description("Sort key (default accessed)")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Sort order (default desc)")),
		mcp.WithNumber("limit", mcp.Min(1), mcp.Description("Maximum sessions to return")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current board, adventurer and status"),
		sessionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("act",
		mcp.WithDescription("Perform one command. Rejected commands change nothing and explain why."),
		sessionParam(),
		mcp.WithString("action", mcp.Required(), mcp.Enum(actionNames()...), mcp.Description("Command to perform")),
		mcp.WithString("intent", mcp.Description("Brief explanation of why you chose this command")),
		mcp.WithBoolean("reset", mcp.Description("Reset the island before acting")),
	), c.handleAct)

	c.mcpServer.AddTool(mcp.NewTool("bulk_act",
		mcp.WithDescription(fmt.Sprintf("Perform up to %d commands in order, stopping at the first rejection", engine.MaxBulkActions)),
		sessionParam(),
		mcp.WithArray("actions", mcp.Required(), mcp.WithStringItems(mcp.Enum(actionNames()...)), mcp.Description("Commands in order")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the plan behind this sequence")),
		mcp.WithBoolean("reset", mcp.Description("Reset the island before acting")),
	), c.handleBulkAct)

	c.mcpServer.AddTool(mcp.NewTool("end_turn",
		mcp.WithDescription("End the turn: actions are restored and one tile floods in each region"),
		sessionParam(),
	), c.handleEndTurn)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Restart the session on the same island"),
		sessionParam(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("action_history",
		mcp.WithDescription("Get the command history of a session"),
		sessionParam(),
		mcp.WithNumber("page", mcp.Min(1), mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Min(1), mcp.Max(100), mcp.Description("Items per page")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Oldest or newest first (default desc)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleActionHistory)

	c.mcpServer.AddTool(mcp.NewTool("describe_tile",
		mcp.WithDescription("Describe one tile: flood level, heliport, artifact, whether it can be entered, and its flood region. Coordinates 1..6 are the island; 0 and 7 are the sea ring."),
		sessionParam(),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Column")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Row, 1 is north")),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.NewTool("flood_regions",
		mcp.WithDescription("List the flood regions and the tiles each one covers"),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleFloodRegions)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the complete rules"),
		mcp.WithReadOnlyHintAnnotation(true),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves MCP over the given streams until ctx is done or in is
// closed.
func (c *Client) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(c.mcpServer).Listen(ctx, in, out)
}

// HTTPHandler answers single JSON-RPC messages posted to it.
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response.
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", "method", method, "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID string, parts ...string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := service.CreateOptions{ID: request.GetString("session_id", "")}
	if _, ok := request.GetArguments()["seed"]; ok {
		seed := int64(request.GetFloat("seed", 0))
		opts.Seed = &seed
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", opts, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nSeed: %d\n\n%s", info.ID, info.Seed, engine.Render(info.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := url.Values{}
	if s := request.GetString("sort", ""); s != "" {
		q.Set("sort", s)
	}
	if o := request.GetString("order", ""); o != "" {
		q.Set("order", o)
	}
	if l := request.GetInt("limit", 0); l > 0 {
		q.Set("limit", fmt.Sprint(l))
	}
	path := "/api/sessions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionList(response.Count, response.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"action": action,
		"reset":  request.GetBool("reset", false),
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "actions"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleBulkAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	actions, err := request.RequireStringSlice("actions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"actions": actions,
		"reset":   request.GetBool("reset", false),
	}

	var result service.BulkActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "bulk-actions"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(sessionID, &result)), nil
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "end-turn"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		q.Set("order", order)
	}
	path := sessionPath(sessionID, "history")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, errX := request.RequireInt("x")
	y, errY := request.RequireInt("y")
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var tile engine.TileView
	path := sessionPath(sessionID, "tiles", fmt.Sprint(x), fmt.Sprint(y))
	if err := c.apiCall(ctx, "GET", path, nil, &tile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeTile(tile)), nil
}

func (c *Client) handleFloodRegions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Regions []engine.Region `json:"regions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/regions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRegions(response.Regions)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Instructions()), nil
}
