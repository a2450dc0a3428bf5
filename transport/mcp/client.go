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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/web"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Slide Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Slide Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the tiles back into their original order before the countdown runs out.
Levels go from a 2x2 to a 5x5 grid. The clock starts on your first move.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: board, clock and phase of a session
- move: slide the tile at a cell index into the blank
- bulk_move: several moves in one call
- next_level, restart_level, reset_to_first_level, skip_level, solve_level
- timeout_choice, answer_question: recover after the clock runs out
- move_history, list_configs, level_tiles, game_instructions

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionTool(name, description string, extra map[string]interface{}, required ...string) mcp.Tool {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   append([]string{"session_id"}, required...),
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session", nil), c.handleGetSession)
	c.mcpServer.AddTool(sessionTool("game_state", "Get the board, clock and phase of a session", nil), c.handleGameState)

	// Board
	c.mcpServer.AddTool(sessionTool("move", "Slide the tile at a cell index into the blank. Cells are numbered row by row from 0.",
		map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Cell index of the tile to slide",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
			},
		}, "index"), c.handleMove)

	c.mcpServer.AddTool(sessionTool("bulk_move", fmt.Sprintf("Execute up to %d moves in sequence. Stops at the first illegal move or when the level ends.", engine.MaxBulkMoves),
		map[string]interface{}{
			"indexes": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer", "minimum": 0},
				"description": "Cell indexes to activate, in order",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
			},
		}, "indexes"), c.handleBulkMove)

	// Level actions
	c.mcpServer.AddTool(sessionTool("next_level", "Advance after a solved level", nil), c.actionHandler("next-level"))
	c.mcpServer.AddTool(sessionTool("restart_level", "Reshuffle the current level and reset the clock", nil), c.actionHandler("restart"))
	c.mcpServer.AddTool(sessionTool("reset_to_first_level", "Start over from the 2x2 level", nil), c.actionHandler("reset-level"))
	c.mcpServer.AddTool(sessionTool("skip_level", "Jump to the next level without solving (wraps after the last)", nil), c.actionHandler("skip"))
	c.mcpServer.AddTool(sessionTool("solve_level", "Put the board in solved order, if the config allows it", nil), c.actionHandler("solve"))

	// Timeouts
	c.mcpServer.AddTool(sessionTool("timeout_choice", "Pick what to do after a recoverable timeout",
		map[string]interface{}{
			"choice": map[string]interface{}{
				"type":        "string",
				"enum":        []string{string(engine.ChoiceResetToFirstLevel), string(engine.ChoiceContinue)},
				"description": "continue opens the continuation questions",
			},
		}, "choice"), c.handleTimeoutChoice)

	c.mcpServer.AddTool(sessionTool("answer_question", "Answer the current continuation question. Any option is accepted.",
		map[string]interface{}{
			"option": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Index of the chosen option",
			},
		}, "option"), c.handleAnswerQuestion)

	c.mcpServer.AddTool(sessionTool("move_history", "Get move history for a session",
		map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number (default 1)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Moves per page (default 20)",
			},
			"order": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"asc", "desc"},
				"description": "Sort order (default desc)",
			},
		}), c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "level_tiles",
		Description: "List the fragment ids and image URLs of a level in solved order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinLevel,
					"maximum":     engine.MaxLevel,
					"description": "Level number",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleLevelTiles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument. ok is false when it is missing.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		level := 0
		if s.GameState != nil {
			level = s.GameState.Level
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Level: %d, Created: %s)\n",
			s.ID, s.ConfigName, level, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	index, ok := intArg(args, "index")
	if !ok {
		return mcp.NewToolResultError("index is required"), nil
	}

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), map[string]int{"index": index}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["indexes"].([]interface{})

	indexes := make([]int, 0, len(raw))
	for i := range raw {
		if n, ok := intArg(map[string]interface{}{"v": raw[i]}, "v"); ok {
			indexes = append(indexes, n)
		}
	}
	if len(indexes) == 0 {
		return mcp.NewToolResultError("indexes must contain at least one cell index"), nil
	}

	var result service.BulkMoveResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), map[string][]int{"indexes": indexes}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

// actionHandler proxies a body-less session action route.
func (c *Client) actionHandler(route string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := arguments(request)["session_id"].(string)
		return c.postAction(ctx, sessionID, route, nil)
	}
}

func (c *Client) postAction(ctx context.Context, sessionID, route string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+route), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleTimeoutChoice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	choice, _ := args["choice"].(string)
	if choice == "" {
		return mcp.NewToolResultError("choice is required"), nil
	}
	return c.postAction(ctx, sessionID, "timeout-choice", map[string]string{"choice": choice})
}

func (c *Client) handleAnswerQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	option, ok := intArg(args, "option")
	if !ok {
		return mcp.NewToolResultError("option is required"), nil
	}
	return c.postAction(ctx, sessionID, "answer", map[string]int{"option": option})
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Time limit: %s, recoverable from level %d, %d question(s)\n\n",
			config.Name, config.ConfigID, config.Description,
			engine.FormatClock(config.TimeLimitSeconds), config.RecoverableFromLevel, config.QuestionCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLevelTiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, ok := intArg(arguments(request), "level")
	if !ok {
		return mcp.NewToolResultError("level is required"), nil
	}

	var assets web.LevelAssets
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/levels/%d/tiles", level), nil, &assets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nReference picture: %s\n\nSolved order:\n", assets.Title, assets.Reference)
	for _, t := range assets.Tiles {
		if t.Blank {
			fmt.Fprintf(&b, "  [%d] blank\n", t.Index)
			continue
		}
		fmt.Fprintf(&b, "  [%d] %s %s\n", t.Index, t.Tile, t.URL)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `🧩 Slide Puzzle - Complete Instructions

GAME OBJECTIVE:
Each level is a picture cut into an NxN grid with one slot left blank. The
tiles start shuffled. Slide them back into order before the countdown ends.

LEVELS:
• Level 2 is 2x2, level 3 is 3x3, up to level 5 (5x5).
• Solving level 5 completes the game.

BOARD:
• Cells are numbered row by row from 0 (top left) to N*N-1 (bottom right).
• A tile is shown by its position in the solved picture: on a 3x3 board the
  solved order is 1 2 3 / 4 5 6 / 7 8 __ with the blank last.
• A move names the cell of a tile next to the blank (up, down, left or right,
  never diagonal). That tile swaps with the blank.
• Moves on any other cell are ignored and do not count.

CLOCK:
• The countdown starts with your first accepted move and pauses when a level
  is solved.
• Running out of time on an early level fails it: restart_level reshuffles it.
• From the recoverable level on (see list_configs) you may instead choose:
  - reset_to_first_level, or
  - continue: answer the continuation questions (any answer is accepted) and
    the clock is refilled with the board unchanged.

MOVEMENT COMMANDS:
- move {index}: single move
- bulk_move {indexes}: up to 100 moves, stops at the first ignored move or
  when the level ends

AFTER A WIN:
- next_level to continue, or keep looking at the solved picture
- after the last level, reset_to_first_level starts a new run

STRATEGY:
• Solve the top row first, then the left column, and repeat on the smaller
  board that remains.
• The last two rows are solved column by column.
• Use bulk_move for long cycles; check game_state when it stops early.

Good luck!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

// tileLabel is the 1-based position of a fragment in the solved picture.
func tileLabel(t engine.Tile) string {
	if t == engine.Blank {
		return "__"
	}
	s := string(t)
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func formatBoard(state *engine.GameState) string {
	n := state.GridSize
	if n == 0 || len(state.Tiles) != n*n {
		return ""
	}
	var b strings.Builder
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			fmt.Fprintf(&b, "%3s", tileLabel(state.Tiles[row*n+col]))
		}
		b.WriteString("   ")
		for col := 0; col < n; col++ {
			fmt.Fprintf(&b, "%3d", row*n+col)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", state.Title)
	fmt.Fprintf(&b, "Clock: %s (%s)  Moves: %d  Total moves: %d\n",
		state.Timer.Clock, state.Timer.Status, state.Moves, state.TotalMoves)
	fmt.Fprintf(&b, "Phase: %s\n\n", state.Phase)
	b.WriteString("Board (tiles | cell indexes):\n")
	b.WriteString(formatBoard(state))

	if state.Phase == engine.PhasePlaying {
		fmt.Fprintf(&b, "\nMovable cells: %v\n", state.Movable)
	}

	switch state.Phase {
	case engine.PhaseLevelComplete:
		b.WriteString("\n🎉 LEVEL COMPLETE! Use next_level to continue.\n")
	case engine.PhaseGameComplete:
		b.WriteString("\n🏆 GAME COMPLETE! Use reset_to_first_level to play again.\n")
	case engine.PhaseTimeoutFailed:
		b.WriteString("\n⏰ TIME UP! Use restart_level to try again.\n")
	case engine.PhaseTimeoutChoice:
		b.WriteString("\n⏰ TIME UP! Use timeout_choice with one of:")
		if state.Timeout != nil {
			for _, o := range state.Timeout.Options {
				fmt.Fprintf(&b, " %s", o)
			}
		}
		b.WriteString("\n")
	case engine.PhaseContinuation:
		if q := state.Question; q != nil {
			fmt.Fprintf(&b, "\n❓ Question %d of %d: %s\n", q.Index+1, q.Total, q.Prompt)
			for i, opt := range q.Options {
				fmt.Fprintf(&b, "  %d) %s\n", i, opt)
			}
			b.WriteString("Use answer_question with the option number.\n")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", state.Message)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Move successful (cell %d)\n", result.Index)
	} else {
		fmt.Fprintf(&b, "✗ Move failed (cell %d)\n", result.Index)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.FirstMove {
		b.WriteString("The clock is running.\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d of %d moves\n", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s (%s)\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	if len(result.Steps) > 0 {
		b.WriteString("Steps:")
		for _, s := range result.Steps {
			mark := "✓"
			if !s.Success {
				mark = "✗"
			}
			fmt.Fprintf(&b, " %d%s", s.Index, mark)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s\n", result.Action)
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d)\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, m := range history.Moves {
		status := "✓"
		if !m.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "#%d %s level %d cell %d (blank %d→%d, %s left)\n",
			m.MoveNumber, status, m.Level, m.Index, m.BlankBefore, m.BlankAfter, engine.FormatClock(m.Remaining))
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page.\n")
	}
	return b.String()
}
