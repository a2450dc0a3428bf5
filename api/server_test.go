package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Board
	MoveFunc     func(ctx context.Context, sessionID string, index int) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, indexes []int) (*service.BulkMoveResult, error)

	// ActionFunc backs every level and timeout action; action is the route name.
	ActionFunc func(ctx context.Context, action, sessionID string) (*service.ActionResult, error)

	ChooseTimeoutOptionFunc func(ctx context.Context, sessionID string, choice engine.TimeoutChoice) (*service.ActionResult, error)
	AnswerQuestionFunc      func(ctx context.Context, sessionID string, option int) (*service.ActionResult, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID string, index int) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, index)
	}
	return &service.MoveResult{Success: true, Index: index, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, indexes []int) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, indexes)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) action(ctx context.Context, action, sessionID string) (*service.ActionResult, error) {
	if m.ActionFunc != nil {
		return m.ActionFunc(ctx, action, sessionID)
	}
	return &service.ActionResult{Action: action, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) AutoSolve(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "auto_solve", id)
}

func (m *MockGameService) NextLevel(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "next_level", id)
}

func (m *MockGameService) Restart(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "restart", id)
}

func (m *MockGameService) ResetToFirstLevel(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "reset_to_first_level", id)
}

func (m *MockGameService) SkipLevel(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "skip_level", id)
}

func (m *MockGameService) Dismiss(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "dismiss", id)
}

func (m *MockGameService) CancelContinuation(ctx context.Context, id string) (*service.ActionResult, error) {
	return m.action(ctx, "cancel_continuation", id)
}

func (m *MockGameService) ChooseTimeoutOption(ctx context.Context, id string, choice engine.TimeoutChoice) (*service.ActionResult, error) {
	if m.ChooseTimeoutOptionFunc != nil {
		return m.ChooseTimeoutOptionFunc(ctx, id, choice)
	}
	return m.action(ctx, "timeout_choice", id)
}

func (m *MockGameService) AnswerQuestion(ctx context.Context, id string, option int) (*service.ActionResult, error) {
	if m.AnswerQuestionFunc != nil {
		return m.AnswerQuestionFunc(ctx, id, option)
	}
	return m.action(ctx, "answer_question", id)
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{Level: 2, GridSize: 2}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{Name: configName, Description: "Test config"}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %q)", err, w.Body.String())
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", service.ErrSessionNotFound, id)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		wantConfig     string
	}{
		{
			name:           "default config",
			expectedStatus: http.StatusCreated,
			wantConfig:     "",
		},
		{
			name:           "config_id",
			requestBody:    map[string]string{"config_id": "classic"},
			expectedStatus: http.StatusCreated,
			wantConfig:     "classic",
		},
		{
			name:           "deprecated config_name",
			requestBody:    map[string]string{"config_name": "relaxed"},
			expectedStatus: http.StatusCreated,
			wantConfig:     "relaxed",
		},
		{
			name:        "unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config '%s' not found. Available configs: [classic]", configName)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			var gotConfig string
			mockService.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
				gotConfig = configName
				return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
			}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusCreated {
				if gotConfig != tt.wantConfig {
					t.Errorf("config = %q, want %q", gotConfig, tt.wantConfig)
				}
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			} else {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected an error message")
				}
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "aaaa", CreatedAt: now.Add(-3 * time.Minute), LastAccessedAt: now.Add(-1 * time.Minute)},
			{ID: "bbbb", CreatedAt: now.Add(-2 * time.Minute), LastAccessedAt: now.Add(-5 * time.Minute)},
			{ID: "cccc", CreatedAt: now.Add(-1 * time.Minute), LastAccessedAt: now},
		}
	}

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
	}{
		{"default sorts by last access, newest first", "", []string{"cccc", "aaaa", "bbbb"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"aaaa", "bbbb", "cccc"}, 3},
		{"limit", "?sort=created&limit=2", []string{"cccc", "bbbb"}, 3},
		{"limit larger than total", "?limit=10", []string{"cccc", "aaaa", "bbbb"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					return sessions(), nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantIDs) {
				t.Errorf("count=%d total=%d", resp.Count, resp.Total)
			}
			for i, id := range tt.wantIDs {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("sessions[%d] mismatch, want %s", i, id)
				}
			}
		})
	}

	t.Run("service error", func(t *testing.T) {
		mockService := &MockGameService{
			ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
				return nil, fmt.Errorf("boom")
			},
		}
		server := setupTestServer(t, mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/sessions", nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return notFound(sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zzzz", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zzzz", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

// Board Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		moveErr        error
		expectedStatus int
	}{
		{"valid move", map[string]int{"index": 2}, nil, http.StatusOK},
		{"index zero is valid", map[string]int{"index": 0}, nil, http.StatusOK},
		{"missing index", map[string]string{}, nil, http.StatusBadRequest},
		{"malformed body", "{", nil, http.StatusBadRequest},
		{"unknown session", map[string]int{"index": 1}, notFound("ab12"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIndex = -1
			mockService := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID string, index int) (*service.MoveResult, error) {
					if tt.moveErr != nil {
						return nil, tt.moveErr
					}
					gotIndex = index
					return &service.MoveResult{Success: true, Index: index, GameState: &engine.GameState{Moves: 1}}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/move", tt.body))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusOK {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if resp.Index != gotIndex || !resp.Success {
					t.Errorf("response = %+v, service saw index %d", resp, gotIndex)
				}
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	var got []int
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, indexes []int) (*service.BulkMoveResult, error) {
			got = indexes
			return &service.BulkMoveResult{
				RequestedMoves: len(indexes),
				MovesExecuted:  1,
				StopReasonCode: "illegal_move",
				StoppedOnMove:  2,
				GameState:      &engine.GameState{},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string][]int{"indexes": {1, 3, 2}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 2 {
		t.Errorf("service received %v", got)
	}
	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	if resp.StopReasonCode != "illegal_move" || resp.StoppedOnMove != 2 {
		t.Errorf("response = %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", "not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestActions(t *testing.T) {
	routes := map[string]string{
		"solve":               "auto_solve",
		"next-level":          "next_level",
		"restart":             "restart",
		"reset-level":         "reset_to_first_level",
		"skip":                "skip_level",
		"dismiss":             "dismiss",
		"cancel-continuation": "cancel_continuation",
	}

	for route, action := range routes {
		t.Run(route, func(t *testing.T) {
			var called string
			mockService := &MockGameService{
				ActionFunc: func(ctx context.Context, a, sessionID string) (*service.ActionResult, error) {
					called = a
					return &service.ActionResult{Action: a, GameState: &engine.GameState{}}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/"+route, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if called != action {
				t.Errorf("called %q, want %q", called, action)
			}
		})
	}
}

func TestActionErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", notFound("ab12"), http.StatusNotFound},
		{"level not complete", fmt.Errorf("next_level: %w", engine.ErrNotLevelComplete), http.StatusConflict},
		{"skip disabled", fmt.Errorf("skip_level: %w", engine.ErrSkipDisabled), http.StatusConflict},
		{"auto-solve disabled", fmt.Errorf("auto_solve: %w", engine.ErrAutoSolveDisabled), http.StatusConflict},
		{"engine closed", fmt.Errorf("restart: %w", engine.ErrEngineClosed), http.StatusConflict},
		{"unexpected", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ActionFunc: func(ctx context.Context, a, sessionID string) (*service.ActionResult, error) {
					return nil, tt.err
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/next-level", nil))

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
			var resp map[string]string
			parseResponse(t, w, &resp)
			if resp["error"] != tt.err.Error() {
				t.Errorf("error = %q, want %q", resp["error"], tt.err.Error())
			}
		})
	}
}

func TestTimeoutChoice(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		err  error
		want int
	}{
		{"continue", map[string]string{"choice": "continue"}, nil, http.StatusOK},
		{"reset", map[string]string{"choice": "reset_to_first_level"}, nil, http.StatusOK},
		{"missing choice", map[string]string{}, nil, http.StatusBadRequest},
		{"unknown choice", map[string]string{"choice": "fly"}, fmt.Errorf("timeout_choice: %w", engine.ErrInvalidChoice), http.StatusBadRequest},
		{"nothing pending", map[string]string{"choice": "continue"}, fmt.Errorf("timeout_choice: %w", engine.ErrNoTimeoutPending), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got engine.TimeoutChoice
			mockService := &MockGameService{
				ChooseTimeoutOptionFunc: func(ctx context.Context, id string, choice engine.TimeoutChoice) (*service.ActionResult, error) {
					got = choice
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.ActionResult{Action: "timeout_choice", GameState: &engine.GameState{}}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/timeout-choice", tt.body))

			if w.Code != tt.want {
				t.Fatalf("Expected status %d, got %d", tt.want, w.Code)
			}
			if body, ok := tt.body.(map[string]string); ok && body["choice"] != "" && string(got) != body["choice"] {
				t.Errorf("service received %q", got)
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		err  error
		want int
	}{
		{"first option", map[string]int{"option": 0}, nil, http.StatusOK},
		{"missing option", map[string]string{}, nil, http.StatusBadRequest},
		{"bad option", map[string]int{"option": 9}, fmt.Errorf("answer_question: %w", engine.ErrInvalidOption), http.StatusBadRequest},
		{"no question", map[string]int{"option": 1}, fmt.Errorf("answer_question: %w", engine.ErrNoQuestionPending), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				AnswerQuestionFunc: func(ctx context.Context, id string, option int) (*service.ActionResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.ActionResult{Action: "answer_question", GameState: &engine.GameState{}}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/answer", tt.body))

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{"defaults", "", 1, 20, "desc"},
		{"custom", "?page=3&limit=5&order=asc", 3, 5, "asc"},
		{"invalid values fall back", "?page=-1&limit=x&order=sideways", 1, 20, "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Order != tt.wantOrder {
				t.Errorf("options = %+v", got)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &engine.GameState{Level: 3, GridSize: 3, Phase: engine.PhasePlaying}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Level != 3 || state.Phase != engine.PhasePlaying {
		t.Errorf("state = %+v", state)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/zzzz/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestLevelTiles(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/levels/2/tiles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		GridSize  int    `json:"grid_size"`
		Reference string `json:"reference"`
		Tiles     []struct {
			Tile string `json:"tile"`
			URL  string `json:"url"`
		} `json:"tiles"`
	}
	parseResponse(t, w, &resp)
	if len(resp.Tiles) != 4 {
		t.Fatalf("len(tiles) = %d, want 4", len(resp.Tiles))
	}
	if resp.Tiles[0].URL != "/static/images/split2x2-1.png" {
		t.Errorf("first tile url = %q", resp.Tiles[0].URL)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/levels/two/tiles", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var saved *engine.GameConfig
	var savedID string
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "Classic", TimeLimitSeconds: 300}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			if name != "classic" {
				return nil, fmt.Errorf("configuration not found: %s", name)
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, id string, cfg *engine.GameConfig) error {
			savedID, saved = id, cfg
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var configs []*service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("configs = %+v", configs)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		w = httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{
			"config_id":          "speedrun",
			"name":               "Speedrun",
			"time_limit_seconds": 60,
		}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if savedID != "speedrun" || saved == nil || saved.TimeLimitSeconds != 60 {
			t.Errorf("saved %q %+v", savedID, saved)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]int{"time_limit_seconds": 10}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("status = %v", resp["status"])
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &engine.GameState{Level: 2, GridSize: 2, Phase: engine.PhasePlaying}, nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("missing session parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid session", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/ws?session=zzzz", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("sends the current board on connect", func(t *testing.T) {
		ts := httptest.NewServer(server)
		defer ts.Close()

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
		conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Dial() error = %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg websocket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Event != websocket.EventStateUpdate || msg.GameState == nil || msg.GameState.Level != 2 {
			t.Errorf("first message = %+v", msg)
		}
	})
}
