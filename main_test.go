package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testServices(t *testing.T) *services {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	svcs, err := initializeServices("configs", testLogger())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	t.Cleanup(svcs.Close)
	return svcs
}

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Slide Puzzle Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	svcs := testServices(t)

	if svcs.game == nil || svcs.sessions == nil || svcs.hub == nil {
		t.Fatal("Expected every service to be initialized")
	}

	info, err := svcs.game.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if svcs.sessions.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", svcs.sessions.Count())
	}
	if info.ConfigName != "classic" {
		t.Errorf("Expected default config classic, got %s", info.ConfigName)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", testLogger()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
}

func TestGetConfigDirDefault(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	if got := getConfigDirDefault(); got != "configs" {
		t.Errorf("getConfigDirDefault() = %s, want configs", got)
	}
	t.Setenv("CONFIG_DIR", "/etc/puzzle")
	if got := getConfigDirDefault(); got != "/etc/puzzle" {
		t.Errorf("getConfigDirDefault() = %s, want /etc/puzzle", got)
	}
}

func TestNgrokSettings(t *testing.T) {
	t.Setenv("NGROK_ENABLED", "")
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "")
	if ngrokRequested() {
		t.Error("ngrok should be off by default")
	}
	if ngrokAuthToken() != "" {
		t.Error("expected no token")
	}

	t.Setenv("NGROK_ENABLED", "1")
	t.Setenv("NGROK_AUTH_TOKEN", "underscore")
	if !ngrokRequested() {
		t.Error("NGROK_ENABLED=1 should turn ngrok on")
	}
	if got := ngrokAuthToken(); got != "underscore" {
		t.Errorf("ngrokAuthToken() = %s", got)
	}

	t.Setenv("NGROK_AUTHTOKEN", "plain")
	if got := ngrokAuthToken(); got != "plain" {
		t.Errorf("NGROK_AUTHTOKEN should win, got %s", got)
	}
}

func TestRouter(t *testing.T) {
	svcs := testServices(t)
	handler := newRouter(svcs, "http://127.0.0.1:0", testLogger())

	t.Run("health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if rr.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Unexpected content type %s", rr.Header().Get("Content-Type"))
		}
	})

	t.Run("create session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"config_id":"classic"}`))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("mcp rejects GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rr.Code)
		}
	})

	t.Run("mcp initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}

		var resp map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid JSON-RPC response: %v", err)
		}
		if _, ok := resp["result"]; !ok {
			t.Fatalf("Expected a result, got %s", rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), "Slide Puzzle") {
			t.Errorf("Expected server name in response: %s", rr.Body.String())
		}
	})
}

func TestAPIAvailable(t *testing.T) {
	svcs := testServices(t)
	ts := httptest.NewServer(newRouter(svcs, "", testLogger()))
	defer ts.Close()

	if !apiAvailable(ts.URL) {
		t.Error("Expected the test server to be available")
	}

	ts.Close()
	if apiAvailable(ts.URL) {
		t.Error("Expected a closed server to be unavailable")
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	svcs := testServices(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, svcs.sessions, time.Millisecond, testLogger())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop after cancel")
	}
}
