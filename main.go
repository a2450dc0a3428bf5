// Command slidepuzzle starts the Slide Puzzle game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the web UI, REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, debug logging, version output,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/slidepuzzle/api"
	"github.com/wricardo/mcp-training/slidepuzzle/game/config"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
	"github.com/wricardo/mcp-training/slidepuzzle/game/session"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/mcp"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Slide Puzzle Game Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing game configurations")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault honors CONFIG_DIR, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with web UI, API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// newLogger writes to stderr so stdout stays free for the MCP stdio protocol.
func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "puzzle",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	}
	return logger
}

func main() {
	// A missing .env is fine.
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger := newLogger(*debug)
	log.SetDefault(logger)

	if envErr == nil {
		logger.Info("Loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("Error loading .env file", "error", envErr)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	logger.Info("Starting", "app", AppName, "version", Version, "mode", mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := initializeServices(*configDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}
	defer svcs.Close()
	go sessionCleanupRoutine(ctx, svcs.sessions, cleanupInterval, logger)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, svcs, logger)
	case "server", "http":
		runHTTPServer(ctx, svcs, logger)
	default:
		logger.Fatal("Unknown mode. Use 'server' (default) or 'stdio-mcp'", "mode", mode)
	}
}

// services bundles everything a server mode needs.
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
}

// Close stops the hub and every session countdown.
func (s *services) Close() {
	s.hub.Stop()
	s.sessions.Close()
}

// initializeServices wires the config and session managers, the WebSocket hub
// and the game service. Engine events of every session are pushed to the hub.
func initializeServices(dir string, logger *log.Logger) (*services, error) {
	configManager, err := config.NewManager(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	logger.Debug("Config manager ready", "dir", dir, "default", configManager.GetDefault().Name)

	sessionManager := session.NewManager()

	hub := websocket.NewHub()
	go hub.Run()

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithNotifier(hub),
		service.WithLogger(logger),
	)

	return &services{game: gameService, sessions: sessionManager, hub: hub}, nil
}

// sessionCleanupRoutine removes sessions that have not been touched within
// sessionMaxAge until ctx is cancelled.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("Cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// mcpHandler answers JSON-RPC messages posted to /mcp.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("Failed to write MCP response", "error", err)
		}
	}
}

// newRouter mounts the API server at the root and the MCP endpoint at /mcp.
// MCP tools call back into the API at baseURL.
func newRouter(svcs *services, baseURL string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	r.Mount("/", api.NewServer(svcs.game, svcs.hub))
	return r
}

// runHTTPServer serves the router until ctx is cancelled. If ngrok is enabled
// (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, svcs *services, logger *log.Logger) {
	addr := fmt.Sprintf("%s:%d", *host, *port)
	handler := newRouter(svcs, "http://"+addr, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("Endpoints",
			"ui", fmt.Sprintf("http://%s/", addr),
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	if ngrokRequested() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, handler, logger)
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("Server stopped")
}

// ngrokRequested reports whether the flag or NGROK_ENABLED turns the tunnel on.
func ngrokRequested() bool {
	if *ngrokEnabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

// ngrokAuthToken reads the token from the flag, then NGROK_AUTHTOKEN, then
// NGROK_AUTH_TOKEN.
func ngrokAuthToken() string {
	if *ngrokAuth != "" {
		return *ngrokAuth
	}
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" {
		return token
	}
	return os.Getenv("NGROK_AUTH_TOKEN")
}

func runNgrokTunnel(ctx context.Context, handler http.Handler, logger *log.Logger) {
	authToken := ngrokAuthToken()
	if authToken == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	logger.Info("Starting ngrok tunnel...")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("Using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", "error", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logger.Error("Failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	logger.Info("🚀 Ngrok tunnel established", "url", url)
	logger.Info("Endpoints (ngrok)",
		"ui", url+"/",
		"api", url+"/api",
		"ws", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	// ngrok.Listen closes the listener when ctx is cancelled.
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Debug("Ngrok server stopped", "error", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// apiAvailable reports whether an API server answers at baseURL.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// server at http://localhost:<port> when one answers; otherwise it starts an
// internal API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, svcs *services, logger *log.Logger) {
	baseURL := fmt.Sprintf("http://localhost:%d", *port)
	logger.Info("Checking for external API server", "url", baseURL)

	if apiAvailable(baseURL) {
		logger.Info("External API server found, using it for MCP", "url", baseURL)
	} else {
		logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Fatal("Failed to get available port", "error", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{
			Handler:           api.NewServer(svcs.game, svcs.hub),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		logger.Info("Internal HTTP server ready", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	stdio.SetErrorLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("MCP stdio server error", "error", err)
	}
}
