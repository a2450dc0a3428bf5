// Package service provides the business logic layer for the slide puzzle.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup for new sessions
//   - Move processing with rejection reasons
//   - Level and timeout actions
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Notifier receives the engine events of every session, which is how the
// WebSocket hub learns about ticks and timeouts that no request caused.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, info.GameState.Movable[0])
//
// Errors:
//
// Unknown session IDs return an error wrapping ErrSessionNotFound. Actions that
// are not allowed in the current phase return the engine's sentinel errors
// wrapped with the action name, so callers can use errors.Is.
package service
