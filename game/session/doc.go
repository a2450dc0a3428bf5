// Package session provides session management for the slide puzzle.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the in-memory session store. Every session owns one engine whose
// countdown runs on its own schedule; deleting or expiring a session closes
// the engine so no timer keeps firing for a session nobody can reach.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs are retried on collision.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Engine options apply to every session, e.g. deterministic clocks in tests
//	manual := engine.NewManualScheduler()
//	testManager := session.NewManager(engine.WithScheduler(manual))
package session
