// Package websocket provides WebSocket transport for the slide puzzle.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read goroutine and a
// write goroutine; the hub goroutine owns registration and fan-out.
//
// Message Protocol:
//
// Clients connect with ?session=<id> and only listen. Every outgoing frame is
// one JSON Message:
//
//	{"session_id":"ab12","event":"tick","game_state":{...},"data":{...}}
//
// event is an engine event type (first_move, tick, level_complete,
// timeout_recoverable, ...) or "state_update" for plain pushes. data carries
// the engine event itself.
//
// Session Integration:
//
// Hub implements the service Notifier, so every engine event of every session
// is pushed, including countdown ticks and timeouts that no request caused.
// Notify never blocks: when the queue is full the message is dropped and the
// next tick carries the fresh state anyway.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	svc := service.NewGameService(sessions, configs, service.WithNotifier(hub))
package websocket
