// Package engine provides the core game logic for the slide puzzle.
//
// The engine package implements the game mechanics including:
//   - Level progression from a 2x2 board up to a 5x5 board
//   - Board shuffling, adjacency checks and solved detection
//   - A per-level countdown that starts on the first accepted move
//   - Timeout outcomes, including the question gate that grants extra time
//
// Core Types:
//
// LevelManager owns the level number and canonical tile order. Board owns the
// current arrangement. Countdown owns the remaining seconds and schedules its
// ticks through a Scheduler. GameEngine ties the three together behind the
// Engine interface and serializes every mutation, publishing Events to
// subscribed listeners.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer gameEngine.Close()
//
//	unsubscribe := gameEngine.Subscribe(func(ev engine.Event) {
//		fmt.Println(ev.Type, ev.Clock)
//	})
//	defer unsubscribe()
//
//	state := gameEngine.GetState()
//	gameEngine.Move(state.Movable[0])
//
// Game Rules:
//
// A tile moves only when it is orthogonally adjacent to the blank. Solving the
// last level completes the game. When the clock runs out on an early level the
// attempt fails; from the recoverable level onwards the player may start over
// from 2x2 or answer the continuation questions to get the full time back.
package engine
