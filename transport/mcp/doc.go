// Package mcp exposes the slide puzzle to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool calls the REST API of package api and
// formats the JSON answer as text, so an agent sees the same sessions as the
// browser. The board is printed as tile labels next to the cell indexes a
// move expects.
//
// Tools: create_session, list_sessions, get_session, game_state, move,
// bulk_move, next_level, restart_level, reset_to_first_level, skip_level,
// solve_level, timeout_choice, answer_question, move_history, list_configs,
// level_tiles and game_instructions.
//
// The server binary mounts the tools at POST /mcp and also serves them over
// stdio:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
