// Package api provides the HTTP REST API of the slide puzzle server.
//
// Endpoints (all under /api, JSON in and out):
//
// Sessions:
//   - POST /sessions {config_id} - start a game
//   - GET /sessions?sort=created|accessed&order=asc|desc&limit=n
//   - GET /sessions/{id}, DELETE /sessions/{id}
//
// Board:
//   - GET /sessions/{id}/state
//   - POST /sessions/{id}/move {"index": n}
//   - POST /sessions/{id}/bulk-move {"indexes": [..]}
//   - POST /sessions/{id}/solve
//   - GET /sessions/{id}/history?page=&limit=&order=
//
// Levels and timeouts:
//   - POST /sessions/{id}/next-level, /restart, /reset-level, /skip, /dismiss
//   - POST /sessions/{id}/timeout-choice {"choice": "reset_to_first_level"|"continue"}
//   - POST /sessions/{id}/answer {"option": n}
//   - POST /sessions/{id}/cancel-continuation
//   - GET /levels/{level}/tiles
//
// Configuration:
//   - GET /configs, POST /configs, GET /configs/{name}
//
// The server also mounts /ws?session={id} for pushed engine events, the
// HTML pages of package web and ./static/ for tile images.
//
// Errors are returned as {"error": "..."}: 400 for malformed bodies and
// invalid choices, 404 for unknown sessions, 409 when the game is not in a
// phase that accepts the action.
package api
