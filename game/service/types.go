package service

import (
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	Index     int               `json:"index"`
	FirstMove bool              `json:"first_move"`
	Solved    bool              `json:"solved"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []engine.Event    `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []engine.Event    `json:"events"`
	Steps          []StepInfo        `json:"steps"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // level_complete|game_complete|timeout|not_playing
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx       int  `json:"idx"`
	Index     int  `json:"index"`
	Success   bool `json:"success"`
	FirstMove bool `json:"first_move,omitempty"`
	Solved    bool `json:"solved,omitempty"`
}

// ActionResult is returned by level and timeout actions.
type ActionResult struct {
	Action    string            `json:"action"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename             string `json:"filename"`
	ConfigID             string `json:"config_id"` // The identifier to use for session creation
	Name                 string `json:"name"`
	Description          string `json:"description"`
	TimeLimitSeconds     int    `json:"time_limit_seconds"`
	RecoverableFromLevel int    `json:"recoverable_from_level"`
	QuestionCount        int    `json:"question_count"`
	AllowSkip            bool   `json:"allow_skip"`
	AllowAutoSolve       bool   `json:"allow_auto_solve"`
}
