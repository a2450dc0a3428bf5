package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// ErrSessionNotFound is returned (wrapped) for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board Operations
	Move(ctx context.Context, sessionID string, index int) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, indexes []int) (*BulkMoveResult, error)
	AutoSolve(ctx context.Context, sessionID string) (*ActionResult, error)

	// Level Progression
	NextLevel(ctx context.Context, sessionID string) (*ActionResult, error)
	Restart(ctx context.Context, sessionID string) (*ActionResult, error)
	ResetToFirstLevel(ctx context.Context, sessionID string) (*ActionResult, error)
	SkipLevel(ctx context.Context, sessionID string) (*ActionResult, error)
	Dismiss(ctx context.Context, sessionID string) (*ActionResult, error)

	// Timeout Handling
	ChooseTimeoutOption(ctx context.Context, sessionID string, choice engine.TimeoutChoice) (*ActionResult, error)
	AnswerQuestion(ctx context.Context, sessionID string, option int) (*ActionResult, error)
	CancelContinuation(ctx context.Context, sessionID string) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives every engine event of every session created through the
// service. Implementations must not block.
type Notifier interface {
	Notify(sessionID string, event engine.Event, state *engine.GameState)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         engine.Engine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
