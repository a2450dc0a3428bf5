package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	logger   *log.Logger
	mu       sync.RWMutex
}

// Option customizes the game service.
type Option func(*gameServiceImpl)

// WithNotifier forwards engine events of new sessions to n.
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = l }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.attach(sess)

	s.logger.Info("Session created", "session", sess.ID, "config", config.Name)
	return s.sessionInfo(sess, configName), nil
}

// attach forwards the session's engine events to the notifier.
func (s *gameServiceImpl) attach(sess *Session) {
	if s.notifier == nil {
		return
	}
	id, eng, notifier := sess.ID, sess.Engine, s.notifier
	eng.Subscribe(func(ev engine.Event) {
		notifier.Notify(id, ev, eng.GetState())
	})
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.logger.Info("Session deleted", "session", sessionID)
	return nil
}

// session looks up a session and refreshes its access time.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Touch first so the returned copy carries the new access time.
	s.sessions.UpdateLastAccessed(sessionID)
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

// Move slides the tile at index for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, index int) (*MoveResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	outcome := sess.Engine.Move(index)
	state := sess.Engine.GetState()

	message := state.Message
	if !outcome.Moved {
		message = moveRejection(state, index)
	}

	return &MoveResult{
		Success:   outcome.Moved,
		Index:     index,
		FirstMove: outcome.FirstMove,
		Solved:    outcome.Solved,
		GameState: state,
		Message:   message,
		Events:    outcome.Events,
	}, nil
}

// moveRejection explains why a move did nothing.
func moveRejection(state *engine.GameState, index int) string {
	if state.Phase != engine.PhasePlaying {
		return fmt.Sprintf("moves are not accepted while the game is %s", state.Phase)
	}
	if index < 0 || index >= len(state.Tiles) {
		return fmt.Sprintf("index %d is outside the %dx%d board", index, state.GridSize, state.GridSize)
	}
	if index == state.BlankIndex {
		return fmt.Sprintf("index %d is the blank cell", index)
	}
	return fmt.Sprintf("tile at index %d is not adjacent to the blank (movable: %v)", index, state.Movable)
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, indexes []int) (*BulkMoveResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(indexes),
		Events:         make([]engine.Event, 0),
		Steps:          make([]StepInfo, 0, len(indexes)),
		Success:        true,
	}

	// Limit moves to prevent abuse
	if len(indexes) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		indexes = indexes[:engine.MaxBulkMoves]
	}

	for i, index := range indexes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := sess.Engine.GetState()
		if before.Phase != engine.PhasePlaying {
			result.Success = false
			result.StopReasonCode = stopCode(before.Phase)
			result.StoppedReason = fmt.Sprintf("game is %s", before.Phase)
			result.StoppedOnMove = i + 1
			break
		}

		outcome := sess.Engine.Move(index)
		result.Events = append(result.Events, outcome.Events...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:       i + 1,
			Index:     index,
			Success:   outcome.Moved,
			FirstMove: outcome.FirstMove,
			Solved:    outcome.Solved,
		})

		if !outcome.Moved {
			result.Success = false
			result.StopReasonCode = "illegal_move"
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s", i+1, moveRejection(sess.Engine.GetState(), index))
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++
	}

	result.GameState = sess.Engine.GetState()
	result.Message = result.GameState.Message
	if result.StopReasonCode == "" && result.GameState.Phase != engine.PhasePlaying {
		result.StopReasonCode = stopCode(result.GameState.Phase)
	}

	return result, nil
}

func stopCode(phase engine.Phase) string {
	switch phase {
	case engine.PhaseLevelComplete:
		return "level_complete"
	case engine.PhaseGameComplete:
		return "game_complete"
	case engine.PhaseTimeoutFailed, engine.PhaseTimeoutChoice, engine.PhaseContinuation:
		return "timeout"
	default:
		return "not_playing"
	}
}

// act runs an engine action and packages the resulting state.
func (s *gameServiceImpl) act(sessionID, action string, fn func(engine.Engine) error) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess.Engine); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	state := sess.Engine.GetState()
	return &ActionResult{Action: action, GameState: state, Message: state.Message}, nil
}

// AutoSolve places every tile at its canonical index
func (s *gameServiceImpl) AutoSolve(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "auto_solve", engine.Engine.AutoSolve)
}

// NextLevel advances a completed level
func (s *gameServiceImpl) NextLevel(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "next_level", engine.Engine.NextLevel)
}

// Restart reshuffles the current level
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "restart", engine.Engine.Restart)
}

// ResetToFirstLevel starts over at the first level
func (s *gameServiceImpl) ResetToFirstLevel(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "reset_to_first_level", engine.Engine.ResetToFirstLevel)
}

// SkipLevel cycles to the next level without solving
func (s *gameServiceImpl) SkipLevel(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "skip_level", engine.Engine.SkipLevel)
}

// Dismiss closes the level complete notice and keeps the solved board on screen
func (s *gameServiceImpl) Dismiss(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "dismiss", engine.Engine.Dismiss)
}

// ChooseTimeoutOption applies the player's answer to a recoverable timeout
func (s *gameServiceImpl) ChooseTimeoutOption(ctx context.Context, sessionID string, choice engine.TimeoutChoice) (*ActionResult, error) {
	return s.act(sessionID, "timeout_choice", func(e engine.Engine) error {
		return e.ChooseTimeoutOption(choice)
	})
}

// AnswerQuestion answers the current continuation question
func (s *gameServiceImpl) AnswerQuestion(ctx context.Context, sessionID string, option int) (*ActionResult, error) {
	return s.act(sessionID, "answer_question", func(e engine.Engine) error {
		return e.AnswerQuestion(option)
	})
}

// CancelContinuation goes back to the timeout choice
func (s *gameServiceImpl) CancelContinuation(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "cancel_continuation", engine.Engine.CancelContinuation)
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
