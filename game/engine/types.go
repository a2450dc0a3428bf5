package engine

import "time"

// Tile identifies one image fragment of the puzzle, or the blank slot.
type Tile string

// Blank is the single empty slot every board carries.
const Blank Tile = "blank"

const (
	MinLevel                    = 2
	MaxLevel                    = 5
	DefaultTimeLimit            = 300
	MaxTimeLimit                = 3600
	DefaultRecoverableFromLevel = 3
	MaxBulkMoves                = 100
	WebSocketBufferSize         = 256

	// TickInterval is how often a running countdown loses one second.
	TickInterval = time.Second
)

// Phase is the coarse state of a game session.
type Phase string

const (
	PhasePlaying       Phase = "playing"
	PhaseLevelComplete Phase = "level_complete"
	PhaseGameComplete  Phase = "game_complete"
	PhaseTimeoutFailed Phase = "timeout_failed"
	PhaseTimeoutChoice Phase = "timeout_choice"
	PhaseContinuation  Phase = "continuation"
)

// TimerStatus is the lifecycle state of a Countdown.
type TimerStatus string

const (
	TimerIdle    TimerStatus = "idle"
	TimerRunning TimerStatus = "running"
	TimerPaused  TimerStatus = "paused"
	TimerExpired TimerStatus = "expired"
)

// OutcomeKind classifies the result of winning or running out of time.
type OutcomeKind string

const (
	OutcomeLevelComplete OutcomeKind = "level_complete"
	OutcomeGameComplete  OutcomeKind = "game_complete"
	OutcomeStrictFail    OutcomeKind = "strict_fail"
	OutcomeRecoverable   OutcomeKind = "recoverable"
)

// TimeoutChoice is one of the options offered after a recoverable timeout.
type TimeoutChoice string

const (
	ChoiceResetToFirstLevel TimeoutChoice = "reset_to_first_level"
	ChoiceContinue          TimeoutChoice = "continue"
)

// WinOutcome is returned by the level manager when a board is solved.
type WinOutcome struct {
	Kind      OutcomeKind `json:"kind"`
	NextLevel int         `json:"next_level,omitempty"`
}

// TimeoutOutcome is returned by the level manager when the countdown expires.
type TimeoutOutcome struct {
	Kind    OutcomeKind     `json:"kind"`
	Level   int             `json:"level"`
	Options []TimeoutChoice `json:"options"`
}

// EventType names an engine notification.
type EventType string

const (
	EventBoardChanged         EventType = "board_changed"
	EventFirstMove            EventType = "first_move"
	EventTick                 EventType = "tick"
	EventExpired              EventType = "expired"
	EventLevelComplete        EventType = "level_complete"
	EventGameComplete         EventType = "game_complete"
	EventTimeoutStrictFail    EventType = "timeout_strict_fail"
	EventTimeoutRecoverable   EventType = "timeout_recoverable"
	EventLevelStarted         EventType = "level_started"
	EventContinuationQuestion EventType = "continuation_question"
	EventTimeRestored         EventType = "time_restored"
	EventKeepPlaying          EventType = "keep_playing"
)

// Event is published to engine listeners after every state change.
type Event struct {
	Type      EventType       `json:"type"`
	Level     int             `json:"level"`
	Remaining int             `json:"remaining"`
	Clock     string          `json:"clock"`
	Message   string          `json:"message,omitempty"`
	Timeout   *TimeoutOutcome `json:"timeout,omitempty"`
	Question  *QuestionView   `json:"question,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Listener receives engine events. Listeners run outside the engine lock.
type Listener func(Event)

// TimerView is the countdown part of a state snapshot.
type TimerView struct {
	Remaining int         `json:"remaining"`
	Limit     int         `json:"limit"`
	Clock     string      `json:"clock"`
	Status    TimerStatus `json:"status"`
	Started   bool        `json:"started"`
}

// QuestionView describes the continuation question currently on screen.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Image   string   `json:"image,omitempty"`
	Options []string `json:"options"`
}

// GameState represents a point-in-time snapshot of a game session
type GameState struct {
	Level      int             `json:"level"`
	MaxLevel   int             `json:"max_level"`
	GridSize   int             `json:"grid_size"`
	Title      string          `json:"title"`
	Tiles      []Tile          `json:"tiles"`
	Canonical  []Tile          `json:"canonical"`
	BlankIndex int             `json:"blank_index"`
	Movable    []int           `json:"movable"`
	Solved     bool            `json:"solved"`
	Phase      Phase           `json:"phase"`
	Message    string          `json:"message"`
	Timer      TimerView       `json:"timer"`
	Moves      int             `json:"moves"`
	TotalMoves int             `json:"total_moves"`
	Timeout    *TimeoutOutcome `json:"timeout,omitempty"`
	Question   *QuestionView   `json:"question,omitempty"`
	ConfigName string          `json:"config_name"`
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	MoveNumber  int   `json:"move_number"`
	Level       int   `json:"level"`
	Index       int   `json:"index"`
	BlankBefore int   `json:"blank_before"`
	BlankAfter  int   `json:"blank_after"`
	Success     bool  `json:"success"`
	Remaining   int   `json:"remaining"`
	Timestamp   int64 `json:"timestamp"`
}

// MoveOutcome reports what a single Move call did.
type MoveOutcome struct {
	Moved     bool    `json:"moved"`
	FirstMove bool    `json:"first_move"`
	Solved    bool    `json:"solved"`
	Events    []Event `json:"events,omitempty"`
}
