package engine

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

var (
	ErrNotLevelComplete  = errors.New("level is not complete")
	ErrSkipDisabled      = errors.New("skipping levels is disabled")
	ErrAutoSolveDisabled = errors.New("auto-solve is disabled")
	ErrNoTimeoutPending  = errors.New("no timeout choice pending")
	ErrInvalidChoice     = errors.New("invalid timeout choice")
	ErrNoQuestionPending = errors.New("no continuation question pending")
	ErrInvalidOption     = errors.New("invalid question option")
	ErrEngineClosed      = errors.New("engine is closed")
)

// maxShuffleAttempts bounds redraws of an already solved or unsolvable shuffle.
const maxShuffleAttempts = 100

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	GetConfig() *GameConfig
	GetMoveHistory() []MoveHistoryEntry

	// Board operations
	Move(index int) MoveOutcome
	BulkMove(indexes []int) []MoveOutcome
	AutoSolve() error

	// Level progression
	NextLevel() error
	Restart() error
	ResetToFirstLevel() error
	SkipLevel() error
	Dismiss() error

	// Timeout handling
	ChooseTimeoutOption(choice TimeoutChoice) error
	AnswerQuestion(option int) error
	CancelContinuation() error

	Subscribe(listener Listener) (unsubscribe func())
	Close()
}

// Option customizes a GameEngine.
type Option func(*GameEngine)

// WithScheduler replaces the ticker-backed scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) { e.scheduler = s }
}

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) { e.rng = r }
}

// WithSeed makes shuffles reproducible.
func WithSeed(seed uint64) Option {
	return func(e *GameEngine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithTickInterval changes how long one countdown second lasts.
func WithTickInterval(d time.Duration) Option {
	return func(e *GameEngine) { e.interval = d }
}

// WithListener subscribes a listener before the first level starts.
func WithListener(l Listener) Option {
	return func(e *GameEngine) { e.addListener(l) }
}

type subscription struct {
	id int
	fn Listener
}

// GameEngine implements the Engine interface. All mutations and timer ticks
// run under mu; events are delivered to listeners after mu is released, in
// the order they were produced.
type GameEngine struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex

	config    *GameConfig
	levels    *LevelManager
	board     *Board
	timer     *Countdown
	scheduler Scheduler
	interval  time.Duration
	rng       *rand.Rand

	phase         Phase
	message       string
	moves         int
	totalMoves    int
	history       []MoveHistoryEntry
	timeout       *TimeoutOutcome
	questionIndex int
	closed        bool

	listeners []subscription
	nextSubID int
	pending   []Event
	outbox    []Event
}

// NewEngine creates a new game engine at the first level with a shuffled
// board and an idle countdown.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		return nil, ValidateGameConfig(nil)
	}
	config = config.WithDefaults()
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:   config,
		levels:   NewLevelManager(config.RecoverableFromLevel),
		interval: TickInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scheduler == nil {
		e.scheduler = NewTickerScheduler()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.timer = NewCountdown(CountdownOptions{
		Limit:     config.TimeLimitSeconds,
		Interval:  e.interval,
		Scheduler: e.scheduler,
		OnTick:    e.handleTick,
		OnExpire:  e.handleExpire,
		Serialize: func(fn func()) { e.do(fn) },
	})

	e.enterLevel(config.Messages.Welcome)
	e.pending = nil
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// do runs fn under the engine lock and then delivers the events it produced.
// It returns those events.
func (e *GameEngine) do(fn func()) []Event {
	e.mu.Lock()
	fn()
	events := e.pending
	e.pending = nil
	e.outbox = append(e.outbox, events...)
	e.mu.Unlock()

	e.flush()
	return events
}

// flush delivers queued events. A single goroutine delivers at a time; a
// caller that loses the race leaves its events to the active deliverer, which
// re-checks the queue after releasing dispatchMu.
func (e *GameEngine) flush() {
	for {
		if !e.dispatchMu.TryLock() {
			return
		}
		for {
			e.mu.Lock()
			batch := e.outbox
			e.outbox = nil
			listeners := append([]subscription(nil), e.listeners...)
			e.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, ev := range batch {
				for _, sub := range listeners {
					sub.fn(ev)
				}
			}
		}
		e.dispatchMu.Unlock()

		e.mu.Lock()
		empty := len(e.outbox) == 0
		e.mu.Unlock()
		if empty {
			return
		}
	}
}

func (e *GameEngine) emit(t EventType, msg string) *Event {
	e.pending = append(e.pending, Event{
		Type:      t,
		Level:     e.levels.Level(),
		Remaining: e.timer.Remaining(),
		Clock:     FormatClock(e.timer.Remaining()),
		Message:   msg,
		Timestamp: time.Now().Unix(),
	})
	return &e.pending[len(e.pending)-1]
}

// enterLevel replaces the board for the current level and resets the timer.
func (e *GameEngine) enterLevel(message string) {
	e.board = newBoard(e.levels.Canonical())
	e.shuffle()
	e.timer.Reset()
	e.phase = PhasePlaying
	e.message = message
	e.moves = 0
	e.timeout = nil
	e.questionIndex = 0
}

// shuffle draws a new arrangement, redrawing ones that are already solved or,
// when the config asks for it, not solvable. Board.Initialize is uniform; the
// level's starting board is uniform over the unsolved permutations only.
func (e *GameEngine) shuffle() {
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		e.board.Initialize(e.rng)
		if e.board.IsSolved() {
			continue
		}
		if e.config.EnsureSolvable && !IsSolvable(e.board.canonical, e.board.tiles) {
			continue
		}
		return
	}
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *GameEngine) snapshot() *GameState {
	state := &GameState{
		Level:      e.levels.Level(),
		MaxLevel:   MaxLevel,
		GridSize:   e.board.Size(),
		Title:      LevelTitle(e.levels.Level()),
		Tiles:      e.board.Tiles(),
		Canonical:  e.board.Canonical(),
		BlankIndex: e.board.BlankIndex(),
		Movable:    e.board.MovableIndexes(),
		Solved:     e.board.IsSolved(),
		Phase:      e.phase,
		Message:    e.message,
		Timer:      e.timer.View(),
		Moves:      e.moves,
		TotalMoves: e.totalMoves,
		ConfigName: e.config.Name,
	}
	if e.timeout != nil {
		t := *e.timeout
		state.Timeout = &t
	}
	state.Question = e.currentQuestion()
	return state
}

func (e *GameEngine) currentQuestion() *QuestionView {
	if e.phase != PhaseContinuation || e.questionIndex >= len(e.config.Questions) {
		return nil
	}
	q := e.config.Questions[e.questionIndex]
	return &QuestionView{
		Index:   e.questionIndex,
		Total:   len(e.config.Questions),
		Prompt:  q.Prompt,
		Image:   q.Image,
		Options: append([]string(nil), q.Options...),
	}
}

// GetConfig returns the effective game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]MoveHistoryEntry(nil), e.history...)
}

// Move slides the tile at index into the blank. Moves outside the playing
// phase and illegal moves change nothing.
func (e *GameEngine) Move(index int) MoveOutcome {
	var out MoveOutcome
	out.Events = e.do(func() {
		if e.closed || e.phase != PhasePlaying {
			return
		}
		before := e.board.BlankIndex()
		moved := e.board.AttemptMove(index)
		e.record(index, before, moved)
		if !moved {
			return
		}

		out.Moved = true
		e.moves++
		e.totalMoves++
		switch {
		case !e.timer.Started():
			e.timer.Start()
			out.FirstMove = true
			e.emit(EventFirstMove, "")
		case e.timer.Status() == TimerPaused:
			// Kept playing after a win: resume from the remaining time.
			e.timer.Start()
		}
		e.emit(EventBoardChanged, "")
		out.Solved = e.checkSolved()
	})
	return out
}

// BulkMove executes moves in sequence, stopping once the board leaves the
// playing phase.
func (e *GameEngine) BulkMove(indexes []int) []MoveOutcome {
	results := make([]MoveOutcome, 0, len(indexes))
	for _, idx := range indexes {
		if e.Phase() != PhasePlaying {
			break
		}
		results = append(results, e.Move(idx))
	}
	return results
}

// Phase returns the current phase.
func (e *GameEngine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *GameEngine) record(index, before int, success bool) {
	e.history = append(e.history, MoveHistoryEntry{
		MoveNumber:  len(e.history) + 1,
		Level:       e.levels.Level(),
		Index:       index,
		BlankBefore: before,
		BlankAfter:  e.board.BlankIndex(),
		Success:     success,
		Remaining:   e.timer.Remaining(),
		Timestamp:   time.Now().Unix(),
	})
}

// checkSolved stops the timer and resolves the win when the board is solved.
func (e *GameEngine) checkSolved() bool {
	if !e.board.IsSolved() {
		return false
	}
	e.timer.Stop()
	switch e.levels.OnWin().Kind {
	case OutcomeGameComplete:
		e.phase = PhaseGameComplete
		e.message = e.config.Messages.GameComplete
		e.emit(EventGameComplete, e.message)
	default:
		e.phase = PhaseLevelComplete
		e.message = e.config.Messages.LevelComplete
		e.emit(EventLevelComplete, e.message)
	}
	return true
}

func (e *GameEngine) handleTick(int) {
	e.emit(EventTick, "")
}

func (e *GameEngine) handleExpire() {
	outcome := e.levels.OnTimeout()
	e.timeout = &outcome
	e.emit(EventExpired, "")
	if outcome.Kind == OutcomeRecoverable {
		e.phase = PhaseTimeoutChoice
		e.message = e.config.Messages.TimeoutRecoverable
		e.emit(EventTimeoutRecoverable, e.message).Timeout = e.timeoutCopy()
		return
	}
	e.phase = PhaseTimeoutFailed
	e.message = e.config.Messages.TimeoutStrict
	e.emit(EventTimeoutStrictFail, e.message).Timeout = e.timeoutCopy()
}

func (e *GameEngine) timeoutCopy() *TimeoutOutcome {
	if e.timeout == nil {
		return nil
	}
	t := *e.timeout
	t.Options = append([]TimeoutChoice(nil), e.timeout.Options...)
	return &t
}

// action runs a level transition, guarding against a closed engine.
func (e *GameEngine) action(fn func() error) error {
	var err error
	e.do(func() {
		if e.closed {
			err = ErrEngineClosed
			return
		}
		err = fn()
	})
	return err
}

func (e *GameEngine) startLevel() {
	e.enterLevel(e.config.Messages.Welcome)
	e.emit(EventLevelStarted, LevelTitle(e.levels.Level()))
}

// NextLevel moves from a completed level to the next one.
func (e *GameEngine) NextLevel() error {
	return e.action(func() error {
		if e.phase != PhaseLevelComplete {
			return ErrNotLevelComplete
		}
		e.levels.Advance()
		e.startLevel()
		return nil
	})
}

// Restart reshuffles the current level and resets its countdown.
func (e *GameEngine) Restart() error {
	return e.action(func() error {
		e.startLevel()
		return nil
	})
}

// ResetToFirstLevel starts the run over from the smallest board.
func (e *GameEngine) ResetToFirstLevel() error {
	return e.action(func() error {
		e.levels.ResetToFirstLevel()
		e.startLevel()
		return nil
	})
}

// SkipLevel jumps to the next level, wrapping after the last one.
func (e *GameEngine) SkipLevel() error {
	return e.action(func() error {
		if !e.config.AllowSkip {
			return ErrSkipDisabled
		}
		e.levels.Cycle()
		e.startLevel()
		return nil
	})
}

// AutoSolve places every tile in its solved position.
func (e *GameEngine) AutoSolve() error {
	return e.action(func() error {
		if !e.config.AllowAutoSolve {
			return ErrAutoSolveDisabled
		}
		if e.phase != PhasePlaying {
			return nil
		}
		if err := e.board.SetTiles(e.board.Canonical()); err != nil {
			return err
		}
		e.emit(EventBoardChanged, "")
		e.checkSolved()
		return nil
	})
}

// Dismiss closes the level-complete prompt and lets the player keep moving
// tiles on the same level.
func (e *GameEngine) Dismiss() error {
	return e.action(func() error {
		if e.phase != PhaseLevelComplete {
			return ErrNotLevelComplete
		}
		e.phase = PhasePlaying
		e.message = e.config.Messages.KeepPlaying
		e.emit(EventKeepPlaying, e.message)
		return nil
	})
}

// ChooseTimeoutOption resolves a recoverable timeout.
func (e *GameEngine) ChooseTimeoutOption(choice TimeoutChoice) error {
	return e.action(func() error {
		if e.phase != PhaseTimeoutChoice {
			return ErrNoTimeoutPending
		}
		switch choice {
		case ChoiceResetToFirstLevel:
			e.levels.ResetToFirstLevel()
			e.startLevel()
		case ChoiceContinue:
			if len(e.config.Questions) == 0 {
				e.restoreTime()
				return nil
			}
			e.phase = PhaseContinuation
			e.questionIndex = 0
			e.emit(EventContinuationQuestion, "").Question = e.currentQuestion()
		default:
			return ErrInvalidChoice
		}
		return nil
	})
}

// AnswerQuestion accepts any valid option. After the last question the
// countdown restarts at the full limit on the same board.
func (e *GameEngine) AnswerQuestion(option int) error {
	return e.action(func() error {
		if e.phase != PhaseContinuation {
			return ErrNoQuestionPending
		}
		q := e.config.Questions[e.questionIndex]
		if option < 0 || option >= len(q.Options) {
			return ErrInvalidOption
		}
		e.questionIndex++
		if e.questionIndex >= len(e.config.Questions) {
			e.restoreTime()
			return nil
		}
		e.emit(EventContinuationQuestion, "").Question = e.currentQuestion()
		return nil
	})
}

// CancelContinuation abandons the questions and returns to the timeout choice.
func (e *GameEngine) CancelContinuation() error {
	return e.action(func() error {
		if e.phase != PhaseContinuation {
			return ErrNoQuestionPending
		}
		e.phase = PhaseTimeoutChoice
		e.questionIndex = 0
		e.message = e.config.Messages.TimeoutRecoverable
		e.emit(EventTimeoutRecoverable, e.message).Timeout = e.timeoutCopy()
		return nil
	})
}

func (e *GameEngine) restoreTime() {
	e.timer.Reset()
	e.timer.Start()
	e.phase = PhasePlaying
	e.timeout = nil
	e.questionIndex = 0
	e.message = e.config.Messages.TimeRestored
	e.emit(EventTimeRestored, e.message)
}

// Subscribe registers a listener and returns a function that removes it.
func (e *GameEngine) Subscribe(listener Listener) func() {
	e.mu.Lock()
	id := e.addListener(listener)
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.listeners {
			if sub.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *GameEngine) addListener(listener Listener) int {
	e.nextSubID++
	e.listeners = append(e.listeners, subscription{id: e.nextSubID, fn: listener})
	return e.nextSubID
}

// Close cancels the countdown. Later actions return ErrEngineClosed and moves
// are ignored.
func (e *GameEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.timer.Stop()
}
