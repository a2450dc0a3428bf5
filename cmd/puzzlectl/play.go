package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/slidepuzzle/game/config"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play the puzzle in the terminal",
		Description: `Controls:
  Arrows/WASD  - slide the tile next to the blank in that direction
  N            - next level (after a win)
  R            - restart the level
  K            - skip to the next level
  F            - back to the first level
  X            - keep looking at a solved board
  1-9          - pick a timeout option or answer a question
  Esc          - close the question
  Q/Ctrl+C     - quit`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigName, Usage: "configuration to play"},
			&cli.IntFlag{Name: "seed", Usage: "seed for reproducible shuffles (0 = random)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mgr, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			cfg, err := mgr.LoadConfig(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("config %q: %w", cmd.String("config"), err)
			}

			var opts []engine.Option
			if seed := uint64(cmd.Int("seed")); seed != 0 {
				opts = append(opts, engine.WithSeed(seed))
			}
			eng, err := engine.NewEngine(cfg, opts...)
			if err != nil {
				return err
			}
			defer eng.Close()

			_, err = tea.NewProgram(newPlayModel(eng), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// eventMsg carries an engine event into the Bubble Tea loop.
type eventMsg engine.Event

// playModel is the Bubble Tea model of a terminal game.
type playModel struct {
	eng      *engine.GameEngine
	events   chan engine.Event
	state    *engine.GameState
	notice   string
	quitting bool
}

func newPlayModel(eng *engine.GameEngine) playModel {
	events := make(chan engine.Event, engine.WebSocketBufferSize)
	// Listeners run on the goroutine that caused the event, which may be
	// Update itself, so the hand-off must never block.
	eng.Subscribe(func(ev engine.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	return playModel{eng: eng, events: events, state: eng.GetState()}
}

// waitForEvent blocks until the engine publishes the next event.
func waitForEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func (m playModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case eventMsg:
		m.state = m.eng.GetState()
		return m, waitForEvent(m.events)
	}
	return m, nil
}

// slideTarget returns the cell whose tile moves into the blank when the
// player pushes in direction dir, or -1 at the edge.
func slideTarget(state *engine.GameState, dir string) int {
	n := state.GridSize
	blank := state.BlankIndex
	row, col := blank/n, blank%n
	switch dir {
	case "up":
		if row < n-1 {
			return blank + n
		}
	case "down":
		if row > 0 {
			return blank - n
		}
	case "left":
		if col < n-1 {
			return blank + 1
		}
	case "right":
		if col > 0 {
			return blank - 1
		}
	}
	return -1
}

var keyDirections = map[string]string{
	"up": "up", "w": "up",
	"down": "down", "s": "down",
	"left": "left", "a": "left",
	"right": "right", "d": "right",
}

func (m playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	var err error
	m.notice = ""

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "n":
		err = m.eng.NextLevel()
	case "r":
		err = m.eng.Restart()
	case "k":
		err = m.eng.SkipLevel()
	case "f":
		err = m.eng.ResetToFirstLevel()
	case "x":
		err = m.eng.Dismiss()
	case "esc":
		err = m.eng.CancelContinuation()
	default:
		if dir, ok := keyDirections[key]; ok {
			if target := slideTarget(m.state, dir); target >= 0 {
				m.eng.Move(target)
			}
			break
		}
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			err = m.choose(int(key[0] - '1'))
		}
	}

	if err != nil {
		m.notice = err.Error()
	}
	m.state = m.eng.GetState()
	return m, nil
}

// choose answers whichever prompt is on screen with option i.
func (m playModel) choose(i int) error {
	switch m.state.Phase {
	case engine.PhaseTimeoutChoice:
		if m.state.Timeout == nil || i >= len(m.state.Timeout.Options) {
			return engine.ErrInvalidChoice
		}
		return m.eng.ChooseTimeoutOption(m.state.Timeout.Options[i])
	case engine.PhaseContinuation:
		return m.eng.AnswerQuestion(i)
	}
	return nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	tileStyle   = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245"))
	homeStyle   = tileStyle.BorderForeground(lipgloss.Color("10"))
	blankStyle  = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Border(lipgloss.HiddenBorder())
	dialogStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("13"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func (m playModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.state

	clock := clockStyle
	if s.Timer.Status == engine.TimerRunning && s.Timer.Remaining <= 30 {
		clock = lowStyle
	}
	header := fmt.Sprintf("%s  %s  moves %d", titleStyle.Render(s.Title), clock.Render(s.Timer.Clock), s.Moves)

	rows := make([]string, 0, s.GridSize)
	for r := 0; r < s.GridSize; r++ {
		cells := make([]string, 0, s.GridSize)
		for c := 0; c < s.GridSize; c++ {
			i := r*s.GridSize + c
			t := s.Tiles[i]
			switch {
			case t == engine.Blank:
				cells = append(cells, blankStyle.Render(""))
			case t == s.Canonical[i]:
				cells = append(cells, homeStyle.Render(label(t)))
			default:
				cells = append(cells, tileStyle.Render(label(t)))
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	parts := []string{header, lipgloss.JoinVertical(lipgloss.Left, rows...)}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	if d := dialogText(s); d != "" {
		parts = append(parts, dialogStyle.Render(d))
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	parts = append(parts, helpStyle.Render("arrows slide • r restart • k skip • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func dialogText(s *engine.GameState) string {
	switch s.Phase {
	case engine.PhaseLevelComplete:
		return "Level complete!\nn next level • x keep looking"
	case engine.PhaseGameComplete:
		return "You solved every level!\nf play again"
	case engine.PhaseTimeoutFailed:
		return "Time is up.\nr try again"
	case engine.PhaseTimeoutChoice:
		var b strings.Builder
		b.WriteString("Time is up. What now?")
		if s.Timeout != nil {
			for i, o := range s.Timeout.Options {
				fmt.Fprintf(&b, "\n%d) %s", i+1, choiceText(o))
			}
		}
		return b.String()
	case engine.PhaseContinuation:
		q := s.Question
		if q == nil {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Question %d of %d\n%s", q.Index+1, q.Total, q.Prompt)
		for i, o := range q.Options {
			fmt.Fprintf(&b, "\n%d) %s", i+1, o)
		}
		b.WriteString("\nesc back")
		return b.String()
	}
	return ""
}

func choiceText(c engine.TimeoutChoice) string {
	switch c {
	case engine.ChoiceResetToFirstLevel:
		return "back to the first level"
	case engine.ChoiceContinue:
		return "keep this board and get more time"
	}
	return string(c)
}
