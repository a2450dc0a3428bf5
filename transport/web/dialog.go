package web

import (
	"fmt"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// Button is a dialog choice. Action is the session API path segment to POST
// to, Body its JSON payload.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Body   string `json:"body,omitempty"`
}

// Dialog is the popup shown over the board for a phase.
type Dialog struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Image   string   `json:"image,omitempty"`
	Buttons []Button `json:"buttons"`
	// Closable dialogs have an × that triggers CloseAction.
	CloseAction string `json:"close_action,omitempty"`
}

// DialogFor returns the popup for the state's phase, or nil while playing.
func DialogFor(state *engine.GameState) *Dialog {
	if state == nil {
		return nil
	}
	switch state.Phase {
	case engine.PhaseLevelComplete:
		return &Dialog{
			Kind:    "level_complete",
			Title:   "Level complete",
			Message: state.Message,
			Buttons: []Button{
				{Label: "Next level", Action: "next-level"},
				{Label: "Keep playing", Action: "dismiss"},
			},
		}
	case engine.PhaseGameComplete:
		return &Dialog{
			Kind:    "game_complete",
			Title:   "Puzzle master",
			Message: state.Message,
			Buttons: []Button{{Label: "Play again", Action: "reset-level"}},
		}
	case engine.PhaseTimeoutFailed:
		return &Dialog{
			Kind:    "timeout_strict_fail",
			Title:   "Time's up",
			Message: state.Message,
			Buttons: []Button{{Label: "Try again", Action: "restart"}},
		}
	case engine.PhaseTimeoutChoice:
		d := &Dialog{
			Kind:    "timeout_recoverable",
			Title:   "Time's up",
			Message: state.Message,
		}
		if state.Timeout != nil {
			for _, opt := range state.Timeout.Options {
				d.Buttons = append(d.Buttons, Button{
					Label:  choiceLabel(opt),
					Action: "timeout-choice",
					Body:   fmt.Sprintf(`{"choice":%q}`, opt),
				})
			}
		}
		return d
	case engine.PhaseContinuation:
		q := state.Question
		if q == nil {
			return nil
		}
		d := &Dialog{
			Kind:        "continuation_question",
			Title:       fmt.Sprintf("Question %d of %d", q.Index+1, q.Total),
			Message:     q.Prompt,
			Image:       q.Image,
			CloseAction: "cancel-continuation",
		}
		for i, opt := range q.Options {
			d.Buttons = append(d.Buttons, Button{
				Label:  opt,
				Action: "answer",
				Body:   fmt.Sprintf(`{"option":%d}`, i),
			})
		}
		return d
	}
	return nil
}

func choiceLabel(c engine.TimeoutChoice) string {
	switch c {
	case engine.ChoiceResetToFirstLevel:
		return "Start over at 2x2"
	case engine.ChoiceContinue:
		return "Earn extra time"
	}
	return string(c)
}
