package engine

import (
	"fmt"
	"strings"
)

// Question is one continuation question asked before extra time is granted.
// Every option is accepted.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Image   string   `json:"image,omitempty" yaml:"image,omitempty"`
	Options []string `json:"options" yaml:"options"`
}

// Messages holds the player-facing texts of a game configuration.
type Messages struct {
	Welcome            string `json:"welcome" yaml:"welcome"`
	LevelComplete      string `json:"level_complete" yaml:"level_complete"`
	GameComplete       string `json:"game_complete" yaml:"game_complete"`
	TimeoutStrict      string `json:"timeout_strict" yaml:"timeout_strict"`
	TimeoutRecoverable string `json:"timeout_recoverable" yaml:"timeout_recoverable"`
	KeepPlaying        string `json:"keep_playing" yaml:"keep_playing"`
	TimeRestored       string `json:"time_restored" yaml:"time_restored"`
}

// GameConfig represents the rules of a puzzle run, loaded from JSON or YAML
type GameConfig struct {
	Name                 string     `json:"name" yaml:"name"`
	Description          string     `json:"description" yaml:"description"`
	TimeLimitSeconds     int        `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	RecoverableFromLevel int        `json:"recoverable_from_level" yaml:"recoverable_from_level"`
	EnsureSolvable       bool       `json:"ensure_solvable" yaml:"ensure_solvable"`
	AllowSkip            bool       `json:"allow_skip" yaml:"allow_skip"`
	AllowAutoSolve       bool       `json:"allow_auto_solve" yaml:"allow_auto_solve"`
	Questions            []Question `json:"questions" yaml:"questions"`
	Messages             Messages   `json:"messages" yaml:"messages"`
}

func defaultMessages() Messages {
	return Messages{
		Welcome:            "Slide the tiles into place before the clock runs out.",
		LevelComplete:      "Level complete! The next puzzle is bigger.",
		GameComplete:       "You solved every level. Congratulations!",
		TimeoutStrict:      "Time's up! You could not finish this level.",
		TimeoutRecoverable: "Time's up! Start over from 2x2 or earn extra time.",
		KeepPlaying:        "You can keep playing this level.",
		TimeRestored:       "Extra time granted. Keep going!",
	}
}

// DefaultGameConfig returns the built-in rules: five minutes per level and a
// continuation offer from level 3 onwards.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:                 "classic",
		Description:          "Five minutes per level, extra time from 3x3 onwards",
		TimeLimitSeconds:     DefaultTimeLimit,
		RecoverableFromLevel: DefaultRecoverableFromLevel,
		AllowSkip:            true,
		Questions: []Question{
			{
				Prompt:  "Which would you rather have?",
				Image:   "/static/images/question-1.jpeg",
				Options: []string{"A bigger board", "A longer clock"},
			},
			{
				Prompt:  "Which would you rather solve?",
				Image:   "/static/images/question-2.jpeg",
				Options: []string{"A beautiful picture", "A tricky pattern"},
			},
		},
		Messages: defaultMessages(),
	}
}

// WithDefaults returns a copy of config with zero values replaced by the
// built-in ones. Questions are kept as given; an empty list grants time
// immediately.
func (config *GameConfig) WithDefaults() *GameConfig {
	out := *config
	out.Questions = append([]Question(nil), config.Questions...)
	if out.TimeLimitSeconds == 0 {
		out.TimeLimitSeconds = DefaultTimeLimit
	}
	if out.RecoverableFromLevel == 0 {
		out.RecoverableFromLevel = DefaultRecoverableFromLevel
	}

	defaults := defaultMessages()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&out.Messages.Welcome, defaults.Welcome)
	fill(&out.Messages.LevelComplete, defaults.LevelComplete)
	fill(&out.Messages.GameComplete, defaults.GameComplete)
	fill(&out.Messages.TimeoutStrict, defaults.TimeoutStrict)
	fill(&out.Messages.TimeoutRecoverable, defaults.TimeoutRecoverable)
	fill(&out.Messages.KeepPlaying, defaults.KeepPlaying)
	fill(&out.Messages.TimeRestored, defaults.TimeRestored)
	return &out
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.TimeLimitSeconds < 1 || config.TimeLimitSeconds > MaxTimeLimit {
		return fmt.Errorf("config validation: time_limit_seconds must be between 1 and %d, got %d",
			MaxTimeLimit, config.TimeLimitSeconds)
	}

	// MaxLevel+1 disables recovery entirely.
	if config.RecoverableFromLevel < MinLevel || config.RecoverableFromLevel > MaxLevel+1 {
		return fmt.Errorf("config validation: recoverable_from_level must be between %d and %d, got %d",
			MinLevel, MaxLevel+1, config.RecoverableFromLevel)
	}

	for i, q := range config.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("config validation: questions[%d].prompt is required", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("config validation: questions[%d] must have at least 2 options, got %d", i, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("config validation: questions[%d].options[%d] is empty", i, j)
			}
		}
	}

	return nil
}
