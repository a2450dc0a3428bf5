package engine

import "fmt"

// GridSize returns the number of rows (and columns) of the board for a level.
func GridSize(level int) int {
	return level
}

// FragmentID names the i-th (1-indexed) fragment of an n×n puzzle.
func FragmentID(n, i int) Tile {
	return Tile(fmt.Sprintf("%dx%d-%d", n, n, i))
}

// LevelTitle is the heading shown above the board.
func LevelTitle(level int) string {
	return fmt.Sprintf("%dx%d (Level %d)", level, level, level)
}

// TilesForLevel returns the canonical order for a level: n²-1 fragments in
// row-major order followed by the blank.
func TilesForLevel(n int) []Tile {
	if n < 1 {
		return nil
	}
	tiles := make([]Tile, 0, n*n)
	for i := 1; i < n*n; i++ {
		tiles = append(tiles, FragmentID(n, i))
	}
	return append(tiles, Blank)
}

// ClampLevel forces a level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LevelManager tracks the current level and its canonical tile order.
type LevelManager struct {
	level           int
	canonical       []Tile
	recoverableFrom int
}

// NewLevelManager starts at the first level. Timeouts at or above
// recoverableFrom offer a continuation; below it they fail strictly.
func NewLevelManager(recoverableFrom int) *LevelManager {
	m := &LevelManager{recoverableFrom: recoverableFrom}
	m.setLevel(MinLevel)
	return m
}

func (m *LevelManager) setLevel(level int) {
	m.level = ClampLevel(level)
	m.canonical = TilesForLevel(GridSize(m.level))
}

// Level returns the current level number.
func (m *LevelManager) Level() int {
	return m.level
}

// Canonical returns a copy of the solved order for the current level.
func (m *LevelManager) Canonical() []Tile {
	out := make([]Tile, len(m.canonical))
	copy(out, m.canonical)
	return out
}

// IsFinal reports whether the current level is the last one.
func (m *LevelManager) IsFinal() bool {
	return m.level >= MaxLevel
}

// Advance moves to the next level. It returns false, leaving the level
// unchanged, when the final level has already been reached.
func (m *LevelManager) Advance() bool {
	if m.IsFinal() {
		return false
	}
	m.setLevel(m.level + 1)
	return true
}

// ResetToFirstLevel forces the level back to MinLevel.
func (m *LevelManager) ResetToFirstLevel() {
	m.setLevel(MinLevel)
}

// Cycle advances one level, wrapping from the final level to the first.
func (m *LevelManager) Cycle() {
	if !m.Advance() {
		m.ResetToFirstLevel()
	}
}

// OnWin classifies a solved board at the current level.
func (m *LevelManager) OnWin() WinOutcome {
	if m.IsFinal() {
		return WinOutcome{Kind: OutcomeGameComplete}
	}
	return WinOutcome{Kind: OutcomeLevelComplete, NextLevel: m.level + 1}
}

// OnTimeout classifies an expired countdown at the current level.
func (m *LevelManager) OnTimeout() TimeoutOutcome {
	if m.level >= m.recoverableFrom {
		return TimeoutOutcome{
			Kind:    OutcomeRecoverable,
			Level:   m.level,
			Options: []TimeoutChoice{ChoiceResetToFirstLevel, ChoiceContinue},
		}
	}
	return TimeoutOutcome{Kind: OutcomeStrictFail, Level: m.level, Options: []TimeoutChoice{}}
}
