package engine

import (
	"fmt"
	"testing"
)

func TestTilesForLevel(t *testing.T) {
	for n := MinLevel; n <= MaxLevel; n++ {
		t.Run(fmt.Sprintf("%dx%d", n, n), func(t *testing.T) {
			tiles := TilesForLevel(n)
			if len(tiles) != n*n {
				t.Fatalf("Expected %d tiles, got %d", n*n, len(tiles))
			}
			if tiles[len(tiles)-1] != Blank {
				t.Errorf("Expected blank last, got %q", tiles[len(tiles)-1])
			}

			seen := make(map[Tile]bool)
			for i, tile := range tiles[:len(tiles)-1] {
				want := Tile(fmt.Sprintf("%dx%d-%d", n, n, i+1))
				if tile != want {
					t.Errorf("Tile %d: expected %q, got %q", i, want, tile)
				}
				if seen[tile] {
					t.Errorf("Duplicate tile %q", tile)
				}
				seen[tile] = true
			}
		})
	}
}

func TestTilesForLevel_Invalid(t *testing.T) {
	if tiles := TilesForLevel(0); tiles != nil {
		t.Errorf("Expected nil for level 0, got %v", tiles)
	}
}

func TestClampLevel(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, MinLevel},
		{1, MinLevel},
		{2, 2},
		{4, 4},
		{5, 5},
		{9, MaxLevel},
	}
	for _, tt := range tests {
		if got := ClampLevel(tt.in); got != tt.want {
			t.Errorf("ClampLevel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevelTitle(t *testing.T) {
	if got := LevelTitle(3); got != "3x3 (Level 3)" {
		t.Errorf("Unexpected title %q", got)
	}
}

func TestLevelManager_Advance(t *testing.T) {
	m := NewLevelManager(DefaultRecoverableFromLevel)
	if m.Level() != MinLevel {
		t.Fatalf("Expected to start at level %d, got %d", MinLevel, m.Level())
	}

	for want := MinLevel + 1; want <= MaxLevel; want++ {
		if !m.Advance() {
			t.Fatalf("Advance to %d reported game complete", want)
		}
		if m.Level() != want {
			t.Fatalf("Expected level %d, got %d", want, m.Level())
		}
		if len(m.Canonical()) != want*want {
			t.Errorf("Canonical order not regenerated for level %d", want)
		}
	}

	if m.Advance() {
		t.Error("Expected Advance at the final level to return false")
	}
	if m.Level() != MaxLevel {
		t.Errorf("Level changed past the maximum: %d", m.Level())
	}
}

func TestLevelManager_ResetAndCycle(t *testing.T) {
	m := NewLevelManager(DefaultRecoverableFromLevel)
	m.Advance()
	m.Advance()
	m.ResetToFirstLevel()
	if m.Level() != MinLevel {
		t.Fatalf("Expected level %d after reset, got %d", MinLevel, m.Level())
	}

	var visited []int
	for i := 0; i < 5; i++ {
		m.Cycle()
		visited = append(visited, m.Level())
	}
	want := []int{3, 4, 5, 2, 3}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("Cycle order = %v, want %v", visited, want)
		}
	}
}

func TestLevelManager_OnWin(t *testing.T) {
	m := NewLevelManager(DefaultRecoverableFromLevel)
	outcome := m.OnWin()
	if outcome.Kind != OutcomeLevelComplete || outcome.NextLevel != 3 {
		t.Errorf("Unexpected outcome at level 2: %+v", outcome)
	}

	for m.Advance() {
	}
	if outcome := m.OnWin(); outcome.Kind != OutcomeGameComplete {
		t.Errorf("Expected game complete at level %d, got %+v", m.Level(), outcome)
	}
}

func TestLevelManager_OnTimeout(t *testing.T) {
	tests := []struct {
		name            string
		recoverableFrom int
		level           int
		wantKind        OutcomeKind
	}{
		{"level 2 strict", 3, 2, OutcomeStrictFail},
		{"level 3 recoverable", 3, 3, OutcomeRecoverable},
		{"level 5 recoverable", 3, 5, OutcomeRecoverable},
		{"recovery disabled", MaxLevel + 1, 5, OutcomeStrictFail},
		{"always recoverable", 2, 2, OutcomeRecoverable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLevelManager(tt.recoverableFrom)
			for m.Level() < tt.level {
				m.Advance()
			}
			outcome := m.OnTimeout()
			if outcome.Kind != tt.wantKind {
				t.Fatalf("Expected %s, got %s", tt.wantKind, outcome.Kind)
			}
			if outcome.Level != tt.level {
				t.Errorf("Expected level %d in outcome, got %d", tt.level, outcome.Level)
			}
			switch tt.wantKind {
			case OutcomeStrictFail:
				if len(outcome.Options) != 0 {
					t.Errorf("Strict fail should offer no options, got %v", outcome.Options)
				}
			case OutcomeRecoverable:
				if len(outcome.Options) != 2 ||
					outcome.Options[0] != ChoiceResetToFirstLevel ||
					outcome.Options[1] != ChoiceContinue {
					t.Errorf("Unexpected options %v", outcome.Options)
				}
			}
		})
	}
}
