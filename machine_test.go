package specflow

import (
	"errors"
	"testing"
)

func TestNewMachine(t *testing.T) {
	m := NewMachine()
	if m.Current() != StageProblemInput {
		t.Errorf("Current() = %q, want %q", m.Current(), StageProblemInput)
	}
}

func TestRestore(t *testing.T) {
	m, err := Restore(StageSolutionIdeation)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if m.Current() != StageSolutionIdeation {
		t.Errorf("Current() = %q, want %q", m.Current(), StageSolutionIdeation)
	}

	if _, err := Restore(Stage("nope")); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("Restore(unknown) error = %v, want ErrUnknownStage", err)
	}
}

func TestMachineAdvance(t *testing.T) {
	full := Progress{
		ProblemValidated: true,
		PersonaCount:     3,
		ActivePersona:    true,
		PainPointCount:   5,
		SolutionCount:    4,
		UserStoryCount:   6,
	}

	m := NewMachine()
	for _, want := range Stages()[1:] {
		got, err := m.Advance(full)
		if err != nil {
			t.Fatalf("Advance() from %q error = %v", m.Current(), err)
		}
		if got != want {
			t.Fatalf("Advance() = %q, want %q", got, want)
		}
	}

	if _, err := m.Advance(full); !errors.Is(err, ErrWorkflowComplete) {
		t.Errorf("Advance() at terminal error = %v, want ErrWorkflowComplete", err)
	}
}

func TestMachineAdvancePreconditions(t *testing.T) {
	tests := []struct {
		name     string
		at       Stage
		progress Progress
		missing  string
	}{
		{
			name:    "problem not validated",
			at:      StageProblemInput,
			missing: "validated core problem",
		},
		{
			name:     "no personas",
			at:       StagePersonaDiscovery,
			progress: Progress{ProblemValidated: true},
			missing:  "generated personas",
		},
		{
			name:     "personas but none active",
			at:       StagePersonaDiscovery,
			progress: Progress{ProblemValidated: true, PersonaCount: 5},
			missing:  "active persona",
		},
		{
			name:     "no pain points",
			at:       StagePainPointAnalysis,
			progress: Progress{ProblemValidated: true, PersonaCount: 5, ActivePersona: true},
			missing:  "generated pain points",
		},
		{
			name: "no solutions",
			at:   StageSolutionIdeation,
			progress: Progress{
				ProblemValidated: true, PersonaCount: 5, ActivePersona: true,
				PainPointCount: 3,
			},
			missing: "generated solutions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Restore(tt.at)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if m.CanAdvance(tt.progress) {
				t.Error("CanAdvance() = true, want false")
			}
			_, err = m.Advance(tt.progress)
			var pe *PreconditionError
			if !errors.As(err, &pe) {
				t.Fatalf("Advance() error = %v, want *PreconditionError", err)
			}
			if pe.Stage != tt.at {
				t.Errorf("PreconditionError.Stage = %q, want %q", pe.Stage, tt.at)
			}
			if pe.Missing != tt.missing {
				t.Errorf("PreconditionError.Missing = %q, want %q", pe.Missing, tt.missing)
			}
			if m.Current() != tt.at {
				t.Errorf("failed Advance() moved machine to %q", m.Current())
			}
		})
	}
}

func TestMachinePeek(t *testing.T) {
	m := NewMachine()
	next, ok := m.Peek()
	if !ok || next != StagePersonaDiscovery {
		t.Errorf("Peek() = (%q, %v), want (%q, true)", next, ok, StagePersonaDiscovery)
	}
	if m.Current() != StageProblemInput {
		t.Error("Peek() should not move the machine")
	}

	m, _ = Restore(StageUserStoryCreation)
	if _, ok := m.Peek(); ok {
		t.Error("Peek() at terminal stage ok = true, want false")
	}
}
