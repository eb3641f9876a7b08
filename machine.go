package specflow

// =============================================================================
// Workflow Progress
// =============================================================================

// Progress is an explicit snapshot of a project's workflow artifacts, passed
// into the state machine instead of letting it read shared mutable state.
// Callers assemble it from the persistence gateway or an in-memory State.
type Progress struct {
	ProblemValidated bool // A validated CoreProblem version exists
	PersonaCount     int  // Personas persisted for the current problem
	ActivePersona    bool // Exactly one persona is marked active
	PainPointCount   int  // Pain points persisted for the active persona
	SolutionCount    int  // Solutions persisted for the active persona
	UserStoryCount   int  // User stories persisted for the project
}

// =============================================================================
// Machine
// =============================================================================

// Machine sequences workflow stages. Transitions are strictly forward; no
// stage may be skipped, and each advance requires the current stage's
// artifact to exist. Manual navigation to an earlier stage is a read-only
// concern for callers and never mutates the machine.
type Machine struct {
	current Stage
}

// NewMachine creates a machine at the initial stage (problem input).
func NewMachine() *Machine {
	return &Machine{current: StageProblemInput}
}

// Restore creates a machine at a previously persisted stage.
// Returns ErrUnknownStage for a stage outside the workflow's stage set.
func Restore(s Stage) (*Machine, error) {
	if !s.Valid() {
		return nil, ErrUnknownStage
	}
	return &Machine{current: s}, nil
}

// Current returns the machine's current stage.
func (m *Machine) Current() Stage {
	return m.current
}

// Peek returns the stage an Advance would move to, without moving.
// ok is false at the terminal stage.
func (m *Machine) Peek() (Stage, bool) {
	return m.current.Next()
}

// CanAdvance reports whether Advance would succeed given the progress p.
func (m *Machine) CanAdvance(p Progress) bool {
	if m.current.Terminal() {
		return false
	}
	return m.precondition(p) == nil
}

// Advance moves the machine to the next stage. It fails with a
// *PreconditionError when the current stage's required artifact is missing,
// and with ErrWorkflowComplete at the terminal stage.
func (m *Machine) Advance(p Progress) (Stage, error) {
	next, ok := m.current.Next()
	if !ok {
		return m.current, ErrWorkflowComplete
	}
	if err := m.precondition(p); err != nil {
		return m.current, err
	}
	m.current = next
	return next, nil
}

// precondition returns the blocking *PreconditionError for leaving the
// current stage, or nil when the required artifact exists.
func (m *Machine) precondition(p Progress) error {
	switch m.current {
	case StageProblemInput:
		if !p.ProblemValidated {
			return &PreconditionError{Stage: m.current, Missing: "validated core problem"}
		}
	case StagePersonaDiscovery:
		if p.PersonaCount == 0 {
			return &PreconditionError{Stage: m.current, Missing: "generated personas"}
		}
		if !p.ActivePersona {
			return &PreconditionError{Stage: m.current, Missing: "active persona"}
		}
	case StagePainPointAnalysis:
		if p.PainPointCount == 0 {
			return &PreconditionError{Stage: m.current, Missing: "generated pain points"}
		}
	case StageSolutionIdeation:
		if p.SolutionCount == 0 {
			return &PreconditionError{Stage: m.current, Missing: "generated solutions"}
		}
	}
	return nil
}
