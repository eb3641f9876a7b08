package workflow

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/schema"
)

// =============================================================================
// State - Full Workflow State
// =============================================================================

// State is the complete state for a spec workflow run. It is a value type:
// nodes receive it, modify their copy, and return it.
type State struct {
	// Identification
	RunID       string `json:"runId"`
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName,omitempty"`

	// Input
	ProblemInput string `json:"problemInput,omitempty"`

	// Problem validation
	Problem    *specflow.CoreProblem     `json:"problem,omitempty"`
	Validation *schema.ProblemValidation `json:"validation,omitempty"`

	// Stage tracking
	Stage specflow.Stage `json:"stage"`

	// Generated items, filled in stage order
	Personas      []specflow.Item `json:"personas,omitempty"`
	ActivePersona *specflow.Item  `json:"activePersona,omitempty"`
	PainPoints    []specflow.Item `json:"painPoints,omitempty"`
	Solutions     []specflow.Item `json:"solutions,omitempty"`
	Stories       []specflow.Item `json:"stories,omitempty"`

	// Export artifacts
	SpecPath     string `json:"specPath,omitempty"`
	SpecJSONPath string `json:"specJsonPath,omitempty"`

	// Metrics
	StartTime     time.Time     `json:"startTime"`
	TotalDuration time.Duration `json:"totalDuration,omitempty"`

	// Error tracking
	Error string `json:"error,omitempty"`
}

// NewState creates a new workflow state for a project.
func NewState(projectID string) State {
	return State{
		RunID:     generateRunID(projectID),
		ProjectID: projectID,
		Stage:     specflow.StageProblemInput,
		StartTime: time.Now(),
	}
}

// WithRunID sets a custom run ID.
func (s State) WithRunID(runID string) State {
	s.RunID = runID
	return s
}

// WithProjectName sets a display name for the project.
func (s State) WithProjectName(name string) State {
	s.ProjectName = name
	return s
}

// WithProblemInput sets the raw problem statement to validate.
func (s State) WithProblemInput(statement string) State {
	s.ProblemInput = statement
	return s
}

// WithStage sets the current stage (for resuming a persisted run).
func (s State) WithStage(stage specflow.Stage) State {
	s.Stage = stage
	return s
}

// FinalizeDuration sets total duration from start time.
func (s *State) FinalizeDuration() {
	s.TotalDuration = time.Since(s.StartTime)
}

// SetError sets the error state.
func (s *State) SetError(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// HasError returns true if state has an error.
func (s State) HasError() bool {
	return s.Error != ""
}

// ActivePersonaPayload returns the active persona's payload, or nil.
func (s State) ActivePersonaPayload() *specflow.Persona {
	if s.ActivePersona == nil {
		return nil
	}
	return s.ActivePersona.Persona()
}

// progress assembles the stage-machine snapshot from the run's artifacts.
func (s State) progress() specflow.Progress {
	return specflow.Progress{
		ProblemValidated: s.Problem != nil && s.Problem.Validated,
		PersonaCount:     len(s.Personas),
		ActivePersona:    s.ActivePersona != nil,
		PainPointCount:   len(s.PainPoints),
		SolutionCount:    len(s.Solutions),
		UserStoryCount:   len(s.Stories),
	}
}

// =============================================================================
// State Validation
// =============================================================================

// Requirement defines a state prerequisite.
type Requirement string

const (
	RequireProblemInput     Requirement = "problem input"
	RequireValidatedProblem Requirement = "validated problem"
	RequirePersonas         Requirement = "personas"
	RequireActivePersona    Requirement = "active persona"
	RequirePainPoints       Requirement = "pain points"
	RequireSolutions        Requirement = "solutions"
)

// Validate checks if state has required fields.
func (s State) Validate(requirements ...Requirement) error {
	for _, req := range requirements {
		switch req {
		case RequireProblemInput:
			if s.ProblemInput == "" {
				return fmt.Errorf("problem input required")
			}
		case RequireValidatedProblem:
			if s.Problem == nil || !s.Problem.Validated {
				return fmt.Errorf("validated problem required")
			}
		case RequirePersonas:
			if len(s.Personas) == 0 {
				return fmt.Errorf("personas required")
			}
		case RequireActivePersona:
			if s.ActivePersona == nil {
				return fmt.Errorf("active persona required")
			}
		case RequirePainPoints:
			if len(s.PainPoints) == 0 {
				return fmt.Errorf("pain points required")
			}
		case RequireSolutions:
			if len(s.Solutions) == 0 {
				return fmt.Errorf("solutions required")
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// generateRunID creates a unique run ID
func generateRunID(projectID string) string {
	timestamp := time.Now().Format("2006-01-02")
	suffix := randomSuffix(4)
	return fmt.Sprintf("%s-%s-%s", timestamp, projectID, suffix)
}

// randomSuffix generates a random hex suffix
func randomSuffix(bytes int) string {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based suffix on entropy failure
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// =============================================================================
// State Summary
// =============================================================================

// Summary returns a human-readable summary of the state.
func (s State) Summary() string {
	var status string
	switch {
	case s.Error != "":
		status = "failed"
	case s.SpecPath != "":
		status = "completed"
	case len(s.Stories) > 0:
		status = "stories drafted"
	case len(s.Solutions) > 0:
		status = "solutions ideated"
	case len(s.PainPoints) > 0:
		status = "pain points analyzed"
	case len(s.Personas) > 0:
		status = "personas discovered"
	case s.Problem != nil && s.Problem.Validated:
		status = "problem validated"
	default:
		status = "pending"
	}

	return fmt.Sprintf("Run %s [%s]: stage %s (%d personas, %d pain points, %d solutions, %d stories)",
		s.RunID, status, s.Stage,
		len(s.Personas), len(s.PainPoints), len(s.Solutions), len(s.Stories))
}
