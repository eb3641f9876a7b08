package specflow

// Stage identifies one step of the product-spec workflow. Stages advance
// strictly forward; see Machine.
type Stage string

// Workflow stages, in order.
const (
	StageProblemInput      Stage = "problem_input"
	StagePersonaDiscovery  Stage = "persona_discovery"
	StagePainPointAnalysis Stage = "pain_point_analysis"
	StageSolutionIdeation  Stage = "solution_ideation"
	StageUserStoryCreation Stage = "user_story_creation"
)

// stageOrder is the canonical forward order of the workflow.
var stageOrder = []Stage{
	StageProblemInput,
	StagePersonaDiscovery,
	StagePainPointAnalysis,
	StageSolutionIdeation,
	StageUserStoryCreation,
}

// Stages returns all workflow stages in order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Valid reports whether s is a known workflow stage.
func (s Stage) Valid() bool {
	return s.index() >= 0
}

// Next returns the stage after s. ok is false when s is terminal or unknown.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.index()
	if i < 0 || i == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[i+1], true
}

// Terminal reports whether s is the final workflow stage.
func (s Stage) Terminal() bool {
	return s == stageOrder[len(stageOrder)-1]
}

// ItemKind returns the kind of item generated at stage s. ok is false for
// stages that produce no generation items (problem input).
func (s Stage) ItemKind() (Kind, bool) {
	switch s {
	case StagePersonaDiscovery:
		return KindPersona, true
	case StagePainPointAnalysis:
		return KindPainPoint, true
	case StageSolutionIdeation:
		return KindSolution, true
	case StageUserStoryCreation:
		return KindUserStory, true
	}
	return "", false
}

func (s Stage) index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}
