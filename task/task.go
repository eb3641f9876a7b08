package task

import (
	"github.com/randalmurphal/llmkit/model"

	"github.com/randalmurphal/specflow"
)

// Type classifies the work a model call performs, which determines the
// model tier.
type Type string

const (
	// ValidateProblem is a quick verdict; a small model is enough.
	ValidateProblem Type = "validate_problem"

	// Generation tasks use the default tier.
	GeneratePersonas   Type = "generate_personas"
	GeneratePainPoints Type = "generate_pain_points"
	GenerateSolutions  Type = "generate_solutions"
	GenerateStories    Type = "generate_stories"

	// SummarizeSpec composes the final export summary; worth reasoning.
	SummarizeSpec Type = "summarize_spec"
)

// DefaultModelMap maps task types to default models.
var DefaultModelMap = map[Type]model.ModelName{
	ValidateProblem:    model.ModelHaiku,
	GeneratePersonas:   model.ModelSonnet,
	GeneratePainPoints: model.ModelSonnet,
	GenerateSolutions:  model.ModelSonnet,
	GenerateStories:    model.ModelSonnet,
	SummarizeSpec:      model.ModelOpus,
}

// ForStage returns the generation task type for a workflow stage.
func ForStage(stage specflow.Stage) Type {
	switch stage {
	case specflow.StageProblemInput:
		return ValidateProblem
	case specflow.StagePersonaDiscovery:
		return GeneratePersonas
	case specflow.StagePainPointAnalysis:
		return GeneratePainPoints
	case specflow.StageSolutionIdeation:
		return GenerateSolutions
	case specflow.StageUserStoryCreation:
		return GenerateStories
	}
	return GeneratePersonas
}

// TierForTask returns the model tier for a task type.
func TierForTask(t Type) model.Tier {
	switch t {
	case ValidateProblem:
		return model.TierFast
	case SummarizeSpec:
		return model.TierThinking
	default:
		return model.TierDefault
	}
}

// NewSelector creates a model selector wired to the workflow's
// task-to-tier mapping.
func NewSelector(opts ...model.SelectorOption) *model.Selector {
	allOpts := append([]model.SelectorOption{
		model.WithTierFunc(func(task any) model.Tier {
			if t, ok := task.(Type); ok {
				return TierForTask(t)
			}
			return model.TierDefault
		}),
	}, opts...)
	return model.NewSelector(allOpts...)
}

// SelectModel returns the model for a task type.
func SelectModel(t Type) model.ModelName {
	if m, ok := DefaultModelMap[t]; ok {
		return m
	}
	switch TierForTask(t) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}
