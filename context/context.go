package context

import (
	"context"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/specflow/artifact"
	"github.com/randalmurphal/specflow/config"
	"github.com/randalmurphal/specflow/gen"
	"github.com/randalmurphal/specflow/lock"
	"github.com/randalmurphal/specflow/prompt"
	"github.com/randalmurphal/specflow/store"
)

// serviceContextKey is a private type for context keys to avoid collisions.
type serviceContextKey string

const (
	storeServiceKey        serviceContextKey = "specflow.store"
	locksServiceKey        serviceContextKey = "specflow.locks"
	orchestratorServiceKey serviceContextKey = "specflow.orchestrator"
	validatorServiceKey    serviceContextKey = "specflow.validator"
	llmServiceKey          serviceContextKey = "specflow.llm"
	promptServiceKey       serviceContextKey = "specflow.prompts"
	artifactServiceKey     serviceContextKey = "specflow.artifacts"
	configServiceKey       serviceContextKey = "specflow.config"
)

// WithStore adds the persistence gateway to the context.
func WithStore(ctx context.Context, g store.Gateway) context.Context {
	return context.WithValue(ctx, storeServiceKey, g)
}

// Store extracts the persistence gateway, or nil.
func Store(ctx context.Context) store.Gateway {
	if g, ok := ctx.Value(storeServiceKey).(store.Gateway); ok {
		return g
	}
	return nil
}

// MustStore extracts the persistence gateway or panics.
func MustStore(ctx context.Context) store.Gateway {
	g := Store(ctx)
	if g == nil {
		panic("specflow/context: store.Gateway not found in context")
	}
	return g
}

// WithLocks adds the lock registry to the context.
func WithLocks(ctx context.Context, r *lock.Registry) context.Context {
	return context.WithValue(ctx, locksServiceKey, r)
}

// Locks extracts the lock registry, or nil.
func Locks(ctx context.Context) *lock.Registry {
	if r, ok := ctx.Value(locksServiceKey).(*lock.Registry); ok {
		return r
	}
	return nil
}

// WithOrchestrator adds the generation orchestrator to the context.
func WithOrchestrator(ctx context.Context, o *gen.Orchestrator) context.Context {
	return context.WithValue(ctx, orchestratorServiceKey, o)
}

// Orchestrator extracts the generation orchestrator, or nil.
func Orchestrator(ctx context.Context) *gen.Orchestrator {
	if o, ok := ctx.Value(orchestratorServiceKey).(*gen.Orchestrator); ok {
		return o
	}
	return nil
}

// MustOrchestrator extracts the orchestrator or panics.
func MustOrchestrator(ctx context.Context) *gen.Orchestrator {
	o := Orchestrator(ctx)
	if o == nil {
		panic("specflow/context: gen.Orchestrator not found in context")
	}
	return o
}

// WithValidator adds the problem validator to the context.
func WithValidator(ctx context.Context, v gen.ProblemValidator) context.Context {
	return context.WithValue(ctx, validatorServiceKey, v)
}

// Validator extracts the problem validator, or nil.
func Validator(ctx context.Context) gen.ProblemValidator {
	if v, ok := ctx.Value(validatorServiceKey).(gen.ProblemValidator); ok {
		return v
	}
	return nil
}

// WithLLM adds an LLM client to the context.
func WithLLM(ctx context.Context, client llm.Client) context.Context {
	return context.WithValue(ctx, llmServiceKey, client)
}

// LLM extracts the LLM client, or nil.
func LLM(ctx context.Context) llm.Client {
	if c, ok := ctx.Value(llmServiceKey).(llm.Client); ok {
		return c
	}
	return nil
}

// WithPrompts adds the prompt loader to the context.
func WithPrompts(ctx context.Context, l *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, l)
}

// Prompts extracts the prompt loader, or nil.
func Prompts(ctx context.Context) *prompt.Loader {
	if l, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return l
	}
	return nil
}

// WithArtifacts adds the artifact manager to the context.
func WithArtifacts(ctx context.Context, m *artifact.Manager) context.Context {
	return context.WithValue(ctx, artifactServiceKey, m)
}

// Artifacts extracts the artifact manager, or nil.
func Artifacts(ctx context.Context) *artifact.Manager {
	if m, ok := ctx.Value(artifactServiceKey).(*artifact.Manager); ok {
		return m
	}
	return nil
}

// WithConfig adds the workflow configuration to the context.
func WithConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configServiceKey, cfg)
}

// Configuration extracts the workflow configuration. ok is false when none
// was injected.
func Configuration(ctx context.Context) (config.Config, bool) {
	cfg, ok := ctx.Value(configServiceKey).(config.Config)
	return cfg, ok
}
