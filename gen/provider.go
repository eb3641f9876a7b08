package gen

import (
	"context"
	"fmt"
	"strings"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/prompt"
	"github.com/randalmurphal/specflow/schema"
)

// Request describes one generation call.
type Request struct {
	ProjectID string
	Stage     specflow.Stage
	ScopeID   string

	// Problem is the validated core problem driving the generation.
	Problem *specflow.CoreProblem

	// Persona scopes pain point, solution, and user story generation.
	Persona *specflow.Persona

	// Existing holds the scope's locked items, given to the provider so it
	// does not duplicate them.
	Existing []specflow.Item

	// Count is how many new items to generate.
	Count int
}

// Provider produces a raw generation response for a stage. The response is
// expected to be JSON, either {"items": [...]} or a bare array; schema
// handles decoding and validation.
type Provider interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// ProblemValidator judges whether a problem statement is specific enough
// to drive the workflow.
type ProblemValidator interface {
	ValidateProblem(ctx context.Context, statement string) (*schema.ProblemValidation, error)
}

// LLMProvider generates batches through an LLM client using the stage
// prompt templates.
type LLMProvider struct {
	client  llm.Client
	prompts *prompt.Loader
}

// NewLLMProvider creates a provider over the given client and prompt
// loader.
func NewLLMProvider(client llm.Client, prompts *prompt.Loader) *LLMProvider {
	return &LLMProvider{client: client, prompts: prompts}
}

// Generate implements Provider.
func (p *LLMProvider) Generate(ctx context.Context, req Request) ([]byte, error) {
	name, ok := prompt.NameForStage(req.Stage)
	if !ok {
		return nil, &ProviderError{Stage: req.Stage, Err: fmt.Errorf("stage %q has no prompt", req.Stage)}
	}

	data := prompt.Data{Count: req.Count}
	if req.Problem != nil {
		data.Problem = req.Problem.Statement
		data.KeyTerms = req.Problem.KeyTerms
	}
	if req.Persona != nil {
		data.PersonaName = req.Persona.Name
		data.PersonaRole = req.Persona.Role
		data.PersonaDescription = req.Persona.Description
	}
	for _, item := range req.Existing {
		data.Existing = append(data.Existing, item.Label())
	}

	userPrompt, err := p.prompts.Render(name, data)
	if err != nil {
		return nil, &ProviderError{Stage: req.Stage, Err: err}
	}

	result, err := p.client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompt.SystemForStage(req.Stage),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		// Transport failures (timeouts, rate limits, dropped connections)
		// are worth another attempt.
		return nil, &ProviderError{Stage: req.Stage, Err: err, Transient: true}
	}

	raw, err := extractJSON(result.Content)
	if err != nil {
		return nil, &ProviderError{Stage: req.Stage, Err: err}
	}
	return raw, nil
}

// ValidateProblem implements ProblemValidator.
func (p *LLMProvider) ValidateProblem(ctx context.Context, statement string) (*schema.ProblemValidation, error) {
	userPrompt, err := p.prompts.Render(prompt.NameValidateProblem, prompt.Data{Problem: statement})
	if err != nil {
		return nil, err
	}
	result, err := p.client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompt.SystemForStage(specflow.StageProblemInput),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, &ProviderError{Stage: specflow.StageProblemInput, Err: err, Transient: true}
	}
	raw, err := extractJSON(result.Content)
	if err != nil {
		return nil, err
	}
	return schema.DecodeValidation(raw)
}

// extractJSON pulls the first JSON object or array out of a completion,
// tolerating surrounding prose and markdown fences.
func extractJSON(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON found in response")
	}
	open := content[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return []byte(content[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON in response")
}
