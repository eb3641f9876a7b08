package context

import (
	"context"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/specflow/artifact"
	"github.com/randalmurphal/specflow/config"
	"github.com/randalmurphal/specflow/event"
	"github.com/randalmurphal/specflow/gen"
	"github.com/randalmurphal/specflow/lock"
	"github.com/randalmurphal/specflow/prompt"
	"github.com/randalmurphal/specflow/store"
	"github.com/randalmurphal/specflow/task"
)

// Services bundles everything a workflow run needs.
type Services struct {
	Store        store.Gateway
	Locks        *lock.Registry
	Orchestrator *gen.Orchestrator
	Validator    gen.ProblemValidator
	LLM          llm.Client
	Prompts      *prompt.Loader
	Artifacts    *artifact.Manager
	Notifier     event.Notifier
	Workflow     config.Config
}

// InjectAll adds all configured services to the context.
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Store != nil {
		ctx = WithStore(ctx, s.Store)
	}
	if s.Locks != nil {
		ctx = WithLocks(ctx, s.Locks)
	}
	if s.Orchestrator != nil {
		ctx = WithOrchestrator(ctx, s.Orchestrator)
	}
	if s.Validator != nil {
		ctx = WithValidator(ctx, s.Validator)
	}
	if s.LLM != nil {
		ctx = WithLLM(ctx, s.LLM)
	}
	if s.Prompts != nil {
		ctx = WithPrompts(ctx, s.Prompts)
	}
	if s.Artifacts != nil {
		ctx = WithArtifacts(ctx, s.Artifacts)
	}
	if s.Notifier != nil {
		ctx = event.WithNotifier(ctx, s.Notifier)
	}
	ctx = WithConfig(ctx, s.Workflow)
	return ctx
}

// Close releases the bundle's underlying resources.
func (s *Services) Close() error {
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}

// Config configures NewServices.
type Config struct {
	// Workflow is the typed workflow configuration.
	Workflow config.Config

	// ProjectDir anchors prompt overrides and the LLM working directory.
	// Defaults to the current directory.
	ProjectDir string

	// LLMModel overrides the model chosen by the task mapping.
	LLMModel string

	// Store overrides the SQLite gateway, mainly for tests.
	Store store.Gateway

	// Provider overrides the LLM-backed provider, mainly for tests. When
	// set and it implements gen.ProblemValidator, it becomes the
	// validator too.
	Provider gen.Provider
}

// NewServices creates a Services bundle with production defaults: a SQLite
// gateway at the configured path, the Claude CLI client on the generation
// model tier, embedded prompts with project overrides, and notifiers for
// any configured webhooks.
func NewServices(cfg Config) (*Services, error) {
	projectDir := cfg.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	s := &Services{Workflow: cfg.Workflow}

	gateway := cfg.Store
	if gateway == nil {
		var err error
		gateway, err = store.Open(cfg.Workflow.DBPath)
		if err != nil {
			return nil, err
		}
	}
	s.Store = gateway
	s.Locks = lock.NewRegistry(gateway)

	s.Prompts = prompt.NewLoader(projectDir)
	s.Artifacts = artifact.NewManager(cfg.Workflow.ArtifactDir)

	provider := cfg.Provider
	if provider == nil {
		model := cfg.LLMModel
		if model == "" {
			model = string(task.SelectModel(task.GeneratePersonas))
		}
		s.LLM = llm.NewClaudeCLI(
			llm.WithModel(model),
			llm.WithWorkdir(projectDir),
			llm.WithDangerouslySkipPermissions(), // Non-interactive mode for automation
		)
		provider = gen.NewLLMProvider(s.LLM, s.Prompts)
	}
	if v, ok := provider.(gen.ProblemValidator); ok {
		s.Validator = v
	}

	orch, err := gen.New(gen.Options{
		Store:    gateway,
		Provider: provider,
		Config:   cfg.Workflow,
	})
	if err != nil {
		return nil, err
	}
	s.Orchestrator = orch

	var notifiers []event.Notifier
	if cfg.Workflow.WebhookURL != "" {
		notifiers = append(notifiers, event.NewWebhookNotifier(cfg.Workflow.WebhookURL, nil))
	}
	if cfg.Workflow.SlackWebhookURL != "" {
		notifiers = append(notifiers, event.NewSlackNotifier(cfg.Workflow.SlackWebhookURL))
	}
	switch len(notifiers) {
	case 0:
		s.Notifier = event.NewLogNotifier(nil)
	case 1:
		s.Notifier = notifiers[0]
	default:
		s.Notifier = event.NewMultiNotifier(notifiers...)
	}

	return s, nil
}
