package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/config"
	"github.com/randalmurphal/specflow/event"
	"github.com/randalmurphal/specflow/retry"
	"github.com/randalmurphal/specflow/schema"
	"github.com/randalmurphal/specflow/store"
)

// Options configures an Orchestrator.
type Options struct {
	Store    store.Gateway
	Provider Provider
	Config   config.Config

	// Policy overrides the backoff policy derived from Config.Retries.
	Policy retry.Policy

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs the generation cycle for workflow stages.
type Orchestrator struct {
	store    store.Gateway
	provider Provider
	cfg      config.Config
	policy   retry.Policy
	logger   *slog.Logger
	running  *inflight
}

// New creates an orchestrator. Store and Provider are required.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("gen: store required")
	}
	if opts.Provider == nil {
		return nil, ErrNoProvider
	}
	policy := opts.Policy
	if policy == nil {
		policy = retry.NewExponentialBackoff(
			opts.Config.Retries.InitialDelay,
			opts.Config.Timeouts.Node,
			opts.Config.Retries.BackoffMultiplier,
			opts.Config.Retries.MaxAttempts,
		)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    opts.Store,
		provider: opts.Provider,
		cfg:      opts.Config,
		policy:   policy,
		logger:   logger,
		running:  newInflight(),
	}, nil
}

// Result reports a completed generation.
type Result struct {
	// Items is the scope's full contents after the generation, ordered by
	// position: locked survivors plus the fresh batch.
	Items []specflow.Item

	// BatchID identifies the fresh batch, empty when nothing was generated.
	BatchID string

	Requested int
	Generated int

	// Warning is set for degraded outcomes that did not fail the
	// generation, such as a partial batch or a fully locked scope.
	Warning string
}

// Generate runs one generation cycle for a scope and stage.
//
// Only one generation may run per scope/stage pair at a time; a second
// concurrent call fails with specflow.ErrAlreadyGenerating. The provider is
// retried per the backoff policy within the node timeout, the batch is
// validated as a whole, and the scope is replaced atomically. Locked items
// are untouched throughout; a lock taken after the scope was read still
// survives the replacement, which instead fails on a position collision
// with the freshly locked row.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	kind, ok := req.Stage.ItemKind()
	if !ok {
		return nil, fmt.Errorf("gen: stage %q generates no items", req.Stage)
	}
	if err := o.validate(req); err != nil {
		return nil, err
	}

	if !o.running.tryAcquire(req.ScopeID, req.Stage) {
		return nil, specflow.ErrAlreadyGenerating
	}
	defer o.running.release(req.ScopeID, req.Stage)

	existing, err := o.store.ItemsByScope(ctx, req.ScopeID, req.Stage)
	if err != nil {
		return nil, err
	}
	var locked []specflow.Item
	for _, item := range existing {
		if item.Locked {
			locked = append(locked, item)
		}
	}

	limit := o.cfg.LimitFor(req.Stage)
	needed := limit - len(locked)
	if req.Count > 0 && req.Count < needed {
		needed = req.Count
	}
	if needed <= 0 {
		// Every position is locked; nothing to generate.
		return &Result{Items: locked, Warning: "all positions locked"}, nil
	}

	nodeCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeouts.Node)
	defer cancel()

	providerReq := req
	providerReq.Existing = locked
	providerReq.Count = needed

	var payloads []specflow.Payload
	genErr := retry.Do(nodeCtx, o.policy, func(ctx context.Context) error {
		raw, err := o.provider.Generate(ctx, providerReq)
		if err != nil {
			return err
		}
		payloads, err = schema.DecodeBatch(req.Stage, raw)
		return err
	})
	if genErr != nil {
		return nil, o.fail(ctx, req, genErr)
	}

	result := &Result{
		BatchID:   uuid.NewString(),
		Requested: needed,
		Generated: len(payloads),
	}
	if len(payloads) < needed {
		result.Warning = fmt.Sprintf("partial batch: got %d of %d", len(payloads), needed)
	}

	now := time.Now().UTC()
	items := make([]specflow.Item, 0, len(locked)+len(payloads))
	items = append(items, locked...)
	var inserts []specflow.Item
	for _, p := range Merge(locked, payloads, limit) {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("gen: item id: %w", err)
		}
		item := specflow.Item{
			ID:        id,
			ProjectID: req.ProjectID,
			ScopeID:   req.ScopeID,
			Stage:     req.Stage,
			Position:  p.Position,
			BatchID:   result.BatchID,
			Payload:   p.Payload,
			CreatedAt: now,
		}
		inserts = append(inserts, item)
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	keepIDs := make([]string, len(locked))
	for i, item := range locked {
		keepIDs[i] = item.ID
	}

	// Personas keep exactly one active item. A locked active persona stays
	// active; otherwise the first item in the merged order takes over.
	activateID := ""
	if kind == specflow.KindPersona && len(items) > 0 {
		activateID = items[0].ID
		for _, item := range locked {
			if item.Active {
				activateID = item.ID
				break
			}
		}
	}

	err = o.store.ReplaceScope(ctx, store.ReplaceScopeParams{
		ScopeID:    req.ScopeID,
		Stage:      req.Stage,
		KeepIDs:    keepIDs,
		Insert:     inserts,
		ActivateID: activateID,
	})
	if err != nil {
		return nil, o.fail(ctx, req, err)
	}

	for i := range items {
		items[i].Active = activateID != "" && items[i].ID == activateID
	}
	result.Items = items

	// The partial warning fires only once the batch is committed, so a
	// failed write never pairs it with a failure event.
	if result.Warning != "" {
		o.logger.Warn("partial generation",
			"stage", req.Stage, "scope_id", req.ScopeID,
			"requested", result.Requested, "generated", result.Generated)
		event.Emit(ctx, event.Event{
			Type:      event.TypePartialGeneration,
			ProjectID: req.ProjectID,
			Stage:     req.Stage,
			Message:   result.Warning,
			Severity:  event.SeverityWarning,
			Metadata:  map[string]any{"requested": result.Requested, "generated": result.Generated},
		})
	}

	o.logger.Info("stage generated",
		"stage", req.Stage, "scope_id", req.ScopeID,
		"batch_id", result.BatchID, "generated", result.Generated, "kept", len(locked))
	event.Emit(ctx, event.Event{
		Type:      event.TypeStageGenerated,
		ProjectID: req.ProjectID,
		Stage:     req.Stage,
		Message:   fmt.Sprintf("generated %d items, kept %d locked", result.Generated, len(locked)),
		Metadata:  map[string]any{"batch_id": result.BatchID},
	})
	return result, nil
}

// GenerateForScopes runs Generate for several scopes concurrently, one
// goroutine per request. The first error cancels the rest.
func (o *Orchestrator) GenerateForScopes(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.Generate(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) validate(req Request) error {
	if req.ProjectID == "" {
		return ErrMissingProject
	}
	if req.ScopeID == "" {
		return ErrMissingScope
	}
	if req.Problem == nil || !req.Problem.Validated {
		return ErrMissingProblem
	}
	if req.Stage != specflow.StagePersonaDiscovery && req.Persona == nil {
		return ErrMissingPersona
	}
	return nil
}

// fail wraps a generation error, logs it, and emits the failure event.
func (o *Orchestrator) fail(ctx context.Context, req Request, cause error) error {
	var wrapped error
	if errors.Is(cause, context.DeadlineExceeded) {
		wrapped = fmt.Errorf("%w: stage %s", specflow.ErrGenerationTimeout, req.Stage)
	} else {
		wrapped = fmt.Errorf("%w: %w", specflow.ErrGenerationFailed, cause)
	}
	o.logger.Error("generation failed",
		"stage", req.Stage, "scope_id", req.ScopeID, "error", cause)
	event.Emit(ctx, event.Event{
		Type:      event.TypeGenerationFailed,
		ProjectID: req.ProjectID,
		Stage:     req.Stage,
		Message:   wrapped.Error(),
		Severity:  event.SeverityError,
	})
	return wrapped
}
