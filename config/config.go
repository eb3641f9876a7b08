package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/randalmurphal/specflow"
)

// ErrInvalid indicates a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid configuration")

// TimeoutConfig bounds workflow execution time.
type TimeoutConfig struct {
	// Node bounds a single stage's generation, including retries.
	Node time.Duration
	// Workflow bounds an entire workflow run.
	Workflow time.Duration
}

// RetryConfig shapes the backoff policy for transient provider failures.
type RetryConfig struct {
	MaxAttempts       int
	BackoffMultiplier float64
	InitialDelay      time.Duration
}

// LimitConfig caps how many items each stage generates.
type LimitConfig struct {
	MaxPersonas         int
	MaxPainPoints       int
	MaxSolutions        int
	MaxUserStories      int
	MaxKeyFeatures      int
	MaxMustHaveFeatures int
}

// Config is the typed workflow configuration.
type Config struct {
	Timeouts TimeoutConfig
	Retries  RetryConfig
	Limits   LimitConfig

	// DBPath is the SQLite database file.
	DBPath string
	// ArtifactDir is where stage snapshots and exports are written.
	ArtifactDir string
	// WebhookURL, when set, receives workflow event notifications.
	WebhookURL string
	// SlackWebhookURL, when set, receives workflow event notifications
	// formatted for Slack.
	SlackWebhookURL string
	// ShareSecret signs read-only project share tokens.
	ShareSecret string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timeouts: TimeoutConfig{
			Node:     2 * time.Minute,
			Workflow: 10 * time.Minute,
		},
		Retries: RetryConfig{
			MaxAttempts:       3,
			BackoffMultiplier: 2,
			InitialDelay:      time.Second,
		},
		Limits: LimitConfig{
			MaxPersonas:         5,
			MaxPainPoints:       10,
			MaxSolutions:        8,
			MaxUserStories:      6,
			MaxKeyFeatures:      15,
			MaxMustHaveFeatures: 3,
		},
		DBPath:      "specflow.db",
		ArtifactDir: ".specflow/artifacts",
	}
}

// defaults maps resolver keys to the built-in values.
func defaults() map[string]string {
	d := Default()
	return map[string]string{
		"node_timeout_ms":        strconv.Itoa(int(d.Timeouts.Node / time.Millisecond)),
		"workflow_timeout_ms":    strconv.Itoa(int(d.Timeouts.Workflow / time.Millisecond)),
		"max_attempts":           strconv.Itoa(d.Retries.MaxAttempts),
		"backoff_multiplier":     strconv.FormatFloat(d.Retries.BackoffMultiplier, 'f', -1, 64),
		"initial_delay_ms":       strconv.Itoa(int(d.Retries.InitialDelay / time.Millisecond)),
		"max_personas":           strconv.Itoa(d.Limits.MaxPersonas),
		"max_pain_points":        strconv.Itoa(d.Limits.MaxPainPoints),
		"max_solutions":          strconv.Itoa(d.Limits.MaxSolutions),
		"max_user_stories":       strconv.Itoa(d.Limits.MaxUserStories),
		"max_key_features":       strconv.Itoa(d.Limits.MaxKeyFeatures),
		"max_must_have_features": strconv.Itoa(d.Limits.MaxMustHaveFeatures),
		"db_path":                d.DBPath,
		"artifact_dir":           d.ArtifactDir,
		"webhook_url":            "",
		"slack_webhook_url":      "",
		"share_secret":           "",
	}
}

// Load resolves the configuration layers into a validated Config.
func Load() (Config, error) {
	return FromResolver(NewResolver(defaults()))
}

// FromResolver builds a Config from an explicit resolver, mainly for tests.
func FromResolver(r *Resolver) (Config, error) {
	res := r.Resolve()
	cfg := Config{
		Timeouts: TimeoutConfig{
			Node:     msValue(res, "node_timeout_ms"),
			Workflow: msValue(res, "workflow_timeout_ms"),
		},
		Retries: RetryConfig{
			MaxAttempts:       intValue(res, "max_attempts"),
			BackoffMultiplier: floatValue(res, "backoff_multiplier"),
			InitialDelay:      msValue(res, "initial_delay_ms"),
		},
		Limits: LimitConfig{
			MaxPersonas:         intValue(res, "max_personas"),
			MaxPainPoints:       intValue(res, "max_pain_points"),
			MaxSolutions:        intValue(res, "max_solutions"),
			MaxUserStories:      intValue(res, "max_user_stories"),
			MaxKeyFeatures:      intValue(res, "max_key_features"),
			MaxMustHaveFeatures: intValue(res, "max_must_have_features"),
		},
		DBPath:          res.Get("db_path"),
		ArtifactDir:     res.Get("artifact_dir"),
		WebhookURL:      res.Get("webhook_url"),
		SlackWebhookURL: res.Get("slack_webhook_url"),
		ShareSecret:     res.Get("share_secret"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LimitFor returns the item cap for a generation stage, or 0 for stages
// that generate no items.
func (c Config) LimitFor(stage specflow.Stage) int {
	switch stage {
	case specflow.StagePersonaDiscovery:
		return c.Limits.MaxPersonas
	case specflow.StagePainPointAnalysis:
		return c.Limits.MaxPainPoints
	case specflow.StageSolutionIdeation:
		return c.Limits.MaxSolutions
	case specflow.StageUserStoryCreation:
		return c.Limits.MaxUserStories
	}
	return 0
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Timeouts.Node <= 0 {
		return fmt.Errorf("%w: node timeout must be positive, got %v", ErrInvalid, c.Timeouts.Node)
	}
	if c.Timeouts.Workflow <= 0 {
		return fmt.Errorf("%w: workflow timeout must be positive, got %v", ErrInvalid, c.Timeouts.Workflow)
	}
	if c.Timeouts.Workflow < c.Timeouts.Node {
		return fmt.Errorf("%w: workflow timeout %v shorter than node timeout %v", ErrInvalid, c.Timeouts.Workflow, c.Timeouts.Node)
	}
	if c.Retries.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalid, c.Retries.MaxAttempts)
	}
	if c.Retries.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: backoff multiplier must be at least 1, got %v", ErrInvalid, c.Retries.BackoffMultiplier)
	}
	if c.Retries.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative, got %v", ErrInvalid, c.Retries.InitialDelay)
	}
	for _, lim := range []struct {
		name string
		v    int
	}{
		{"max_personas", c.Limits.MaxPersonas},
		{"max_pain_points", c.Limits.MaxPainPoints},
		{"max_solutions", c.Limits.MaxSolutions},
		{"max_user_stories", c.Limits.MaxUserStories},
		{"max_key_features", c.Limits.MaxKeyFeatures},
		{"max_must_have_features", c.Limits.MaxMustHaveFeatures},
	} {
		if lim.v < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalid, lim.name, lim.v)
		}
	}
	return nil
}

func intValue(res *Resolved, key string) int {
	n, _ := strconv.Atoi(res.Get(key))
	return n
}

func floatValue(res *Resolved, key string) float64 {
	f, _ := strconv.ParseFloat(res.Get(key), 64)
	return f
}

func msValue(res *Resolved, key string) time.Duration {
	return time.Duration(intValue(res, key)) * time.Millisecond
}
