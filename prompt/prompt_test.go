package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/specflow"
)

func TestNameForStage(t *testing.T) {
	tests := []struct {
		stage  specflow.Stage
		want   string
		wantOK bool
	}{
		{specflow.StageProblemInput, "", false},
		{specflow.StagePersonaDiscovery, NameGeneratePersonas, true},
		{specflow.StagePainPointAnalysis, NameGeneratePainPoints, true},
		{specflow.StageSolutionIdeation, NameGenerateSolutions, true},
		{specflow.StageUserStoryCreation, NameGenerateStories, true},
	}
	for _, tt := range tests {
		got, ok := NameForStage(tt.stage)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NameForStage(%q) = (%q, %v), want (%q, %v)", tt.stage, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEmbeddedPromptsExist(t *testing.T) {
	l := NewLoader(t.TempDir())
	for _, name := range []string{
		NameValidateProblem,
		NameGeneratePersonas,
		NameGeneratePainPoints,
		NameGenerateSolutions,
		NameGenerateStories,
	} {
		if !l.Exists(name) {
			t.Errorf("embedded prompt %q missing", name)
		}
	}
	if l.Exists("no-such-prompt") {
		t.Error("Exists() = true for unknown prompt")
	}
}

func TestRenderPersonaPrompt(t *testing.T) {
	l := NewLoader(t.TempDir())
	out, err := l.Render(NameGeneratePersonas, Data{
		Problem:  "Remote teams lose context between standups",
		KeyTerms: []string{"context", "standup"},
		Count:    3,
		Existing: []string{"Dana Reyes", "Sam Okafor"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"Remote teams lose context",
		"context, standup",
		"exactly 3",
		"- Dana Reyes",
		"- Sam Okafor",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

func TestRenderPainPointPromptWithPersona(t *testing.T) {
	l := NewLoader(t.TempDir())
	out, err := l.Render(NameGeneratePainPoints, Data{
		Problem:            "Remote teams lose context between standups",
		PersonaName:        "Dana Reyes",
		PersonaRole:        "Engineering Manager",
		PersonaDescription: "Runs three distributed teams.",
		Count:              5,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Dana Reyes, Engineering Manager") {
		t.Errorf("persona header missing:\n%s", out)
	}
	if strings.Contains(out, "already exist") {
		t.Error("existing section rendered with no existing items")
	}
}

func TestProjectOverrideWins(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, ".specflow", "prompts")
	os.MkdirAll(override, 0o755)
	os.WriteFile(filepath.Join(override, NameGeneratePersonas+".txt"),
		[]byte("custom persona prompt for {{.Problem}}"), 0o644)

	l := NewLoader(dir)
	out, err := l.Render(NameGeneratePersonas, Data{Problem: "X"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "custom persona prompt for X" {
		t.Errorf("override not used: %q", out)
	}
}

// TestRenderConcurrent renders every stage prompt from several goroutines
// through one shared loader, the way concurrent generations do. Run with the
// race detector to check the template cache.
func TestRenderConcurrent(t *testing.T) {
	l := NewLoader(t.TempDir())
	names := []string{
		NameValidateProblem,
		NameGeneratePersonas,
		NameGeneratePainPoints,
		NameGenerateSolutions,
		NameGenerateStories,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range names {
				out, err := l.Render(name, Data{
					Problem: "Remote teams lose context between standups",
					Count:   3,
				})
				if err != nil {
					t.Errorf("Render(%s) error = %v", name, err)
					return
				}
				if out == "" {
					t.Errorf("Render(%s) returned an empty prompt", name)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRenderUnknownPrompt(t *testing.T) {
	l := NewLoader(t.TempDir())
	if _, err := l.Render("missing", Data{}); err == nil {
		t.Error("Render(missing) error = nil")
	}
}

func TestSystemForStage(t *testing.T) {
	for _, stage := range specflow.Stages() {
		if SystemForStage(stage) == "" {
			t.Errorf("SystemForStage(%q) empty", stage)
		}
	}
}
