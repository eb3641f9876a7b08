package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/randalmurphal/specflow"
)

//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// Stage prompt names.
const (
	NameValidateProblem    = "validate-problem"
	NameGeneratePersonas   = "generate-personas"
	NameGeneratePainPoints = "generate-pain-points"
	NameGenerateSolutions  = "generate-solutions"
	NameGenerateStories    = "generate-user-stories"
)

// NameForStage maps a generation stage to its prompt name. ok is false for
// stages without a generation prompt.
func NameForStage(stage specflow.Stage) (string, bool) {
	switch stage {
	case specflow.StagePersonaDiscovery:
		return NameGeneratePersonas, true
	case specflow.StagePainPointAnalysis:
		return NameGeneratePainPoints, true
	case specflow.StageSolutionIdeation:
		return NameGenerateSolutions, true
	case specflow.StageUserStoryCreation:
		return NameGenerateStories, true
	}
	return "", false
}

// SystemForStage returns the system prompt for a stage.
func SystemForStage(stage specflow.Stage) string {
	switch stage {
	case specflow.StageProblemInput:
		return "You are a product strategist who judges whether a problem statement is specific and actionable enough to design a product around. Respond with JSON only."
	case specflow.StagePersonaDiscovery:
		return "You are a user researcher who identifies the people most affected by a problem. Respond with JSON only."
	case specflow.StagePainPointAnalysis:
		return "You are a user researcher who surfaces concrete pain points a persona experiences. Respond with JSON only."
	case specflow.StageSolutionIdeation:
		return "You are a product strategist who proposes focused solutions to user pain points. Respond with JSON only."
	case specflow.StageUserStoryCreation:
		return "You are a product manager who writes precise user stories with acceptance criteria. Respond with JSON only."
	}
	return "Respond with JSON only."
}

// Data carries the variables available to stage prompt templates.
type Data struct {
	Problem            string
	KeyTerms           []string
	PersonaName        string
	PersonaRole        string
	PersonaDescription string
	Count              int

	// Existing lists labels of locked items the response must not
	// duplicate.
	Existing []string
}

// Loader loads and renders prompt templates, preferring project overrides
// over the embedded defaults. A single Loader is shared by concurrent
// generations, so the template cache is guarded.
type Loader struct {
	dirs    []string
	mu      sync.RWMutex
	cache   map[string]*template.Template
	funcMap template.FuncMap
}

// NewLoader creates a loader searching projectDir/.specflow/prompts and
// projectDir/prompts before the embedded defaults.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		dirs: []string{
			filepath.Join(projectDir, ".specflow", "prompts"),
			filepath.Join(projectDir, "prompts"),
		},
		cache:   make(map[string]*template.Template),
		funcMap: defaultFuncMap(),
	}
}

// AddSearchDir prepends a directory to the search order.
func (l *Loader) AddSearchDir(dir string) {
	l.dirs = append([]string{dir}, l.dirs...)
}

// Render renders the named prompt with the given data.
func (l *Loader) Render(name string, data Data) (string, error) {
	tmpl, err := l.getTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Exists reports whether the named prompt can be loaded.
func (l *Loader) Exists(name string) bool {
	_, err := l.loadRaw(name)
	return err == nil
}

func (l *Loader) getTemplate(name string) (*template.Template, error) {
	l.mu.RLock()
	tmpl, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	content, err := l.loadRaw(name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Funcs(l.funcMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	l.mu.Lock()
	// Another goroutine may have parsed the same template first; keep the
	// cached one so callers always share a single instance.
	if cached, ok := l.cache[name]; ok {
		tmpl = cached
	} else {
		l.cache[name] = tmpl
	}
	l.mu.Unlock()
	return tmpl, nil
}

func (l *Loader) loadRaw(name string) (string, error) {
	filename := name + ".txt"
	for _, dir := range l.dirs {
		if data, err := os.ReadFile(filepath.Join(dir, filename)); err == nil {
			return string(data), nil
		}
	}
	data, err := embeddedPrompts.ReadFile("prompts/" + filename)
	if err != nil {
		return "", fmt.Errorf("prompt not found: %s", name)
	}
	return string(data), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"trim":  strings.TrimSpace,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": cases.Title(language.English).String,
		"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	}
}
