package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/specflow"
)

// Export bundles everything needed to render a project's spec document.
type Export struct {
	Project    *specflow.Project     `json:"project"`
	Problem    *specflow.CoreProblem `json:"problem"`
	Personas   []specflow.Item       `json:"personas"`
	PainPoints []specflow.Item       `json:"painPoints"`
	Solutions  []specflow.Item       `json:"solutions"`
	Stories    []specflow.Item       `json:"stories"`
}

// ExportJSON writes the spec bundle as JSON and returns its path.
func (m *Manager) ExportJSON(export Export) (string, error) {
	if export.Project == nil {
		return "", fmt.Errorf("artifact: export requires a project")
	}
	dir := m.ProjectDir(export.Project.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: create dir: %w", err)
	}
	path := filepath.Join(dir, "spec.json")
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("artifact: marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact: write export: %w", err)
	}
	return path, nil
}

// ExportMarkdown renders the spec document and writes it next to the
// snapshots, returning its path.
func (m *Manager) ExportMarkdown(export Export) (string, error) {
	if export.Project == nil {
		return "", fmt.Errorf("artifact: export requires a project")
	}
	dir := m.ProjectDir(export.Project.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: create dir: %w", err)
	}
	path := filepath.Join(dir, "spec.md")
	if err := os.WriteFile(path, []byte(BuildMarkdown(export)), 0o644); err != nil {
		return "", fmt.Errorf("artifact: write export: %w", err)
	}
	return path, nil
}

// BuildMarkdown renders the spec bundle as a markdown document.
func BuildMarkdown(export Export) string {
	var b strings.Builder

	name := "Untitled Project"
	if export.Project != nil && export.Project.Name != "" {
		name = export.Project.Name
	}
	fmt.Fprintf(&b, "# %s\n\n", name)

	if export.Problem != nil {
		b.WriteString("## Problem\n\n")
		b.WriteString(export.Problem.Statement)
		b.WriteString("\n")
		if len(export.Problem.KeyTerms) > 0 {
			fmt.Fprintf(&b, "\nKey terms: %s\n", strings.Join(export.Problem.KeyTerms, ", "))
		}
		b.WriteString("\n")
	}

	if len(export.Personas) > 0 {
		b.WriteString("## Personas\n\n")
		for _, item := range export.Personas {
			p := item.Persona()
			if p == nil {
				continue
			}
			marker := ""
			if item.Active {
				marker = " (active)"
			}
			fmt.Fprintf(&b, "### %s%s\n\n", p.Name, marker)
			fmt.Fprintf(&b, "%s, %s. Pain degree %d/5.\n\n", p.Role, p.Industry, p.PainDegree)
			fmt.Fprintf(&b, "%s\n\n", p.Description)
		}
	}

	if len(export.PainPoints) > 0 {
		b.WriteString("## Pain Points\n\n")
		for _, item := range export.PainPoints {
			p := item.PainPoint()
			if p == nil {
				continue
			}
			fmt.Fprintf(&b, "- **%s** (%s impact): %s\n", p.Severity, p.ImpactArea, p.Description)
		}
		b.WriteString("\n")
	}

	if len(export.Solutions) > 0 {
		b.WriteString("## Solutions\n\n")
		for _, item := range export.Solutions {
			s := item.Solution()
			if s == nil {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", s.Title)
			fmt.Fprintf(&b, "%s\n\nComplexity: %s. Impact: %s.\n\n", s.Description, s.Complexity, s.Impact)
		}
	}

	if len(export.Stories) > 0 {
		b.WriteString("## User Stories\n\n")
		for _, item := range export.Stories {
			u := item.UserStory()
			if u == nil {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", u.Title)
			fmt.Fprintf(&b, "As a %s, I want %s, so that %s.\n\n", u.AsA, u.IWant, u.SoThat)
			if len(u.AcceptanceCriteria) > 0 {
				b.WriteString("Acceptance criteria:\n\n")
				for _, ac := range u.AcceptanceCriteria {
					fmt.Fprintf(&b, "- %s\n", ac)
				}
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Priority: %s.", u.Priority)
			if u.EffortPoints > 0 {
				fmt.Fprintf(&b, " Effort: %d points.", u.EffortPoints)
			}
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
