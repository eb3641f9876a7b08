// Package testutil provides utilities for testing.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ProblemStatement is a problem statement specific enough to pass validation.
const ProblemStatement = "Remote engineering teams lose decision context between asynchronous standups"

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	data := LoadFixture(t, path)

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}

	return result
}

// TempFile creates a temporary file with the given content.
// Returns the file path. File is automatically cleaned up when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to create temp file %s: %v", name, err)
	}

	return path
}

// TempFileString creates a temporary file with string content.
func TempFileString(t *testing.T, name, content string) string {
	return TempFile(t, name, []byte(content))
}

// =============================================================================
// Provider Response Builders
// =============================================================================

// PersonaBatchJSON builds a provider response carrying n valid personas.
func PersonaBatchJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(
			`{"name":"Persona %d","industry":"software","role":"engineering manager","description":"Runs a distributed team %d","painDegree":%d,"goals":["ship on time"],"techLevel":"high"}`,
			i, i, i%5+1)
	}
	return itemsEnvelope(items)
}

// PainPointBatchJSON builds a provider response carrying n valid pain points.
func PainPointBatchJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(
			`{"description":"Loses track of decision %d","severity":"high","impactArea":"productivity"}`, i)
	}
	return itemsEnvelope(items)
}

// SolutionBatchJSON builds a provider response carrying n valid solutions.
func SolutionBatchJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(
			`{"title":"Solution %d","description":"Automates context capture %d","complexity":"medium","impact":"high"}`, i, i)
	}
	return itemsEnvelope(items)
}

// StoryBatchJSON builds a provider response carrying n valid user stories.
func StoryBatchJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(
			`{"title":"Story %d","asA":"engineering manager","iWant":"a decision log","soThat":"context survives the standup","acceptanceCriteria":["log persists"],"priority":"high","effortPoints":%d}`,
			i, i%8+1)
	}
	return itemsEnvelope(items)
}

// ValidationJSON builds a problem-validation verdict response.
func ValidationJSON(valid bool, feedback string) string {
	return fmt.Sprintf(`{"isValid":%t,"feedback":%q,"keyTerms":["standups","context"]}`, valid, feedback)
}

func itemsEnvelope(items []string) string {
	return `{"items":[` + strings.Join(items, ",") + `]}`
}
