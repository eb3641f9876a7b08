package testutil

import (
	"os"
	"testing"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/schema"
	"github.com/randalmurphal/specflow/store"
)

func TestBatchBuildersDecode(t *testing.T) {
	tests := []struct {
		name  string
		stage specflow.Stage
		data  string
		n     int
	}{
		{"personas", specflow.StagePersonaDiscovery, PersonaBatchJSON(3), 3},
		{"pain points", specflow.StagePainPointAnalysis, PainPointBatchJSON(4), 4},
		{"solutions", specflow.StageSolutionIdeation, SolutionBatchJSON(2), 2},
		{"stories", specflow.StageUserStoryCreation, StoryBatchJSON(5), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloads, err := schema.DecodeBatch(tt.stage, []byte(tt.data))
			if err != nil {
				t.Fatalf("DecodeBatch() error = %v", err)
			}
			if len(payloads) != tt.n {
				t.Errorf("got %d payloads, want %d", len(payloads), tt.n)
			}
		})
	}
}

func TestValidationJSONDecodes(t *testing.T) {
	v, err := schema.DecodeValidation([]byte(ValidationJSON(false, "too vague")))
	if err != nil {
		t.Fatalf("DecodeValidation() error = %v", err)
	}
	if v.IsValid || v.Feedback != "too vague" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestSeedProject(t *testing.T) {
	mem := store.NewMemory()
	project, problem := SeedProject(t, mem, "proj-seed")

	if project.ID != "proj-seed" {
		t.Errorf("project id = %q", project.ID)
	}
	if !problem.Validated || problem.Version != 1 {
		t.Errorf("problem = %+v", problem)
	}

	got, err := mem.CurrentCoreProblem(TestContext(t), "proj-seed")
	if err != nil {
		t.Fatalf("CurrentCoreProblem: %v", err)
	}
	if !got.Validated {
		t.Error("persisted problem should be validated")
	}
}

func TestTempFile(t *testing.T) {
	path := TempFileString(t, "config.yaml", "db_path: test.db\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "db_path: test.db\n" {
		t.Errorf("content = %q", data)
	}
}
