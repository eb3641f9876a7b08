package testutil

import (
	"testing"
	"time"

	"github.com/randalmurphal/specflow"
	"github.com/randalmurphal/specflow/store"
)

// SeedProject inserts a project with a validated core problem and returns
// both. The gateway is typically a fresh store.Memory.
func SeedProject(t *testing.T, gateway store.Gateway, projectID string) (*specflow.Project, *specflow.CoreProblem) {
	t.Helper()

	ctx := TestContext(t)
	now := time.Now().UTC()

	project := &specflow.Project{
		ID:        projectID,
		Name:      "Test Project",
		Stage:     specflow.StagePersonaDiscovery,
		Status:    specflow.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gateway.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	problem := &specflow.CoreProblem{
		ID:        projectID + "-cp1",
		ProjectID: projectID,
		Statement: ProblemStatement,
		CreatedAt: now,
	}
	if err := gateway.CreateCoreProblem(ctx, problem); err != nil {
		t.Fatalf("CreateCoreProblem: %v", err)
	}
	if err := gateway.SetProblemValidation(ctx, problem.ID, true, "ok", []string{"standups", "context"}); err != nil {
		t.Fatalf("SetProblemValidation: %v", err)
	}
	problem.Validated = true
	problem.Feedback = "ok"
	problem.KeyTerms = []string{"standups", "context"}

	return project, problem
}
