package specflow

import "time"

// ProjectStatus tracks a project's lifecycle.
type ProjectStatus string

// Project statuses.
const (
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusArchived  ProjectStatus = "archived"
)

// Project is the top-level unit of work: one product idea moving through the
// specification workflow.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Stage     Stage         `json:"stage"`
	Status    ProjectStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CoreProblem is a versioned problem statement for a project. Each edit
// produces a new version; validation results attach to the version they
// were produced for.
type CoreProblem struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Statement string    `json:"statement"`
	KeyTerms  []string  `json:"keyTerms,omitempty"`
	Validated bool      `json:"validated"`
	Feedback  string    `json:"feedback,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}
