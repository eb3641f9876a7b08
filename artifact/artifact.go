package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/specflow"
)

// Manager stores artifacts under a base directory, one subdirectory per
// project.
type Manager struct {
	baseDir string
}

// NewManager creates a manager rooted at baseDir, defaulting to
// ".specflow/artifacts".
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = filepath.Join(".specflow", "artifacts")
	}
	return &Manager{baseDir: baseDir}
}

// ProjectDir returns the artifact directory for a project.
func (m *Manager) ProjectDir(projectID string) string {
	return filepath.Join(m.baseDir, projectID)
}

// Snapshot captures a scope's items right after a generation.
type Snapshot struct {
	ProjectID string                `json:"projectId"`
	Stage     specflow.Stage        `json:"stage"`
	ScopeID   string                `json:"scopeId"`
	BatchID   string                `json:"batchId,omitempty"`
	Problem   *specflow.CoreProblem `json:"problem,omitempty"`
	Items     []specflow.Item       `json:"items"`
	TakenAt   time.Time             `json:"takenAt"`
}

// SaveSnapshot writes a snapshot as JSON and returns its path.
func (m *Manager) SaveSnapshot(snap Snapshot) (string, error) {
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	dir := m.ProjectDir(snap.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: create dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.json", snap.Stage, snap.TakenAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("artifact: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact: write snapshot: %w", err)
	}
	return path, nil
}

// ListSnapshots returns a project's snapshot paths, sorted by name, which
// orders them by stage then time.
func (m *Manager) ListSnapshots(projectID string) ([]string, error) {
	entries, err := os.ReadDir(m.ProjectDir(projectID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: list snapshots: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			paths = append(paths, filepath.Join(m.ProjectDir(projectID), e.Name()))
		}
	}
	return paths, nil
}
