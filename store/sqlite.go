package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/randalmurphal/specflow"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	stage      TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS core_problems (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	statement  TEXT NOT NULL,
	key_terms  TEXT NOT NULL DEFAULT '[]',
	validated  INTEGER NOT NULL DEFAULT 0,
	feedback   TEXT NOT NULL DEFAULT '',
	version    INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (project_id, version)
);

CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	stage      TEXT NOT NULL,
	position   INTEGER NOT NULL,
	locked     INTEGER NOT NULL DEFAULT 0,
	active     INTEGER NOT NULL DEFAULT 0,
	batch_id   TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (scope_id, stage, position)
);

CREATE INDEX IF NOT EXISTS idx_items_scope ON items (scope_id, stage, position);

CREATE TABLE IF NOT EXISTS batches (
	id         TEXT PRIMARY KEY,
	scope_id   TEXT NOT NULL,
	stage      TEXT NOT NULL,
	size       INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batches_scope ON batches (scope_id, stage, created_at);
`

// SQLite is the default Gateway, backed by a single database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. Use ":memory:" only in single-connection scenarios; prefer a
// temp file in tests.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, &Error{Op: "migrate", Err: err}
	}
	return &SQLite{db: db}, nil
}

// Close implements Gateway.
func (s *SQLite) Close() error { return s.db.Close() }

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTS(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

// =============================================================================
// Projects
// =============================================================================

// CreateProject implements Gateway.
func (s *SQLite) CreateProject(ctx context.Context, p *specflow.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, stage, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Stage), string(p.Status), ts(p.CreatedAt), ts(p.UpdatedAt))
	if err != nil {
		return &Error{Op: "create project", Err: err}
	}
	return nil
}

// Project implements Gateway.
func (s *SQLite) Project(ctx context.Context, id string) (*specflow.Project, error) {
	var p specflow.Project
	var stage, status, created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, stage, status, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &stage, &status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "get project", Err: err}
	}
	p.Stage = specflow.Stage(stage)
	p.Status = specflow.ProjectStatus(status)
	p.CreatedAt = parseTS(created)
	p.UpdatedAt = parseTS(updated)
	return &p, nil
}

// UpdateProjectStage implements Gateway.
func (s *SQLite) UpdateProjectStage(ctx context.Context, id string, stage specflow.Stage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET stage = ?, updated_at = ? WHERE id = ?`,
		string(stage), ts(time.Now()), id)
	if err != nil {
		return &Error{Op: "update project stage", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProjectStatus implements Gateway.
func (s *SQLite) UpdateProjectStatus(ctx context.Context, id string, status specflow.ProjectStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), ts(time.Now()), id)
	if err != nil {
		return &Error{Op: "update project status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Core Problems
// =============================================================================

// CreateCoreProblem implements Gateway.
func (s *SQLite) CreateCoreProblem(ctx context.Context, cp *specflow.CoreProblem) error {
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	terms, err := json.Marshal(cp.KeyTerms)
	if err != nil {
		return &Error{Op: "create core problem", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "create core problem", Err: err}
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM core_problems WHERE project_id = ?`, cp.ProjectID).
		Scan(&version)
	if err != nil {
		return &Error{Op: "create core problem", Err: err}
	}
	cp.Version = version + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO core_problems (id, project_id, statement, key_terms, validated, feedback, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.ProjectID, cp.Statement, string(terms), boolInt(cp.Validated), cp.Feedback, cp.Version, ts(cp.CreatedAt))
	if err != nil {
		return &Error{Op: "create core problem", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Op: "create core problem", Err: err}
	}
	return nil
}

// CurrentCoreProblem implements Gateway.
func (s *SQLite) CurrentCoreProblem(ctx context.Context, projectID string) (*specflow.CoreProblem, error) {
	var cp specflow.CoreProblem
	var terms, created string
	var validated int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, statement, key_terms, validated, feedback, version, created_at
		 FROM core_problems WHERE project_id = ? ORDER BY version DESC LIMIT 1`, projectID).
		Scan(&cp.ID, &cp.ProjectID, &cp.Statement, &terms, &validated, &cp.Feedback, &cp.Version, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "get core problem", Err: err}
	}
	if err := json.Unmarshal([]byte(terms), &cp.KeyTerms); err != nil {
		return nil, &Error{Op: "get core problem", Err: err}
	}
	cp.Validated = validated != 0
	cp.CreatedAt = parseTS(created)
	return &cp, nil
}

// SetProblemValidation implements Gateway.
func (s *SQLite) SetProblemValidation(ctx context.Context, id string, validated bool, feedback string, keyTerms []string) error {
	terms, err := json.Marshal(keyTerms)
	if err != nil {
		return &Error{Op: "set problem validation", Err: err}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE core_problems SET validated = ?, feedback = ?, key_terms = ? WHERE id = ?`,
		boolInt(validated), feedback, string(terms), id)
	if err != nil {
		return &Error{Op: "set problem validation", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Items
// =============================================================================

// ItemsByScope implements Gateway.
func (s *SQLite) ItemsByScope(ctx context.Context, scopeID string, stage specflow.Stage) ([]specflow.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, scope_id, stage, position, locked, active, batch_id, payload, created_at
		 FROM items WHERE scope_id = ? AND stage = ? ORDER BY position`, scopeID, string(stage))
	if err != nil {
		return nil, &Error{Op: "list items", Err: err}
	}
	defer rows.Close()

	var out []specflow.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list items", Err: err}
	}
	return out, nil
}

func scanItem(rows *sql.Rows) (specflow.Item, error) {
	var item specflow.Item
	var stage, payload, created string
	var locked, active int
	err := rows.Scan(&item.ID, &item.ProjectID, &item.ScopeID, &stage, &item.Position,
		&locked, &active, &item.BatchID, &payload, &created)
	if err != nil {
		return item, &Error{Op: "scan item", Err: err}
	}
	item.Stage = specflow.Stage(stage)
	item.Locked = locked != 0
	item.Active = active != 0
	item.CreatedAt = parseTS(created)

	kind, ok := item.Stage.ItemKind()
	if !ok {
		return item, &Error{Op: "scan item", Err: fmt.Errorf("stage %q has no item kind", stage)}
	}
	item.Payload, err = specflow.DecodePayload(kind, []byte(payload))
	if err != nil {
		return item, &Error{Op: "scan item", Err: err}
	}
	return item, nil
}

// ReplaceScope implements Gateway.
func (s *SQLite) ReplaceScope(ctx context.Context, params ReplaceScopeParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "replace scope", Err: err}
	}
	defer tx.Rollback()

	keep := make(map[string]bool, len(params.KeepIDs))
	for _, id := range params.KeepIDs {
		keep[id] = true
	}

	// Delete everything in the scope/stage that is not explicitly kept.
	// Locked rows always survive, even when absent from KeepIDs, so a lock
	// taken after the caller read the scope is never overridden. The locked
	// state is re-read here, inside the transaction.
	rows, err := tx.QueryContext(ctx,
		`SELECT id, locked FROM items WHERE scope_id = ? AND stage = ?`, params.ScopeID, string(params.Stage))
	if err != nil {
		return &Error{Op: "replace scope", Err: err}
	}
	var toDelete []string
	for rows.Next() {
		var id string
		var locked int
		if err := rows.Scan(&id, &locked); err != nil {
			rows.Close()
			return &Error{Op: "replace scope", Err: err}
		}
		if !keep[id] && locked == 0 {
			toDelete = append(toDelete, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return &Error{Op: "replace scope", Err: err}
	}
	for _, id := range toDelete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
	}

	for _, item := range params.Insert {
		payload, err := json.Marshal(item.Payload)
		if err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (id, project_id, scope_id, stage, position, locked, active, batch_id, payload, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.ProjectID, item.ScopeID, string(item.Stage), item.Position,
			boolInt(item.Locked), boolInt(item.Active), item.BatchID, string(payload), ts(item.CreatedAt))
		if err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
	}

	// Record the batch that produced this write for auditing. Replayed
	// batch ids are tolerated.
	if len(params.Insert) > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO batches (id, scope_id, stage, size, created_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			params.Insert[0].BatchID, params.ScopeID, string(params.Stage), len(params.Insert), ts(time.Now()))
		if err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
	}

	if params.ActivateID != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET active = 0 WHERE scope_id = ? AND stage = ?`,
			params.ScopeID, string(params.Stage))
		if err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
		res, err := tx.ExecContext(ctx, `UPDATE items SET active = 1 WHERE id = ?`, params.ActivateID)
		if err != nil {
			return &Error{Op: "replace scope", Err: err}
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &Error{Op: "replace scope", Err: fmt.Errorf("activate target %q not found", params.ActivateID)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Op: "replace scope", Err: err}
	}
	return nil
}

// ToggleLock implements Gateway. The flip and the read-back share one
// transaction so the returned state is the one this call produced.
func (s *SQLite) ToggleLock(ctx context.Context, itemID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &Error{Op: "toggle lock", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE items SET locked = 1 - locked WHERE id = ?`, itemID)
	if err != nil {
		return false, &Error{Op: "toggle lock", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}
	var locked int
	if err := tx.QueryRowContext(ctx, `SELECT locked FROM items WHERE id = ?`, itemID).Scan(&locked); err != nil {
		return false, &Error{Op: "toggle lock", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return false, &Error{Op: "toggle lock", Err: err}
	}
	return locked != 0, nil
}

// BatchesByScope implements Gateway.
func (s *SQLite) BatchesByScope(ctx context.Context, scopeID string, stage specflow.Stage) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scope_id, stage, size, created_at FROM batches
		 WHERE scope_id = ? AND stage = ? ORDER BY created_at`, scopeID, string(stage))
	if err != nil {
		return nil, &Error{Op: "list batches", Err: err}
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var stg, created string
		if err := rows.Scan(&b.ID, &b.ScopeID, &stg, &b.Size, &created); err != nil {
			return nil, &Error{Op: "list batches", Err: err}
		}
		b.Stage = specflow.Stage(stg)
		b.CreatedAt = parseTS(created)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list batches", Err: err}
	}
	return out, nil
}

// SetActive implements Gateway.
func (s *SQLite) SetActive(ctx context.Context, scopeID, itemID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "set active", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE items SET active = 0 WHERE scope_id = ?`, scopeID); err != nil {
		return &Error{Op: "set active", Err: err}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET active = 1 WHERE id = ? AND scope_id = ?`, itemID, scopeID)
	if err != nil {
		return &Error{Op: "set active", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
