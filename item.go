package specflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// Item Kinds
// =============================================================================

// Kind identifies the payload type carried by a generation item.
type Kind string

// Item kinds, one per generation stage.
const (
	KindPersona   Kind = "persona"
	KindPainPoint Kind = "pain_point"
	KindSolution  Kind = "solution"
	KindUserStory Kind = "user_story"
)

// =============================================================================
// Enumerated Vocabularies
// =============================================================================

// Level is a coarse low/medium/high scale used for tech level, complexity,
// and expected impact.
type Level string

// Level values.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Severity is the pain-point severity tier.
type Severity string

// Severity tiers.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity tier.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ImpactArea is the business area a pain point affects.
type ImpactArea string

// Impact areas.
const (
	ImpactProductivity ImpactArea = "productivity"
	ImpactRevenue      ImpactArea = "revenue"
	ImpactCost         ImpactArea = "cost"
	ImpactQuality      ImpactArea = "quality"
	ImpactCompliance   ImpactArea = "compliance"
	ImpactMorale       ImpactArea = "morale"
)

// Valid reports whether a is a known impact area.
func (a ImpactArea) Valid() bool {
	switch a {
	case ImpactProductivity, ImpactRevenue, ImpactCost, ImpactQuality,
		ImpactCompliance, ImpactMorale:
		return true
	}
	return false
}

// Priority is the user-story priority tier.
type Priority string

// Priority tiers.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority tier.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Pain-degree bounds. Values outside the range are clamped, not rejected.
const (
	PainDegreeMin = 1
	PainDegreeMax = 5
)

// =============================================================================
// Payloads
// =============================================================================

// Payload is the stage-specific content of a generation item.
type Payload interface {
	Kind() Kind
}

// Persona describes a user persona affected by the core problem.
type Persona struct {
	Name         string   `json:"name"`
	Industry     string   `json:"industry"`
	Role         string   `json:"role"`
	Description  string   `json:"description"`
	PainDegree   int      `json:"painDegree"` // 1-5, 5 = most affected
	Demographics string   `json:"demographics,omitempty"`
	Goals        []string `json:"goals,omitempty"`
	TechLevel    Level    `json:"techLevel,omitempty"`
}

// Kind implements Payload.
func (Persona) Kind() Kind { return KindPersona }

// PainPoint describes a specific pain a persona experiences.
type PainPoint struct {
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	ImpactArea  ImpactArea `json:"impactArea"`
}

// Kind implements Payload.
func (PainPoint) Kind() Kind { return KindPainPoint }

// Solution describes a proposed solution to one or more pain points.
type Solution struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Complexity  Level  `json:"complexity"`
	Impact      Level  `json:"impact"`
}

// Kind implements Payload.
func (Solution) Kind() Kind { return KindSolution }

// UserStory is a persona-framed requirement derived from a solution.
type UserStory struct {
	Title              string   `json:"title"`
	AsA                string   `json:"asA"`
	IWant              string   `json:"iWant"`
	SoThat             string   `json:"soThat"`
	AcceptanceCriteria []string `json:"acceptanceCriteria,omitempty"`
	Priority           Priority `json:"priority"`
	EffortPoints       int      `json:"effortPoints,omitempty"`
}

// Kind implements Payload.
func (UserStory) Kind() Kind { return KindUserStory }

// DecodePayload unmarshals a stored payload of the given kind.
func DecodePayload(k Kind, data []byte) (Payload, error) {
	switch k {
	case KindPersona:
		var p Persona
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode persona payload: %w", err)
		}
		return &p, nil
	case KindPainPoint:
		var p PainPoint
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode pain point payload: %w", err)
		}
		return &p, nil
	case KindSolution:
		var s Solution
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode solution payload: %w", err)
		}
		return &s, nil
	case KindUserStory:
		var u UserStory
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("decode user story payload: %w", err)
		}
		return &u, nil
	}
	return nil, fmt.Errorf("decode payload: unknown kind %q", k)
}

// =============================================================================
// Item
// =============================================================================

// Item is one generated element of a stage: a persona, pain point, solution,
// or user story. Items within a scope hold unique, contiguous positions in
// [0, limit). Locked items survive regeneration verbatim, keeping their
// original positions.
type Item struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	ScopeID   string    `json:"scopeId"` // Parent scope (core problem or persona id)
	Stage     Stage     `json:"stage"`
	Position  int       `json:"position"`
	Locked    bool      `json:"locked"`
	Active    bool      `json:"active"` // Personas only; exclusive among siblings
	BatchID   string    `json:"batchId"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Persona returns the item's persona payload, or nil for other kinds.
func (i Item) Persona() *Persona {
	p, _ := i.Payload.(*Persona)
	return p
}

// PainPoint returns the item's pain-point payload, or nil for other kinds.
func (i Item) PainPoint() *PainPoint {
	p, _ := i.Payload.(*PainPoint)
	return p
}

// Solution returns the item's solution payload, or nil for other kinds.
func (i Item) Solution() *Solution {
	s, _ := i.Payload.(*Solution)
	return s
}

// UserStory returns the item's user-story payload, or nil for other kinds.
func (i Item) UserStory() *UserStory {
	u, _ := i.Payload.(*UserStory)
	return u
}

// Label returns a short human-readable identifier for the item, used in
// prompts and exports.
func (i Item) Label() string {
	switch p := i.Payload.(type) {
	case *Persona:
		return p.Name
	case *PainPoint:
		return p.Description
	case *Solution:
		return p.Title
	case *UserStory:
		return p.Title
	}
	return i.ID
}
