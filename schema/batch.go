package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/specflow"
)

// envelope is the preferred provider response shape. Providers that emit a
// bare JSON array are accepted too.
type envelope struct {
	Items []json.RawMessage `json:"items"`
}

// DecodeBatch parses a raw provider response for the given stage into typed,
// cleaned payloads. It accepts either {"items": [...]} or a bare array.
// Any invalid item rejects the entire batch.
func DecodeBatch(stage specflow.Stage, data []byte) ([]specflow.Payload, error) {
	kind, ok := stage.ItemKind()
	if !ok {
		return nil, fmt.Errorf("stage %q produces no items", stage)
	}

	raws, err := splitItems(data)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, &Error{Field: "items", Reason: "empty batch"}
	}

	out := make([]specflow.Payload, 0, len(raws))
	for i, raw := range raws {
		p, err := decodeItem(kind, i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func splitItems(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var raws []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
			return nil, &Error{Field: "items", Reason: "malformed JSON array: " + err.Error()}
		}
		return raws, nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, &Error{Field: "items", Reason: "malformed JSON object: " + err.Error()}
	}
	return env.Items, nil
}

func decodeItem(kind specflow.Kind, idx int, raw json.RawMessage) (specflow.Payload, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", idx, name) }

	switch kind {
	case specflow.KindPersona:
		var p specflow.Persona
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fieldErr(fmt.Sprintf("items[%d]", idx), "malformed persona: %v", err)
		}
		p.Name = CleanName(p.Name)
		p.PainDegree = ClampPainDegree(p.PainDegree)
		if p.Name == "" {
			return nil, fieldErr(field("name"), "required")
		}
		if strings.TrimSpace(p.Role) == "" {
			return nil, fieldErr(field("role"), "required")
		}
		if strings.TrimSpace(p.Description) == "" {
			return nil, fieldErr(field("description"), "required")
		}
		if p.TechLevel != "" && !p.TechLevel.Valid() {
			return nil, fieldErr(field("techLevel"), "unknown value %q", p.TechLevel)
		}
		return &p, nil

	case specflow.KindPainPoint:
		var p specflow.PainPoint
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fieldErr(fmt.Sprintf("items[%d]", idx), "malformed pain point: %v", err)
		}
		if strings.TrimSpace(p.Description) == "" {
			return nil, fieldErr(field("description"), "required")
		}
		if !p.Severity.Valid() {
			return nil, fieldErr(field("severity"), "unknown value %q", p.Severity)
		}
		if !p.ImpactArea.Valid() {
			return nil, fieldErr(field("impactArea"), "unknown value %q", p.ImpactArea)
		}
		return &p, nil

	case specflow.KindSolution:
		var s specflow.Solution
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fieldErr(fmt.Sprintf("items[%d]", idx), "malformed solution: %v", err)
		}
		if strings.TrimSpace(s.Title) == "" {
			return nil, fieldErr(field("title"), "required")
		}
		if strings.TrimSpace(s.Description) == "" {
			return nil, fieldErr(field("description"), "required")
		}
		if !s.Complexity.Valid() {
			return nil, fieldErr(field("complexity"), "unknown value %q", s.Complexity)
		}
		if !s.Impact.Valid() {
			return nil, fieldErr(field("impact"), "unknown value %q", s.Impact)
		}
		return &s, nil

	case specflow.KindUserStory:
		var u specflow.UserStory
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fieldErr(fmt.Sprintf("items[%d]", idx), "malformed user story: %v", err)
		}
		if strings.TrimSpace(u.Title) == "" {
			return nil, fieldErr(field("title"), "required")
		}
		if strings.TrimSpace(u.AsA) == "" {
			return nil, fieldErr(field("asA"), "required")
		}
		if strings.TrimSpace(u.IWant) == "" {
			return nil, fieldErr(field("iWant"), "required")
		}
		if strings.TrimSpace(u.SoThat) == "" {
			return nil, fieldErr(field("soThat"), "required")
		}
		if !u.Priority.Valid() {
			return nil, fieldErr(field("priority"), "unknown value %q", u.Priority)
		}
		return &u, nil
	}
	return nil, fmt.Errorf("unsupported item kind %q", kind)
}

// ProblemValidation is the provider's verdict on a problem statement.
type ProblemValidation struct {
	IsValid  bool     `json:"isValid"`
	Feedback string   `json:"feedback"`
	KeyTerms []string `json:"keyTerms,omitempty"`
}

// DecodeValidation parses a problem-validation response. Feedback is
// required when the verdict is negative so the user knows what to fix.
func DecodeValidation(data []byte) (*ProblemValidation, error) {
	var v ProblemValidation
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &Error{Field: "validation", Reason: "malformed JSON: " + err.Error()}
	}
	if !v.IsValid && strings.TrimSpace(v.Feedback) == "" {
		return nil, &Error{Field: "validation.feedback", Reason: "required when isValid is false"}
	}
	return &v, nil
}
