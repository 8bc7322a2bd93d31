package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// idLength is the length, in hex characters, of a plan_id.
const idLength = 12

// Hash computes the plan_id for p's items and returns it without
// mutating p. Two plans with the same items in any order, and with
// absent-vs-empty optional fields, hash identically.
func Hash(items []PlanItem) (string, error) {
	sorted := make([]PlanItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if typeOrdinal(sorted[i].Type) != typeOrdinal(sorted[j].Type) {
			return typeOrdinal(sorted[i].Type) < typeOrdinal(sorted[j].Type)
		}
		return sorted[i].ID < sorted[j].ID
	})

	canonical := make([]map[string]any, len(sorted))
	for i, item := range sorted {
		canonical[i] = canonicalize(item)
	}

	// json.Marshal emits map keys in sorted order and no extraneous
	// whitespace, which is exactly the canonical form §4.3 calls for.
	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:idLength], nil
}

// canonicalize produces a JSON-marshalable representation of item with
// null/empty-container fields omitted, so that absent and empty hash
// identically.
func canonicalize(item PlanItem) map[string]any {
	m := map[string]any{
		"id":   item.ID,
		"type": string(item.Type),
	}
	setString(m, "title", item.Title)
	setString(m, "goal", item.Goal)
	setStrings(m, "requirements", item.Requirements)
	setStrings(m, "acceptance_criteria", item.AcceptanceCriteria)
	setStrings(m, "success_metrics", item.SuccessMetrics)
	setStrings(m, "assumptions", item.Assumptions)
	setStrings(m, "risks", item.Risks)
	setString(m, "motivation", item.Motivation)
	setString(m, "parent_id", item.ParentID)
	setStrings(m, "sub_item_ids", item.SubItemIDs)
	setStrings(m, "depends_on", item.DependsOn)

	if estimate := canonicalEstimate(item.Estimate); estimate != nil {
		m["estimate"] = estimate
	}
	if verification := canonicalVerification(item.Verification); verification != nil {
		m["verification"] = verification
	}
	if specRef := canonicalSpecRef(item.SpecRef); specRef != nil {
		m["spec_ref"] = specRef
	}
	if scope := canonicalScope(item.Scope); scope != nil {
		m["scope"] = scope
	}

	return m
}

func setString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func setStrings(m map[string]any, key string, v []string) {
	if len(v) > 0 {
		m[key] = v
	}
}

func canonicalEstimate(e *Estimate) map[string]any {
	if e == nil || (e.Tshirt == "" && e.Hours == 0) {
		return nil
	}
	m := map[string]any{}
	setString(m, "tshirt", e.Tshirt)
	if e.Hours != 0 {
		m["hours"] = e.Hours
	}
	return m
}

func canonicalVerification(v *Verification) map[string]any {
	if v == nil {
		return nil
	}
	m := map[string]any{}
	setStrings(m, "commands", v.Commands)
	setStrings(m, "ci_checks", v.CIChecks)
	setStrings(m, "evidence", v.Evidence)
	setStrings(m, "manual_steps", v.ManualSteps)
	if len(m) == 0 {
		return nil
	}
	return m
}

func canonicalSpecRef(s *SpecRef) map[string]any {
	if s == nil || (s.URL == "" && s.Section == "" && s.Quote == "") {
		return nil
	}
	m := map[string]any{}
	setString(m, "url", s.URL)
	setString(m, "section", s.Section)
	setString(m, "quote", s.Quote)
	return m
}

func canonicalScope(s *Scope) map[string]any {
	if s == nil {
		return nil
	}
	m := map[string]any{}
	setStrings(m, "in_scope", s.InScope)
	setStrings(m, "out_scope", s.OutScope)
	if len(m) == 0 {
		return nil
	}
	return m
}
