package plan

import (
	"fmt"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

// ValidationMode controls how unresolved references are treated.
type ValidationMode string

const (
	// Strict requires every parent_id and depends_on entry to resolve to
	// a loaded item.
	Strict ValidationMode = "strict"
	// Partial tolerates unresolved references; they are silently omitted
	// from rendered context and relation edges downstream.
	Partial ValidationMode = "partial"
)

// parentType is the allowed parent type one level above t, or "" if t
// has no valid parent type (epics).
func parentType(t ItemType) ItemType {
	switch t {
	case Story:
		return Epic
	case Task:
		return Story
	default:
		return ""
	}
}

// Validate checks a Plan's relational integrity and returns a
// PlanValidationError carrying every violation found, or nil if the plan
// is valid under mode.
func Validate(p *Plan, mode ValidationMode) error {
	var issues []string

	byID := make(map[string]PlanItem, len(p.Items))
	seen := make(map[string]int, len(p.Items))
	for _, item := range p.Items {
		seen[item.ID]++
		byID[item.ID] = item
	}

	for id, count := range seen {
		if count > 1 {
			issues = append(issues, fmt.Sprintf("duplicate item id %q (%d occurrences)", id, count))
		}
	}

	for _, item := range p.Items {
		issues = append(issues, validateRequiredFields(item)...)
		issues = append(issues, validateParent(item, byID, mode)...)
		issues = append(issues, validateDependsOn(item, byID, mode)...)
		issues = append(issues, validateSubItemAgreement(item, byID)...)
	}

	if len(issues) > 0 {
		return ppErrors.NewPlanValidationError(issues)
	}
	return nil
}

func validateRequiredFields(item PlanItem) []string {
	var issues []string
	if item.Title == "" {
		issues = append(issues, fmt.Sprintf("item %q: title is required", item.ID))
	}
	if item.Goal == "" {
		issues = append(issues, fmt.Sprintf("item %q: goal is required", item.ID))
	}
	if len(item.Requirements) == 0 {
		issues = append(issues, fmt.Sprintf("item %q: requirements is required", item.ID))
	}
	if len(item.AcceptanceCriteria) == 0 {
		issues = append(issues, fmt.Sprintf("item %q: acceptance_criteria is required", item.ID))
	}
	return issues
}

func validateParent(item PlanItem, byID map[string]PlanItem, mode ValidationMode) []string {
	var issues []string

	if item.Type == Epic {
		if item.ParentID != "" {
			issues = append(issues, fmt.Sprintf("item %q: epics must not carry parent_id", item.ID))
		}
		return issues
	}

	if item.ParentID == "" {
		return issues
	}

	parent, ok := byID[item.ParentID]
	if !ok {
		if mode == Strict {
			issues = append(issues, fmt.Sprintf("item %q: parent_id %q does not resolve to a loaded item", item.ID, item.ParentID))
		}
		return issues
	}

	if want := parentType(item.Type); parent.Type != want {
		issues = append(issues, fmt.Sprintf("item %q: parent %q has type %s, want %s", item.ID, item.ParentID, parent.Type, want))
	}

	return issues
}

func validateDependsOn(item PlanItem, byID map[string]PlanItem, mode ValidationMode) []string {
	var issues []string
	if mode != Strict {
		return issues
	}
	for _, dep := range item.DependsOn {
		if _, ok := byID[dep]; !ok {
			issues = append(issues, fmt.Sprintf("item %q: depends_on %q does not resolve to a loaded item", item.ID, dep))
		}
	}
	return issues
}

// validateSubItemAgreement enforces that when both parent_id and the
// parent's sub_item_ids are loaded, the child appears in that list.
func validateSubItemAgreement(item PlanItem, byID map[string]PlanItem) []string {
	var issues []string
	if item.ParentID == "" {
		return issues
	}
	parent, ok := byID[item.ParentID]
	if !ok || len(parent.SubItemIDs) == 0 {
		return issues
	}

	for _, childID := range parent.SubItemIDs {
		if childID == item.ID {
			return issues
		}
	}
	issues = append(issues, fmt.Sprintf("item %q: not listed in parent %q's sub_item_ids", item.ID, item.ParentID))
	return issues
}
