package plan

import (
	"strings"
	"testing"
)

func validItem(id string, typ ItemType, parent string) PlanItem {
	item := PlanItem{
		ID:                 id,
		Type:               typ,
		Title:              "Title " + id,
		Goal:               "goal",
		Requirements:       []string{"req"},
		AcceptanceCriteria: []string{"ac"},
	}
	if parent != "" {
		item.ParentID = parent
	}
	return item
}

func TestValidate_ValidPlan(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("E1", Epic, ""),
		validItem("S1", Story, "E1"),
		validItem("T1", Task, "S1"),
	}}

	if err := Validate(p, Strict); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("E1", Epic, ""),
		validItem("E1", Epic, ""),
	}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "duplicate item id") {
		t.Errorf("Validate() error = %v, want duplicate item id", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		{ID: "E1", Type: Epic},
	}}

	err := Validate(p, Strict)
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"title", "goal", "requirements", "acceptance_criteria"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, want mention of %q", err, want)
		}
	}
}

func TestValidate_EpicWithParentIDFails(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("E1", Epic, "nope"),
	}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "must not carry parent_id") {
		t.Errorf("Validate() error = %v, want parent_id violation", err)
	}
}

func TestValidate_StrictUnresolvedParentFails(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("S1", Story, "E_missing"),
	}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "parent_id") {
		t.Errorf("Validate() error = %v, want parent_id resolution failure", err)
	}
}

func TestValidate_PartialUnresolvedParentTolerated(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("S1", Story, "E_missing"),
	}}

	if err := Validate(p, Partial); err != nil {
		t.Errorf("Validate() error = %v, want nil under partial mode", err)
	}
}

func TestValidate_WrongParentTypeFails(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		validItem("E1", Epic, ""),
		validItem("T1", Task, "E1"),
	}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "has type EPIC, want STORY") {
		t.Errorf("Validate() error = %v, want parent type mismatch", err)
	}
}

func TestValidate_StrictUnresolvedDependsOnFails(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		func() PlanItem {
			i := validItem("T1", Task, "")
			i.DependsOn = []string{"T_missing"}
			return i
		}(),
	}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "depends_on") {
		t.Errorf("Validate() error = %v, want depends_on resolution failure", err)
	}
}

func TestValidate_PartialUnresolvedDependsOnTolerated(t *testing.T) {
	p := &Plan{Items: []PlanItem{
		func() PlanItem {
			i := validItem("T1", Task, "")
			i.DependsOn = []string{"T_missing"}
			return i
		}(),
	}}

	if err := Validate(p, Partial); err != nil {
		t.Errorf("Validate() error = %v, want nil under partial mode", err)
	}
}

func TestValidate_SubItemIDsMustAgreeWithParentID(t *testing.T) {
	epic := validItem("E1", Epic, "")
	epic.SubItemIDs = []string{"S_other"}
	story := validItem("S1", Story, "E1")

	p := &Plan{Items: []PlanItem{epic, story}}

	err := Validate(p, Strict)
	if err == nil || !strings.Contains(err.Error(), "not listed in parent") {
		t.Errorf("Validate() error = %v, want sub_item_ids disagreement", err)
	}
}

func TestValidate_SubItemIDsAgreeing(t *testing.T) {
	epic := validItem("E1", Epic, "")
	epic.SubItemIDs = []string{"S1"}
	story := validItem("S1", Story, "E1")

	p := &Plan{Items: []PlanItem{epic, story}}

	if err := Validate(p, Strict); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
