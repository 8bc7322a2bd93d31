// Package plan defines the declarative plan data model and the loader,
// validator, and hasher that turn plan files on disk into a validated,
// identity-stamped Plan ready for sync.
package plan

// ItemType classifies a PlanItem within the epic/story/task hierarchy.
type ItemType string

const (
	Epic  ItemType = "EPIC"
	Story ItemType = "STORY"
	Task  ItemType = "TASK"
)

// typeOrdinal orders item types for sorting and level-by-level processing:
// epics before stories before tasks.
func typeOrdinal(t ItemType) int {
	switch t {
	case Epic:
		return 0
	case Story:
		return 1
	case Task:
		return 2
	default:
		return 3
	}
}

// Estimate captures a t-shirt size and/or an hour count for a PlanItem.
type Estimate struct {
	Tshirt string  `json:"tshirt,omitempty"`
	Hours  float64 `json:"hours,omitempty"`
}

// Verification lists how a PlanItem's completion is checked.
type Verification struct {
	Commands    []string `json:"commands,omitempty"`
	CIChecks    []string `json:"ci_checks,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
	ManualSteps []string `json:"manual_steps,omitempty"`
}

// SpecRef points a PlanItem back at the source document it was derived from.
type SpecRef struct {
	URL     string `json:"url,omitempty"`
	Section string `json:"section,omitempty"`
	Quote   string `json:"quote,omitempty"`
}

// Scope bounds what a PlanItem does and does not cover.
type Scope struct {
	InScope  []string `json:"in_scope,omitempty"`
	OutScope []string `json:"out_scope,omitempty"`
}

// PlanItem is a single flat record representing an epic, a story, or a
// task. Its JSON shape is the on-disk wire format for plan files.
type PlanItem struct {
	ID                 string        `json:"id"`
	Type               ItemType      `json:"type"`
	Title              string        `json:"title"`
	Goal               string        `json:"goal"`
	Requirements       []string      `json:"requirements,omitempty"`
	AcceptanceCriteria []string      `json:"acceptance_criteria,omitempty"`
	SuccessMetrics     []string      `json:"success_metrics,omitempty"`
	Assumptions        []string      `json:"assumptions,omitempty"`
	Risks              []string      `json:"risks,omitempty"`
	Motivation         string        `json:"motivation,omitempty"`
	ParentID           string        `json:"parent_id,omitempty"`
	SubItemIDs         []string      `json:"sub_item_ids,omitempty"`
	DependsOn          []string      `json:"depends_on,omitempty"`
	Estimate           *Estimate     `json:"estimate,omitempty"`
	Verification       *Verification `json:"verification,omitempty"`
	SpecRef            *SpecRef      `json:"spec_ref,omitempty"`
	Scope              *Scope        `json:"scope,omitempty"`
}

// Plan is an ordered sequence of PlanItems plus its computed plan_id. A
// Plan is read-only once returned by the loader/hasher pair; nothing in
// the engine mutates it.
type Plan struct {
	ID    string
	Items []PlanItem
}

// ByID returns the item with the given ID, and whether it was found.
func (p *Plan) ByID(id string) (PlanItem, bool) {
	for _, item := range p.Items {
		if item.ID == id {
			return item, true
		}
	}
	return PlanItem{}, false
}

// ItemsOfType returns items of the given type, in plan order.
func (p *Plan) ItemsOfType(t ItemType) []PlanItem {
	var out []PlanItem
	for _, item := range p.Items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}
