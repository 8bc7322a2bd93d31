// Package render turns a plan item into the body text sent to the
// provider: a mandatory marker block identifying the item, followed by
// human-readable content generated from a text/template body.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/aryeko/planpilot/internal/plan"
)

// markerSentinel and markerEnd bound the mandatory metadata block. The
// wire format is locked: plain text, line-based, KEY:VALUE, never
// rendered as an HTML comment.
const (
	markerSentinel = "PLANPILOT_META_V1"
	markerEnd      = "END_PLANPILOT_META"
)

// ChildRef is a single entry in a Context's ordered child list.
type ChildRef struct {
	Key   string
	Title string
}

// DependencyRef maps a plan-item dependency ID to the provider-facing
// reference (e.g. its key) of the item that satisfies it.
type DependencyRef struct {
	ID  string
	Ref string
}

// Context carries everything a Renderer needs beyond the item itself:
// resolved cross-references that only the engine, with its view of the
// whole sync, can supply.
type Context struct {
	PlanID string
	// ParentRef is the provider-facing reference of the item's parent
	// (e.g. "#42"), or empty if the item has no parent or the parent is
	// not yet known.
	ParentRef string
	// Children is the ordered list of this item's sub-items, already
	// sorted by (type, id) by the caller.
	Children []ChildRef
	// Dependencies need not arrive pre-sorted; Render sorts by ID so
	// output is deterministic regardless of caller order.
	Dependencies []DependencyRef
}

// Renderer produces a provider body for a plan item.
type Renderer interface {
	Render(item plan.PlanItem, ctx Context) (string, error)
}

// DefaultRenderer is the reference Renderer implementation: the
// mandatory marker block followed by a text/template body.
type DefaultRenderer struct{}

// NewDefaultRenderer returns the reference Renderer.
func NewDefaultRenderer() *DefaultRenderer {
	return &DefaultRenderer{}
}

type bodyData struct {
	Title              string
	Goal               string
	Requirements       []string
	AcceptanceCriteria []string
	SuccessMetrics     []string
	Assumptions        []string
	Risks              []string
	Motivation         string
	ParentRef          string
	Children           []ChildRef
	Dependencies       []DependencyRef
	Estimate           *plan.Estimate
	Verification       *plan.Verification
	SpecRef            *plan.SpecRef
	Scope              *plan.Scope
}

const bodyTemplate = `## Goal

{{.Goal}}
{{if .Motivation}}
## Motivation

{{.Motivation}}
{{end}}
{{if .Requirements}}## Requirements

{{range .Requirements}}- {{.}}
{{end}}
{{end}}{{if .AcceptanceCriteria}}## Acceptance Criteria

{{range .AcceptanceCriteria}}- [ ] {{.}}
{{end}}
{{end}}{{if .SuccessMetrics}}## Success Metrics

{{range .SuccessMetrics}}- {{.}}
{{end}}
{{end}}{{if .Assumptions}}## Assumptions

{{range .Assumptions}}- {{.}}
{{end}}
{{end}}{{if .Risks}}## Risks

{{range .Risks}}- {{.}}
{{end}}
{{end}}{{if .Scope}}## Scope
{{if .Scope.InScope}}
In scope:
{{range .Scope.InScope}}- {{.}}
{{end}}{{end}}{{if .Scope.OutScope}}
Out of scope:
{{range .Scope.OutScope}}- {{.}}
{{end}}{{end}}
{{end}}{{if .Verification}}## Verification
{{if .Verification.Commands}}
Commands:
{{range .Verification.Commands}}- ` + "`{{.}}`" + `
{{end}}{{end}}{{if .Verification.CIChecks}}
CI checks:
{{range .Verification.CIChecks}}- {{.}}
{{end}}{{end}}{{if .Verification.Evidence}}
Evidence:
{{range .Verification.Evidence}}- {{.}}
{{end}}{{end}}{{if .Verification.ManualSteps}}
Manual steps:
{{range .Verification.ManualSteps}}- {{.}}
{{end}}{{end}}
{{end}}{{if .SpecRef}}## Source

{{if .SpecRef.URL}}{{.SpecRef.URL}}{{if .SpecRef.Section}} — {{.SpecRef.Section}}{{end}}
{{end}}{{if .SpecRef.Quote}}> {{.SpecRef.Quote}}
{{end}}
{{end}}{{if .ParentRef}}## Parent

{{.ParentRef}}
{{end}}
{{if .Children}}## Sub-Items

{{range .Children}}- {{.Key}} — {{.Title}}
{{end}}
{{end}}{{if .Dependencies}}## Depends On

{{range .Dependencies}}- {{.Ref}}
{{end}}{{end}}`

// Render emits the mandatory marker block followed by the item's body.
// Output is byte-stable for identical inputs: children are rendered in
// the order the caller supplied (expected to be (type, id) order);
// dependencies are sorted here by dependency ID.
func (r *DefaultRenderer) Render(item plan.PlanItem, ctx Context) (string, error) {
	deps := make([]DependencyRef, len(ctx.Dependencies))
	copy(deps, ctx.Dependencies)
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })

	data := bodyData{
		Title:              item.Title,
		Goal:               item.Goal,
		Requirements:       item.Requirements,
		AcceptanceCriteria: item.AcceptanceCriteria,
		SuccessMetrics:     item.SuccessMetrics,
		Assumptions:        item.Assumptions,
		Risks:              item.Risks,
		Motivation:         item.Motivation,
		ParentRef:          ctx.ParentRef,
		Children:           ctx.Children,
		Dependencies:       deps,
		Estimate:           item.Estimate,
		Verification:       item.Verification,
		SpecRef:            item.SpecRef,
		Scope:              item.Scope,
	}

	tmpl, err := template.New("body").Parse(bodyTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse body template: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(marker(ctx.PlanID, item))
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render body for item %s: %w", item.ID, err)
	}

	return buf.String(), nil
}

// marker emits the mandatory metadata block verbatim.
func marker(planID string, item plan.PlanItem) string {
	var sb strings.Builder
	sb.WriteString(markerSentinel + "\n")
	sb.WriteString("PLAN_ID:" + planID + "\n")
	sb.WriteString("ITEM_ID:" + item.ID + "\n")
	sb.WriteString("ITEM_TYPE:" + string(item.Type) + "\n")
	sb.WriteString("PARENT_ID:" + item.ParentID + "\n")
	sb.WriteString(markerEnd + "\n\n")
	return sb.String()
}

var _ Renderer = (*DefaultRenderer)(nil)
