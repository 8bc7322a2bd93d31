package engine

import (
	"context"
	"sort"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
	"github.com/aryeko/planpilot/internal/plan/render"
	"github.com/aryeko/planpilot/internal/plan/tracker"
)

// CleanPlanner discovers and deletes items bearing the configured label,
// either scoped to one plan_id or across every plan the label touches
// (§4.8). Deletion proceeds children-before-parents, tolerating a
// provider that transiently refuses to delete a parent with remaining
// children by retrying in passes.
type CleanPlanner struct {
	Provider tracker.Provider
	Label    string
}

// NewCleanPlanner returns a CleanPlanner bound to an already-set-up
// provider.
func NewCleanPlanner(provider tracker.Provider, label string) *CleanPlanner {
	return &CleanPlanner{Provider: provider, Label: label}
}

type cleanCandidate struct {
	itemID   string
	planID   string
	parentID string
}

// Run discovers candidates (scoped to planID, or every labeled item when
// planID is empty — "all plans" mode), orders them children-first, and
// deletes them in multi-pass retry. dryRun reports the planned deletion
// count without issuing any destructive call.
func (c *CleanPlanner) Run(ctx context.Context, planID string, dryRun bool) (*CleanResult, error) {
	filters := tracker.ItemSearchFilters{Labels: []string{c.Label}}
	if planID != "" {
		filters.BodyContains = "PLAN_ID:" + planID
	}

	items, err := c.Provider.SearchItems(ctx, filters)
	if err != nil {
		return nil, ppErrors.NewProviderError("clean discovery failed", err).WithOperation("search_items")
	}

	var candidates []cleanCandidate
	providerIDs := make(map[[2]string]string)
	for _, item := range items {
		marker, ok := render.ParseMarker(item.Body)
		if !ok {
			continue
		}
		if planID != "" && marker.PlanID != planID {
			continue
		}
		providerIDs[[2]string{marker.PlanID, marker.ItemID}] = item.ID
		candidates = append(candidates, cleanCandidate{itemID: item.ID, planID: marker.PlanID, parentID: marker.ParentID})
	}
	// A marker's PARENT_ID is the parent's plan item ID; deletionOrder
	// follows provider IDs, so translate it (to "" when the parent is not
	// among the candidates).
	for i, cand := range candidates {
		candidates[i].parentID = providerIDs[[2]string{cand.planID, cand.parentID}]
	}

	order := deletionOrder(candidates)

	if dryRun {
		return &CleanResult{Deleted: order, DryRun: true}, nil
	}

	deleted, err := c.deleteInPasses(ctx, order)
	return &CleanResult{Deleted: deleted, DryRun: false}, err
}

// deletionOrder sorts candidates leaf-first: an item with no children
// among the candidate set precedes its ancestors. Ties are broken by ID
// for determinism.
func deletionOrder(candidates []cleanCandidate) []string {
	depth := make(map[string]int, len(candidates))
	byID := make(map[string]cleanCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.itemID] = c
	}
	var depthOf func(id string, seen map[string]bool) int
	depthOf = func(id string, seen map[string]bool) int {
		if d, ok := depth[id]; ok {
			return d
		}
		c, ok := byID[id]
		if !ok || c.parentID == "" || seen[id] {
			depth[id] = 0
			return 0
		}
		seen[id] = true
		d := 1 + depthOf(c.parentID, seen)
		depth[id] = d
		return d
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.itemID)
		depthOf(c.itemID, map[string]bool{})
	}

	sort.Slice(ids, func(i, j int) bool {
		di, dj := depth[ids[i]], depth[ids[j]]
		if di != dj {
			return di > dj // deeper (more descendant hops) first
		}
		return ids[i] < ids[j]
	})

	return ids
}

// deleteInPasses attempts delete for every remaining item each pass,
// retrying the failures as long as at least one delete succeeded that
// pass. A pass that makes zero progress surfaces its first recorded
// failure, since that means the remaining failures are not transient.
func (c *CleanPlanner) deleteInPasses(ctx context.Context, order []string) ([]string, error) {
	remaining := append([]string{}, order...)
	var deleted []string

	for len(remaining) > 0 {
		var failed []string
		var firstErr error
		progressed := false

		for _, id := range remaining {
			if err := c.Provider.DeleteItem(ctx, id); err != nil {
				failed = append(failed, id)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			deleted = append(deleted, id)
			progressed = true
		}

		if !progressed {
			return deleted, ppErrors.NewProviderError("clean could not make progress", firstErr).WithOperation("delete_item")
		}
		remaining = failed
	}

	return deleted, nil
}
