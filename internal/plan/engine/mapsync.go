package engine

import (
	"context"
	"sort"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
	"github.com/aryeko/planpilot/internal/plan/render"
	"github.com/aryeko/planpilot/internal/plan/tracker"
)

// MapSyncPlanner reconstructs a SyncMap from remote state (§4.7). It never
// mutates the provider — every method is read-only.
type MapSyncPlanner struct {
	Provider tracker.Provider
	Label    string
}

// NewMapSyncPlanner returns a MapSyncPlanner bound to an already-set-up
// provider.
func NewMapSyncPlanner(provider tracker.Provider, label string) *MapSyncPlanner {
	return &MapSyncPlanner{Provider: provider, Label: label}
}

// CandidatePlanIDs discovers every distinct PLAN_ID carried by items bearing
// the configured label, for the caller to present as a selection when more
// than one plan shares the label.
func (m *MapSyncPlanner) CandidatePlanIDs(ctx context.Context) ([]string, error) {
	items, err := m.Provider.SearchItems(ctx, tracker.ItemSearchFilters{Labels: []string{m.Label}})
	if err != nil {
		return nil, ppErrors.NewProviderError("candidate discovery failed", err).WithOperation("search_items")
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if marker, ok := render.ParseMarker(item.Body); ok {
			seen[marker.PlanID] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Run reconstructs the SyncMap for planID from remote state and diffs it
// against local (the caller's previously-written SyncMap, or a zero value
// if none exists).
func (m *MapSyncPlanner) Run(ctx context.Context, planID string, local SyncMap) (*MapSyncResult, error) {
	items, err := m.Provider.SearchItems(ctx, tracker.ItemSearchFilters{
		Labels:       []string{m.Label},
		BodyContains: "PLAN_ID:" + planID,
	})
	if err != nil {
		return nil, ppErrors.NewProviderError("map-sync search failed", err).WithOperation("search_items")
	}

	entries := make(map[string]SyncEntry)
	for _, item := range items {
		marker, ok := render.ParseMarker(item.Body)
		if !ok || marker.PlanID != planID {
			continue
		}
		entries[marker.ItemID] = toEntry(item)
	}

	result := &MapSyncResult{
		SyncMap: SyncMap{PlanID: planID, Target: local.Target, BoardURL: local.BoardURL, Entries: entries},
	}

	for id, entry := range entries {
		prior, ok := local.Entries[id]
		switch {
		case !ok:
			result.Added = append(result.Added, id)
		case prior != entry:
			result.Updated = append(result.Updated, id)
		}
	}
	for id := range local.Entries {
		if _, ok := entries[id]; !ok {
			result.Removed = append(result.Removed, id)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Updated)
	sort.Strings(result.Removed)

	return result, nil
}
