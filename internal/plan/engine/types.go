// Package engine implements the sync orchestrator: discovery, upsert,
// enrichment, and relation reconciliation against a tracker.Provider,
// plus the read-only map-sync planner and the leaf-first clean planner.
package engine

import (
	"github.com/aryeko/planpilot/internal/plan"
	"github.com/aryeko/planpilot/internal/plan/tracker"
)

// Config tunes a Run: the label applied to created/updated items, the
// bound on per-phase concurrent provider calls, and whether the run is
// against a dry-run provider (informational only — the engine runs the
// same phases regardless; callers choose which Provider to pass in).
type Config struct {
	Label         string
	MaxConcurrent int
	DryRun        bool
}

// SyncEntry is the durable record of one plan item's provider identity,
// as written into a SyncMap.
type SyncEntry struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	URL      string `json:"url"`
	ItemType string `json:"item_type"`
}

// SyncMap is the complete mapping from plan-item ID to SyncEntry for one
// plan run, plus the provider target it was synced against.
type SyncMap struct {
	PlanID   string               `json:"plan_id"`
	Target   string               `json:"target"`
	BoardURL string               `json:"board_url"`
	Entries  map[string]SyncEntry `json:"entries"`
}

// SyncResult is what Run returns on success.
type SyncResult struct {
	SyncMap      SyncMap
	ItemsCreated map[plan.ItemType]int
	DryRun       bool
	Warnings     []string
}

// MapSyncResult is what MapSyncPlanner.Run returns: a reconstructed SyncMap plus
// a diff against whatever local SyncMap the caller supplied.
type MapSyncResult struct {
	SyncMap SyncMap
	Added   []string
	Updated []string
	Removed []string
}

// CleanResult is what CleanPlanner.Run returns.
type CleanResult struct {
	Deleted []string
	DryRun  bool
}

func toEntry(it tracker.Item) SyncEntry {
	return SyncEntry{ID: it.ID, Key: it.Key, URL: it.URL, ItemType: it.ItemType}
}
