package engine

import (
	"context"
	"testing"

	"github.com/aryeko/planpilot/internal/plan/tracker"
)

func TestMapSyncPlanner_CandidatePlanIDs(t *testing.T) {
	provider := tracker.NewDryRunProvider()
	provider.Seed(
		tracker.Item{ID: "1", Body: "PLANPILOT_META_V1\nPLAN_ID:abc\nITEM_ID:E1\nITEM_TYPE:EPIC\nPARENT_ID:\nEND_PLANPILOT_META\n"},
		tracker.Item{ID: "2", Body: "PLANPILOT_META_V1\nPLAN_ID:def\nITEM_ID:E1\nITEM_TYPE:EPIC\nPARENT_ID:\nEND_PLANPILOT_META\n"},
	)

	planner := NewMapSyncPlanner(provider, "planpilot")
	ids, err := planner.CandidatePlanIDs(context.Background())
	if err != nil {
		t.Fatalf("CandidatePlanIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "abc" || ids[1] != "def" {
		t.Errorf("CandidatePlanIDs() = %v, want [abc def]", ids)
	}
}

func TestMapSyncPlanner_Run_DiffsAgainstLocal(t *testing.T) {
	provider := tracker.NewDryRunProvider()
	provider.Seed(
		tracker.Item{ID: "1", Key: "#1", Body: "PLANPILOT_META_V1\nPLAN_ID:abc\nITEM_ID:E1\nITEM_TYPE:EPIC\nPARENT_ID:\nEND_PLANPILOT_META\n"},
		tracker.Item{ID: "2", Key: "#2", Body: "PLANPILOT_META_V1\nPLAN_ID:abc\nITEM_ID:S1\nITEM_TYPE:STORY\nPARENT_ID:E1\nEND_PLANPILOT_META\n"},
	)

	local := SyncMap{
		PlanID: "abc",
		Entries: map[string]SyncEntry{
			"E1": {ID: "1", Key: "#1"},
			"T9": {ID: "9", Key: "#9"},
		},
	}

	planner := NewMapSyncPlanner(provider, "planpilot")
	result, err := planner.Run(context.Background(), "abc", local)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Added) != 1 || result.Added[0] != "S1" {
		t.Errorf("Added = %v, want [S1]", result.Added)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "T9" {
		t.Errorf("Removed = %v, want [T9]", result.Removed)
	}
	if len(result.Updated) != 0 {
		t.Errorf("Updated = %v, want none", result.Updated)
	}
}
