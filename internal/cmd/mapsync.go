package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/aryeko/planpilot/internal/config"
	"github.com/aryeko/planpilot/internal/plan/engine"
)

var mapSyncPlanID string

var mapSyncCmd = &cobra.Command{
	Use:   "map-sync",
	Short: "Reconstruct the sync-map from remote state without mutating the provider",
	RunE:  runMapSync,
}

func init() {
	mapSyncCmd.Flags().StringVar(&mapSyncPlanID, "plan-id", "", "explicit plan ID to reconcile (auto-selected when exactly one candidate exists)")
}

func runMapSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return &silentError{cause: err}
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return &silentError{cause: err}
	}
	defer func() { _ = log.Close() }()
	log = log.WithPhase("map-sync")

	provider, err := newProvider(cfg, false)
	if err != nil {
		return &silentError{cause: err}
	}
	if _, err := provider.Setup(ctx); err != nil {
		return &silentError{cause: err}
	}
	defer func() { _ = provider.Teardown(ctx) }()

	planner := engine.NewMapSyncPlanner(provider, cfg.Label)

	planID := mapSyncPlanID
	if planID == "" {
		candidates, err := planner.CandidatePlanIDs(ctx)
		if err != nil {
			return &silentError{cause: err}
		}
		switch len(candidates) {
		case 0:
			return &silentError{cause: fmt.Errorf("no plan found bearing label %q", cfg.Label)}
		case 1:
			planID = candidates[0]
		default:
			return &silentError{cause: fmt.Errorf("multiple plan candidates found, pass --plan-id: %v", candidates)}
		}
	}
	log = log.WithPlanID(planID)

	local := readLocalSyncMap(cfg.SyncPath)

	result, err := planner.Run(ctx, planID, local)
	if err != nil {
		log.Error("map-sync failed", "error", err)
		return &silentError{cause: err}
	}

	log.Info("map-sync finished", "added", len(result.Added), "updated", len(result.Updated), "removed", len(result.Removed))

	fmt.Printf("plan %s: %d added, %d updated, %d removed\n", planID, len(result.Added), len(result.Updated), len(result.Removed))
	return writeSyncMap(cfg.SyncPath, result.SyncMap)
}

func readLocalSyncMap(path string) engine.SyncMap {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.SyncMap{}
	}
	var syncMap engine.SyncMap
	if err := json.Unmarshal(data, &syncMap); err != nil {
		return engine.SyncMap{}
	}
	return syncMap
}
