package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/aryeko/planpilot/internal/config"
	"github.com/aryeko/planpilot/internal/logging"
	"github.com/aryeko/planpilot/internal/plan"
	"github.com/aryeko/planpilot/internal/plan/engine"
	"github.com/aryeko/planpilot/internal/plan/render"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the plan against the configured issue tracker",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "run against an in-memory provider, writing no sync-map")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return &silentError{cause: err}
	}

	p, err := loadPlan(cfg)
	if err != nil {
		return &silentError{cause: err}
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return &silentError{cause: err}
	}
	defer func() { _ = log.Close() }()
	log = log.WithPlanID(p.ID).WithRun(p.ID)

	provider, err := newProvider(cfg, syncDryRun)
	if err != nil {
		return &silentError{cause: err}
	}

	caps, err := provider.Setup(ctx)
	if err != nil {
		return &silentError{cause: err}
	}
	defer func() { _ = provider.Teardown(ctx) }()

	log.Info("sync started", "provider", cfg.Provider, "dry_run", syncDryRun)

	eng := engine.New(p, p.ID, provider, caps, render.NewDefaultRenderer(), engine.Config{
		Label:         cfg.Label,
		MaxConcurrent: cfg.MaxConcurrent,
		DryRun:        syncDryRun,
	})

	result, err := eng.Run(ctx)
	if err != nil {
		log.Error("sync failed", "error", err)
		return &silentError{cause: err}
	}

	for _, w := range result.Warnings {
		log.Warn(w)
	}

	if !syncDryRun {
		syncMap := result.SyncMap
		syncMap.Target = cfg.Target
		syncMap.BoardURL = cfg.BoardURL
		if err := writeSyncMap(cfg.SyncPath, syncMap); err != nil {
			return &silentError{cause: err}
		}
	}

	log.Info("sync finished", "created", totalCreated(result.ItemsCreated), "items", len(result.SyncMap.Entries))

	fmt.Printf("synced plan %s: %d created, %d items total, %d warnings\n",
		p.ID, totalCreated(result.ItemsCreated), len(result.SyncMap.Entries), len(result.Warnings))
	return nil
}

// newRunLogger builds the logger a run writes its JSON log lines to
// (sync.log under cfg.LogDir, or stderr when LogDir is empty).
func newRunLogger(cfg *appconfig.Config) (*logging.Logger, error) {
	return logging.NewLogger(cfg.LogDir, cfg.LogLevel)
}

func totalCreated(counts map[plan.ItemType]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func writeSyncMap(path string, syncMap engine.SyncMap) error {
	data, err := json.MarshalIndent(syncMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync-map: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
