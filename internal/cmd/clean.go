package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/aryeko/planpilot/internal/config"
	"github.com/aryeko/planpilot/internal/plan/engine"
)

var (
	cleanAll   bool
	cleanApply bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete items bearing the configured label, children before parents",
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "delete items across every plan bearing the label, not just the current plan")
	cleanCmd.Flags().BoolVar(&cleanApply, "apply", false, "actually issue deletes; without this flag, clean only reports the planned deletion count")
}

func runClean(cmd *cobra.Command, args []string) error {
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
	log = log.WithPhase("clean")

	planID := ""
	if !cleanAll {
		p, err := loadPlan(cfg)
		if err != nil {
			return &silentError{cause: err}
		}
		planID = p.ID
		log = log.WithPlanID(planID)
	}

	provider, err := newProvider(cfg, false)
	if err != nil {
		return &silentError{cause: err}
	}
	if _, err := provider.Setup(ctx); err != nil {
		return &silentError{cause: err}
	}
	defer func() { _ = provider.Teardown(ctx) }()

	planner := engine.NewCleanPlanner(provider, cfg.Label)

	result, err := planner.Run(ctx, planID, !cleanApply)
	if err != nil {
		log.Error("clean failed", "error", err)
		return &silentError{cause: err}
	}

	log.Info("clean finished", "deleted", len(result.Deleted), "dry_run", result.DryRun)

	if result.DryRun {
		fmt.Printf("would delete %d items (pass --apply to execute)\n", len(result.Deleted))
		return nil
	}

	fmt.Printf("deleted %d items\n", len(result.Deleted))
	return nil
}
