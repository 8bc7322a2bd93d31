package cmd

import (
	"fmt"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
	"github.com/aryeko/planpilot/internal/plan"
	"github.com/aryeko/planpilot/internal/plan/tracker"

	appconfig "github.com/aryeko/planpilot/internal/config"
)

// loadPlan loads, hashes, and validates the plan named by cfg's
// plan_paths/validation_mode, returning a Plan whose ID is the computed
// plan_id (§4.1-§4.3).
func loadPlan(cfg *appconfig.Config) (*plan.Plan, error) {
	p, err := plan.Load(plan.Paths{
		Unified: cfg.PlanPaths.Unified,
		Epics:   cfg.PlanPaths.Epics,
		Stories: cfg.PlanPaths.Stories,
		Tasks:   cfg.PlanPaths.Tasks,
	})
	if err != nil {
		return nil, err
	}

	planID, err := plan.Hash(p.Items)
	if err != nil {
		return nil, ppErrors.NewPlanLoadError("failed to compute plan ID", err)
	}
	p.ID = planID

	mode := plan.Strict
	if cfg.ValidationMode == "partial" {
		mode = plan.Partial
	}
	if err := plan.Validate(p, mode); err != nil {
		return nil, err
	}

	return p, nil
}

// newProvider instantiates the tracker.Provider named by cfg.Provider,
// or a DryRunProvider when dryRun is set — dry-run always wins regardless
// of the configured provider, since it exists precisely to let a plan run
// through the full engine without touching the real tracker.
func newProvider(cfg *appconfig.Config, dryRun bool) (tracker.Provider, error) {
	if dryRun {
		return tracker.NewDryRunProvider(), nil
	}

	switch cfg.Provider {
	case "github":
		return tracker.NewGitHubProvider(cfg.Target, cfg.Label, cfg.BoardURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
