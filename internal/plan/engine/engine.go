package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
	"github.com/aryeko/planpilot/internal/plan"
	"github.com/aryeko/planpilot/internal/plan/render"
	"github.com/aryeko/planpilot/internal/plan/tracker"
)

// levels is the strict phase-2 (upsert) processing order: every EPIC, then
// every STORY, then every TASK, so a child's parent is always already
// resolved by the time the child is processed. Phase 4 (relate) does not
// use it: it reconciles all participating items in one bounded pool,
// dispatched in ID order, with no level-by-level barrier.
var levels = []plan.ItemType{plan.Epic, plan.Story, plan.Task}

// Engine is the core sync orchestrator (§4.6): discovery, upsert,
// enrich, relate, in that order, with a strict happens-before boundary
// between phases and bounded concurrency within each phase.
type Engine struct {
	Plan         *plan.Plan
	PlanID       string
	Provider     tracker.Provider
	Capabilities tracker.Capabilities
	Renderer     render.Renderer
	Config       Config
}

// New returns an Engine. Capabilities is the result of the caller's prior
// Provider.Setup call — the engine itself never calls Setup or Teardown,
// matching the overview's setup()/.../teardown() framing as the caller's
// responsibility.
func New(p *plan.Plan, planID string, provider tracker.Provider, caps tracker.Capabilities, renderer render.Renderer, cfg Config) *Engine {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	return &Engine{Plan: p, PlanID: planID, Provider: provider, Capabilities: caps, Renderer: renderer, Config: cfg}
}

// Run executes all five phases and returns the SyncResult, or a
// SyncError naming the phase in which it failed.
func (e *Engine) Run(ctx context.Context) (*SyncResult, error) {
	existing, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}

	resolved, created, err := e.upsert(ctx, existing)
	if err != nil {
		return nil, err
	}

	if err := e.enrich(ctx, resolved); err != nil {
		return nil, err
	}

	warnings, err := e.relate(ctx, resolved)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]SyncEntry, len(resolved))
	for id, item := range resolved {
		entries[id] = toEntry(item)
	}

	return &SyncResult{
		SyncMap: SyncMap{
			PlanID:  e.PlanID,
			Target:  "",
			Entries: entries,
		},
		ItemsCreated: created,
		DryRun:       e.Config.DryRun,
		Warnings:     warnings,
	}, nil
}

// discover is phase 1 (§4.6 Phase 1): find every tracker item already
// carrying this plan's marker block.
func (e *Engine) discover(ctx context.Context) (map[string]tracker.Item, error) {
	if !e.Capabilities.DiscoveryByBodyContains {
		return nil, ppErrors.NewSyncError("provider does not support body-contains discovery", ppErrors.NewProviderCapabilityError("discovery_by_body_contains")).WithPhase("discover")
	}

	filters := tracker.ItemSearchFilters{
		Labels:       []string{e.Config.Label},
		BodyContains: "PLAN_ID:" + e.PlanID,
	}

	items, err := e.Provider.SearchItems(ctx, filters)
	if err != nil {
		return nil, ppErrors.NewSyncError("discovery search failed", err).WithPhase("discover")
	}

	existing := make(map[string]tracker.Item)
	for _, item := range items {
		marker, ok := render.ParseMarker(item.Body)
		if !ok || marker.PlanID != e.PlanID {
			continue
		}
		if _, ok := e.Plan.ByID(marker.ItemID); !ok {
			continue
		}
		existing[marker.ItemID] = item
	}

	return existing, nil
}

// upsert is phase 2 (§4.6 Phase 2): reuse already-discovered items,
// create everything else, level by level so a story's parent epic is
// always resolved before the story is processed.
func (e *Engine) upsert(ctx context.Context, existing map[string]tracker.Item) (map[string]tracker.Item, map[plan.ItemType]int, error) {
	resolved := make(map[string]tracker.Item, len(existing))
	for id, item := range existing {
		resolved[id] = item
	}

	created := make(map[plan.ItemType]int)
	var mu sync.Mutex

	for _, level := range levels {
		items := e.Plan.ItemsOfType(level)
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

		p := pool.New().WithErrors().WithMaxGoroutines(e.Config.MaxConcurrent).WithContext(ctx)

		for _, item := range items {
			item := item
			mu.Lock()
			_, already := resolved[item.ID]
			mu.Unlock()
			if already {
				continue
			}

			p.Go(func(ctx context.Context) error {
				parentRef := ""
				if item.ParentID != "" {
					mu.Lock()
					if parent, ok := resolved[item.ParentID]; ok {
						parentRef = parent.Key
					}
					mu.Unlock()
				}

				body, err := e.Renderer.Render(item, render.Context{PlanID: e.PlanID, ParentRef: parentRef})
				if err != nil {
					return err
				}

				size := ""
				if item.Estimate != nil {
					size = item.Estimate.Tshirt
				}

				createdItem, err := e.Provider.CreateItem(ctx, tracker.CreateItemInput{
					Title:    item.Title,
					Body:     body,
					ItemType: string(item.Type),
					Labels:   []string{e.Config.Label},
					Size:     size,
				})
				if err != nil {
					return err
				}

				mu.Lock()
				resolved[item.ID] = createdItem
				created[item.Type]++
				mu.Unlock()
				return nil
			})
		}

		if err := p.Wait(); err != nil {
			return nil, nil, ppErrors.NewSyncError("upsert failed", err).WithPhase("upsert")
		}
	}

	return resolved, created, nil
}

// enrich is phase 3 (§4.6 Phase 3): re-render every item's body now that
// all keys are known, and push the full context to the provider.
func (e *Engine) enrich(ctx context.Context, resolved map[string]tracker.Item) error {
	p := pool.New().WithErrors().WithMaxGoroutines(e.Config.MaxConcurrent).WithContext(ctx)

	for _, item := range e.Plan.Items {
		item := item
		entry, ok := resolved[item.ID]
		if !ok {
			continue
		}

		p.Go(func(ctx context.Context) error {
			renderCtx := render.Context{PlanID: e.PlanID}

			if item.ParentID != "" {
				if parent, ok := resolved[item.ParentID]; ok {
					renderCtx.ParentRef = parent.Key
				}
			}

			children := e.childrenOf(item.ID)
			for _, child := range children {
				if childEntry, ok := resolved[child.ID]; ok {
					renderCtx.Children = append(renderCtx.Children, render.ChildRef{Key: childEntry.Key, Title: child.Title})
				}
			}

			for _, dep := range item.DependsOn {
				if depEntry, ok := resolved[dep]; ok {
					renderCtx.Dependencies = append(renderCtx.Dependencies, render.DependencyRef{ID: dep, Ref: depEntry.Key})
				}
			}

			body, err := e.Renderer.Render(item, renderCtx)
			if err != nil {
				return err
			}

			size := ""
			if item.Estimate != nil {
				size = item.Estimate.Tshirt
			}
			itemType := string(item.Type)

			_, err = e.Provider.UpdateItem(ctx, entry.ID, tracker.UpdateItemInput{
				Title:    &item.Title,
				Body:     &body,
				ItemType: &itemType,
				Size:     &size,
				Labels:   []string{e.Config.Label},
			})
			return err
		})
	}

	if err := p.Wait(); err != nil {
		return ppErrors.NewSyncError("enrich failed", err).WithPhase("enrich")
	}
	return nil
}

// childrenOf returns id's sub-items ordered by (type, id), matching the
// order the engine promises renderers for rendered child lists.
func (e *Engine) childrenOf(id string) []plan.PlanItem {
	var children []plan.PlanItem
	for _, it := range e.Plan.Items {
		if it.ParentID == id {
			children = append(children, it)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Type != children[j].Type {
			return typeOrdinal(children[i].Type) < typeOrdinal(children[j].Type)
		}
		return children[i].ID < children[j].ID
	})
	return children
}

func typeOrdinal(t plan.ItemType) int {
	switch t {
	case plan.Epic:
		return 0
	case plan.Story:
		return 1
	case plan.Task:
		return 2
	default:
		return 3
	}
}

// relate is phase 4 (§4.6 Phase 4): compute the desired parent/blocked-by
// graph including roll-up edges, break cycles (recording warnings, never
// errors), and converge each participating item's remote relations.
func (e *Engine) relate(ctx context.Context, resolved map[string]tracker.Item) ([]string, error) {
	desired, warnings := computeDesiredRelations(e.Plan.Items, resolved)

	if len(desired.parentOf) > 0 && !e.Capabilities.SupportsParentRelation {
		return nil, ppErrors.NewSyncError("plan requires parent relations", ppErrors.NewProviderCapabilityError("supports_parent_relation")).WithPhase("relate")
	}
	if len(desired.blockers) > 0 && !e.Capabilities.SupportsDependencyRelation {
		return nil, ppErrors.NewSyncError("plan requires dependency relations", ppErrors.NewProviderCapabilityError("supports_dependency_relation")).WithPhase("relate")
	}

	participants := make(map[string]bool)
	for id := range desired.parentOf {
		participants[id] = true
	}
	for id := range desired.blockers {
		participants[id] = true
	}

	ids := make([]string, 0, len(participants))
	for id := range participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	p := pool.New().WithErrors().WithMaxGoroutines(e.Config.MaxConcurrent).WithContext(ctx)

	for _, id := range ids {
		id := id
		entry, ok := resolved[id]
		if !ok {
			continue
		}

		p.Go(func(ctx context.Context) error {
			var parent *tracker.Item
			if parentID, ok := desired.parentOf[id]; ok {
				if parentItem, ok := resolved[parentID]; ok {
					parent = &parentItem
				}
			}

			var blockers []tracker.Item
			blockerIDs := make([]string, 0, len(desired.blockers[id]))
			for blockerID := range desired.blockers[id] {
				blockerIDs = append(blockerIDs, blockerID)
			}
			sort.Strings(blockerIDs)
			for _, blockerID := range blockerIDs {
				if blockerItem, ok := resolved[blockerID]; ok {
					blockers = append(blockers, blockerItem)
				}
			}

			return e.Provider.ReconcileRelations(ctx, entry.ID, parent, blockers)
		})
	}

	if err := p.Wait(); err != nil {
		return nil, ppErrors.NewSyncError("relate failed", err).WithPhase("relate")
	}

	return warnings, nil
}
