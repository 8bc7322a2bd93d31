package tracker

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

// DryRunProvider is an in-memory Provider satisfying the full interface
// without any external I/O. It records every call and serves search
// results out of its own state, which may be pre-seeded via Seed for
// partial-create-recovery style tests.
type DryRunProvider struct {
	mu    sync.Mutex
	items map[string]Item
	// relations maps item ID to its current (parent, blockers) as last
	// set by ReconcileRelations, so calling it twice with the same
	// arguments is observably a no-op.
	relations map[string]dryRunRelation

	// Calls records every method invocation, in order, for assertions in
	// tests that care about call counts (e.g. "exactly one search_items
	// call").
	Calls []string
}

type dryRunRelation struct {
	parentID   string
	blockerIDs map[string]bool
}

// NewDryRunProvider returns an empty DryRunProvider.
func NewDryRunProvider() *DryRunProvider {
	return &DryRunProvider{
		items:     make(map[string]Item),
		relations: make(map[string]dryRunRelation),
	}
}

// Seed pre-populates the provider's item set, for tests simulating a
// previous partial run.
func (d *DryRunProvider) Seed(items ...Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, item := range items {
		d.items[item.ID] = item
	}
}

func (d *DryRunProvider) record(call string) {
	d.mu.Lock()
	d.Calls = append(d.Calls, call)
	d.mu.Unlock()
}

// Setup reports full capability support: the dry-run provider exists
// precisely to exercise every engine code path without real I/O.
func (d *DryRunProvider) Setup(ctx context.Context) (Capabilities, error) {
	d.record("setup")
	return Capabilities{
		DiscoveryByBodyContains:    true,
		SupportsParentRelation:     true,
		SupportsDependencyRelation: true,
		SupportsIssueTypes:         true,
	}, nil
}

// Teardown is a no-op.
func (d *DryRunProvider) Teardown(ctx context.Context) error {
	d.record("teardown")
	return nil
}

// SearchItems filters the in-memory item set by BodyContains, if set.
// filters.Labels is ignored, since the dry-run provider does not store
// labels.
func (d *DryRunProvider) SearchItems(ctx context.Context, filters ItemSearchFilters) ([]Item, error) {
	d.record("search_items")
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Item
	for _, item := range d.items {
		if filters.BodyContains != "" && !strings.Contains(item.Body, filters.BodyContains) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// CreateItem assigns a synthetic key of the form "dry-run-" followed by
// the first 8 characters of the item's ID, and a
// random UUID identity, grounded on the same uuid.NewString pattern the
// rest of the retrieval pack uses for synthetic IDs.
func (d *DryRunProvider) CreateItem(ctx context.Context, input CreateItemInput) (Item, error) {
	d.record("create_item")
	d.mu.Lock()
	defer d.mu.Unlock()

	id := uuid.NewString()
	item := Item{
		ID:       id,
		Key:      "dry-run-" + id[:8],
		URL:      "dry-run://" + id,
		Title:    input.Title,
		Body:     input.Body,
		ItemType: input.ItemType,
	}
	d.items[id] = item
	return item, nil
}

// UpdateItem applies input's non-nil fields. Labels are tracked only
// insofar as the dry-run provider does not model labels explicitly
// (CreateItemInput.Labels/UpdateItemInput.Labels are accepted but not
// persisted); every other field is additive-safe by construction since
// the dry-run provider never removes data the caller did not ask it to.
func (d *DryRunProvider) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	d.record("update_item")
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return Item{}, ppErrors.NewNotFoundError("item", id)
	}
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Body != nil {
		item.Body = *input.Body
	}
	if input.ItemType != nil {
		item.ItemType = *input.ItemType
	}
	d.items[id] = item
	return item, nil
}

// GetItem fetches a single item by its synthetic ID.
func (d *DryRunProvider) GetItem(ctx context.Context, id string) (Item, error) {
	d.record("get_item")
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return Item{}, ppErrors.NewNotFoundError("item", id)
	}
	return item, nil
}

// DeleteItem removes the item from in-memory state.
func (d *DryRunProvider) DeleteItem(ctx context.Context, id string) error {
	d.record("delete_item")
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.items[id]; !ok {
		return ppErrors.NewNotFoundError("item", id)
	}
	delete(d.items, id)
	delete(d.relations, id)
	return nil
}

// ReconcileRelations stores the desired relation set, making a second
// call with identical arguments an observable no-op per the Provider
// contract.
func (d *DryRunProvider) ReconcileRelations(ctx context.Context, id string, parent *Item, blockers []Item) error {
	d.record("reconcile_relations")
	d.mu.Lock()
	defer d.mu.Unlock()

	rel := dryRunRelation{blockerIDs: make(map[string]bool, len(blockers))}
	if parent != nil {
		rel.parentID = parent.ID
	}
	for _, b := range blockers {
		rel.blockerIDs[b.ID] = true
	}
	d.relations[id] = rel
	return nil
}

// Relations returns the last reconciled (parent, blocker set) for id,
// for test assertions.
func (d *DryRunProvider) Relations(id string) (parentID string, blockerIDs map[string]bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rel := d.relations[id]
	return rel.parentID, rel.blockerIDs
}

var _ Provider = (*DryRunProvider)(nil)
