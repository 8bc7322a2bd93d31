// Package tracker defines the provider abstraction the sync engine runs
// against: a capability-gated CRUD + relation interface implemented by a
// dry-run in-memory provider (for tests and --dry-run runs) and a GitHub
// adapter built on the gh CLI and its GraphQL API.
package tracker

import "context"

// Capabilities describes what a Provider supports. setup() populates
// this; the engine checks it before attempting an operation that
// requires a capability the provider lacks.
type Capabilities struct {
	DiscoveryByBodyContains    bool
	SupportsParentRelation     bool
	SupportsDependencyRelation bool
	SupportsIssueTypes         bool
}

// Item is an abstract work item as returned by a provider. Per the
// design note on source Items carrying a back-reference to their
// provider, Item here is a plain data record; relation operations are
// Provider methods taking an item ID rather than Item methods, since Go
// has no implicit dynamic dispatch on captured closures to model that
// ownership cleanly.
type Item struct {
	ID       string
	Key      string
	URL      string
	Title    string
	Body     string
	ItemType string
}

// CreateItemInput is a provider-agnostic request to create an item.
type CreateItemInput struct {
	Title    string
	Body     string
	ItemType string
	// Labels is applied as-is on create; on update the same field is
	// additive (see UpdateItemInput).
	Labels []string
	Size   string
}

// UpdateItemInput applies only its non-nil fields. Labels, when
// non-nil, are unioned with the item's existing labels — a provider
// must never replace the label set wholesale.
type UpdateItemInput struct {
	Title    *string
	Body     *string
	ItemType *string
	Labels   []string
	Size     *string
}

// ItemSearchFilters bounds a SearchItems query.
type ItemSearchFilters struct {
	Labels       []string
	BodyContains string
}

// Provider adapts the sync engine to an external issue tracker.
// Life-cycle: Setup, then any number of operations, then Teardown.
type Provider interface {
	// Setup resolves the configured target, verifies authentication,
	// fetches board/field identifiers, and returns the provider's
	// capabilities. Called once per engine run.
	Setup(ctx context.Context) (Capabilities, error)
	// Teardown releases any provider-held resources. Called once per
	// engine run, after all operations complete or fail.
	Teardown(ctx context.Context) error

	// SearchItems returns every item matching filters; implementations
	// must paginate internally rather than truncate.
	SearchItems(ctx context.Context, filters ItemSearchFilters) ([]Item, error)
	// CreateItem is atomic from the caller's perspective. On failure
	// mid-sequence it returns a CreateItemPartialFailureError carrying
	// whatever identity was assigned and the steps already completed.
	CreateItem(ctx context.Context, input CreateItemInput) (Item, error)
	// UpdateItem applies only input's non-nil fields; labels are
	// additive.
	UpdateItem(ctx context.Context, id string, input UpdateItemInput) (Item, error)
	// GetItem fetches a single item by provider ID.
	GetItem(ctx context.Context, id string) (Item, error)
	// DeleteItem destroys an item. Used only by the clean workflow.
	DeleteItem(ctx context.Context, id string) error

	// ReconcileRelations converges the item's parent and blocker set
	// against observed remote state, issuing only the add/remove calls
	// needed. It is idempotent: calling it twice with the same
	// arguments is a no-op the second time. blockers may be empty;
	// parent may be nil.
	ReconcileRelations(ctx context.Context, id string, parent *Item, blockers []Item) error
}
