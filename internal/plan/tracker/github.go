package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

// CommandExecutor runs an external command and returns its combined
// output. Injected so tests can stub gh CLI invocations.
type CommandExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

var defaultExecutor CommandExecutor = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// GitHubProvider implements Provider against a GitHub repository using
// the gh CLI for REST-shaped operations and `gh api graphql` for
// relation mutations the CLI has no flag for.
type GitHubProvider struct {
	executor CommandExecutor
	target   string // "owner/repo"
	label    string
	boardURL string

	repoNodeID string
}

// NewGitHubProvider returns a GitHubProvider using the real gh CLI.
func NewGitHubProvider(target, label, boardURL string) *GitHubProvider {
	return &GitHubProvider{executor: defaultExecutor, target: target, label: label, boardURL: boardURL}
}

// NewGitHubProviderWithExecutor returns a GitHubProvider using a custom
// executor, for testing.
func NewGitHubProviderWithExecutor(target, label, boardURL string, executor CommandExecutor) *GitHubProvider {
	return &GitHubProvider{executor: executor, target: target, label: label, boardURL: boardURL}
}

// Setup verifies gh is authenticated and the target repo resolves, then
// reports GitHub's fixed capability set. GitHub issues have no native
// typed-issue concept reachable through gh CLI, so SupportsIssueTypes is
// false; item type distinguishes only via the marker block and label.
func (g *GitHubProvider) Setup(ctx context.Context) (Capabilities, error) {
	if _, err := g.executor(ctx, "gh", "auth", "status"); err != nil {
		return Capabilities{}, ppErrors.NewAuthenticationError("gh CLI is not authenticated", g.classifyError(err, nil)).WithStrategy("gh-cli")
	}

	output, err := g.executor(ctx, "gh", "repo", "view", g.target, "--json", "id")
	if err != nil {
		return Capabilities{}, ppErrors.NewProjectURLError("failed to resolve target repository", g.target, g.classifyError(err, output))
	}

	var repo struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(output, &repo); err != nil {
		return Capabilities{}, ppErrors.NewProjectURLError("malformed repo view response", g.target, err)
	}
	g.repoNodeID = repo.ID

	return Capabilities{
		DiscoveryByBodyContains:    true,
		SupportsParentRelation:     true,
		SupportsDependencyRelation: true,
		SupportsIssueTypes:         false,
	}, nil
}

// Teardown is a no-op: the gh CLI holds no provider-side resources
// across calls.
func (g *GitHubProvider) Teardown(ctx context.Context) error {
	return nil
}

// searchPageSize bounds each GraphQL search page; SearchItems follows
// pageInfo.hasNextPage until the result set is exhausted, satisfying the
// "must return all matching items" contract without truncation.
const searchPageSize = 100

// SearchItems runs a GitHub issue search scoped to the configured label
// plus filters.BodyContains, paginating via the GraphQL search
// connection's cursor.
func (g *GitHubProvider) SearchItems(ctx context.Context, filters ItemSearchFilters) ([]Item, error) {
	var items []Item
	cursor := ""

	for {
		queryStr := buildSearchQuery(g.target, filters)
		after := "null"
		if cursor != "" {
			after = strconv.Quote(cursor)
		}

		query := fmt.Sprintf(`query {
			search(query: %q, type: ISSUE, first: %d, after: %s) {
				pageInfo { hasNextPage endCursor }
				nodes {
					... on Issue { id number title body url }
				}
			}
		}`, queryStr, searchPageSize, after)

		output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
		if err != nil {
			return nil, ppErrors.NewProviderError("search_items failed", g.classifyError(err, output)).WithOperation("search_items")
		}

		var resp struct {
			Data struct {
				Search struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID     string `json:"id"`
						Number int    `json:"number"`
						Title  string `json:"title"`
						Body   string `json:"body"`
						URL    string `json:"url"`
					} `json:"nodes"`
				} `json:"search"`
			} `json:"data"`
			Errors []graphQLError `json:"errors"`
		}
		if err := json.Unmarshal(output, &resp); err != nil {
			return nil, ppErrors.NewProviderError("malformed search response", err).WithOperation("search_items")
		}
		if len(resp.Errors) > 0 {
			return nil, ppErrors.NewProviderError("graphql error: "+resp.Errors[0].Message, nil).WithOperation("search_items")
		}

		for _, node := range resp.Data.Search.Nodes {
			items = append(items, Item{
				ID:    node.ID,
				Key:   fmt.Sprintf("#%d", node.Number),
				URL:   node.URL,
				Title: node.Title,
				Body:  node.Body,
			})
		}

		if !resp.Data.Search.PageInfo.HasNextPage {
			break
		}
		cursor = resp.Data.Search.PageInfo.EndCursor
	}

	return items, nil
}

func buildSearchQuery(target string, filters ItemSearchFilters) string {
	var parts []string
	parts = append(parts, "repo:"+target, "is:issue")
	for _, label := range filters.Labels {
		parts = append(parts, fmt.Sprintf("label:%q", label))
	}
	if filters.BodyContains != "" {
		parts = append(parts, strconv.Quote(filters.BodyContains)+" in:body")
	}
	return strings.Join(parts, " ")
}

// createStep names a completed step of CreateItem's multi-step sequence,
// reported in CreateItemPartialFailureError so a retried run knows how
// far the previous attempt got.
const (
	stepIssueCreated   = "issue_created"
	stepAddedToProject = "added_to_project"
)

// CreateItem creates an issue, then (if a project board is configured)
// adds it to the board. Labels are passed at creation time since gh
// issue create accepts --label directly.
func (g *GitHubProvider) CreateItem(ctx context.Context, input CreateItemInput) (Item, error) {
	args := []string{"issue", "create", "--repo", g.target, "--title", input.Title, "--body", input.Body}
	for _, label := range input.Labels {
		args = append(args, "--label", label)
	}

	output, err := g.executor(ctx, "gh", args...)
	if err != nil {
		return Item{}, ppErrors.NewProviderError("create_item failed", g.classifyError(err, output)).WithOperation("create_item")
	}

	url := strings.TrimSpace(string(output))
	number, err := parseIssueNumber(url)
	if err != nil {
		return Item{}, ppErrors.NewCreateItemPartialFailureError("issue created but URL unparseable", err, true)
	}

	nodeID, err := g.getIssueNodeID(ctx, number)
	if err != nil {
		return Item{}, ppErrors.NewCreateItemPartialFailureError("issue created but node ID fetch failed", err, true).
			WithCreatedIdentity("", strconv.Itoa(number), url).
			WithCompletedSteps([]string{stepIssueCreated})
	}

	completed := []string{stepIssueCreated}

	if g.boardURL != "" {
		if _, err := g.executor(ctx, "gh", "project", "item-add", g.boardURL, "--owner", repoOwner(g.target), "--url", url); err != nil {
			return Item{}, ppErrors.NewCreateItemPartialFailureError("issue created but adding to project board failed", g.classifyError(err, nil), true).
				WithCreatedIdentity(nodeID, strconv.Itoa(number), url).
				WithCompletedSteps(completed)
		}
		completed = append(completed, stepAddedToProject)
	}

	return Item{
		ID:       nodeID,
		Key:      fmt.Sprintf("#%d", number),
		URL:      url,
		Title:    input.Title,
		Body:     input.Body,
		ItemType: input.ItemType,
	}, nil
}

// UpdateItem applies only input's set fields. Label additions use
// --add-label, which is inherently additive on the gh CLI — there is no
// risk of accidentally replacing the label set.
func (g *GitHubProvider) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	number, err := g.issueNumberForNodeID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	args := []string{"issue", "edit", strconv.Itoa(number), "--repo", g.target}
	if input.Title != nil {
		args = append(args, "--title", *input.Title)
	}
	if input.Body != nil {
		args = append(args, "--body", *input.Body)
	}
	for _, label := range input.Labels {
		args = append(args, "--add-label", label)
	}

	if len(args) > 3 {
		if output, err := g.executor(ctx, "gh", args...); err != nil {
			return Item{}, ppErrors.NewProviderError("update_item failed", g.classifyError(err, output)).WithOperation("update_item")
		}
	}

	return g.GetItem(ctx, id)
}

// GetItem fetches a single issue by its GraphQL node ID.
func (g *GitHubProvider) GetItem(ctx context.Context, id string) (Item, error) {
	number, err := g.issueNumberForNodeID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	output, err := g.executor(ctx, "gh", "issue", "view", strconv.Itoa(number), "--repo", g.target, "--json", "id,number,title,body,url")
	if err != nil {
		return Item{}, ppErrors.NewProviderError("get_item failed", g.classifyError(err, output)).WithOperation("get_item")
	}

	var resp struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return Item{}, ppErrors.NewProviderError("malformed get_item response", err).WithOperation("get_item")
	}

	return Item{ID: resp.ID, Key: fmt.Sprintf("#%d", resp.Number), URL: resp.URL, Title: resp.Title, Body: resp.Body}, nil
}

// DeleteItem issues GraphQL's deleteIssue mutation; gh's issue-level
// commands only close issues, never delete them.
func (g *GitHubProvider) DeleteItem(ctx context.Context, id string) error {
	query := fmt.Sprintf(`mutation { deleteIssue(input: {issueId: %q}) { clientMutationId } }`, id)
	output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
	if err != nil {
		return ppErrors.NewProviderError("delete_item failed", g.classifyError(err, output)).WithOperation("delete_item")
	}
	return checkGraphQLErrors(output, "delete_item")
}

// ReconcileRelations diffs the item's current parent/blockers against
// the desired set and issues only the add/remove mutations needed, using
// the sub-issue and dependency GraphQL mutations for the parent-child and
// blocked-by relation kinds respectively.
func (g *GitHubProvider) ReconcileRelations(ctx context.Context, id string, parent *Item, blockers []Item) error {
	current, err := g.currentRelations(ctx, id)
	if err != nil {
		return err
	}

	if current.parentID != "" && (parent == nil || parent.ID != current.parentID) {
		if err := g.mutateRelation(ctx, "removeSubIssue", current.parentID, id); err != nil {
			return err
		}
	}
	if parent != nil && parent.ID != current.parentID {
		if err := g.mutateRelation(ctx, "addSubIssue", parent.ID, id); err != nil {
			return err
		}
	}

	want := make(map[string]bool, len(blockers))
	for _, b := range blockers {
		want[b.ID] = true
	}
	for blockerID := range current.blockerIDs {
		if !want[blockerID] {
			if err := g.mutateDependency(ctx, "removeIssueDependency", id, blockerID); err != nil {
				return err
			}
		}
	}
	for blockerID := range want {
		if !current.blockerIDs[blockerID] {
			if err := g.mutateDependency(ctx, "addIssueDependency", id, blockerID); err != nil {
				return err
			}
		}
	}

	return nil
}

type relations struct {
	parentID   string
	blockerIDs map[string]bool
}

func (g *GitHubProvider) currentRelations(ctx context.Context, id string) (relations, error) {
	query := fmt.Sprintf(`query {
		node(id: %q) {
			... on Issue {
				parent { id }
				blockedByIssues: trackedIssues { nodes { id } }
			}
		}
	}`, id)

	output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
	if err != nil {
		return relations{}, ppErrors.NewProviderError("failed to fetch current relations", g.classifyError(err, output)).WithOperation("reconcile_relations")
	}

	var resp struct {
		Data struct {
			Node struct {
				Parent struct {
					ID string `json:"id"`
				} `json:"parent"`
				BlockedByIssues struct {
					Nodes []struct {
						ID string `json:"id"`
					} `json:"nodes"`
				} `json:"blockedByIssues"`
			} `json:"node"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return relations{}, ppErrors.NewProviderError("malformed relations response", err).WithOperation("reconcile_relations")
	}
	if len(resp.Errors) > 0 {
		return relations{}, ppErrors.NewProviderError("graphql error: "+resp.Errors[0].Message, nil).WithOperation("reconcile_relations")
	}

	blockers := make(map[string]bool, len(resp.Data.Node.BlockedByIssues.Nodes))
	for _, n := range resp.Data.Node.BlockedByIssues.Nodes {
		blockers[n.ID] = true
	}

	return relations{parentID: resp.Data.Node.Parent.ID, blockerIDs: blockers}, nil
}

func (g *GitHubProvider) mutateRelation(ctx context.Context, mutation, parentID, subID string) error {
	query := fmt.Sprintf(`mutation {
		%s(input: {issueId: %q, subIssueId: %q}) {
			issue { number }
		}
	}`, mutation, parentID, subID)

	output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
	if err != nil {
		return ppErrors.NewProviderError(mutation+" failed", g.classifyError(err, output)).WithOperation("reconcile_relations")
	}
	return checkGraphQLErrors(output, "reconcile_relations")
}

func (g *GitHubProvider) mutateDependency(ctx context.Context, mutation, issueID, blockedByID string) error {
	query := fmt.Sprintf(`mutation {
		%s(input: {issueId: %q, blockedByIssueId: %q}) {
			issue { number }
		}
	}`, mutation, issueID, blockedByID)

	output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
	if err != nil {
		return ppErrors.NewProviderError(mutation+" failed", g.classifyError(err, output)).WithOperation("reconcile_relations")
	}
	return checkGraphQLErrors(output, "reconcile_relations")
}

func (g *GitHubProvider) getIssueNodeID(ctx context.Context, number int) (string, error) {
	output, err := g.executor(ctx, "gh", "issue", "view", strconv.Itoa(number), "--repo", g.target, "--json", "id")
	if err != nil {
		return "", g.classifyError(err, output)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return "", fmt.Errorf("failed to parse node ID response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("no node ID found for issue #%d", number)
	}
	return resp.ID, nil
}

// issueNumberForNodeID resolves a GraphQL node ID back to an issue
// number via a direct node lookup, since most gh CLI subcommands are
// keyed by number rather than node ID.
func (g *GitHubProvider) issueNumberForNodeID(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`query { node(id: %q) { ... on Issue { number } } }`, id)
	output, err := g.executor(ctx, "gh", "api", "graphql", "-f", "query="+query)
	if err != nil {
		return 0, ppErrors.NewProviderError("failed to resolve issue number", g.classifyError(err, output)).WithOperation("get_item")
	}

	var resp struct {
		Data struct {
			Node struct {
				Number int `json:"number"`
			} `json:"node"`
		} `json:"data"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return 0, ppErrors.NewProviderError("malformed node lookup response", err).WithOperation("get_item")
	}
	return resp.Data.Node.Number, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

func checkGraphQLErrors(output []byte, operation string) error {
	var resp struct {
		Errors []graphQLError `json:"errors"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return ppErrors.NewProviderError("malformed graphql response", err).WithOperation(operation)
	}
	if len(resp.Errors) > 0 {
		return ppErrors.NewProviderError("graphql error: "+resp.Errors[0].Message, nil).WithOperation(operation)
	}
	return nil
}

// classifyError turns a gh CLI failure into a sentinel-wrapped error so
// callers can errors.Is against ErrAuthRequired, ErrRateLimited, etc.
func (g *GitHubProvider) classifyError(err error, output []byte) error {
	outStr := strings.ToLower(string(output))

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, execErr)
	}

	switch {
	case strings.Contains(outStr, "not logged in") || strings.Contains(outStr, "authentication required") || strings.Contains(outStr, "gh auth login"):
		return fmt.Errorf("%w: %s", ErrAuthRequired, strings.TrimSpace(string(output)))
	case strings.Contains(outStr, "could not find issue") || strings.Contains(outStr, "issue not found"):
		return fmt.Errorf("%w: %s", ErrItemNotFound, strings.TrimSpace(string(output)))
	case strings.Contains(outStr, "rate limit"):
		return fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(output)))
	case strings.Contains(outStr, "could not resolve to a repository"):
		return fmt.Errorf("%w: %s", ErrRepoNotFound, strings.TrimSpace(string(output)))
	}

	return fmt.Errorf("gh command failed: %w\n%s", err, string(output))
}

func parseIssueNumber(url string) (int, error) {
	idx := strings.LastIndex(url, "/")
	if idx == -1 {
		return 0, fmt.Errorf("could not parse issue number from: %s", url)
	}
	num, err := strconv.Atoi(strings.TrimSpace(url[idx+1:]))
	if err != nil {
		return 0, fmt.Errorf("invalid issue number in %q: %w", url, err)
	}
	return num, nil
}

func repoOwner(target string) string {
	idx := strings.Index(target, "/")
	if idx == -1 {
		return target
	}
	return target[:idx]
}

var _ Provider = (*GitHubProvider)(nil)
