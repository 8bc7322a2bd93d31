package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aryeko/planpilot/internal/plan"
	"github.com/aryeko/planpilot/internal/plan/tracker"
)

// desiredRelations is the phase-4 target state: for every item that
// participates in a parent or blocked-by edge, its resolved parent (if
// any) and the set of item IDs that block it.
type desiredRelations struct {
	parentOf map[string]string
	blockers map[string]map[string]bool
}

// computeDesiredRelations builds the phase-4 relation graph: direct
// parent_id edges, direct depends_on edges, and roll-up blocked-by edges
// computed by walking depends_on edges up the parent hierarchy one level
// at a time until no edge rolls up any further (the hierarchy is at most
// three levels deep, so this converges in at most two passes).
//
// Only edges between items present in resolved (i.e. items the engine has
// already created or matched to an existing tracker item) are considered;
// in partial validation mode an item's parent_id/depends_on may reference
// an item that was never loaded, and such edges are silently omitted here
// exactly as they are omitted from rendered context.
func computeDesiredRelations(items []plan.PlanItem, resolved map[string]tracker.Item) (desiredRelations, []string) {
	byID := make(map[string]plan.PlanItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	parentOf := make(map[string]string)
	for _, it := range items {
		if it.ParentID == "" {
			continue
		}
		if _, ok := resolved[it.ParentID]; !ok {
			continue
		}
		if _, ok := resolved[it.ID]; !ok {
			continue
		}
		parentOf[it.ID] = it.ParentID
	}

	direct := make(map[string]map[string]bool)
	for _, it := range items {
		if _, ok := resolved[it.ID]; !ok {
			continue
		}
		for _, dep := range it.DependsOn {
			if _, ok := resolved[dep]; !ok {
				continue
			}
			addEdge(direct, it.ID, dep)
		}
	}

	combined := copyEdges(direct)
	current := direct
	for {
		next := rollUp(current, parentOf)
		if len(next) == 0 {
			break
		}
		progressed := false
		for src, dsts := range next {
			for dst := range dsts {
				if !combined[src][dst] {
					addEdge(combined, src, dst)
					progressed = true
				}
			}
		}
		if !progressed {
			break
		}
		current = next
	}

	combined, warnings := breakCycles(combined)

	return desiredRelations{parentOf: parentOf, blockers: combined}, warnings
}

// rollUp walks one level up the hierarchy: for every edge child_a ->
// child_b in edges, if both children resolve to distinct parents, adds
// parent_a -> parent_b to the result.
func rollUp(edges map[string]map[string]bool, parentOf map[string]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for src, dsts := range edges {
		parentSrc, ok := parentOf[src]
		if !ok {
			continue
		}
		for dst := range dsts {
			parentDst, ok := parentOf[dst]
			if !ok || parentDst == parentSrc {
				continue
			}
			addEdge(out, parentSrc, parentDst)
		}
	}
	return out
}

func addEdge(edges map[string]map[string]bool, src, dst string) {
	if edges[src] == nil {
		edges[src] = make(map[string]bool)
	}
	edges[src][dst] = true
}

func copyEdges(edges map[string]map[string]bool) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(edges))
	for src, dsts := range edges {
		cp := make(map[string]bool, len(dsts))
		for dst := range dsts {
			cp[dst] = true
		}
		out[src] = cp
	}
	return out
}

// breakCycles repeatedly runs DFS cycle detection (grounded on the same
// visiting/visited tri-state walk used elsewhere in the pack for
// dependency-cycle checks) and, for each cycle found, drops the edge
// whose source ID sorts greatest among the cycle's edges — a
// deterministic tie-break so repeated runs over the same plan always
// skip the same edge. Every drop is recorded as a warning, never an
// error, per the "cyclic edges are skipped" contract.
func breakCycles(edges map[string]map[string]bool) (map[string]map[string]bool, []string) {
	var warnings []string

	for {
		cycle := findCycle(edges)
		if cycle == nil {
			return edges, warnings
		}

		src, dst := worstEdge(cycle)
		delete(edges[src], dst)
		if len(edges[src]) == 0 {
			delete(edges, src)
		}

		warnings = append(warnings, fmt.Sprintf(
			"skipped cyclic blocked-by edge %s -> %s (cycle: %s)",
			src, dst, strings.Join(cycle, " -> "),
		))
	}
}

// worstEdge picks the cycle's consecutive edge whose source ID sorts
// greatest, breaking ties by the destination ID.
func worstEdge(cycle []string) (src, dst string) {
	for i := 0; i < len(cycle)-1; i++ {
		a, b := cycle[i], cycle[i+1]
		if src == "" || a > src || (a == src && b > dst) {
			src, dst = a, b
		}
	}
	return src, dst
}

// findCycle returns one cycle in edges as a path of IDs (first == last),
// or nil if the graph is acyclic. Node IDs are visited in sorted order so
// results are deterministic across runs with identical input.
func findCycle(edges map[string]map[string]bool) []string {
	nodes := make(map[string]bool)
	for src, dsts := range edges {
		nodes[src] = true
		for dst := range dsts {
			nodes[dst] = true
		}
	}
	ordered := make([]string, 0, len(nodes))
	for n := range nodes {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(nodes))
	var cyclePath []string

	var visit func(id string, path []string) bool
	visit = func(id string, path []string) bool {
		if state[id] == visiting {
			for i, p := range path {
				if p == id {
					cyclePath = append(append([]string{}, path[i:]...), id)
					return true
				}
			}
			cyclePath = append(append([]string{}, path...), id)
			return true
		}
		if state[id] == visited {
			return false
		}

		state[id] = visiting
		path = append(path, id)

		neighbors := make([]string, 0, len(edges[id]))
		for n := range edges[id] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, n := range neighbors {
			if visit(n, path) {
				return true
			}
		}

		state[id] = visited
		return false
	}

	for _, n := range ordered {
		if state[n] == unvisited {
			if visit(n, nil) {
				return cyclePath
			}
		}
	}
	return nil
}
