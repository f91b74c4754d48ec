// Package order implements §4.3: realization order computation, fused
// pair collection and validation, and fuse-group partitioning.
package order

import (
	"fmt"

	"loom/internal/callgraph"
	"loom/internal/pipeline"
)

// FuseGroup is one connected component of the fuse graph: every producer
// co-scheduled, directly or transitively, with every other member.
// Members is ordered by first appearance in the final realization order.
type FuseGroup struct {
	Members []string
}

// Result is everything the synthesizer needs from ordering: the flat
// realization order (callee before caller, dependencies first) and the
// fuse-group partition of the environment.
type Result struct {
	Order  []string
	Groups []FuseGroup
	// GroupOf maps a producer name to the index into Groups of its fuse
	// group. Producers not co-scheduled with anyone are singleton groups.
	GroupOf map[string]int
	// Pairs is every validated fused pair, in discovery order.
	Pairs []pipeline.FusedPair
}

// DuplicateFusedPairError is raised when the same (Func1,Stage1,Func2,
// Stage2,VarName) tuple is recorded more than once.
type DuplicateFusedPairError struct{ Pair pipeline.FusedPair }

func (e *DuplicateFusedPairError) Error() string {
	return fmt.Sprintf("DuplicateFusedPair: fused pair (%s.s%d, %s.s%d, %s) is declared more than once",
		e.Pair.Func1, e.Pair.Stage1, e.Pair.Func2, e.Pair.Stage2, e.Pair.VarName)
}

// FuseDependencyCycleError is raised when a fused pair connects two
// producers already linked by an ordinary call-graph dependency.
type FuseDependencyCycleError struct{ Func1, Func2 string }

func (e *FuseDependencyCycleError) Error() string {
	return fmt.Sprintf("FuseDependencyCycle: %q and %q cannot be fused together because "+
		"one already calls the other", e.Func1, e.Func2)
}

// FusedPairCycleError is raised when the fuse edges themselves close a
// cycle not present in the plain call graph.
type FusedPairCycleError struct{ Producer string }

func (e *FusedPairCycleError) Error() string {
	return fmt.Sprintf("FusedPairCycle: compute_with requests form a cycle reaching back to %q", e.Producer)
}

// NonContiguousFuseGroupError is raised when a fuse group's members are
// not realized as a contiguous run in the final order.
type NonContiguousFuseGroupError struct{ Group []string }

func (e *NonContiguousFuseGroupError) Error() string {
	return fmt.Sprintf("NonContiguousFuseGroup: fused group %v is not realized contiguously; "+
		"some other producer's realization falls between its members", e.Group)
}

type pairKey struct {
	f1, f2     string
	s1, s2     int
	v          string
}

// Compute runs the full §4.3 pipeline: cycle check, fused-pair
// collection and validation, fuse-group partitioning, and the final
// topological realization order, starting the traversal from outputs.
func Compute(env *pipeline.Environment, outputs []string) (*Result, error) {
	// Step 1: every producer's direct-call graph must already be acyclic
	// (ignoring self-loops), independent of any fusion.
	for _, name := range env.Names() {
		if _, err := callgraph.TransitiveCalls(env, name); err != nil {
			return nil, err
		}
	}

	graph := directCallGraph(env)

	pairs, fuseAdj, err := collectFusedPairs(env)
	if err != nil {
		return nil, err
	}

	// Step: FuseDependencyCycle — a fused pair may not connect producers
	// already linked by a real call dependency.
	for _, p := range pairs {
		if p.Func1 == p.Func2 {
			continue
		}
		set1, err := callgraph.TransitiveCallSet(env, p.Func1)
		if err != nil {
			return nil, err
		}
		set2, err := callgraph.TransitiveCallSet(env, p.Func2)
		if err != nil {
			return nil, err
		}
		if set1[p.Func2] || set2[p.Func1] {
			return nil, &FuseDependencyCycleError{Func1: p.Func1, Func2: p.Func2}
		}
	}

	// Augment the call graph with the synthetic fuse-ordering edges:
	// Func2 is realized no later than Func1, so Func1 depends on Func2.
	augmented := cloneGraph(graph)
	for _, p := range pairs {
		if p.Func1 == p.Func2 {
			continue
		}
		addEdge(augmented, p.Func1, p.Func2)
	}

	order, err := topoOrder(env, augmented, outputs)
	if err != nil {
		if cyc, ok := err.(*cycleFound); ok {
			return nil, &FusedPairCycleError{Producer: cyc.node}
		}
		return nil, err
	}

	groups, groupOf := partitionFuseGroups(env.Names(), fuseAdj, order)

	if err := checkContiguous(order, groups, groupOf); err != nil {
		return nil, err
	}

	return &Result{Order: order, Groups: groups, GroupOf: groupOf, Pairs: pairs}, nil
}

func directCallGraph(env *pipeline.Environment) map[string]map[string]bool {
	g := make(map[string]map[string]bool, env.Len())
	for _, name := range env.Names() {
		p := env.Lookup(name)
		set := map[string]bool{}
		for _, callee := range callgraph.DirectCalls(p) {
			if callee != name {
				set[callee] = true
			}
		}
		g[name] = set
	}
	return g
}

func cloneGraph(g map[string]map[string]bool) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(g))
	for k, v := range g {
		set := make(map[string]bool, len(v))
		for x := range v {
			set[x] = true
		}
		out[k] = set
	}
	return out
}

func addEdge(g map[string]map[string]bool, from, to string) {
	if g[from] == nil {
		g[from] = map[string]bool{}
	}
	g[from][to] = true
}

// collectFusedPairs scans every producer's Init and Updates schedules,
// in environment order, discarding any pair whose Func1 (the
// compute_with target) no longer exists in the environment — matching
// the source's defensive handling of a dangling fuse target.
func collectFusedPairs(env *pipeline.Environment) ([]pipeline.FusedPair, map[string]map[string]bool, error) {
	var out []pipeline.FusedPair
	seen := map[pairKey]bool{}
	adj := map[string]map[string]bool{}
	addAdj := func(a, b string) {
		if adj[a] == nil {
			adj[a] = map[string]bool{}
		}
		if adj[b] == nil {
			adj[b] = map[string]bool{}
		}
		adj[a][b] = true
		adj[b][a] = true
	}

	scan := func(sched *pipeline.StageSchedule) error {
		if sched == nil {
			return nil
		}
		for _, p := range sched.FusedPairs {
			if !env.Has(p.Func1) {
				continue
			}
			key := pairKey{p.Func1, p.Func2, p.Stage1, p.Stage2, p.VarName}
			if seen[key] {
				return &DuplicateFusedPairError{Pair: p}
			}
			seen[key] = true
			out = append(out, p)
			if p.Func1 != p.Func2 {
				addAdj(p.Func1, p.Func2)
			}
		}
		return nil
	}

	for _, name := range env.Names() {
		p := env.Lookup(name)
		if err := scan(p.Init.Schedule); err != nil {
			return nil, nil, err
		}
		for _, u := range p.Updates {
			if err := scan(u.Schedule); err != nil {
				return nil, nil, err
			}
		}
	}
	return out, adj, nil
}

type cycleFound struct{ node string }

func (c *cycleFound) Error() string { return "cycle at " + c.node }

type dfsColor int

const (
	dfsWhite dfsColor = iota
	dfsGrey
	dfsBlack
)

// topoOrder runs a post-order DFS from outputs over the augmented graph,
// appending dependencies before dependents, so the result is a valid
// realization order (callee realized before caller).
func topoOrder(env *pipeline.Environment, graph map[string]map[string]bool, outputs []string) ([]string, error) {
	colors := map[string]dfsColor{}
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		colors[name] = dfsGrey
		// Iterate neighbors in the stable environment order for
		// determinism, not map iteration order.
		for _, callee := range env.Names() {
			if !graph[name][callee] {
				continue
			}
			switch colors[callee] {
			case dfsWhite:
				if err := visit(callee); err != nil {
					return err
				}
			case dfsGrey:
				return &cycleFound{node: callee}
			}
		}
		colors[name] = dfsBlack
		order = append(order, name)
		return nil
	}

	for _, out := range outputs {
		if colors[out] == dfsWhite && env.Has(out) {
			if err := visit(out); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// partitionFuseGroups computes connected components of the fuse
// adjacency over the full environment (supplemented behavior: partition
// every environment name, independent of reachability), then restricts
// each component to members that actually appear in the final order.
// Groups are returned ordered by each member's first appearance in
// order.
func partitionFuseGroups(allNames []string, adj map[string]map[string]bool, order []string) ([]FuseGroup, map[string]int) {
	component := map[string]int{}
	var components [][]string
	for _, name := range allNames {
		if _, ok := component[name]; ok {
			continue
		}
		id := len(components)
		var members []string
		queue := []string{name}
		component[name] = id
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, neigh := range sortedKeys(adj[cur]) {
				if _, visited := component[neigh]; !visited {
					component[neigh] = id
					queue = append(queue, neigh)
				}
			}
		}
		components = append(components, members)
	}

	posInOrder := map[string]int{}
	for i, n := range order {
		posInOrder[n] = i
	}

	groups := make([]FuseGroup, len(components))
	for id, members := range components {
		var present []string
		for _, m := range members {
			if _, ok := posInOrder[m]; ok {
				present = append(present, m)
			}
		}
		present = sortByOrderPosition(present, posInOrder)
		groups[id] = FuseGroup{Members: present}
	}

	groupOf := map[string]int{}
	for name, id := range component {
		groupOf[name] = id
	}
	return groups, groupOf
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Stable, deterministic: insertion order isn't tracked on this
	// adjacency map, so sort lexically for reproducibility across runs.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func sortByOrderPosition(names []string, pos map[string]int) []string {
	out := append([]string(nil), names...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && pos[out[j]] < pos[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// checkContiguous verifies every fuse group with 2+ realized members
// occupies a contiguous run of the final order.
func checkContiguous(order []string, groups []FuseGroup, groupOf map[string]int) error {
	posInOrder := map[string]int{}
	for i, n := range order {
		posInOrder[n] = i
	}
	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		first := posInOrder[g.Members[0]]
		last := posInOrder[g.Members[len(g.Members)-1]]
		if last-first+1 != len(g.Members) {
			return &NonContiguousFuseGroupError{Group: g.Members}
		}
		for i := first; i <= last; i++ {
			if groupOf[order[i]] != groupOf[g.Members[0]] {
				return &NonContiguousFuseGroupError{Group: g.Members}
			}
		}
	}
	return nil
}
