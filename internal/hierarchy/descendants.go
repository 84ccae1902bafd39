package hierarchy

// Descendants returns every class that inherits from name directly or
// transitively. The class itself is never part of its own descendant set,
// even when a cycle points back at it. Unknown names yield an empty result.
//
// The result is memoized; callers always receive a copy.
func (ix *Index) Descendants(name string) []string {
	if d, ok := ix.descendants[name]; ok {
		return setToSlice(d)
	}
	if _, known := ix.entries[name]; !known {
		return nil
	}
	d := ix.collectDescendants(name)
	ix.descendants[name] = d
	return setToSlice(d)
}

// DescendantsCached returns the memoized descendant set for name without
// computing one. The second result is false when a computation is required.
func (ix *Index) DescendantsCached(name string) ([]string, bool) {
	if _, known := ix.entries[name]; !known {
		return nil, true
	}
	d, ok := ix.descendants[name]
	if !ok {
		return nil, false
	}
	return setToSlice(d), true
}

// collectDescendants walks the children adjacency breadth-first with an
// explicit frontier. The visited set is seeded with the start class, so a
// cyclic edge can neither re-admit it nor expand any class twice.
func (ix *Index) collectDescendants(name string) map[string]struct{} {
	result := make(map[string]struct{})
	visited := map[string]struct{}{name: {}}

	frontier := setToSlice(ix.children[name])
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		result[current] = struct{}{}
		for child := range ix.children[current] {
			frontier = append(frontier, child)
		}
	}
	return result
}

// Precompute resolves every path and every descendant set in one bulk
// sweep. Descendants accumulate bottom-up: each class is propagated into
// the set of every ancestor on its own (already memoized) path, which costs
// one path walk per class instead of one traversal per queried ancestor.
// The finished maps replace the previous memos atomically as whole values.
func (ix *Index) Precompute() {
	paths := make(map[string][]string, len(ix.entries))
	cycles := make(map[string]string)
	for name := range ix.entries {
		p, cycleAt := ix.resolve(name)
		paths[name] = p
		if cycleAt != "" {
			cycles[name] = cycleAt
		}
	}

	descendants := make(map[string]map[string]struct{}, len(ix.entries))
	for name := range ix.entries {
		descendants[name] = make(map[string]struct{})
	}
	for name := range ix.entries {
		for _, ancestor := range paths[name][1:] {
			descendants[ancestor][name] = struct{}{}
		}
	}

	ix.paths = paths
	ix.descendants = descendants
	ix.cycles = cycles
}
