package hierarchy

import "slices"

// Path returns the inheritance chain from name towards its root: name
// first, then each successive parent. Resolution stops at a root (empty
// pointer), at a pointer to a class outside this index (the external
// ancestor is not appended), or when a class repeats (cycle; the repeated
// class is not appended a second time). Unknown names yield an empty chain.
//
// The result is memoized; callers always receive a copy.
func (ix *Index) Path(name string) []string {
	if p, ok := ix.paths[name]; ok {
		return slices.Clone(p)
	}

	p, cycleAt := ix.resolve(name)
	if p == nil {
		return nil
	}
	ix.paths[name] = p
	if cycleAt != "" {
		ix.cycles[name] = cycleAt
	}
	return slices.Clone(p)
}

// PathCached returns the memoized chain for name without computing one.
// The second result is false when a computation is still required; unknown
// names are answerable immediately.
func (ix *Index) PathCached(name string) ([]string, bool) {
	if _, known := ix.entries[name]; !known {
		return nil, true
	}
	p, ok := ix.paths[name]
	return slices.Clone(p), ok
}

// HasCycle reports whether resolving name runs into a repeated class.
// Purely diagnostic: the chain itself is still returned truncated.
func (ix *Index) HasCycle(name string) bool {
	ix.Path(name)
	_, ok := ix.cycles[name]
	return ok
}

// resolve walks the parent pointers iteratively with a visited set local to
// this call, so deep or cyclic hierarchies can neither recurse out of stack
// nor loop. cycleAt names the class where the chain closed, or "".
func (ix *Index) resolve(name string) (path []string, cycleAt string) {
	if _, known := ix.entries[name]; !known {
		return nil, ""
	}

	visited := make(map[string]struct{})
	current := name
	for {
		visited[current] = struct{}{}
		path = append(path, current)

		next := ix.entries[current].InheritsFrom
		if next == "" {
			return path, "" // root reached
		}
		if _, seen := visited[next]; seen {
			return path, next
		}
		if _, known := ix.entries[next]; !known {
			return path, "" // external ancestor, chain stops here
		}
		current = next
	}
}
