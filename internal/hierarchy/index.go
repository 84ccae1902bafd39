// Package hierarchy implements the per-category class hierarchy engine:
// the record store, the children adjacency derived from inheritance
// pointers, inheritance path resolution with cycle detection, and
// transitive descendant computation. Paths and descendant sets are
// memoized per index and published as whole snapshots.
//
// An Index has no interior locking. Concurrency is handled one layer up by
// Registry, which owns all published indexes.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/starford/eihwaz/internal/models"
)

// Index is the hierarchy index of a single category.
type Index struct {
	category string

	entries      map[string]models.Record
	entriesLower map[string]string
	children     map[string]map[string]struct{}

	// Memoized query results. Invalidated wholesale by Add once populated;
	// never mutated piecemeal after publication.
	paths       map[string][]string
	descendants map[string]map[string]struct{}
	cycles      map[string]string
}

// NewIndex creates an empty index for the given category.
func NewIndex(category string) *Index {
	return &Index{
		category:     category,
		entries:      make(map[string]models.Record),
		entriesLower: make(map[string]string),
		children:     make(map[string]map[string]struct{}),
		paths:        make(map[string][]string),
		descendants:  make(map[string]map[string]struct{}),
		cycles:       make(map[string]string),
	}
}

// Category returns the category name this index serves.
func (ix *Index) Category() string {
	return ix.category
}

// Len returns the number of stored classes.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Add inserts or overwrites the entry keyed by rec.Name and keeps the
// children adjacency consistent: re-adding a class under a different parent
// moves its child edge. Any memoized paths or descendant sets are dropped,
// since an overwrite may change chains that other classes resolved through;
// they are recomputed on the next query or Precompute.
func (ix *Index) Add(rec models.Record) {
	if prev, ok := ix.entries[rec.Name]; ok && prev.InheritsFrom != "" {
		ix.removeChildEdge(prev.InheritsFrom, rec.Name)
	}

	ix.entries[rec.Name] = rec
	ix.entriesLower[strings.ToLower(rec.Name)] = rec.Name
	if rec.InheritsFrom != "" {
		ix.addChildEdge(rec.InheritsFrom, rec.Name)
	}

	ix.invalidate()
}

// Lookup returns the record for name. Case-insensitive mode resolves
// through the lowercase alias map first.
func (ix *Index) Lookup(name string, caseSensitive bool) (models.Record, bool) {
	if !caseSensitive {
		canonical, ok := ix.entriesLower[strings.ToLower(name)]
		if !ok {
			return models.Record{}, false
		}
		name = canonical
	}
	rec, ok := ix.entries[name]
	return rec, ok
}

// ChildrenOf returns the immediate children of name. Unknown names yield an
// empty result; a name only referenced by inheritance pointers but never
// stored as an entry is external and has no observable children.
func (ix *Index) ChildrenOf(name string) []string {
	if _, known := ix.entries[name]; !known {
		return nil
	}
	return setToSlice(ix.children[name])
}

// Names returns every stored class name, unordered.
func (ix *Index) Names() []string {
	out := make([]string, 0, len(ix.entries))
	for name := range ix.entries {
		out = append(out, name)
	}
	return out
}

// Roots returns the sorted names of all classes without a parent pointer.
func (ix *Index) Roots() []string {
	var out []string
	for name, rec := range ix.entries {
		if rec.IsRoot() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (ix *Index) addChildEdge(parent, child string) {
	set, ok := ix.children[parent]
	if !ok {
		set = make(map[string]struct{})
		ix.children[parent] = set
	}
	set[child] = struct{}{}
}

func (ix *Index) removeChildEdge(parent, child string) {
	if set, ok := ix.children[parent]; ok {
		delete(set, child)
		if len(set) == 0 {
			delete(ix.children, parent)
		}
	}
}

// invalidate drops all memoized results. Cheap when nothing was computed yet.
func (ix *Index) invalidate() {
	if len(ix.paths) == 0 && len(ix.descendants) == 0 && len(ix.cycles) == 0 {
		return
	}
	ix.paths = make(map[string][]string)
	ix.descendants = make(map[string]map[string]struct{})
	ix.cycles = make(map[string]string)
}

func setToSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}
