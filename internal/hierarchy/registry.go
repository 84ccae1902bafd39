package hierarchy

import (
	"sort"
	"strings"
	"sync"

	"github.com/starford/eihwaz/internal/models"
)

// Registry owns every published category index plus the global
// class-to-category maps. It is the concurrency boundary of the engine: the
// indexes themselves are lock-free, and all access goes through the
// registry's RWMutex. Queries whose answer is already memoized run under
// the read lock; when a lazy memo still has to be filled, the query retries
// under the write lock (double-checked, since the index may have been
// swapped in between).
//
// Category loads build the replacement index offline and swap it in whole,
// so readers never observe a partially-updated index.
type Registry struct {
	mu                 sync.RWMutex
	categories         map[string]*Index
	classCategory      map[string]string
	classCategoryLower map[string]string
	buildOpts          BuildOptions
}

// NewRegistry creates an empty registry.
func NewRegistry(opts BuildOptions) *Registry {
	return &Registry{
		categories:         make(map[string]*Index),
		classCategory:      make(map[string]string),
		classCategoryLower: make(map[string]string),
		buildOpts:          opts,
	}
}

// LoadCategory bulk-loads one category from a record batch, replacing any
// previously published index for it. Returns the stored class count.
func (r *Registry) LoadCategory(category string, records []models.Record) int {
	ix := Build(category, records, r.buildOpts)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.categories[category]; old != nil {
		r.unregisterClasses(old)
	}
	r.categories[category] = ix
	for name := range ix.entries {
		r.registerClass(name, category)
	}
	return ix.Len()
}

// AddRecord inserts a single record incrementally, creating the category
// index on first use. Memoized results of the touched category are dropped
// and recomputed on the next query.
func (r *Registry) AddRecord(category string, rec models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ix := r.categories[category]
	if ix == nil {
		ix = NewIndex(category)
		r.categories[category] = ix
	}
	ix.Add(rec)
	r.registerClass(rec.Name, category)
}

// DropCategory removes a category index and its global registrations.
func (r *Registry) DropCategory(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.categories[category]; old != nil {
		r.unregisterClasses(old)
		delete(r.categories, category)
	}
}

// GetPath returns the inheritance chain for name within category, empty
// when the category or class is unknown.
func (r *Registry) GetPath(category, name string) []string {
	r.mu.RLock()
	ix := r.categories[category]
	if ix == nil {
		r.mu.RUnlock()
		return nil
	}
	if p, ok := ix.PathCached(name); ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	ix = r.categories[category]
	if ix == nil {
		return nil
	}
	return ix.Path(name)
}

// GetChildren returns the sorted immediate children of name within
// category, empty when either is unknown.
func (r *Registry) GetChildren(category, name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix := r.categories[category]
	if ix == nil {
		return nil
	}
	children := ix.ChildrenOf(name)
	sort.Strings(children)
	return children
}

// GetDescendants returns the sorted transitive descendants of name within
// category, empty when either is unknown.
func (r *Registry) GetDescendants(category, name string) []string {
	r.mu.RLock()
	ix := r.categories[category]
	if ix == nil {
		r.mu.RUnlock()
		return nil
	}
	if d, ok := ix.DescendantsCached(name); ok {
		r.mu.RUnlock()
		sort.Strings(d)
		return d
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	ix = r.categories[category]
	if ix == nil {
		return nil
	}
	d := ix.Descendants(name)
	sort.Strings(d)
	return d
}

// HasCycle reports whether the inheritance chain of name runs into a cycle.
// Diagnostic only; GetPath still answers with the truncated chain.
func (r *Registry) HasCycle(category, name string) bool {
	r.mu.RLock()
	ix := r.categories[category]
	if ix == nil {
		r.mu.RUnlock()
		return false
	}
	if _, ok := ix.PathCached(name); ok {
		_, cyclic := ix.cycles[name]
		r.mu.RUnlock()
		return cyclic
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	ix = r.categories[category]
	if ix == nil {
		return false
	}
	return ix.HasCycle(name)
}

// Lookup returns the record for name within category.
func (r *Registry) Lookup(category, name string, caseSensitive bool) (models.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix := r.categories[category]
	if ix == nil {
		return models.Record{}, false
	}
	return ix.Lookup(name, caseSensitive)
}

// FindClassCategory returns the category owning name, consulting the global
// class map so no per-category scan is needed.
func (r *Registry) FindClassCategory(name string, caseSensitive bool) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if caseSensitive {
		cat, ok := r.classCategory[name]
		return cat, ok
	}
	cat, ok := r.classCategoryLower[strings.ToLower(name)]
	return cat, ok
}

// Categories returns the sorted names of all loaded categories.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.categories))
	for name := range r.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CategorySize returns the class count of a category, 0 when unknown.
func (r *Registry) CategorySize(category string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix := r.categories[category]
	if ix == nil {
		return 0
	}
	return ix.Len()
}

// Roots returns the sorted root classes of a category.
func (r *Registry) Roots(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix := r.categories[category]
	if ix == nil {
		return nil
	}
	return ix.Roots()
}

// registerClass must be called with the write lock held.
func (r *Registry) registerClass(name, category string) {
	r.classCategory[name] = category
	r.classCategoryLower[strings.ToLower(name)] = category
}

// unregisterClasses must be called with the write lock held. Only mappings
// still pointing at the old index's category are removed, so categories
// that registered the same class name later are untouched.
func (r *Registry) unregisterClasses(old *Index) {
	for name := range old.entries {
		if r.classCategory[name] == old.category {
			delete(r.classCategory, name)
		}
		lower := strings.ToLower(name)
		if r.classCategoryLower[lower] == old.category {
			delete(r.classCategoryLower, lower)
		}
	}
}
