package hierarchy

import (
	"strings"

	"github.com/starford/eihwaz/internal/models"
)

// DefaultPrecomputeThreshold is the category size at which Build resolves
// all paths and descendant sets upfront. Below it, lazy per-query
// memoization is cheaper than a full sweep; above it, heavy fan-out query
// patterns degrade into repeated chain walks without the precompute.
const DefaultPrecomputeThreshold = 500

// BuildOptions controls bulk index construction.
type BuildOptions struct {
	// PrecomputeThreshold overrides DefaultPrecomputeThreshold.
	// Negative disables the upfront sweep entirely.
	PrecomputeThreshold int
}

// Build constructs a fully-populated Index from one batch of records in a
// single pass: the entry and alias maps first, then the children adjacency
// in one sweep, then the optional path/descendant precompute. Build always
// returns a fresh index and never mutates one that is already published, so
// the caller can swap the result in atomically.
//
// Duplicate record names follow overwrite semantics: the last record in the
// batch wins.
func Build(category string, records []models.Record, opts BuildOptions) *Index {
	ix := NewIndex(category)

	for _, rec := range records {
		ix.entries[rec.Name] = rec
		ix.entriesLower[strings.ToLower(rec.Name)] = rec.Name
	}

	for name, rec := range ix.entries {
		if rec.InheritsFrom == "" {
			continue
		}
		ix.addChildEdge(rec.InheritsFrom, name)
	}

	threshold := opts.PrecomputeThreshold
	if threshold == 0 {
		threshold = DefaultPrecomputeThreshold
	}
	if threshold > 0 && len(ix.entries) >= threshold {
		ix.Precompute()
	}

	return ix
}
