package hierarchy

import (
	"sort"
	"testing"

	"github.com/starford/eihwaz/internal/models"
)

func sortedDescendants(ix *Index, name string) []string {
	d := ix.Descendants(name)
	sort.Strings(d)
	return d
}

func TestDescendants_Transitive(t *testing.T) {
	ix := vehicleIndex(t)

	got := sortedDescendants(ix, "Land")
	want := []string{"Car", "LandVehicle", "Tank"}
	if !pathEquals(got, want) {
		t.Errorf("descendants(Land) = %v, want %v", got, want)
	}

	all := sortedDescendants(ix, "All")
	if len(all) != 5 {
		t.Errorf("descendants(All) = %v, want all five others", all)
	}
}

func TestDescendants_Leaf(t *testing.T) {
	ix := vehicleIndex(t)
	if got := ix.Descendants("Car"); len(got) != 0 {
		t.Errorf("descendants(Car) = %v, want empty", got)
	}
}

func TestDescendants_Unknown(t *testing.T) {
	ix := vehicleIndex(t)
	if got := ix.Descendants("NoSuchClass"); got != nil {
		t.Errorf("descendants = %v, want nil", got)
	}
}

func TestDescendants_NeverContainSelf(t *testing.T) {
	ix := NewIndex("test")
	ix.Add(models.Record{Name: "A", InheritsFrom: "B"})
	ix.Add(models.Record{Name: "B", InheritsFrom: "A"})

	for _, name := range []string{"A", "B"} {
		for _, d := range ix.Descendants(name) {
			if d == name {
				t.Errorf("descendants(%s) contains itself", name)
			}
		}
	}
	// In a two-cycle each class is still the other's descendant.
	if got := ix.Descendants("A"); len(got) != 1 || got[0] != "B" {
		t.Errorf("descendants(A) = %v, want [B]", got)
	}
}

func TestDescendants_ChildrenSubset(t *testing.T) {
	ix := vehicleIndex(t)
	for _, name := range ix.Names() {
		desc := make(map[string]struct{})
		for _, d := range ix.Descendants(name) {
			desc[d] = struct{}{}
		}
		for _, child := range ix.ChildrenOf(name) {
			if _, ok := desc[child]; !ok {
				t.Errorf("child %s of %s missing from descendants", child, name)
			}
		}
	}
}

func TestDescendants_Memoized(t *testing.T) {
	ix := vehicleIndex(t)

	if _, ok := ix.DescendantsCached("Land"); ok {
		t.Fatal("descendants cached before first query")
	}
	first := sortedDescendants(ix, "Land")
	cached, ok := ix.DescendantsCached("Land")
	if !ok {
		t.Fatal("descendants not cached after query")
	}
	sort.Strings(cached)
	if !pathEquals(first, cached) {
		t.Errorf("cached = %v, want %v", cached, first)
	}
}

func TestPrecompute_MatchesLazyQueries(t *testing.T) {
	records := vehicleRecords()
	lazy := Build("test", records, BuildOptions{PrecomputeThreshold: -1})
	eager := Build("test", records, BuildOptions{PrecomputeThreshold: 1})

	for _, rec := range records {
		lp, ep := lazy.Path(rec.Name), eager.Path(rec.Name)
		if !pathEquals(lp, ep) {
			t.Errorf("path(%s): lazy %v, eager %v", rec.Name, lp, ep)
		}
		ld, ed := sortedDescendants(lazy, rec.Name), sortedDescendants(eager, rec.Name)
		if !pathEquals(ld, ed) {
			t.Errorf("descendants(%s): lazy %v, eager %v", rec.Name, ld, ed)
		}
	}
}

func TestPrecompute_CyclicHierarchy(t *testing.T) {
	records := []models.Record{
		{Name: "A", InheritsFrom: "B"},
		{Name: "B", InheritsFrom: "A"},
		{Name: "C", InheritsFrom: "A"},
	}
	ix := Build("test", records, BuildOptions{PrecomputeThreshold: 1})

	// Bulk propagation and BFS must agree, including in cyclic shapes.
	got := sortedDescendants(ix, "A")
	want := []string{"B", "C"}
	if !pathEquals(got, want) {
		t.Errorf("descendants(A) = %v, want %v", got, want)
	}
	if !ix.HasCycle("A") {
		t.Error("cycle lost during precompute")
	}
	if got := sortedDescendants(ix, "C"); len(got) != 0 {
		t.Errorf("descendants(C) = %v, want empty", got)
	}
}
