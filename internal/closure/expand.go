package closure

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
)

// Expand computes the transitive closure of every root over the direct
// dependency index. It is a pure function of its inputs: no metadata
// queries, no I/O, same index in, same table out.
//
// Base packages are treated as endpoints. Traversal never walks through
// them, and they only appear in a stored closure when they are themselves
// explicit roots.
func Expand(direct DirectIndex, base mapset.Set, roots []string) Table {
	rootSet := mapset.NewSet()
	for _, root := range roots {
		rootSet.Add(root)
	}
	table := make(Table, len(roots))
	for _, root := range roots {
		table[root] = expandOne(direct, base, rootSet, root)
	}
	return table
}

func expandOne(direct DirectIndex, base mapset.Set, roots mapset.Set, root string) []string {
	current := mapset.NewSet()
	for _, dep := range direct[root] {
		current.Add(dep)
	}
	// Fixed point: each pass derives the next membership from the current
	// one and stops as soon as a pass adds nothing. Growth is monotonic
	// over a finite universe, so cycles cannot keep this spinning.
	for {
		next := current.Clone()
		for _, item := range current.ToSlice() {
			name := item.(string)
			if base.Contains(name) {
				continue
			}
			deps, ok := direct[name]
			if !ok {
				// Nothing was fetched for this package. A pinned
				// requirements file lists the whole environment, so in
				// practice this is a package the metadata source failed
				// on; it simply doesn't expand.
				continue
			}
			for _, dep := range deps {
				next.Add(dep)
			}
		}
		if next.Cardinality() == current.Cardinality() {
			break
		}
		current = next
	}
	current.Remove(root)
	members := make([]string, 0, current.Cardinality())
	for _, item := range current.ToSlice() {
		name := item.(string)
		if base.Contains(name) && !roots.Contains(name) {
			continue
		}
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}
