// Package closure builds and stores the transitive dependency closure of
// the packages pinned in a requirements file.
//
// The persisted artifact is a JSON object mapping each root package to the
// sorted list of everything it pulls in transitively. Queries (reverse
// lookups, removal analysis) run against this artifact without touching
// package metadata again.
package closure

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
)

// DirectIndex maps a package name to its direct dependency names, exactly
// as the metadata source reported them.
type DirectIndex map[string][]string

// Table maps each root package to the sorted, deduplicated names of its
// transitive dependencies. The root itself is never a member of its own
// list, even when the dependency graph is cyclic.
type Table map[string][]string

// Roots returns the table's keys in lexicographic order.
func (t Table) Roots() []string {
	roots := make([]string, 0, len(t))
	for root := range t {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Has reports whether name has a closure entry.
func (t Table) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Lookup returns name's closure list.
func (t Table) Lookup(name string) ([]string, bool) {
	deps, ok := t[name]
	return deps, ok
}

// Closure returns name's closure as a set. Missing entries yield the
// empty set.
func (t Table) Closure(name string) mapset.Set {
	s := mapset.NewSet()
	for _, dep := range t[name] {
		s.Add(dep)
	}
	return s
}

// Contains reports whether name is in root's closure. Closure lists are
// sorted, so this is a binary search.
func (t Table) Contains(root string, name string) bool {
	deps, ok := t[root]
	if !ok {
		return false
	}
	i := sort.SearchStrings(deps, name)
	return i < len(deps) && deps[i] == name
}

// Parents returns the roots whose closures contain name, sorted. A root is
// never its own parent.
func (t Table) Parents(name string) []string {
	var parents []string
	for root := range t {
		if root == name {
			continue
		}
		if t.Contains(root, name) {
			parents = append(parents, root)
		}
	}
	sort.Strings(parents)
	return parents
}
