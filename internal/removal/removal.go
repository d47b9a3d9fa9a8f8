// Package removal answers "what happens if I uninstall this" questions
// over a closure table: which packages depend on a target, and which of
// the target's dependencies would become safe to remove along with it.
package removal

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// ErrUnknownPackage reports that the target has no entry in the closure
// table, usually because the artifact is stale.
var ErrUnknownPackage = errors.New("package has no closure entry")

// Analysis is the full removal report for one target package.
type Analysis struct {
	Target string `json:"target"`
	// Dependencies is the target's transitive closure, base packages
	// excluded.
	Dependencies []string `json:"dependencies"`
	// Parents lists the roots whose closures contain the target.
	Parents []string `json:"parents"`
	// Orphans lists the packages only the target (or other orphans) still
	// need; removing the target strands them.
	Orphans []string `json:"orphans"`
}

// Analyze computes the removal report for target. The table is never
// mutated; base packages neither appear in the report nor hold other
// packages in place.
func Analyze(table closure.Table, base mapset.Set, target string) (*Analysis, error) {
	deps, ok := table.Lookup(target)
	if !ok {
		return nil, errors.Wrap(ErrUnknownPackage, target)
	}

	dependencies := []string{}
	for _, dep := range deps {
		if base.Contains(dep) {
			continue
		}
		dependencies = append(dependencies, dep)
	}

	parents := table.Parents(target)
	if parents == nil {
		parents = []string{}
	}

	return &Analysis{
		Target:       target,
		Dependencies: dependencies,
		Parents:      parents,
		Orphans:      orphans(table, base, target),
	}, nil
}

// orphans grows a deletable set from the target by fixed point: a
// dependency joins once every root that needs it is already in the set.
// A shared dependency therefore survives until all of its parents are
// marked deletable.
func orphans(table closure.Table, base mapset.Set, target string) []string {
	deletable := util.SetFromStrings([]string{target})
	for {
		updated := false
		for _, candidate := range candidates(table, base, deletable) {
			if deletable.Includes(candidate) {
				continue
			}
			if hasSurvivingParent(table, base, deletable, candidate) {
				continue
			}
			deletable.Add(candidate)
			updated = true
		}
		if !updated {
			break
		}
	}

	out := []string{}
	for _, member := range deletable.UnsafeListOfStrings() {
		if member == target || base.Contains(member) {
			continue
		}
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

// candidates unions the closures of every non-base deletable member,
// dropping base packages. The result is sorted so the fixed point walks
// deterministically.
func candidates(table closure.Table, base mapset.Set, deletable util.Set) []string {
	found := mapset.NewSet()
	for _, member := range deletable.UnsafeListOfStrings() {
		if base.Contains(member) {
			continue
		}
		deps, ok := table.Lookup(member)
		if !ok {
			continue
		}
		for _, dep := range deps {
			if base.Contains(dep) {
				continue
			}
			found.Add(dep)
		}
	}
	out := make([]string, 0, found.Cardinality())
	for _, item := range found.ToSlice() {
		out = append(out, item.(string))
	}
	sort.Strings(out)
	return out
}

// hasSurvivingParent reports whether any root outside the deletable set
// still needs name. Base roots don't count as survivors.
func hasSurvivingParent(table closure.Table, base mapset.Set, deletable util.Set, name string) bool {
	for _, parent := range table.Parents(name) {
		if deletable.Includes(parent) || base.Contains(parent) {
			continue
		}
		return true
	}
	return false
}

// Unreferenced returns the roots no other root's closure mentions, the
// packages the user seemingly installed on purpose. Base packages are
// skipped even when explicitly pinned.
func Unreferenced(table closure.Table, base mapset.Set) []string {
	unreferenced := []string{}
	for _, root := range table.Roots() {
		if base.Contains(root) {
			continue
		}
		if len(table.Parents(root)) == 0 {
			unreferenced = append(unreferenced, root)
		}
	}
	return unreferenced
}
