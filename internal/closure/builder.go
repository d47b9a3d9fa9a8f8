package closure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/metadata"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// Builder fetches direct dependencies for a set of roots and expands them
// into a closure Table.
type Builder struct {
	Source metadata.Source
	// Base packages are excluded from traversal and reporting.
	Base mapset.Set
	// Concurrency bounds the number of in-flight metadata queries.
	Concurrency int
	Logger      hclog.Logger
}

// Result carries everything a Build produced. Degraded lists the roots
// whose metadata query failed; their closures exist but are empty.
// Failures aggregates the per-root errors behind Degraded.
type Result struct {
	Table    Table
	Direct   DirectIndex
	Degraded []string
	Failures error
}

// Build queries the metadata source once per root, fanned out up to
// Concurrency at a time, then expands the results into a Table. A failed
// query never fails the build; the root is recorded in Degraded instead.
// Build returns an error only when ctx is canceled.
func (b *Builder) Build(ctx context.Context, roots []string) (*Result, error) {
	direct := make(DirectIndex, len(roots))
	degraded := []string{}
	var failures *multierror.Error
	var mu sync.Mutex

	sem := util.NewSemaphore(b.Concurrency)
	g := new(errgroup.Group)
	for _, root := range roots {
		root := root
		g.Go(func() error {
			sem.Acquire()
			defer sem.Release()
			if err := ctx.Err(); err != nil {
				return err
			}
			deps, err := b.Source.DirectDependencies(ctx, root)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				// The root keeps its closure entry; it just can't expand.
				direct[root] = []string{}
				degraded = append(degraded, root)
				failures = multierror.Append(failures, errors.Wrapf(err, "resolving %v", root))
				b.Logger.Warn(fmt.Sprintf("could not resolve dependencies of %v: %v", root, err))
				return nil
			}
			b.Logger.Debug(fmt.Sprintf("%v requires %v", root, deps))
			direct[root] = deps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(degraded)
	return &Result{
		Table:    Expand(direct, b.Base, roots),
		Direct:   direct,
		Degraded: degraded,
		Failures: failures.ErrorOrNil(),
	}, nil
}
