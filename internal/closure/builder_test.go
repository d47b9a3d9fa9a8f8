package closure

import (
	"context"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"gotest.tools/v3/assert"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/metadata"
)

type fakeSource struct {
	mu    sync.Mutex
	deps  map[string][]string
	fail  map[string]error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) DirectDependencies(ctx context.Context, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	deps, ok := f.deps[name]
	if !ok {
		return nil, errors.Wrapf(metadata.ErrPackageUnknown, "no entry for %v", name)
	}
	return deps, nil
}

func newBuilder(source metadata.Source, base ...string) *Builder {
	return &Builder{
		Source:      source,
		Base:        setOf(base...),
		Concurrency: 2,
		Logger:      hclog.NewNullLogger(),
	}
}

func TestBuild(t *testing.T) {
	source := &fakeSource{deps: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	}}
	roots := []string{"a", "b", "c"}

	result, err := newBuilder(source).Build(context.Background(), roots)
	assert.NilError(t, err)
	assert.DeepEqual(t, result.Table, Table{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {},
	})
	assert.DeepEqual(t, result.Degraded, []string{})
	assert.NilError(t, result.Failures)
	// One metadata query per root, none repeated.
	assert.Equal(t, source.calls, len(roots))
}

func TestBuildIsDeterministic(t *testing.T) {
	source := &fakeSource{deps: map[string][]string{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {},
	}}
	roots := []string{"a", "b", "c"}

	first, err := newBuilder(source).Build(context.Background(), roots)
	assert.NilError(t, err)
	second, err := newBuilder(source).Build(context.Background(), roots)
	assert.NilError(t, err)
	assert.DeepEqual(t, first.Table, second.Table)
}

func TestBuildDegradesFailedRoots(t *testing.T) {
	source := &fakeSource{
		deps: map[string][]string{
			"a": {"b"},
			"b": {"c"},
		},
		fail: map[string]error{"b": errors.New("metadata service exploded")},
	}

	result, err := newBuilder(source).Build(context.Background(), []string{"a", "b"})
	assert.NilError(t, err)
	// The failed root keeps an entry but expands to nothing.
	assert.DeepEqual(t, result.Table, Table{
		"a": {"b"},
		"b": {},
	})
	assert.DeepEqual(t, result.Degraded, []string{"b"})
	assert.ErrorContains(t, result.Failures, "resolving b")
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{deps: map[string][]string{"a": {}}}
	_, err := newBuilder(source).Build(ctx, []string{"a"})
	assert.Assert(t, errors.Is(err, context.Canceled))
}
