package closure

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestTableQueries(t *testing.T) {
	table := Table{
		"a": {"c"},
		"b": {"c"},
		"c": {},
	}

	assert.DeepEqual(t, table.Roots(), []string{"a", "b", "c"})

	assert.Assert(t, table.Has("a"))
	assert.Assert(t, !table.Has("zzz"))

	assert.Assert(t, table.Contains("a", "c"))
	assert.Assert(t, !table.Contains("c", "a"))
	assert.Assert(t, !table.Contains("zzz", "a"))

	assert.DeepEqual(t, table.Parents("c"), []string{"a", "b"})
	assert.Assert(t, table.Parents("a") == nil)

	assert.Assert(t, table.Closure("a").Contains("c"))
	assert.Equal(t, table.Closure("zzz").Cardinality(), 0)
}

func TestParentsIgnoresSelf(t *testing.T) {
	// A cyclic pair: each closure names the other package.
	table := Table{
		"a": {"b"},
		"b": {"a"},
	}
	assert.DeepEqual(t, table.Parents("a"), []string{"b"})
	assert.DeepEqual(t, table.Parents("b"), []string{"a"})
}
