package util

import (
	"sort"
	"testing"

	"gotest.tools/v3/assert"
)

func TestSetMembership(t *testing.T) {
	s := SetFromStrings([]string{"requests", "urllib3"})
	assert.Equal(t, s.Len(), 2)
	assert.Assert(t, s.Includes("requests"))
	assert.Assert(t, !s.Includes("idna"))

	s.Add("idna")
	assert.Assert(t, s.Includes("idna"))

	s.Delete("requests")
	assert.Assert(t, !s.Includes("requests"))
	assert.Equal(t, s.Len(), 2)
}

func TestSetCopyIsIndependent(t *testing.T) {
	s := SetFromStrings([]string{"a"})
	c := s.Copy()
	c.Add("b")

	assert.Assert(t, !s.Includes("b"))
	assert.Assert(t, c.Includes("a"))
}

func TestUnsafeListOfStrings(t *testing.T) {
	s := SetFromStrings([]string{"b", "a"})
	list := s.UnsafeListOfStrings()
	sort.Strings(list)
	assert.DeepEqual(t, list, []string{"a", "b"})
}
