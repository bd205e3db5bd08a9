package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicOps(t *testing.T) {
	s := New("engine-1", "tanker-2")
	assert.True(t, s.Has("engine-1"))
	s.Add("ladder-3")
	assert.True(t, s.Has("ladder-3"))
	s.Delete("tanker-2")
	assert.False(t, s.Has("tanker-2"))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(1, 2)
	c := s.Clone()
	c.Add(3)
	assert.False(t, s.Has(3))
}

func TestUnion(t *testing.T) {
	u := New("a").Union(New("b"))
	assert.True(t, u.Has("a"))
	assert.True(t, u.Has("b"))
}

func TestSortedStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedStrings(New("c", "a", "b")))
}
