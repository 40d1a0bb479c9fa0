package bloglist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPreservesInputOrder(t *testing.T) {
	l := New([]Record{{ID: 1}, {ID: 2}, {ID: 3}})
	ids := make([]int, 0, 3)
	for _, r := range l.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestFindReturnsMatchingRecord(t *testing.T) {
	l := New([]Record{{ID: 1, Heading: "a"}, {ID: 7, Heading: "b"}})
	rec, ok := l.Find(7)
	assert.True(t, ok)
	assert.Equal(t, "b", rec.Heading)
}

func TestFindMissingReturnsFalse(t *testing.T) {
	l := New([]Record{{ID: 1}})
	_, ok := l.Find(99)
	assert.False(t, ok)
}

func TestNilListIsEmpty(t *testing.T) {
	var l *List
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Records())
	_, ok := l.Find(1)
	assert.False(t, ok)
}

func TestHolderSwapReturnsPrevious(t *testing.T) {
	var h Holder
	first := New([]Record{{ID: 1}})
	old := h.Swap(first)
	assert.Nil(t, old)
	assert.Same(t, first, h.Current())

	second := New([]Record{{ID: 2}})
	old = h.Swap(second)
	assert.Same(t, first, old)
	assert.Same(t, second, h.Current())
}
