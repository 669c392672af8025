package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := newStore(2)

	_, evicted := s.put(Notification{ID: 1, Body: "one"})
	assert.False(t, evicted)
	_, evicted = s.put(Notification{ID: 2, Body: "two"})
	assert.False(t, evicted)

	_, evicted = s.put(Notification{ID: 1, Body: "one again"})
	assert.False(t, evicted, "replacing does not grow the store")

	old, evicted := s.put(Notification{ID: 3, Body: "three"})
	require.True(t, evicted)
	assert.Equal(t, uint32(1), old.ID)

	list := s.list()
	require.Len(t, list, 2)
	assert.Equal(t, uint32(2), list[0].ID)
	assert.Equal(t, uint32(3), list[1].ID)

	n, ok := s.remove(2)
	assert.True(t, ok)
	assert.Equal(t, "two", n.Body)
	_, ok = s.get(2)
	assert.False(t, ok)
	_, ok = s.remove(2)
	assert.False(t, ok)
}
