package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_GetWaitsForPut(t *testing.T) {
	s := New()
	mb := NewMailbox[string](s)
	var got []string
	var consumer Process
	consumer = ProcessFunc(func(now float64) {
		if item, ok := mb.Get(consumer); ok {
			got = append(got, item)
		}
	})
	consumer.Resume(0)
	assert.Empty(t, got)

	s.After(5, ProcessFunc(func(now float64) {
		ok, err := mb.Put("job", nil)
		require.NoError(t, err)
		require.True(t, ok)
	}))
	s.RunUntil(10)
	assert.Equal(t, []string{"job"}, got)
	assert.Zero(t, mb.Len())
}

func TestMailbox_PutBlocksWhenFull(t *testing.T) {
	s := New()
	mb := NewMailbox[int](s)
	ok, err := mb.Put(1, nil)
	require.NoError(t, err)
	require.True(t, ok)

	resumed := -1.0
	producer := ProcessFunc(func(now float64) { resumed = now })
	ok, err = mb.Put(2, producer)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = mb.Put(3, producer)
	assert.ErrorIs(t, err, ErrMailboxBusy)

	s.After(4, ProcessFunc(func(now float64) {
		item, ok := mb.Get(nil)
		require.True(t, ok)
		assert.Equal(t, 1, item)
	}))
	s.RunUntil(10)
	assert.Equal(t, 4.0, resumed)
	assert.Equal(t, 1, mb.Len())

	item, ok := mb.Get(nil)
	require.True(t, ok)
	assert.Equal(t, 2, item)
}
