package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func TestSemaphoreAcquireWithinCapacityIsImmediate(t *testing.T) {
	s := poll.NewSemaphore(2)

	_, err := poll.RunSync(s.Acquire(2))
	require.NoError(t, err)
}

func TestSemaphoreAcquireBlocksUntilEnoughWeightFreed(t *testing.T) {
	s := poll.NewSemaphore(2)
	ctx := poll.NewContext(poll.NopWaker)

	holder := s.Acquire(2).RunComputation()
	p, err := holder.Poll(ctx)
	require.NoError(t, err)
	require.True(t, p.Ready)

	waiter := s.Acquire(1).RunComputation()
	p, err = waiter.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, p.Ready)

	s.Release(1)

	p, err = waiter.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, p.Ready)
}

func TestSemaphoreCancelPassesGrantedWeightForward(t *testing.T) {
	s := poll.NewSemaphore(1)
	ctx := poll.NewContext(poll.NopWaker)

	holder := s.Acquire(1).RunComputation()
	_, err := holder.Poll(ctx)
	require.NoError(t, err)

	first := s.Acquire(1).RunComputation()
	p, err := first.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, p.Ready)

	second := s.Acquire(1).RunComputation()
	p, err = second.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, p.Ready)

	s.Release(1) // grants the weight to first

	// first gives up without observing the grant; it must pass forward.
	first.Cancel()

	p, err = second.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, p.Ready)

	s.Release(1)
}

func TestSemaphoreAcquireNegativeWeightPanics(t *testing.T) {
	s := poll.NewSemaphore(1)
	assert.Panics(t, func() { s.Acquire(-1) })
}

func TestSemaphoreReleaseMoreThanHeldPanics(t *testing.T) {
	s := poll.NewSemaphore(1)
	assert.Panics(t, func() { s.Release(1) })
}
