package poll_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func TestOnceVarWriteThenPollIsReadyImmediately(t *testing.T) {
	v := poll.NewOnceVar[int]()
	require.NoError(t, v.Write(99))

	p, err := v.Poll(poll.NewContext(poll.NopWaker))
	require.NoError(t, err)
	assert.True(t, p.Ready)
	assert.Equal(t, 99, p.Value)
}

func TestOnceVarSecondWriteFails(t *testing.T) {
	v := poll.NewOnceVar[int]()
	require.NoError(t, v.Write(1))
	assert.ErrorIs(t, v.Write(2), poll.ErrOnceVarDoubleWrite)
	assert.False(t, v.TryWrite(2))
}

func TestOnceVarPollThenWriteWakesWaiter(t *testing.T) {
	v := poll.NewOnceVar[int]()

	woke := make(chan struct{}, 1)
	ctx := poll.NewContext(poll.WakerFunc(func() { woke <- struct{}{} }))

	p, err := v.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, p.Ready)

	require.True(t, v.TryWrite(5))

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waker was never called")
	}

	p, err = v.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, p.Ready)
	assert.Equal(t, 5, p.Value)
}

func TestOnceVarCancelBeforeWriteReportsCancelledError(t *testing.T) {
	v := poll.NewOnceVar[int]()
	v.Cancel()

	_, err := v.Poll(poll.NewContext(poll.NopWaker))
	assert.ErrorIs(t, err, poll.ErrFutureCancelled)

	_, ok := v.TryRead().Get()
	assert.False(t, ok)
}

func TestOnceVarCancelAfterWritePreservesValue(t *testing.T) {
	v := poll.NewOnceVar[int]()
	require.True(t, v.TryWrite(7))
	v.Cancel()

	got, ok := v.TryRead().Get()
	assert.True(t, ok)
	assert.Equal(t, 7, got)

	p, err := v.Poll(poll.NewContext(poll.NopWaker))
	require.NoError(t, err)
	assert.True(t, p.Ready)
	assert.Equal(t, 7, p.Value)
}

// TestOnceVarRendezvousSingleWriterWins exercises many concurrent writers
// racing on one cell: exactly one write succeeds, and the cell then carries
// a value.
func TestOnceVarRendezvousSingleWriterWins(t *testing.T) {
	v := poll.NewOnceVar[int]()

	var wg sync.WaitGroup
	var succeeded atomic.Int32

	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if v.TryWrite(n) {
				succeeded.Add(1)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, int32(1), succeeded.Load())

	_, ok := v.TryRead().Get()
	assert.True(t, ok)
}
